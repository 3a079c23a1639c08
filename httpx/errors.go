package httpx

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/mbolis/survey-desk/log"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Will log an error, and send an HTTP response with status 500 and a generic message
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %+v", code, err)
	WriteError(w, http.StatusInternalServerError, ErrorBody{Error: "Internal server error"})
}

// Will log a debug message, and send an HTTP response with status 404 and the given message
func LogNotFound(w http.ResponseWriter, code string, id any, msg string) {
	log.Debugf("%s: not found (%v)", code, id)
	WriteError(w, http.StatusNotFound, ErrorBody{Error: msg})
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	WriteError(w, status, ErrorBody{Error: http.StatusText(status)})
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	WriteError(w, status, ErrorBody{Error: errMsg})
}

// Will log the rejected details at DEBUG level, and send an HTTP response
// with status 400, msg and every detail
func LogInvalid(w http.ResponseWriter, code string, msg string, details []string) {
	log.Debugf("%s: %s %q", code, msg, details)
	WriteError(w, http.StatusBadRequest, ErrorBody{Error: msg, Details: details})
}

func WriteError(w http.ResponseWriter, status int, body ErrorBody) {
	WriteJSON(w, status, body)
}

// WriteJSON is used where no request is at hand for render.JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	buf, err := json.Marshal(v)
	if err != nil {
		log.Errorf("response.marshal: %s", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf)
}
