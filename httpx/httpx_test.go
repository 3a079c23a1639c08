package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mbolis/survey-desk/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLogInternalError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	LogInternalError(w, "db.test", errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestLogInvalid(t *testing.T) {
	w := httptest.NewRecorder()
	LogInvalid(w, "submit.validate", "Invalid response data", []string{"a", "b"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid response data","details":["a","b"]}`, w.Body.String())
}

func TestLogStatusMsg(t *testing.T) {
	w := httptest.NewRecorder()
	LogStatusMsg(w, http.StatusForbidden, log.DebugLevel, "survey.owner", "Access denied")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, w.Body.String())
}

func TestAuthCookies(t *testing.T) {
	w := httptest.NewRecorder()
	SetAuthCookie(w, "accessToken", "tok", 15*time.Minute, true)
	ClearAuthCookie(w, "refreshToken", false)

	cookies := w.Result().Cookies()
	if assert.Len(t, cookies, 2) {
		assert.Equal(t, "tok", cookies[0].Value)
		assert.Equal(t, 900, cookies[0].MaxAge)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
		assert.Equal(t, "refreshToken", cookies[1].Name)
		assert.Equal(t, -1, cookies[1].MaxAge)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", ClientIP(r))

	r.RemoteAddr = "10.1.2.3"
	assert.Equal(t, "10.1.2.3", ClientIP(r))
}
