package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	json "github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/metrics"
	"github.com/mbolis/survey-desk/model"
	"github.com/mbolis/survey-desk/survey"
	"github.com/pkg/errors"
)

// openSurvey loads the survey named by the id URL parameter and checks it
// accepts submissions. On failure the response is already written.
func openSurvey(app app.App, w http.ResponseWriter, r *http.Request, code string) (model.Survey, bool) {
	surveyId := chi.URLParam(r, "id")

	s, err := findSurvey(r.Context(), app, surveyId)
	if errors.Is(err, errNotFound) {
		log.Audit(code+"_FAILED", log.Fields{"surveyId": surveyId, "reason": "Survey not found"})
		httpx.LogNotFound(w, code, surveyId, "Survey not found")
		return s, false
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_survey", err)
		return s, false
	}

	if !s.IsActive {
		log.Audit(code+"_FAILED", log.Fields{"surveyId": surveyId, "reason": "Survey is not active"})
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code, "Survey is not active")
		return s, false
	}
	if s.Expired(time.Now()) {
		log.Audit(code+"_FAILED", log.Fields{"surveyId": surveyId, "reason": "Survey has expired"})
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code, "Survey has expired")
		return s, false
	}

	return s, true
}

// PublicGetSurvey serves what a respondent needs to render the form.
func PublicGetSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := openSurvey(app, w, r, "GET_PUBLIC_SURVEY")
		if !ok {
			return
		}

		render.JSON(w, r, map[string]any{
			"id":          s.ID,
			"title":       s.Title,
			"description": s.Description,
			"structure":   s.Structure,
			"expiresAt":   s.ExpiresAt,
			"isAnonymous": s.IsAnonymous,
		})
	}
}

func SubmitSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := openSurvey(app, w, r, "SUBMIT_SURVEY")
		if !ok {
			return
		}

		var body struct {
			Data map[string]any `json:"data"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}
		if body.Data == nil {
			body.Data = map[string]any{}
		}

		res := survey.Validate(s.Structure, body.Data)
		metrics.ObserveSubmission(res.Accepted, len(res.Errors))
		for _, warning := range res.Warnings {
			log.Warnf("submit_survey.validate: survey %s: %s", s.ID, warning)
		}
		if !res.Accepted {
			log.Audit("SUBMIT_SURVEY_FAILED", log.Fields{
				"surveyId":         s.ID,
				"reason":           "Invalid response data",
				"validationErrors": res.Err().Error(),
			})
			httpx.LogInvalid(w, "submit_survey.validate", "Invalid response data", res.Errors)
			return
		}

		data, err := json.Marshal(body.Data)
		if err != nil {
			httpx.LogInternalError(w, "submit_survey.marshal_data", err)
			return
		}
		id, err := uuid.NewV4()
		if err != nil {
			httpx.LogInternalError(w, "submit_survey.id", err)
			return
		}

		var ip *string
		if !s.IsAnonymous {
			addr := httpx.ClientIP(r)
			ip = &addr
		}

		_, err = app.ExecContext(r.Context(), `
			INSERT INTO response (id, survey_id, data, ip, submitted_at)
			VALUES (?, ?, ?, ?, ?)`,
			id.String(), s.ID, string(data), ip, time.Now().UTC(),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}

		fields := log.Fields{"surveyId": s.ID, "responseId": id.String(), "isAnonymous": s.IsAnonymous}
		if ip != nil {
			fields["ip"] = *ip
		}
		log.Audit("SUBMIT_SURVEY", fields)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":      id.String(),
			"message": "Thank you for your response!",
		})
	}
}
