package routes

import (
	"database/sql"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	json "github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/metrics"
	"github.com/mbolis/survey-desk/model"
	"github.com/mbolis/survey-desk/survey"
	"github.com/pkg/errors"
)

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())

		body := createSurveyBody{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}
		err = validate.Struct(body)
		if err != nil {
			httpx.LogInvalid(w, "create_survey.validate", "Invalid survey", problems(err))
			return
		}
		if !checkStructure(w, "create_survey.structure", body.Structure) {
			return
		}

		structure, err := json.Marshal(body.Structure)
		if err != nil {
			httpx.LogInternalError(w, "create_survey.marshal_structure", err)
			return
		}
		id, err := uuid.NewV4()
		if err != nil {
			httpx.LogInternalError(w, "create_survey.id", err)
			return
		}

		s := model.Survey{
			ID:          id.String(),
			Title:       body.Title,
			Description: body.Description,
			Structure:   body.Structure,
			ExpiresAt:   body.ExpiresAt.Time,
			IsActive:    true,
			IsAnonymous: body.IsAnonymous,
			CreatedBy:   p.UserID,
			CreatedAt:   time.Now().UTC(),
		}
		s.UpdatedAt = s.CreatedAt

		_, err = app.ExecContext(r.Context(), `
			INSERT INTO survey (`+surveyColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Title, s.Description, string(structure), s.ExpiresAt,
			s.IsActive, s.IsAnonymous, s.CreatedBy, s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		log.Audit("CREATE_SURVEY", log.Fields{
			"userId":      p.UserID,
			"surveyId":    s.ID,
			"title":       s.Title,
			"isAnonymous": s.IsAnonymous,
		})

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":        s.ID,
			"title":     s.Title,
			"publicUrl": app.SurveyLink(s.ID),
			"expiresAt": s.ExpiresAt,
			"isActive":  s.IsActive,
		})
	}
}

func checkStructure(w http.ResponseWriter, code string, structure []model.Question) bool {
	err := survey.CheckSchema(structure)
	if err == nil {
		return true
	}
	var serr *survey.SchemaError
	if errors.As(err, &serr) {
		httpx.LogInvalid(w, code, "Invalid survey structure", serr.Problems)
	} else {
		httpx.LogInternalError(w, code, err)
	}
	return false
}

type surveyListItem struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	IsActive      bool       `json:"isActive"`
	IsAnonymous   bool       `json:"isAnonymous"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	ResponseCount int        `json:"responseCount"`
	PublicURL     string     `json:"publicUrl"`
}

// ListSurveys lists the caller's surveys, or every survey for a superadmin.
func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())

		rows, err := app.QueryContext(r.Context(), `
			SELECT
				s.id, s.title, s.description, s.is_active, s.is_anonymous,
				s.expires_at, s.created_at, s.updated_at,
				(SELECT count(*) FROM response x WHERE x.survey_id = s.id)
			FROM survey s
			WHERE s.created_by = ? OR ?
			ORDER BY s.created_at DESC`,
			p.UserID, p.IsSuperAdmin(),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}
		defer rows.Close()

		surveys := []surveyListItem{}
		for rows.Next() {
			s := surveyListItem{}
			var expiresAt sql.NullTime
			err = rows.Scan(
				&s.ID, &s.Title, &s.Description, &s.IsActive, &s.IsAnonymous,
				&expiresAt, &s.CreatedAt, &s.UpdatedAt, &s.ResponseCount,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.get_surveys.scan", err)
				return
			}
			if expiresAt.Valid {
				s.ExpiresAt = &expiresAt.Time
			}
			s.PublicURL = app.SurveyLink(s.ID)

			surveys = append(surveys, s)
		}
		if err = rows.Err(); err != nil {
			httpx.LogInternalError(w, "db.get_surveys.rows", err)
			return
		}

		render.JSON(w, r, surveys)
	}
}

// ownedSurvey loads the survey named by the id URL parameter and checks the
// caller may manage it. On failure the response is already written.
func ownedSurvey(app app.App, w http.ResponseWriter, r *http.Request, code string) (model.Survey, bool) {
	p, _ := auth.PrincipalFrom(r.Context())
	surveyId := chi.URLParam(r, "id")

	s, err := findSurvey(r.Context(), app, surveyId)
	if errors.Is(err, errNotFound) {
		log.Audit(code+"_FAILED", log.Fields{"userId": p.UserID, "surveyId": surveyId, "reason": "Survey not found"})
		httpx.LogNotFound(w, code, surveyId, "Survey not found")
		return s, false
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_survey", err)
		return s, false
	}

	if s.CreatedBy != p.UserID && !p.IsSuperAdmin() {
		log.Audit(code+"_FAILED", log.Fields{"userId": p.UserID, "surveyId": surveyId, "reason": "Access denied"})
		httpx.LogStatusMsg(w, http.StatusForbidden, log.DebugLevel, code, "Access denied")
		return s, false
	}

	s.PublicURL = app.SurveyLink(s.ID)
	return s, true
}

func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := ownedSurvey(app, w, r, "GET_SURVEY")
		if !ok {
			return
		}
		render.JSON(w, r, s)
	}
}

// UpdateSurvey changes only the fields present in the body.
func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())

		s, ok := ownedSurvey(app, w, r, "UPDATE_SURVEY")
		if !ok {
			return
		}

		body := updateSurveyBody{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}
		err = validate.Struct(body)
		if err != nil {
			httpx.LogInvalid(w, "update_survey.validate", "Invalid survey", problems(err))
			return
		}

		if body.Title != nil {
			s.Title = *body.Title
		}
		if body.Description != nil {
			s.Description = *body.Description
		}
		if body.Structure != nil {
			if !checkStructure(w, "update_survey.structure", *body.Structure) {
				return
			}

			// structure is frozen once answers reference it
			var answered int
			err = app.QueryRowContext(r.Context(), `SELECT count(*) FROM response WHERE survey_id = ?`, s.ID).Scan(&answered)
			if err != nil {
				httpx.LogInternalError(w, "db.count_responses", err)
				return
			}
			if answered > 0 {
				log.Audit("UPDATE_SURVEY_FAILED", log.Fields{
					"userId":    p.UserID,
					"surveyId":  s.ID,
					"reason":    "Structure locked",
					"responses": answered,
				})
				httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "update_survey.structure_locked", "Survey structure cannot change once responses exist")
				return
			}
			s.Structure = *body.Structure
		}
		if body.ExpiresAt.Set {
			s.ExpiresAt = body.ExpiresAt.Time
		}
		if body.IsAnonymous != nil {
			s.IsAnonymous = *body.IsAnonymous
		}
		s.UpdatedAt = time.Now().UTC()

		structure, err := json.Marshal(s.Structure)
		if err != nil {
			httpx.LogInternalError(w, "update_survey.marshal_structure", err)
			return
		}

		_, err = app.ExecContext(r.Context(), `
			UPDATE survey
			SET
				title = ?,
				description = ?,
				structure = ?,
				expires_at = ?,
				is_anonymous = ?,
				updated_at = ?
			WHERE id = ?`,
			s.Title,
			s.Description,
			string(structure),
			s.ExpiresAt,
			s.IsAnonymous,
			s.UpdatedAt,
			s.ID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_survey", err)
			return
		}

		log.Audit("UPDATE_SURVEY", log.Fields{
			"userId":           p.UserID,
			"surveyId":         s.ID,
			"structureChanged": body.Structure != nil,
		})

		render.JSON(w, r, s)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())

		s, ok := ownedSurvey(app, w, r, "DELETE_SURVEY")
		if !ok {
			return
		}

		// responses go with it (ON DELETE CASCADE)
		_, err := app.ExecContext(r.Context(), `DELETE FROM survey WHERE id = ?`, s.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_survey", err)
			return
		}

		log.Audit("DELETE_SURVEY", log.Fields{"userId": p.UserID, "surveyId": s.ID})

		render.JSON(w, r, map[string]any{"message": "Survey deleted successfully"})
	}
}

// ToggleSurveyActive sets is_active from {"active": bool}, or flips it when
// the body is empty.
func ToggleSurveyActive(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())

		var body struct {
			Active *bool `json:"active"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil && !errors.Is(err, io.EOF) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}

		s, ok := ownedSurvey(app, w, r, "TOGGLE_SURVEY_ACTIVE")
		if !ok {
			return
		}

		active := !s.IsActive
		if body.Active != nil {
			active = *body.Active
		}

		_, err = app.ExecContext(r.Context(), `
			UPDATE survey SET is_active = ?, updated_at = ?
			WHERE id = ?`,
			active, time.Now().UTC(), s.ID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.toggle_survey", err)
			return
		}

		action := "DEACTIVATE_SURVEY"
		if active {
			action = "ACTIVATE_SURVEY"
		}
		log.Audit(action, log.Fields{"userId": p.UserID, "surveyId": s.ID})

		render.JSON(w, r, map[string]any{
			"id":       s.ID,
			"isActive": active,
		})
	}
}

// positiveQuery reads a positive integer query parameter, falling back to def.
func positiveQuery(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// GetSurveyResponses pages through the stored responses, newest first.
func GetSurveyResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := ownedSurvey(app, w, r, "GET_RESPONSES")
		if !ok {
			return
		}

		page := positiveQuery(r, "page", 1)
		limit := positiveQuery(r, "limit", 20)

		var total int
		err := app.QueryRowContext(r.Context(), `SELECT count(*) FROM response WHERE survey_id = ?`, s.ID).Scan(&total)
		if err != nil {
			httpx.LogInternalError(w, "db.count_responses", err)
			return
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT id, survey_id, data, ip, submitted_at
			FROM response
			WHERE survey_id = ?
			ORDER BY submitted_at DESC, id
			LIMIT ? OFFSET ?`,
			s.ID, limit, (page-1)*limit,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}
		defer rows.Close()

		responses := []model.AnswerRecord{}
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				httpx.LogInternalError(w, "db.get_responses.scan", err)
				return
			}
			responses = append(responses, rec)
		}
		if err = rows.Err(); err != nil {
			httpx.LogInternalError(w, "db.get_responses.rows", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveyId":  s.ID,
			"responses": responses,
			"pagination": map[string]any{
				"page":  page,
				"limit": limit,
				"total": total,
				"pages": int(math.Ceil(float64(total) / float64(limit))),
			},
		})
	}
}

type basicStats struct {
	TotalResponses int        `json:"totalResponses"`
	FirstResponse  *time.Time `json:"firstResponse"`
	LastResponse   *time.Time `json:"lastResponse"`
}

// GetSurveyStats aggregates every stored response of the survey.
func GetSurveyStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := ownedSurvey(app, w, r, "GET_STATS")
		if !ok {
			return
		}

		records, err := listRecords(r.Context(), app.DB, s.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}

		basic := basicStats{TotalResponses: len(records)}
		if n := len(records); n > 0 {
			basic.FirstResponse = &records[0].SubmittedAt
			basic.LastResponse = &records[n-1].SubmittedAt
		}

		start := time.Now()
		detailed := survey.Aggregate(s.Structure, records)
		metrics.ObserveAggregation(start)

		render.JSON(w, r, map[string]any{
			"surveyId":      s.ID,
			"basicStats":    basic,
			"detailedStats": detailed,
		})
	}
}
