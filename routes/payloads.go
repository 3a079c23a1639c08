package routes

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/model"
	"github.com/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return auth.StrongPassword(fl.Field().String())
	})
	return v
}

// problems turns a validator error into client messages.
func problems(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "password":
			msgs = append(msgs, auth.PasswordPolicy)
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return msgs
}

// optionalTime tells an absent field from an explicit null.
type optionalTime struct {
	Set  bool
	Time *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		o.Time = nil
		return nil
	}
	t, err := expiry(*s)
	if err != nil {
		return err
	}
	o.Time = t
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	dt, err := strfmt.ParseDateTime(s)
	if err == nil {
		return time.Time(dt), nil
	}
	return time.Parse(strfmt.RFC3339FullDate, s)
}

type createSurveyBody struct {
	Title       string           `json:"title" validate:"required,max=255"`
	Description string           `json:"description" validate:"max=5000"`
	Structure   []model.Question `json:"structure" validate:"required"`
	ExpiresAt   optionalTime     `json:"expiresAt"`
	IsAnonymous bool             `json:"isAnonymous"`
}

type updateSurveyBody struct {
	Title       *string           `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string           `json:"description" validate:"omitnil,max=5000"`
	Structure   *[]model.Question `json:"structure"`
	ExpiresAt   optionalTime      `json:"expiresAt"`
	IsAnonymous *bool             `json:"isAnonymous"`
}

type loginBody struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordBody struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,password"`
}

type createUserBody struct {
	Login    string     `json:"login" validate:"required,max=100"`
	Password string     `json:"password" validate:"required,password"`
	Role     model.Role `json:"role" validate:"required,oneof=admin superadmin"`
}

type updateUserBody struct {
	Role model.Role `json:"role" validate:"omitempty,oneof=admin superadmin"`
}
