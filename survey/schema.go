package survey

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mbolis/survey-desk/model"
	"github.com/pkg/errors"
)

var schemaValidate *validator.Validate

func init() {
	schemaValidate = validator.New()
	schemaValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	schemaValidate.RegisterStructValidation(questionRules, model.Question{})
}

type schemaDoc struct {
	Structure []model.Question `json:"structure" validate:"unique=ID,dive"`
}

// ErrInvalidSchema is matched by every *SchemaError.
var ErrInvalidSchema = errors.New("invalid survey structure")

// SchemaError lists every problem found in a structure.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return ErrInvalidSchema.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *SchemaError) Unwrap() error {
	return ErrInvalidSchema
}

// CheckSchema rejects structures that Validate and Aggregate cannot serve:
// missing or duplicate ids, missing labels, choice questions without
// options, duplicate option ids and inverted scale bounds.
func CheckSchema(questions []model.Question) error {
	err := schemaValidate.Struct(schemaDoc{Structure: questions})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "survey.check_schema")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return &SchemaError{Problems: msgs}
}

func questionRules(sl validator.StructLevel) {
	q := sl.Current().Interface().(model.Question)

	switch k := KindOf(q).(type) {
	case Radio, Select, Checkbox:
		if len(q.Options) == 0 {
			sl.ReportError(q.Options, "options", "Options", "options", "")
		}
	case Scale:
		if k.Min > k.Max {
			sl.ReportError(q.Min, "min", "Min", "lte_max", formatNumber(k.Max))
		}
		if k.Step <= 0 {
			sl.ReportError(q.Step, "step", "Step", "gt", "0")
		}
	}
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "schemaDoc.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "unique":
		return fmt.Sprintf("%s must have unique ids", field)
	case "options":
		return fmt.Sprintf("%s must not be empty for choice questions", field)
	case "lte_max":
		return fmt.Sprintf("%s must not exceed max (%s)", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
