package survey

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/mbolis/survey-desk/model"
)

// Kind is the behaviour of one question type. The set of kinds is closed:
// the methods are unexported, so every variant lives in this file and must
// know both how to check an answer and how to summarize a set of answers.
type Kind interface {
	Type() model.QuestionType

	// check returns a failure message for an answered (non-empty) value,
	// or "" when the value conforms.
	check(label string, v any) string

	// summarize reports false when the question gets no stats entry.
	summarize(answers []any, records int) (Summary, bool)
}

type (
	Text     struct{ freeText }
	Textarea struct{ freeText }
	Email    struct{ freeText }
	Phone    struct{ freeText }
	Date     struct{ freeText }
	DateTime struct{ freeText }

	Radio    struct{ Options []model.Option }
	Select   struct{ Options []model.Option }
	Checkbox struct{ Options []model.Option }

	Scale struct {
		Min, Max, Step float64
	}

	// Unknown carries a type name this server does not recognise.
	Unknown struct{ Name model.QuestionType }
)

const (
	defaultScaleMin  = 1
	defaultScaleMax  = 5
	defaultScaleStep = 1
)

// KindOf resolves the question's declared type into its Kind.
func KindOf(q model.Question) Kind {
	switch q.Type {
	case model.TypeText:
		return Text{}
	case model.TypeTextarea:
		return Textarea{}
	case model.TypeEmail:
		return Email{}
	case model.TypePhone:
		return Phone{}
	case model.TypeDate:
		return Date{}
	case model.TypeDateTime:
		return DateTime{}
	case model.TypeRadio:
		return Radio{Options: q.Options}
	case model.TypeSelect:
		return Select{Options: q.Options}
	case model.TypeCheckbox:
		return Checkbox{Options: q.Options}
	case model.TypeScale:
		return Scale{
			Min:  orDefault(q.Min, defaultScaleMin),
			Max:  orDefault(q.Max, defaultScaleMax),
			Step: orDefault(q.Step, defaultScaleStep),
		}
	default:
		return Unknown{Name: q.Type}
	}
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func (Text) Type() model.QuestionType     { return model.TypeText }
func (Textarea) Type() model.QuestionType { return model.TypeTextarea }
func (Email) Type() model.QuestionType    { return model.TypeEmail }
func (Phone) Type() model.QuestionType    { return model.TypePhone }
func (Date) Type() model.QuestionType     { return model.TypeDate }
func (DateTime) Type() model.QuestionType { return model.TypeDateTime }
func (Radio) Type() model.QuestionType    { return model.TypeRadio }
func (Select) Type() model.QuestionType   { return model.TypeSelect }
func (Checkbox) Type() model.QuestionType { return model.TypeCheckbox }
func (Scale) Type() model.QuestionType    { return model.TypeScale }
func (k Unknown) Type() model.QuestionType {
	return k.Name
}

var (
	reEmail = regexp.MustCompile(`^[^\s\p{Z}\x{FEFF}@]+@[^\s\p{Z}\x{FEFF}@]+\.[^\s\p{Z}\x{FEFF}@]+$`)
	rePhone = regexp.MustCompile(`^\+?[0-9\s\-()]{7,15}$`)
	reDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// accepted on top of strfmt's date-time formats
var extraDateTimeLayouts = []string{
	strfmt.RFC3339FullDate,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC1123,
	time.RFC1123Z,
}

func (Text) check(label string, v any) string     { return checkString(label, v) }
func (Textarea) check(label string, v any) string { return checkString(label, v) }

func checkString(label string, v any) string {
	if _, ok := v.(string); !ok {
		return fmt.Sprintf("answer to %q must be text", label)
	}
	return ""
}

func (Email) check(label string, v any) string {
	if s, ok := v.(string); !ok || !reEmail.MatchString(s) {
		return fmt.Sprintf("answer to %q must be a valid email", label)
	}
	return ""
}

func (Phone) check(label string, v any) string {
	if s, ok := v.(string); !ok || !rePhone.MatchString(s) {
		return fmt.Sprintf("answer to %q must be a valid phone number", label)
	}
	return ""
}

func (Date) check(label string, v any) string {
	if s, ok := v.(string); !ok || !isDate(s) {
		return fmt.Sprintf("answer to %q must be a valid date (YYYY-MM-DD)", label)
	}
	return ""
}

func isDate(s string) bool {
	if !reDate.MatchString(s) {
		return false
	}
	_, err := time.Parse(strfmt.RFC3339FullDate, s)
	return err == nil
}

func (DateTime) check(label string, v any) string {
	if s, ok := v.(string); !ok || !isDateTime(s) {
		return fmt.Sprintf("answer to %q must be a valid date and time", label)
	}
	return ""
}

func isDateTime(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if _, err := strfmt.ParseDateTime(s); err == nil {
		return true
	}
	for _, layout := range extraDateTimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func (k Radio) check(label string, v any) string  { return checkSingle(label, k.Options, v) }
func (k Select) check(label string, v any) string { return checkSingle(label, k.Options, v) }

func checkSingle(label string, opts []model.Option, v any) string {
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("answer to %q must be a string (selected option id)", label)
	}
	if !hasOption(opts, s) {
		return fmt.Sprintf("answer to %q does not match any allowed option", label)
	}
	return ""
}

func (k Checkbox) check(label string, v any) string {
	list, ok := asList(v)
	if !ok {
		return fmt.Sprintf("answer to %q must be an array (selected options)", label)
	}
	for _, el := range list {
		s, ok := el.(string)
		if !ok || !hasOption(k.Options, s) {
			return fmt.Sprintf("some answers to %q do not match the allowed options", label)
		}
	}
	return ""
}

func (k Scale) check(label string, v any) string {
	n, ok := number(v)
	if !ok || math.IsInf(n, 0) || n != math.Trunc(n) {
		return fmt.Sprintf("answer to %q must be an integer", label)
	}
	if n < k.Min || n > k.Max {
		return fmt.Sprintf("answer to %q must be in range %s-%s", label, formatNumber(k.Min), formatNumber(k.Max))
	}
	return ""
}

func (k Unknown) check(string, any) string {
	return fmt.Sprintf("unknown question type: %s", k.Name)
}

func hasOption(opts []model.Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}

// asList accepts both decoded JSON arrays and string slices built in code.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
