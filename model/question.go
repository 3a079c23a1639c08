package model

type QuestionType string

const (
	TypeText     QuestionType = "text"
	TypeTextarea QuestionType = "textarea"
	TypeRadio    QuestionType = "radio"
	TypeSelect   QuestionType = "select"
	TypeCheckbox QuestionType = "checkbox"
	TypeEmail    QuestionType = "email"
	TypePhone    QuestionType = "phone"
	TypeDate     QuestionType = "date"
	TypeDateTime QuestionType = "datetime"
	TypeScale    QuestionType = "scale"
)

// Question is one item of a survey schema. Options is only meaningful for
// radio/select/checkbox; Min, Max and Step only for scale.
type Question struct {
	ID          string       `json:"id" validate:"required"`
	Type        QuestionType `json:"type" validate:"required"`
	Label       string       `json:"label" validate:"required"`
	Description string       `json:"description,omitempty"`
	Required    bool         `json:"required"`
	Options     []Option     `json:"options,omitempty" validate:"omitempty,unique=ID,dive"`
	Min         *float64     `json:"min,omitempty"`
	Max         *float64     `json:"max,omitempty"`
	Step        *float64     `json:"step,omitempty"`
}

type Option struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label"`
}
