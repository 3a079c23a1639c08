package survey

import (
	json "github.com/goccy/go-json"
	"github.com/mbolis/survey-desk/model"
)

// QuestionStats is the aggregate for one question. It marshals as a flat
// object: questionLabel and type next to the fields of Summary.
type QuestionStats struct {
	QuestionLabel string
	Type          model.QuestionType
	Summary       Summary
}

// Summary is one of ChoiceSummary, ScaleSummary, FillSummary, CountSummary.
type Summary interface {
	summary()
}

type ChoiceSummary struct {
	Options      []OptionCount `json:"options"`
	TotalAnswers int           `json:"totalAnswers"`
}

type OptionCount struct {
	OptionID   string  `json:"optionId"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ScaleSummary struct {
	Average      float64 `json:"average"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	TotalAnswers int     `json:"totalAnswers"`
}

// FillSummary describes free-text kinds; FilledPercentage is relative to
// the number of records, not to the number of answers.
type FillSummary struct {
	TotalAnswers     int     `json:"totalAnswers"`
	FilledPercentage float64 `json:"filledPercentage"`
}

type CountSummary struct {
	TotalAnswers int `json:"totalAnswers"`
}

func (ChoiceSummary) summary() {}
func (ScaleSummary) summary()  {}
func (FillSummary) summary()   {}
func (CountSummary) summary()  {}

func (s QuestionStats) MarshalJSON() ([]byte, error) {
	head, err := json.Marshal(struct {
		QuestionLabel string             `json:"questionLabel"`
		Type          model.QuestionType `json:"type"`
	}{s.QuestionLabel, s.Type})
	if err != nil || s.Summary == nil {
		return head, err
	}

	body, err := json.Marshal(s.Summary)
	if err != nil {
		return nil, err
	}
	if len(body) <= 2 {
		return head, nil
	}

	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	return append(out, body[1:]...), nil
}
