package survey

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/mbolis/survey-desk/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(data ...map[string]any) []model.AnswerRecord {
	out := make([]model.AnswerRecord, len(data))
	for i, d := range data {
		out[i] = model.AnswerRecord{SurveyID: "s1", Data: d}
	}
	return out
}

func TestAggregate_NoRecords(t *testing.T) {
	schema := []model.Question{
		question("q1", model.TypeRadio, true, "a"),
		question("q2", model.TypeText, false),
	}
	assert.Empty(t, Aggregate(schema, nil))
	assert.Empty(t, Aggregate(schema, []model.AnswerRecord{}))
}

func TestAggregate_Radio(t *testing.T) {
	q := model.Question{ID: "q1", Type: model.TypeRadio, Label: "Agree?", Options: []model.Option{
		{ID: "opt1", Label: "Yes"},
		{ID: "opt2", Label: "No"},
	}}
	stats := Aggregate([]model.Question{q}, records(
		map[string]any{"q1": "opt1"},
		map[string]any{"q1": "opt1"},
		map[string]any{"q1": "opt2"},
	))

	require.Contains(t, stats, "q1")
	assert.Equal(t, "Agree?", stats["q1"].QuestionLabel)
	assert.Equal(t, ChoiceSummary{
		Options: []OptionCount{
			{OptionID: "opt1", Label: "Yes", Count: 2, Percentage: 66.67},
			{OptionID: "opt2", Label: "No", Count: 1, Percentage: 33.33},
		},
		TotalAnswers: 3,
	}, stats["q1"].Summary)
}

func TestAggregate_ChoiceSeedsZeroAndIgnoresStrays(t *testing.T) {
	schema := []model.Question{question("q", model.TypeSelect, false, "a", "b", "c")}
	stats := Aggregate(schema, records(
		map[string]any{"q": "a"},
		map[string]any{"q": "zzz"},
		map[string]any{"other": "x"},
	))

	sum := stats["q"].Summary.(ChoiceSummary)
	assert.Equal(t, 2, sum.TotalAnswers)
	assert.Equal(t, []int{1, 0, 0}, counts(sum))
	assert.Equal(t, 50.0, sum.Options[0].Percentage)
	assert.Equal(t, 0.0, sum.Options[1].Percentage)
}

func TestAggregate_ChoiceNoAnswers(t *testing.T) {
	schema := []model.Question{question("q", model.TypeRadio, false, "a")}
	stats := Aggregate(schema, records(map[string]any{}))

	sum := stats["q"].Summary.(ChoiceSummary)
	assert.Equal(t, 0, sum.TotalAnswers)
	assert.Equal(t, 0.0, sum.Options[0].Percentage)
}

func TestAggregate_Checkbox(t *testing.T) {
	schema := []model.Question{question("c", model.TypeCheckbox, false, "a", "b")}
	stats := Aggregate(schema, records(
		map[string]any{"c": []any{"a", "b"}},
		map[string]any{"c": []any{"a"}},
		map[string]any{"c": []any{"a", "nope"}},
		map[string]any{"c": []any{}},
	))

	sum := stats["c"].Summary.(ChoiceSummary)
	assert.Equal(t, 4, sum.TotalAnswers)
	assert.Equal(t, []int{3, 1}, counts(sum))
	assert.Equal(t, 75.0, sum.Options[0].Percentage)
	assert.Equal(t, 25.0, sum.Options[1].Percentage)
}

func TestAggregate_Scale(t *testing.T) {
	schema := []model.Question{question("q2", model.TypeScale, true)}
	stats := Aggregate(schema, records(
		map[string]any{"q2": float64(2)},
		map[string]any{"q2": float64(4)},
		map[string]any{"q2": float64(4)},
		map[string]any{"q2": "5"},
	))

	assert.Equal(t, ScaleSummary{Average: 3.33, Min: 2, Max: 4, TotalAnswers: 3}, stats["q2"].Summary)
}

func TestAggregate_ScaleSkipsInfinities(t *testing.T) {
	schema := []model.Question{question("s", model.TypeScale, false)}
	stats := Aggregate(schema, records(
		map[string]any{"s": math.Inf(1)},
		map[string]any{"s": float64(3)},
		map[string]any{"s": math.Inf(-1)},
	))

	assert.Equal(t, ScaleSummary{Average: 3, Min: 3, Max: 3, TotalAnswers: 1}, stats["s"].Summary)

	_, err := json.Marshal(stats)
	assert.NoError(t, err)
}

func TestAggregate_ScaleWithoutNumbersIsOmitted(t *testing.T) {
	schema := []model.Question{
		question("s", model.TypeScale, false),
		question("t", model.TypeText, false),
	}
	stats := Aggregate(schema, records(map[string]any{"s": "high", "t": "x"}))

	assert.NotContains(t, stats, "s")
	assert.Contains(t, stats, "t")
}

func TestAggregate_FreeText(t *testing.T) {
	schema := []model.Question{
		question("name", model.TypeText, false),
		question("mail", model.TypeEmail, false),
	}
	stats := Aggregate(schema, records(
		map[string]any{"name": "Ann", "mail": "a@b.co"},
		map[string]any{"name": "Bob"},
		map[string]any{"name": "Cid"},
	))

	assert.Equal(t, FillSummary{TotalAnswers: 3, FilledPercentage: 100}, stats["name"].Summary)
	assert.Equal(t, FillSummary{TotalAnswers: 1, FilledPercentage: 33.33}, stats["mail"].Summary)
}

func TestAggregate_UnknownType(t *testing.T) {
	schema := []model.Question{question("x", "matrix", false)}
	stats := Aggregate(schema, records(map[string]any{"x": 1}, map[string]any{}))

	assert.Equal(t, CountSummary{TotalAnswers: 1}, stats["x"].Summary)
}

func TestPercent_ZeroWhole(t *testing.T) {
	assert.Equal(t, 0.0, percent(0, 0))
	assert.Equal(t, 0.0, percent(3, 0))
}

func TestQuestionStats_MarshalJSON(t *testing.T) {
	schema := []model.Question{
		{ID: "q1", Type: model.TypeRadio, Label: "Pick", Options: []model.Option{{ID: "a", Label: "A"}}},
		{ID: "q2", Type: model.TypeScale, Label: "Rate"},
		{ID: "q3", Type: model.TypeTextarea, Label: "Why"},
	}
	stats := Aggregate(schema, records(map[string]any{"q1": "a", "q2": float64(5), "q3": "because"}))

	raw, err := json.Marshal(stats)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "Pick", decoded["q1"]["questionLabel"])
	assert.Equal(t, "radio", decoded["q1"]["type"])
	assert.Equal(t, float64(1), decoded["q1"]["totalAnswers"])
	assert.Equal(t, []any{map[string]any{
		"optionId": "a", "label": "A", "count": float64(1), "percentage": float64(100),
	}}, decoded["q1"]["options"])

	assert.Equal(t, float64(5), decoded["q2"]["average"])
	assert.Equal(t, float64(5), decoded["q2"]["min"])
	assert.Equal(t, float64(5), decoded["q2"]["max"])

	assert.Equal(t, "textarea", decoded["q3"]["type"])
	assert.Equal(t, float64(100), decoded["q3"]["filledPercentage"])
}

func counts(s ChoiceSummary) []int {
	out := make([]int, len(s.Options))
	for i, o := range s.Options {
		out[i] = o.Count
	}
	return out
}
