package survey

import (
	"testing"

	"github.com/mbolis/survey-desk/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSchema_Valid(t *testing.T) {
	scale := question("s", model.TypeScale, true)
	scale.Min, scale.Max, scale.Step = ptr(0), ptr(10), ptr(2)

	err := CheckSchema([]model.Question{
		question("name", model.TypeText, true),
		question("color", model.TypeRadio, false, "red", "blue"),
		scale,
	})
	assert.NoError(t, err)
	assert.NoError(t, CheckSchema(nil))
}

func TestCheckSchema_Violations(t *testing.T) {
	inverted := question("s", model.TypeScale, false)
	inverted.Min, inverted.Max = ptr(5), ptr(1)

	flat := question("s", model.TypeScale, false)
	flat.Step = ptr(0)

	dupOpts := question("c", model.TypeCheckbox, false, "a", "a")

	cases := []struct {
		name      string
		questions []model.Question
		contains  string
	}{
		{"duplicate ids", []model.Question{question("q", model.TypeText, false), question("q", model.TypeEmail, false)}, "structure must have unique ids"},
		{"missing id", []model.Question{question("", model.TypeText, false)}, "structure[0].id is required"},
		{"missing label", []model.Question{{ID: "q", Type: model.TypeText}}, "structure[0].label is required"},
		{"choice without options", []model.Question{question("r", model.TypeSelect, false)}, "structure[0].options must not be empty"},
		{"duplicate option ids", []model.Question{dupOpts}, "structure[0].options must have unique ids"},
		{"inverted bounds", []model.Question{inverted}, "structure[0].min must not exceed max (1)"},
		{"zero step", []model.Question{flat}, "structure[0].step must be greater than 0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := CheckSchema(c.questions)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSchema))
			assert.Contains(t, err.Error(), c.contains)
		})
	}
}
