package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudit(t *testing.T) {
	hook := test.NewLocal(Logger)
	defer hook.Reset()

	Audit("CREATE_SURVEY", Fields{"surveyId": "s1"})
	Audit("SUBMIT_SURVEY_FAILED", Fields{"reason": "Survey is not active"})

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, "CREATE_SURVEY", entries[0].Data["action"])
	assert.Equal(t, "s1", entries[0].Data["surveyId"])

	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, "Survey is not active", entries[1].Data["reason"])
}
