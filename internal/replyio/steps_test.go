package replyio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSteps = `[
	{"number": 1, "type": "email", "subject": "Intro {{first_name}}", "body": "<p>Hi {{first_name}}</p>", "delayInDays": 0},
	{"number": 2, "type": "email", "subject": "Bump", "body": "<p>Thoughts?</p>", "delayInDays": 4}
]`

func TestExtractStepsEnvelopes(t *testing.T) {
	payloads := map[string]string{
		"bare array":      twoSteps,
		"steps":           fmt.Sprintf(`{"steps": %s}`, twoSteps),
		"emails":          fmt.Sprintf(`{"emails": %s}`, twoSteps),
		"items":           fmt.Sprintf(`{"items": %s}`, twoSteps),
		"sequence.emails": fmt.Sprintf(`{"sequence": {"emails": %s}}`, twoSteps),
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			steps := extractSteps([]byte(payload))
			require.Len(t, steps, 2)
			assert.Equal(t, 1, steps[0].StepNumber)
			assert.Equal(t, "Intro {{first_name}}", steps[0].Subject)
			assert.Equal(t, []string{"first_name"}, steps[0].Variables)
			assert.Equal(t, 2, steps[1].StepNumber)
			assert.Equal(t, 4, steps[1].DelayDays)
		})
	}
}

func TestExtractStepsTypeFilter(t *testing.T) {
	payload := `[
		{"type": "email", "subject": "Keep 1", "body": "a"},
		{"type": "E-Mail", "subject": "Keep 2", "body": "b"},
		{"type": "MANUAL_EMAIL", "subject": "Keep 3", "body": "c"},
		{"subject": "Keep 4", "body": "d"},
		{"type": "call", "subject": "Drop", "body": "e"},
		{"type": "linkedin_message", "subject": "Drop", "body": "f"}
	]`

	steps := extractSteps([]byte(payload))
	require.Len(t, steps, 4)
	for i, step := range steps {
		assert.Equal(t, fmt.Sprintf("Keep %d", i+1), step.Subject)
	}
}

func TestExtractStepsTemplates(t *testing.T) {
	payload := `{"steps": [
		{
			"number": 1,
			"templates": [
				{"subject": "", "body": ""},
				{"emailSubject": "From template", "emailBody": "<p>Variant body {{company}}</p>"}
			]
		},
		{
			"number": 2,
			"emails": [{"title": "From emails", "content": "Plain content"}]
		},
		{
			"number": 3,
			"subject": "On the step",
			"body": "Step body"
		}
	]}`

	steps := extractSteps([]byte(payload))
	require.Len(t, steps, 3)

	assert.Equal(t, "From template", steps[0].Subject)
	assert.Equal(t, "Variant body {{company}}", steps[0].BodyPreview)
	assert.Equal(t, []string{"company"}, steps[0].Variables)

	assert.Equal(t, "From emails", steps[1].Subject)
	assert.Equal(t, "Plain content", steps[1].Body)

	assert.Equal(t, "On the step", steps[2].Subject)
	assert.Equal(t, "Step body", steps[2].Body)
}

func TestExtractStepsPositionalNumbering(t *testing.T) {
	payload := `[
		{"subject": "First", "body": "a"},
		{"subject": "Second", "body": "b", "delay": 2}
	]`

	steps := extractSteps([]byte(payload))
	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[0].StepNumber)
	assert.Equal(t, 2, steps[1].StepNumber)
	assert.Equal(t, 2, steps[1].DelayDays)
}

func TestExtractStepsUnrecognizedPayload(t *testing.T) {
	assert.Nil(t, extractSteps([]byte(`{"message": "no steps here"}`)))
	assert.Nil(t, extractSteps([]byte(``)))
}
