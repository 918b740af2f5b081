package replyio

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/outreach"
)

// stepContainers are the envelopes GET /sequences/{id}/steps has shipped
// with, probed in order when the payload is not a bare array.
var stepContainers = []string{"steps", "emails", "items", "sequence.emails"}

// templateContainers are the places a step keeps its email templates. When
// neither is present the step object itself carries the content.
var templateContainers = []string{"templates", "emails"}

// extractSteps normalizes a steps payload of any known shape. Steps whose
// type marks them as calls, tasks, or LinkedIn touches are dropped; only
// email content feeds sequence analysis.
func extractSteps(body []byte) []domain.SequenceStep {
	items := stepItems(body)
	if len(items) == 0 {
		return nil
	}

	steps := make([]domain.SequenceStep, 0, len(items))
	for i, item := range items {
		if !isEmailStep(firstResultString(item, "type", "stepType")) {
			continue
		}

		number := int64(i + 1)
		if n, ok := outreach.FirstNumber([]byte(item.Raw), "number", "stepNumber", "step", "order"); ok {
			number = n
		}

		subject, bodyText := stepContent(item)
		delay, _ := outreach.FirstNumber([]byte(item.Raw), "delayInDays", "delay_days", "delay", "waitDays")

		steps = append(steps, domain.SequenceStep{
			StepNumber:  int(number),
			Name:        firstResultString(item, "name", "title"),
			Subject:     subject,
			Body:        bodyText,
			BodyPreview: outreach.BodyPreview(bodyText, outreach.PreviewLength),
			DelayDays:   int(delay),
			Variables:   outreach.ExtractVariables(subject, bodyText),
		})
	}
	return steps
}

// stepItems unwraps the step array from whichever envelope the payload uses.
func stepItems(body []byte) []gjson.Result {
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return root.Array()
	}
	for _, key := range stepContainers {
		if list := root.Get(key); list.IsArray() {
			return list.Array()
		}
	}
	return nil
}

// stepContent pulls subject and body from the step's first template with
// content, falling back to the step object itself.
func stepContent(step gjson.Result) (subject, body string) {
	for _, key := range templateContainers {
		list := step.Get(key)
		if !list.IsArray() {
			continue
		}
		for _, tmpl := range list.Array() {
			subject, body = templateContent(tmpl)
			if subject != "" || body != "" {
				return subject, body
			}
		}
	}
	return templateContent(step)
}

func templateContent(tmpl gjson.Result) (subject, body string) {
	subject = firstResultString(tmpl, "subject", "emailSubject", "title")
	body = firstResultString(tmpl, "body", "emailBody", "html", "content", "text")
	return subject, body
}

// isEmailStep reports whether a step type label carries email content. An
// absent type is treated as email; old payloads never set one.
func isEmailStep(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "email", "e-mail", "manual_email":
		return true
	}
	return false
}
