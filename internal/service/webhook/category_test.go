package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/growthloop/outreach-sync/internal/domain"
)

func TestMapReplyCategoryFixedTable(t *testing.T) {
	tests := []struct {
		label     string
		category  domain.ReplyCategory
		sentiment domain.Sentiment
	}{
		{"Interested", domain.CategoryInterested, domain.SentimentPositive},
		{"Meeting Request", domain.CategoryMeetingRequest, domain.SentimentPositive},
		{"Meeting Booked", domain.CategoryMeetingRequest, domain.SentimentPositive},
		{"Positive", domain.CategoryInterested, domain.SentimentPositive},
		{"Not Interested", domain.CategoryNotInterested, domain.SentimentNegative},
		{"Out Of Office", domain.CategoryOutOfOffice, domain.SentimentNeutral},
		{"OOO", domain.CategoryOutOfOffice, domain.SentimentNeutral},
		{"Wrong Person", domain.CategoryReferral, domain.SentimentNeutral},
		{"Unsubscribed", domain.CategoryUnsubscribe, domain.SentimentNegative},
		{"Do Not Contact", domain.CategoryUnsubscribe, domain.SentimentNegative},
		{"Neutral", domain.CategoryNeutral, domain.SentimentNeutral},
		{"Question", domain.CategoryNeutral, domain.SentimentNeutral},
		{"Not Now", domain.CategoryNeutral, domain.SentimentNeutral},
		{"Bad Timing", domain.CategoryNeutral, domain.SentimentNeutral},
		{"Referral", domain.CategoryReferral, domain.SentimentPositive},
		{"Auto Reply", domain.CategoryNeutral, domain.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			category, sentiment := MapReplyCategory(tt.label)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.sentiment, sentiment)
		})
	}
}

// Every row in the fixed table must map to a non-empty pair regardless of
// casing or separator style.
func TestMapReplyCategoryTotality(t *testing.T) {
	for label := range categoryTable {
		category, sentiment := MapReplyCategory(label)
		assert.NotEmpty(t, category, "label %q", label)
		assert.NotEmpty(t, sentiment, "label %q", label)
	}
}

func TestMapReplyCategoryCaseAndSeparators(t *testing.T) {
	category, sentiment := MapReplyCategory("NOT_INTERESTED")
	assert.Equal(t, domain.CategoryNotInterested, category)
	assert.Equal(t, domain.SentimentNegative, sentiment)

	category, sentiment = MapReplyCategory("out-of-office")
	assert.Equal(t, domain.CategoryOutOfOffice, category)
	assert.Equal(t, domain.SentimentNeutral, sentiment)

	category, _ = MapReplyCategory("  Meeting   Request ")
	assert.Equal(t, domain.CategoryMeetingRequest, category)
}

// "Wrong Person" and "Referral" both map to the referral category but carry
// different sentiments; the upstream table is preserved as-is.
func TestMapReplyCategoryReferralSentimentSplit(t *testing.T) {
	_, wrongPerson := MapReplyCategory("Wrong Person")
	_, referral := MapReplyCategory("Referral")
	assert.Equal(t, domain.SentimentNeutral, wrongPerson)
	assert.Equal(t, domain.SentimentPositive, referral)
}

func TestMapReplyCategorySubstringInference(t *testing.T) {
	tests := []struct {
		label     string
		category  domain.ReplyCategory
		sentiment domain.Sentiment
	}{
		{"Very interested, tell me more", domain.CategoryInterested, domain.SentimentPositive},
		{"currently not interested, sorry", domain.CategoryNotInterested, domain.SentimentNegative},
		{"Meeting booked for Tuesday", domain.CategoryMeetingRequest, domain.SentimentPositive},
		{"On vacation until June", domain.CategoryOutOfOffice, domain.SentimentNeutral},
		{"please unsubscribe me", domain.CategoryUnsubscribe, domain.SentimentNegative},
		{"this is the wrong person to ask", domain.CategoryReferral, domain.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			category, sentiment := MapReplyCategory(tt.label)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.sentiment, sentiment)
		})
	}
}

func TestMapReplyCategoryUnknownFallsBackToNeutral(t *testing.T) {
	for _, label := range []string{"", "zzz", "Follow Up Later Maybe", "👍"} {
		category, sentiment := MapReplyCategory(label)
		assert.Equal(t, domain.CategoryNeutral, category, "label %q", label)
		assert.Equal(t, domain.SentimentNeutral, sentiment, "label %q", label)
	}
}
