package webhook

import (
	"strings"

	"github.com/growthloop/outreach-sync/internal/domain"
)

type categoryMapping struct {
	Category  domain.ReplyCategory
	Sentiment domain.Sentiment
}

// categoryTable is the fixed translation from provider reply labels to our
// canonical (category, sentiment) pairs. Lookups are case-insensitive with
// dashes and underscores treated as spaces.
//
// "Wrong Person" yields a neutral referral while a bare "Referral" is
// positive. Both rows come from the upstream classification table, which
// disagrees with itself here; we preserve both rather than pick a side.
var categoryTable = map[string]categoryMapping{
	"interested":      {domain.CategoryInterested, domain.SentimentPositive},
	"meeting request": {domain.CategoryMeetingRequest, domain.SentimentPositive},
	"meeting booked":  {domain.CategoryMeetingRequest, domain.SentimentPositive},
	"positive":        {domain.CategoryInterested, domain.SentimentPositive},

	"not interested": {domain.CategoryNotInterested, domain.SentimentNegative},

	"out of office": {domain.CategoryOutOfOffice, domain.SentimentNeutral},
	"ooo":           {domain.CategoryOutOfOffice, domain.SentimentNeutral},

	"wrong person": {domain.CategoryReferral, domain.SentimentNeutral},
	"referral":     {domain.CategoryReferral, domain.SentimentPositive},

	"unsubscribed":   {domain.CategoryUnsubscribe, domain.SentimentNegative},
	"do not contact": {domain.CategoryUnsubscribe, domain.SentimentNegative},

	"neutral":    {domain.CategoryNeutral, domain.SentimentNeutral},
	"question":   {domain.CategoryNeutral, domain.SentimentNeutral},
	"not now":    {domain.CategoryNeutral, domain.SentimentNeutral},
	"bad timing": {domain.CategoryNeutral, domain.SentimentNeutral},
	"auto reply": {domain.CategoryNeutral, domain.SentimentNeutral},
}

// categoryHints drives the fallback for labels absent from the fixed table:
// the first substring hit wins, so narrower phrases must precede the terms
// they contain ("not interested" before "interested").
var categoryHints = []struct {
	substr  string
	mapping categoryMapping
}{
	{"not interested", categoryMapping{domain.CategoryNotInterested, domain.SentimentNegative}},
	{"interested", categoryMapping{domain.CategoryInterested, domain.SentimentPositive}},
	{"meeting", categoryMapping{domain.CategoryMeetingRequest, domain.SentimentPositive}},
	{"out of office", categoryMapping{domain.CategoryOutOfOffice, domain.SentimentNeutral}},
	{"vacation", categoryMapping{domain.CategoryOutOfOffice, domain.SentimentNeutral}},
	{"wrong person", categoryMapping{domain.CategoryReferral, domain.SentimentNeutral}},
	{"referral", categoryMapping{domain.CategoryReferral, domain.SentimentPositive}},
	{"unsubscribe", categoryMapping{domain.CategoryUnsubscribe, domain.SentimentNegative}},
	{"do not contact", categoryMapping{domain.CategoryUnsubscribe, domain.SentimentNegative}},
	{"auto reply", categoryMapping{domain.CategoryNeutral, domain.SentimentNeutral}},
	{"positive", categoryMapping{domain.CategoryInterested, domain.SentimentPositive}},
}

// MapReplyCategory translates a provider reply label into the canonical
// (category, sentiment) pair. Unknown labels fall back to substring
// inference; labels nothing matches map to (neutral, neutral).
func MapReplyCategory(label string) (domain.ReplyCategory, domain.Sentiment) {
	norm := normalizeLabel(label)
	if norm == "" {
		return domain.CategoryNeutral, domain.SentimentNeutral
	}
	if m, ok := categoryTable[norm]; ok {
		return m.Category, m.Sentiment
	}
	for _, h := range categoryHints {
		if strings.Contains(norm, h.substr) {
			return h.mapping.Category, h.mapping.Sentiment
		}
	}
	return domain.CategoryNeutral, domain.SentimentNeutral
}

func normalizeLabel(label string) string {
	norm := strings.ToLower(strings.TrimSpace(label))
	norm = strings.ReplaceAll(norm, "-", " ")
	norm = strings.ReplaceAll(norm, "_", " ")
	return strings.Join(strings.Fields(norm), " ")
}
