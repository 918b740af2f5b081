package replyio

import (
	"strings"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// Counter synonym lists for GET /v1/campaigns, probed in order. Reply.io
// renamed its counter fields several times; the deliveries* generation is
// current, the people* and *Count generations still show up on older
// accounts.
var (
	sentKeys       = []string{"deliveriesCount", "peopleContacted", "contactedPeople", "sentCount", "peopleInSequence", "contactCount"}
	openedKeys     = []string{"opensCount", "peopleOpened", "openedCount", "openCount"}
	clickedKeys    = []string{"clicksCount", "peopleClicked", "clickedCount", "clickCount"}
	repliedKeys    = []string{"repliesCount", "peopleReplied", "repliedCount", "replyCount"}
	bouncedKeys    = []string{"bouncesCount", "peopleBounced", "bouncedCount", "bounceCount"}
	interestedKeys = []string{"interestedCount", "peopleInterested", "positiveRepliesCount"}
)

// mapStatus folds Reply.io sequence statuses onto the unified lifecycle.
// "New" is a sequence that was created but never launched, which matches
// our draft state. Anything unrecognized passes through lowercased so the
// raw value stays visible downstream instead of collapsing to unknown.
func mapStatus(s string) domain.CampaignStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return domain.CampaignActive
	case "paused":
		return domain.CampaignPaused
	case "stopped":
		return domain.CampaignStopped
	case "draft", "new":
		return domain.CampaignDraft
	case "archived":
		return domain.CampaignArchived
	default:
		return domain.CampaignStatus(strings.ToLower(strings.TrimSpace(s)))
	}
}
