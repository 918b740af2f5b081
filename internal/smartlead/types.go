package smartlead

import "encoding/json"

// campaignRecord is one entry of GET /campaigns. IDs arrive as JSON numbers
// but older accounts have string IDs, so json.Number covers both.
type campaignRecord struct {
	ID        json.Number `json:"id"`
	Name      string      `json:"name"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
}

// leadRecord is the match object of GET /leads.
type leadRecord struct {
	ID        json.Number `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Campaigns []struct {
		CampaignID   json.Number `json:"campaign_id"`
		CampaignName string      `json:"campaign_name"`
	} `json:"campaign_leads"`
}

// historyEntry is one message of GET /campaigns/{id}/leads/{id}/message-history.
type historyEntry struct {
	Type      string `json:"type"`
	Time      string `json:"time"`
	Subject   string `json:"subject"`
	EmailBody string `json:"email_body"`
}

type historyResponse struct {
	History []historyEntry `json:"history"`
}

// Counter synonym lists for GET /campaigns/{id}/analytics, probed in order.
// The first present field wins; absent metrics count as zero.
var (
	sentKeys       = []string{"sent_count", "unique_sent_count"}
	openedKeys     = []string{"unique_open_count", "open_count"}
	clickedKeys    = []string{"unique_click_count", "click_count"}
	repliedKeys    = []string{"reply_count", "unique_reply_count"}
	bouncedKeys    = []string{"bounce_count", "unique_bounce_count"}
	interestedKeys = []string{"campaign_lead_stats.interested", "interested_count"}
)
