// Package delta turns provider lifetime counters into daily activity rows.
//
// Providers expose running totals, not per-day activity. The engine diffs
// each fresh snapshot against the last persisted one and attributes the
// difference to the current date. The very first snapshot of a campaign
// instead becomes a single backfill row dated at the campaign's creation,
// so historical activity lands near where it happened rather than on the
// day the workspace connected.
package delta

import (
	"time"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// Result is the outcome of one campaign delta computation. Cumulative is
// always ready to persist. Daily is nil when the snapshot produced no
// recordable activity.
type Result struct {
	Cumulative domain.CampaignCumulative
	Daily      *domain.CampaignDailyMetric

	// FirstSync marks the snapshot that established the baseline.
	FirstSync bool

	// Regressed lists metrics whose fresh total came back lower than the
	// stored one. Providers do this after campaign edits or lead deletions.
	// The regressed totals still overwrite the stored ones so later deltas
	// diff against what the provider now reports.
	Regressed []string
}

// Compute diffs a fresh counter snapshot against the prior cumulative state.
// prior is nil on a campaign's first sync. createdAt dates the backfill row;
// when the provider omits it the row falls on today.
func Compute(campaignID string, prior *domain.CampaignCumulative, fresh domain.LifetimeCounters, createdAt *time.Time, now time.Time) Result {
	if prior == nil {
		return firstSync(campaignID, fresh, createdAt, now)
	}

	old := prior.Totals()
	sent := positiveDelta(fresh.Sent, old.Sent)
	opened := positiveDelta(fresh.Opened, old.Opened)
	clicked := positiveDelta(fresh.Clicked, old.Clicked)
	replied := positiveDelta(fresh.Replied, old.Replied)
	bounced := positiveDelta(fresh.Bounced, old.Bounced)

	res := Result{
		Cumulative: domain.CampaignCumulative{
			ID:         prior.ID,
			CampaignID: prior.CampaignID,

			TotalSent:       fresh.Sent,
			TotalOpened:     fresh.Opened,
			TotalClicked:    fresh.Clicked,
			TotalReplied:    fresh.Replied,
			TotalBounced:    fresh.Bounced,
			TotalInterested: fresh.Interested,

			BaselineSent:    prior.BaselineSent,
			BaselineOpened:  prior.BaselineOpened,
			BaselineClicked: prior.BaselineClicked,
			BaselineReplied: prior.BaselineReplied,
			BaselineBounced: prior.BaselineBounced,

			FirstSyncedAt: prior.FirstSyncedAt,
			LastSyncedAt:  now,
		},
		Regressed: regressions(fresh, old),
	}

	// Opens and replies can move without new sends, so any of the three
	// engagement signals opens a row for today. Click or bounce movement
	// alone does not; providers recount those too noisily to trust.
	if sent > 0 || opened > 0 || replied > 0 {
		res.Daily = &domain.CampaignDailyMetric{
			CampaignID:   campaignID,
			MetricDate:   domain.DateOnly(now),
			SentCount:    sent,
			OpenedCount:  opened,
			ClickedCount: clicked,
			RepliedCount: replied,
			BouncedCount: bounced,
		}
	}
	return res
}

func firstSync(campaignID string, fresh domain.LifetimeCounters, createdAt *time.Time, now time.Time) Result {
	res := Result{
		Cumulative: domain.CampaignCumulative{
			CampaignID: campaignID,

			TotalSent:       fresh.Sent,
			TotalOpened:     fresh.Opened,
			TotalClicked:    fresh.Clicked,
			TotalReplied:    fresh.Replied,
			TotalBounced:    fresh.Bounced,
			TotalInterested: fresh.Interested,

			BaselineSent:    fresh.Sent,
			BaselineOpened:  fresh.Opened,
			BaselineClicked: fresh.Clicked,
			BaselineReplied: fresh.Replied,
			BaselineBounced: fresh.Bounced,

			FirstSyncedAt: now,
			LastSyncedAt:  now,
		},
		FirstSync: true,
	}

	// A campaign that never sent anything has no history to backfill.
	if fresh.Sent <= 0 {
		return res
	}

	backfillDate := now
	if createdAt != nil {
		backfillDate = *createdAt
	}
	res.Daily = &domain.CampaignDailyMetric{
		CampaignID:   campaignID,
		MetricDate:   domain.DateOnly(backfillDate),
		SentCount:    fresh.Sent,
		OpenedCount:  fresh.Opened,
		ClickedCount: fresh.Clicked,
		RepliedCount: fresh.Replied,
		BouncedCount: fresh.Bounced,
	}
	return res
}

func positiveDelta(fresh, old int64) int64 {
	if fresh <= old {
		return 0
	}
	return fresh - old
}

func regressions(fresh, old domain.LifetimeCounters) []string {
	var names []string
	if fresh.Sent < old.Sent {
		names = append(names, "sent")
	}
	if fresh.Opened < old.Opened {
		names = append(names, "opened")
	}
	if fresh.Clicked < old.Clicked {
		names = append(names, "clicked")
	}
	if fresh.Replied < old.Replied {
		names = append(names, "replied")
	}
	if fresh.Bounced < old.Bounced {
		names = append(names, "bounced")
	}
	if fresh.Interested < old.Interested {
		names = append(names, "interested")
	}
	return names
}
