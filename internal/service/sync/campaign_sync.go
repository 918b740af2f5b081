package sync

import (
	"context"

	"github.com/growthloop/outreach-sync/internal/delta"
	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/outreach"
	"github.com/growthloop/outreach-sync/internal/pkg/logger"
)

// syncCampaign runs the per-campaign pipeline: upsert, stats fetch, delta,
// persist, steps. The returned stage names where a failure happened so the
// caller can record it without aborting the run.
func (s *Service) syncCampaign(ctx context.Context, conn *domain.APIConnection, adapter outreach.Adapter, ref domain.CampaignRef) (string, error) {
	campaignID, _, err := s.campaigns.Upsert(ctx, &domain.Campaign{
		WorkspaceID:       conn.WorkspaceID,
		Provider:          conn.Provider,
		PlatformID:        ref.PlatformID,
		Name:              ref.Name,
		Status:            ref.Status,
		PlatformCreatedAt: ref.CreatedAt,
	})
	if err != nil {
		return "upsert", err
	}

	fresh, err := adapter.FetchStats(ctx, conn.APIKey, ref.PlatformID)
	if err != nil {
		return "stats", err
	}

	prior, err := s.stats.GetCumulative(ctx, campaignID)
	if err != nil {
		return "delta", err
	}
	res := delta.Compute(campaignID, prior, fresh, ref.CreatedAt, s.now())
	for _, name := range res.Regressed {
		logger.Warn("provider counter regressed",
			"provider", string(conn.Provider), "platform_id", ref.PlatformID, "metric", name)
	}
	if res.FirstSync {
		logger.Debug("campaign baselined",
			"provider", string(conn.Provider), "platform_id", ref.PlatformID, "sent", fresh.Sent)
	}

	if err := s.stats.UpsertCumulative(ctx, &res.Cumulative); err != nil {
		return "delta", err
	}
	if res.Daily != nil {
		if err := s.stats.AddDaily(ctx, res.Daily); err != nil {
			return "delta", err
		}
	}
	if err := s.campaigns.UpdateTotals(ctx, campaignID, fresh); err != nil {
		return "delta", err
	}

	steps, err := adapter.FetchSteps(ctx, conn.APIKey, ref.PlatformID)
	if err != nil {
		return "steps", err
	}
	if len(steps) > 0 {
		if err := s.steps.Replace(ctx, campaignID, steps); err != nil {
			return "steps", err
		}
	}
	return "", nil
}
