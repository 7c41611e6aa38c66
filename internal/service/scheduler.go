// internal/service/scheduler.go
package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/repository"
)

// Scheduler turns due campaigns into per-contact dispatches. Campaigns are
// processed sequentially, and contacts within a campaign sequentially with an
// enforced inter-send delay: deliberate backpressure against the provider's
// rate limits.
type Scheduler struct {
	Campaigns  repository.CampaignRepositoryInterface
	Templates  repository.TemplateRepositoryInterface
	Contacts   repository.ContactRepositoryInterface
	Clients    repository.ClientRepositoryInterface
	Dispatcher *Dispatcher

	SendDelay         time.Duration
	StuckSendingAfter time.Duration

	// Sleep overrides the inter-send wait in tests; nil means a context-aware
	// time.Sleep.
	Sleep func(ctx context.Context, d time.Duration)
}

type CampaignOutcome struct {
	CampaignID  int64
	Status      model.CampaignStatus
	SentCount   int
	FailedCount int
	Reason      string
}

func (s *Scheduler) delay(ctx context.Context, d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(ctx, d)
		return
	}
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// ProcessDueCampaigns picks up everything scheduled at or before now (UTC).
func (s *Scheduler) ProcessDueCampaigns(ctx context.Context, now time.Time) []CampaignOutcome {
	due, err := s.Campaigns.ListDue(now.UTC())
	if err != nil {
		log.WithError(err).Error("scheduler: failed to list due campaigns")
		return nil
	}

	outcomes := []CampaignOutcome{}
	for _, c := range due {
		if ctx.Err() != nil {
			break
		}
		outcome, err := s.ProcessCampaign(ctx, c.ID)
		if err != nil {
			log.WithError(err).WithField("campaign_id", c.ID).Error("scheduler: campaign processing error")
			continue
		}
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
	}
	return outcomes
}

// ProcessCampaign drives one campaign through intake, validation and the
// dispatch loop. A nil outcome with nil error means another pass won the
// intake race; that is expected, not an error.
func (s *Scheduler) ProcessCampaign(ctx context.Context, campaignID int64) (*CampaignOutcome, error) {
	claimed, err := s.Campaigns.MarkSending(campaignID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		log.WithField("campaign_id", campaignID).Debug("scheduler: campaign no longer scheduled, skipping")
		return nil, nil
	}

	campaign, err := s.Campaigns.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	fail := func(reason string) (*CampaignOutcome, error) {
		log.WithFields(log.Fields{"campaign_id": campaignID, "reason": reason}).Warn("scheduler: campaign failed")
		if _, err := s.Campaigns.MarkFailed(campaignID); err != nil {
			return nil, err
		}
		return &CampaignOutcome{CampaignID: campaignID, Status: model.CampaignStatusFailed, Reason: reason}, nil
	}

	client, err := s.Clients.GetByID(campaign.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || !client.Active {
		return fail("client missing or inactive")
	}
	if !client.HasCredentials() {
		return fail("missing provider credentials")
	}

	template, err := s.Templates.GetByID(campaign.TemplateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return fail("template not found")
	}

	contacts, err := s.Contacts.ListByGroup(campaign.GroupID)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return fail("no contacts")
	}

	placeholders := Placeholders(template.Header, template.Body, template.Footer)
	if err := ValidateMapping(placeholders, campaign.VariableMapping); err != nil {
		return fail(err.Error())
	}

	text := template.FullText()
	sent, failed := 0, 0
	for i, contact := range contacts {
		content := Render(text, campaign.VariableMapping, &contact)
		result, err := s.Dispatcher.Send(ctx, &campaign.ID, client, contact.Phone, content, template.MessageType, template.Name)
		if err != nil {
			// Bad contact data (e.g. empty phone) fails that contact only.
			log.WithError(err).WithFields(log.Fields{
				"campaign_id": campaignID,
				"contact_id":  contact.ID,
			}).Warn("scheduler: dispatch rejected")
			failed++
		} else if result.Sent {
			sent++
		} else {
			failed++
		}

		if i < len(contacts)-1 {
			s.delay(ctx, s.SendDelay)
		}
	}

	// Finalize derives the counter buckets from the message rows, not from
	// the loop tallies: receipts reconciled mid-loop already moved messages
	// out of `sent`, and those moves must survive.
	if err := s.Campaigns.FinalizeDispatch(campaignID); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"campaign_id": campaignID,
		"sent":        sent,
		"failed":      failed,
	}).Info("scheduler: campaign dispatched")

	return &CampaignOutcome{
		CampaignID:  campaignID,
		Status:      model.CampaignStatusSent,
		SentCount:   sent,
		FailedCount: failed,
	}, nil
}

// Run drives the ticker loop: one eager pass at start, then one per interval.
// Campaigns stuck in `sending` past the threshold are reported but never
// auto-resumed; re-triggering is an operator decision.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	s.ProcessDueCampaigns(ctx, time.Now().UTC())
	s.reportStuck()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.ProcessDueCampaigns(ctx, time.Now().UTC())
			s.reportStuck()
		case <-ctx.Done():
			log.Info("scheduler: stopped")
			return
		}
	}
}

func (s *Scheduler) reportStuck() {
	if s.StuckSendingAfter <= 0 {
		return
	}
	stuck, err := s.Campaigns.ListStuckSending(time.Now().UTC().Add(-s.StuckSendingAfter))
	if err != nil {
		log.WithError(err).Error("scheduler: failed to check stuck campaigns")
		return
	}
	for _, c := range stuck {
		log.WithFields(log.Fields{
			"campaign_id": c.ID,
			"name":        c.Name,
		}).Warn("scheduler: campaign stuck in sending, needs manual re-trigger")
	}
}
