// internal/service/campaign_service.go
package service

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/queue"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/repository"
)

// CampaignService is the operator-facing surface feeding the pipeline:
// create, list, inspect, preview and trigger campaigns.
type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	Queue        queue.Queue
}

type CampaignDetails struct {
	*model.Campaign
	Stats map[string]int `json:"stats"`
}

type CreateCampaignInput struct {
	ClientID        int64                 `json:"client_id"`
	Name            string                `json:"name"`
	TemplateID      int64                 `json:"template_id"`
	GroupID         int64                 `json:"group_id"`
	VariableMapping model.VariableMapping `json:"variable_mapping"`
	ScheduledFor    *string               `json:"scheduled_for"` // RFC3339, UTC
}

func (s *CampaignService) CreateCampaign(in CreateCampaignInput) (*model.Campaign, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("campaign name is required")
	}
	if in.ClientID == 0 || in.TemplateID == 0 || in.GroupID == 0 {
		return nil, fmt.Errorf("client_id, template_id and group_id are required")
	}

	template, err := s.TemplateRepo.GetByID(in.TemplateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("template %d not found", in.TemplateID)
	}

	c := &model.Campaign{
		ClientID:        in.ClientID,
		Name:            in.Name,
		TemplateID:      in.TemplateID,
		GroupID:         in.GroupID,
		VariableMapping: in.VariableMapping,
		Status:          model.CampaignStatusDraft,
	}
	if c.VariableMapping == nil {
		c.VariableMapping = model.VariableMapping{}
	}

	if in.ScheduledFor != nil && *in.ScheduledFor != "" {
		t, err := time.Parse(time.RFC3339, *in.ScheduledFor)
		if err != nil {
			return nil, fmt.Errorf("scheduled_for must be RFC3339: %w", err)
		}
		utc := t.UTC()
		c.ScheduledFor = &utc
		c.Status = model.CampaignStatusScheduled
	}

	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaigns fetches campaigns with pagination.
func (s *CampaignService) ListCampaigns(page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaignDetailsWithStats(id int64) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	stats, err := s.CampaignRepo.GetMessageStats(id)
	if err != nil {
		return nil, err
	}

	return &CampaignDetails{Campaign: campaign, Stats: stats}, nil
}

// SendNow flips a draft/scheduled campaign to scheduled-for-now and publishes
// its id for immediate pickup. The dispatch subscriber and the ticker share
// the same intake CAS, so a duplicate delivery cannot double-send.
func (s *CampaignService) SendNow(id int64) error {
	campaign, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return err
	}

	ok, err := s.CampaignRepo.Reschedule(id, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("campaign cannot be sent in status: %s", campaign.Status)
	}

	if s.Queue != nil {
		if err := s.Queue.Publish(queue.TopicCampaignDispatch, id); err != nil {
			// The ticker will still pick the campaign up on its next pass.
			log.WithError(err).WithField("campaign_id", id).Warn("failed to enqueue campaign, ticker will pick it up")
		}
	}
	return nil
}

// RenderPreview renders the campaign template for a single contact, useful
// for the operator UI before committing a send.
func (s *CampaignService) RenderPreview(campaignID, contactID int64, overrideBody *string) (string, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return "", err
	}

	template, err := s.TemplateRepo.GetByID(campaign.TemplateID)
	if err != nil {
		return "", err
	}
	if template == nil {
		return "", fmt.Errorf("template not found")
	}

	contact, err := s.ContactRepo.GetByID(contactID)
	if err != nil {
		return "", err
	}
	if contact == nil {
		return "", fmt.Errorf("contact not found")
	}

	text := template.FullText()
	if overrideBody != nil && *overrideBody != "" {
		text = *overrideBody
	}

	if err := ValidateMapping(Placeholders(text), campaign.VariableMapping); err != nil {
		return "", err
	}

	return Render(text, campaign.VariableMapping, contact), nil
}
