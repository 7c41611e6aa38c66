// internal/service/subscriber.go
package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/queue"
)

// StartDispatchSubscriber funnels queued campaign ids through the scheduler's
// intake. Because intake is a compare-and-set on `scheduled`, a job for a
// campaign the ticker already claimed is a silent no-op.
func StartDispatchSubscriber(q queue.Queue, s *Scheduler) {
	err := q.Subscribe(queue.TopicCampaignDispatch, func(campaignID int64) error {
		log.WithField("campaign_id", campaignID).Info("📩 processing queued campaign")
		_, err := s.ProcessCampaign(context.Background(), campaignID)
		return err
	})
	if err != nil {
		log.WithError(err).Error("failed to subscribe to campaign dispatch topic")
	}
}
