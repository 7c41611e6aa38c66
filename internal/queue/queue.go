package queue

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// TopicCampaignDispatch carries campaign ids from the send-now endpoint to
// whichever process runs the scheduler.
const TopicCampaignDispatch = "campaign_dispatch"

// Queue interface
type Queue interface {
	Publish(topic string, campaignID int64) error
	Subscribe(topic string, handler func(campaignID int64) error) error
}

// InMemoryQueue runs handlers in-process. Used in single-binary mode and in
// tests; the worker uses the AMQP queue instead.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(campaignID int64) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(campaignID int64) error),
	}
}

func (q *InMemoryQueue) Publish(topic string, campaignID int64) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		go func(h func(int64) error) {
			if err := h(campaignID); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"topic":       topic,
					"campaign_id": campaignID,
				}).Error("queue: handler failed")
			}
		}(handler)
	}
	return nil
}

func (q *InMemoryQueue) Subscribe(topic string, handler func(campaignID int64) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}
