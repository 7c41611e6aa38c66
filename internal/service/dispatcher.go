// internal/service/dispatcher.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	apperrors "github.com/Tasknova/What-app-Nandlal-sub001/internal/errors"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/provider"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/repository"
)

// Dispatcher sends one message through the provider and owns the Message
// row's dispatch-time lifecycle.
type Dispatcher struct {
	Messages repository.MessageRepositoryInterface
	Sender   provider.Sender
}

type DispatchResult struct {
	MessageID int64
	Sent      bool
	Error     string
}

// Send inserts a pending Message row before the network call, so a crash
// mid-flight leaves a durable record instead of losing the attempt, then
// updates the row from the synchronous provider response. Provider-level
// rejections are results, not errors; errors mean caller misuse or missing
// configuration.
func (d *Dispatcher) Send(
	ctx context.Context,
	campaignID *int64,
	client *model.Client,
	phone, content string,
	messageType model.MessageType,
	templateName string,
) (*DispatchResult, error) {
	if phone == "" {
		return nil, fmt.Errorf("dispatch: recipient phone is required")
	}
	if content == "" {
		return nil, fmt.Errorf("dispatch: message content is required")
	}
	if client == nil || !client.HasCredentials() {
		return nil, apperrors.ErrMissingCredentials
	}
	if messageType == "" {
		messageType = model.MessageTypeText
	}

	msg := &model.Message{
		CampaignID:  campaignID,
		ClientRef:   uuid.NewString(),
		Phone:       phone,
		Content:     content,
		MessageType: messageType,
		Status:      model.MessageStatusPending,
	}
	if err := d.Messages.Create(msg); err != nil {
		return nil, fmt.Errorf("dispatch: create message: %w", err)
	}

	resp, err := d.Sender.Send(ctx, provider.SendRequest{
		APIKey:       client.APIKey,
		From:         client.WhatsAppNumber,
		To:           phone,
		Message:      content,
		MessageType:  messageType,
		TemplateName: templateName,
		ClientRef:    msg.ClientRef,
	})
	if err != nil {
		// Transport errors and timeouts are recorded, not dropped.
		reason := err.Error()
		if markErr := d.Messages.MarkFailed(msg.ID, reason); markErr != nil {
			log.WithError(markErr).WithField("message_id", msg.ID).Error("failed to record transport failure")
		}
		return &DispatchResult{MessageID: msg.ID, Sent: false, Error: reason}, nil
	}

	if !resp.OK() {
		reason := resp.Reason
		if reason == "" {
			reason = "provider rejected message"
		}
		if markErr := d.Messages.MarkFailed(msg.ID, reason); markErr != nil {
			log.WithError(markErr).WithField("message_id", msg.ID).Error("failed to record provider failure")
		}
		return &DispatchResult{MessageID: msg.ID, Sent: false, Error: reason}, nil
	}

	if err := d.Messages.MarkSent(msg.ID, resp.TransactionID, resp.MessageID, time.Now().UTC()); err != nil {
		log.WithError(err).WithField("message_id", msg.ID).Error("failed to record send success")
	}
	return &DispatchResult{MessageID: msg.ID, Sent: true}, nil
}
