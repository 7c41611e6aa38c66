// internal/service/reconciler.go
package service

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/repository"
)

// Receipt is one provider delivery callback, already pulled out of the HTTP
// body. Mobile and Status are required; everything else is best-effort.
type Receipt struct {
	Mobile            string
	Status            string
	TransactionID     string
	ProviderMessageID string
	ClientRef         string
	Reason            string
	RawPayload        string
}

const (
	OutcomeUpdated  = "updated"
	OutcomeIgnored  = "ignored"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
)

type ReceiptOutcome struct {
	Outcome   string              `json:"outcome"`
	MessageID int64               `json:"message_id,omitempty"`
	From      model.MessageStatus `json:"from,omitempty"`
	To        model.MessageStatus `json:"to,omitempty"`
}

// MapProviderStatus normalizes the provider's status string. Anything
// unrecognized maps to unknown with the raw string preserved by the caller.
func MapProviderStatus(s string) model.MessageStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delivered", "success":
		return model.MessageStatusDelivered
	case "failed", "error":
		return model.MessageStatusFailed
	case "sent":
		return model.MessageStatusSent
	case "pending", "queued":
		return model.MessageStatusPending
	default:
		return model.MessageStatusUnknown
	}
}

// Reconciler folds asynchronous delivery receipts back into Message rows and
// campaign counters. Safe under concurrent invocation; races on a single
// message serialize inside MessageRepository.ApplyStatus.
type Reconciler struct {
	Messages  repository.MessageRepositoryInterface
	Campaigns repository.CampaignRepositoryInterface
	Receipts  repository.ReceiptLogRepositoryInterface
}

// HandleReceipt processes one callback. Providers deliver at least once, so
// duplicates and out-of-order receipts are normal input: a message already in
// a terminal state is never regressed, and campaign counters move only on the
// first transition into a terminal bucket.
func (r *Reconciler) HandleReceipt(ctx context.Context, rec Receipt) ReceiptOutcome {
	outcome := ReceiptOutcome{Outcome: OutcomeInvalid}
	mapped := MapProviderStatus(rec.Status)

	defer func() {
		r.audit(rec, mapped, outcome)
	}()

	if rec.Mobile == "" || strings.TrimSpace(rec.Status) == "" {
		return outcome
	}

	msg, err := r.lookup(rec)
	if err != nil {
		log.WithError(err).Error("reconciler: message lookup failed")
		outcome.Outcome = OutcomeNotFound
		return outcome
	}
	if msg == nil {
		log.WithFields(log.Fields{"mobile": rec.Mobile, "txn_id": rec.TransactionID}).
			Info("reconciler: no matching message for receipt")
		outcome.Outcome = OutcomeNotFound
		return outcome
	}
	outcome.MessageID = msg.ID

	errMsg := ""
	if mapped == model.MessageStatusFailed {
		errMsg = rec.Reason
	}
	if mapped == model.MessageStatusUnknown {
		errMsg = "unmapped provider status: " + rec.Status
	}

	prev, changed, err := r.Messages.ApplyStatus(msg.ID, mapped, errMsg)
	if err != nil {
		log.WithError(err).WithField("message_id", msg.ID).Error("reconciler: status update failed")
		outcome.Outcome = OutcomeIgnored
		return outcome
	}
	outcome.From = prev
	outcome.To = mapped

	if !changed {
		outcome.Outcome = OutcomeIgnored
		return outcome
	}

	if msg.CampaignID != nil {
		r.rollup(*msg.CampaignID)
	}

	outcome.Outcome = OutcomeUpdated
	return outcome
}

func (r *Reconciler) lookup(rec Receipt) (*model.Message, error) {
	if rec.TransactionID != "" || rec.ProviderMessageID != "" || rec.ClientRef != "" {
		msg, err := r.Messages.FindByProviderRef(rec.TransactionID, rec.ProviderMessageID, rec.ClientRef)
		if err != nil || msg != nil {
			return msg, err
		}
	}
	return r.Messages.FindLatestByPhone(rec.Mobile)
}

// rollup recounts the campaign's counter buckets from the message rows.
// The message row is already committed when this runs, so the recount sees
// its own transition; a recount racing the dispatch loop's finalize leaves
// the counts a later recount or the finalize itself converges on.
func (r *Reconciler) rollup(campaignID int64) {
	if err := r.Campaigns.SyncCounters(campaignID); err != nil {
		log.WithError(err).WithField("campaign_id", campaignID).Error("reconciler: counter rollup failed")
	}
}

func (r *Reconciler) audit(rec Receipt, mapped model.MessageStatus, outcome ReceiptOutcome) {
	entry := &model.ReceiptLog{
		Payload:      rec.RawPayload,
		Mobile:       rec.Mobile,
		TxnID:        rec.TransactionID,
		MappedStatus: string(mapped),
		Outcome:      outcome.Outcome,
	}
	if outcome.MessageID != 0 {
		id := outcome.MessageID
		entry.MessageID = &id
	}
	if err := r.Receipts.Create(entry); err != nil {
		log.WithError(err).Error("reconciler: failed to append receipt audit log")
	}
}
