package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/service"
)

type reconcilerFixture struct {
	campaigns  *memCampaignRepo
	messages   *memMessageRepo
	receipts   *memReceiptRepo
	reconciler *service.Reconciler
}

func newReconcilerFixture() *reconcilerFixture {
	messages := newMemMessageRepo()
	f := &reconcilerFixture{
		campaigns: newMemCampaignRepo(messages),
		messages:  messages,
		receipts:  &memReceiptRepo{},
	}
	f.reconciler = &service.Reconciler{
		Campaigns: f.campaigns,
		Messages:  f.messages,
		Receipts:  f.receipts,
	}
	return f
}

// sentMessage seeds a campaign with one message already in `sent`, counted
// in sent_count, the state the dispatcher leaves behind.
func (f *reconcilerFixture) sentMessage(phone, txnID string) *model.Message {
	id := int64(1)
	f.campaigns.add(model.Campaign{
		ID:        id,
		ClientID:  1,
		Status:    model.CampaignStatusSent,
		SentCount: 1,
	})
	m := &model.Message{
		CampaignID: &id,
		Phone:      phone,
		Content:    "Hi Alice",
		Status:     model.MessageStatusPending,
		ClientRef:  "ref-1",
	}
	f.messages.Create(m)
	f.messages.MarkSent(m.ID, txnID, "wamid-1", time.Now().UTC())
	stored, _ := f.messages.GetByID(m.ID)
	return stored
}

func TestHandleReceiptDelivered(t *testing.T) {
	f := newReconcilerFixture()
	msg := f.sentMessage("919876500001", "txn-1")

	out := f.reconciler.HandleReceipt(context.Background(), service.Receipt{
		Mobile:        "919876500001",
		Status:        "delivered",
		TransactionID: "txn-1",
	})

	if out.Outcome != service.OutcomeUpdated {
		t.Fatalf("expected updated, got %s", out.Outcome)
	}
	if out.MessageID != msg.ID || out.From != model.MessageStatusSent || out.To != model.MessageStatusDelivered {
		t.Errorf("unexpected outcome: %+v", out)
	}

	stored, _ := f.messages.GetByID(msg.ID)
	if stored.Status != model.MessageStatusDelivered {
		t.Errorf("message status = %s, want delivered", stored.Status)
	}

	campaign, _ := f.campaigns.GetByID(1)
	if campaign.DeliveredCount != 1 || campaign.SentCount != 0 {
		t.Errorf("counters not moved: delivered=%d sent=%d", campaign.DeliveredCount, campaign.SentCount)
	}
}

func TestHandleReceiptTerminalStateNeverRegresses(t *testing.T) {
	f := newReconcilerFixture()
	msg := f.sentMessage("919876500001", "txn-1")

	first := f.reconciler.HandleReceipt(context.Background(), service.Receipt{
		Mobile: "919876500001", Status: "delivered", TransactionID: "txn-1",
	})
	if first.Outcome != service.OutcomeUpdated {
		t.Fatalf("first receipt should update, got %s", first.Outcome)
	}

	// A stale `pending` arriving after `delivered` is ignored.
	second := f.reconciler.HandleReceipt(context.Background(), service.Receipt{
		Mobile: "919876500001", Status: "pending", TransactionID: "txn-1",
	})
	if second.Outcome != service.OutcomeIgnored {
		t.Fatalf("stale receipt should be ignored, got %s", second.Outcome)
	}

	stored, _ := f.messages.GetByID(msg.ID)
	if stored.Status != model.MessageStatusDelivered {
		t.Errorf("message regressed to %s", stored.Status)
	}
}

func TestHandleReceiptDuplicateCountsOnce(t *testing.T) {
	f := newReconcilerFixture()
	f.sentMessage("919876500001", "txn-1")

	rec := service.Receipt{Mobile: "919876500001", Status: "delivered", TransactionID: "txn-1"}
	f.reconciler.HandleReceipt(context.Background(), rec)
	dup := f.reconciler.HandleReceipt(context.Background(), rec)

	if dup.Outcome != service.OutcomeIgnored {
		t.Fatalf("duplicate should be ignored, got %s", dup.Outcome)
	}
	campaign, _ := f.campaigns.GetByID(1)
	if campaign.DeliveredCount != 1 {
		t.Errorf("delivered_count = %d, want 1", campaign.DeliveredCount)
	}
	if f.receipts.count() != 2 {
		t.Errorf("every receipt is audited, got %d log rows", f.receipts.count())
	}
}

func TestHandleReceiptFailedCapturesReason(t *testing.T) {
	f := newReconcilerFixture()
	msg := f.sentMessage("919876500001", "txn-1")

	out := f.reconciler.HandleReceipt(context.Background(), service.Receipt{
		Mobile:        "919876500001",
		Status:        "failed",
		TransactionID: "txn-1",
		Reason:        "number not on whatsapp",
	})
	if out.Outcome != service.OutcomeUpdated {
		t.Fatalf("expected updated, got %s", out.Outcome)
	}

	stored, _ := f.messages.GetByID(msg.ID)
	if stored.Status != model.MessageStatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
	if stored.ErrorMessage != "number not on whatsapp" {
		t.Errorf("error message = %q", stored.ErrorMessage)
	}

	campaign, _ := f.campaigns.GetByID(1)
	if campaign.FailedCount != 1 || campaign.SentCount != 0 {
		t.Errorf("counters not moved: failed=%d sent=%d", campaign.FailedCount, campaign.SentCount)
	}
}

func TestHandleReceiptUnknownStatusPreservesRaw(t *testing.T) {
	f := newReconcilerFixture()
	msg := f.sentMessage("919876500001", "txn-1")

	out := f.reconciler.HandleReceipt(context.Background(), service.Receipt{
		Mobile:        "919876500001",
		Status:        "throttled_by_carrier",
		TransactionID: "txn-1",
	})
	if out.Outcome != service.OutcomeUpdated {
		t.Fatalf("expected updated, got %s", out.Outcome)
	}
	if out.To != model.MessageStatusUnknown {
		t.Errorf("mapped status = %s, want unknown", out.To)
	}

	stored, _ := f.messages.GetByID(msg.ID)
	if stored.ErrorMessage != "unmapped provider status: throttled_by_carrier" {
		t.Errorf("error message = %q", stored.ErrorMessage)
	}

	// Unknown belongs to no bucket; the message leaves sent_count until a
	// terminal receipt places it.
	campaign, _ := f.campaigns.GetByID(1)
	if campaign.SentCount != 0 || campaign.DeliveredCount != 0 || campaign.FailedCount != 0 {
		t.Errorf("unknown message must be counted nowhere: %+v", campaign)
	}
}

func TestHandleReceiptFallsBackToPhoneLookup(t *testing.T) {
	f := newReconcilerFixture()
	msg := f.sentMessage("919876500001", "txn-1")

	// No provider refs at all; phone is the only handle.
	out := f.reconciler.HandleReceipt(context.Background(), service.Receipt{
		Mobile: "919876500001",
		Status: "delivered",
	})
	if out.Outcome != service.OutcomeUpdated || out.MessageID != msg.ID {
		t.Fatalf("phone fallback failed: %+v", out)
	}
}

func TestHandleReceiptUnmatchedIsAudited(t *testing.T) {
	f := newReconcilerFixture()

	out := f.reconciler.HandleReceipt(context.Background(), service.Receipt{
		Mobile:        "910000000000",
		Status:        "delivered",
		TransactionID: "txn-unseen",
		RawPayload:    `{"mobile":"910000000000","status":"delivered"}`,
	})
	if out.Outcome != service.OutcomeNotFound {
		t.Fatalf("expected not_found, got %s", out.Outcome)
	}

	entry := f.receipts.last()
	if entry == nil {
		t.Fatal("unmatched receipt must still be logged")
	}
	if entry.Outcome != service.OutcomeNotFound || entry.Mobile != "910000000000" {
		t.Errorf("audit row: %+v", entry)
	}
	if entry.MessageID != nil {
		t.Error("unmatched receipt must not reference a message")
	}
}

func TestHandleReceiptInvalidPayload(t *testing.T) {
	f := newReconcilerFixture()

	out := f.reconciler.HandleReceipt(context.Background(), service.Receipt{Status: "delivered"})
	if out.Outcome != service.OutcomeInvalid {
		t.Errorf("missing mobile: got %s", out.Outcome)
	}

	out = f.reconciler.HandleReceipt(context.Background(), service.Receipt{Mobile: "919876500001", Status: "  "})
	if out.Outcome != service.OutcomeInvalid {
		t.Errorf("blank status: got %s", out.Outcome)
	}

	if f.receipts.count() != 2 {
		t.Errorf("invalid receipts are audited too, got %d rows", f.receipts.count())
	}
}

func TestMapProviderStatus(t *testing.T) {
	cases := []struct {
		in   string
		want model.MessageStatus
	}{
		{"delivered", model.MessageStatusDelivered},
		{"SUCCESS", model.MessageStatusDelivered},
		{"failed", model.MessageStatusFailed},
		{"Error", model.MessageStatusFailed},
		{"sent", model.MessageStatusSent},
		{"queued", model.MessageStatusPending},
		{" pending ", model.MessageStatusPending},
		{"carrier_blocked", model.MessageStatusUnknown},
	}
	for _, c := range cases {
		if got := service.MapProviderStatus(c.in); got != c.want {
			t.Errorf("MapProviderStatus(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}
