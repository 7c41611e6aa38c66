// internal/handler/webhook_handler.go
package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/service"
)

// WebhookHandler receives provider delivery callbacks. Providers retry
// callbacks, so one bad payload must never block the next: every request is
// drained, audited and answered, and malformed input is a 400, not a crash.
type WebhookHandler struct {
	Reconciler *service.Reconciler
}

// DeliveryReceipt handles POST /webhook/delivery. The provider posts either
// JSON or form-encoded bodies depending on configuration; both are accepted.
func (h *WebhookHandler) DeliveryReceipt(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	receipt, ok := parseReceipt(r.Header.Get("Content-Type"), raw)
	if !ok {
		log.WithField("body", string(raw)).Warn("webhook: unparseable delivery receipt")
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	outcome := h.Reconciler.HandleReceipt(r.Context(), receipt)

	status := http.StatusOK
	if outcome.Outcome == service.OutcomeInvalid {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, outcome)
}

func parseReceipt(contentType string, raw []byte) (service.Receipt, bool) {
	rec := service.Receipt{RawPayload: string(raw)}

	if strings.Contains(contentType, "application/json") {
		var body struct {
			Mobile        string `json:"mobile"`
			Phone         string `json:"phone"`
			To            string `json:"to"`
			Status        string `json:"status"`
			TransactionID string `json:"transaction_id"`
			TxnID         string `json:"txn_id"`
			MessageID     string `json:"message_id"`
			ClientRef     string `json:"client_ref"`
			Reason        string `json:"reason"`
			Error         string `json:"error"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return rec, false
		}
		rec.Mobile = first(body.Mobile, body.Phone, body.To)
		rec.Status = body.Status
		rec.TransactionID = first(body.TransactionID, body.TxnID)
		rec.ProviderMessageID = body.MessageID
		rec.ClientRef = body.ClientRef
		rec.Reason = first(body.Reason, body.Error)
		return rec, true
	}

	// Fall back to form encoding for providers that do not speak JSON.
	values, err := parseForm(raw)
	if err != nil {
		return rec, false
	}
	rec.Mobile = first(values.Get("mobile"), values.Get("phone"), values.Get("to"))
	rec.Status = values.Get("status")
	rec.TransactionID = first(values.Get("transaction_id"), values.Get("txn_id"))
	rec.ProviderMessageID = values.Get("message_id")
	rec.ClientRef = values.Get("client_ref")
	rec.Reason = first(values.Get("reason"), values.Get("error"))
	return rec, true
}

func parseForm(raw []byte) (url.Values, error) {
	return url.ParseQuery(string(raw))
}

func first(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
