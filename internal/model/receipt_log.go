// internal/model/receipt_log.go
package model

import "time"

// ReceiptLog is the audit trail for inbound delivery callbacks. Every
// receipt is appended here, matched or not, so callbacks can be replayed
// when debugging reconciliation.
type ReceiptLog struct {
	ID           int64     `db:"id" json:"id"`
	Payload      string    `db:"payload" json:"payload"`
	Mobile       string    `db:"mobile" json:"mobile"`
	TxnID        string    `db:"txn_id" json:"txn_id"`
	MappedStatus string    `db:"mapped_status" json:"mapped_status"`
	Outcome      string    `db:"outcome" json:"outcome"`
	MessageID    *int64    `db:"message_id" json:"message_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
