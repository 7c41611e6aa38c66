// internal/model/message.go
package model

import "time"

// Message is one outbound WhatsApp message. CampaignID is nil for ad hoc
// sends. ClientRef is our own reference passed to the provider so delivery
// callbacks can be matched even before the provider assigns its own ids.
type Message struct {
	ID            int64         `db:"id" json:"id"`
	CampaignID    *int64        `db:"campaign_id" json:"campaign_id,omitempty"`
	ClientRef     string        `db:"client_ref" json:"client_ref"`
	Phone         string        `db:"phone" json:"phone"`
	Content       string        `db:"content" json:"content"`
	MessageType   MessageType   `db:"message_type" json:"message_type"`
	Status        MessageStatus `db:"status" json:"status"`
	ProviderTxnID string        `db:"provider_txn_id" json:"provider_txn_id,omitempty"`
	ProviderMsgID string        `db:"provider_msg_id" json:"provider_msg_id,omitempty"`
	ErrorMessage  string        `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	SentAt        *time.Time    `db:"sent_at" json:"sent_at,omitempty"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}
