// internal/model/status.go
package model

// CampaignStatus is the campaign lifecycle state.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusSent      CampaignStatus = "sent"
	CampaignStatusFailed    CampaignStatus = "failed"
)

// campaignTransitions is the full set of legal campaign moves. `sent` and
// `failed` are terminal; a campaign is only ever re-run by an operator
// rescheduling it, which goes through draft/scheduled.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusDraft:     {CampaignStatusScheduled},
	CampaignStatusScheduled: {CampaignStatusSending, CampaignStatusDraft},
	CampaignStatusSending:   {CampaignStatusSent, CampaignStatusFailed},
}

func (s CampaignStatus) CanTransition(to CampaignStatus) bool {
	for _, next := range campaignTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CampaignStatus) Terminal() bool {
	return s == CampaignStatusSent || s == CampaignStatusFailed
}

// MessageStatus is the per-message lifecycle state.
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusFailed    MessageStatus = "failed"
	MessageStatusUnknown   MessageStatus = "unknown"
)

// messageTransitions allows pending -> delivered because provider callbacks
// can outrun the dispatcher's own row update. Terminal states never move.
var messageTransitions = map[MessageStatus][]MessageStatus{
	MessageStatusPending: {MessageStatusSent, MessageStatusFailed, MessageStatusDelivered, MessageStatusUnknown},
	MessageStatusSent:    {MessageStatusDelivered, MessageStatusFailed, MessageStatusUnknown},
	MessageStatusUnknown: {MessageStatusSent, MessageStatusDelivered, MessageStatusFailed},
}

func (s MessageStatus) CanTransition(to MessageStatus) bool {
	for _, next := range messageTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s MessageStatus) Terminal() bool {
	return s == MessageStatusDelivered || s == MessageStatusFailed
}

// MessageType distinguishes plain text from media sends.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeMedia MessageType = "media"
)
