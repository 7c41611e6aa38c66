package repository

import (
	"database/sql"
	"time"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
)

type MessageRepositoryInterface interface {
	Create(m *model.Message) error
	GetByID(id int64) (*model.Message, error)

	// MarkSent / MarkFailed record the dispatcher's synchronous outcome.
	// Both are guarded on status='pending' so a delivery callback that beat
	// the send response cannot be clobbered.
	MarkSent(id int64, providerTxnID, providerMsgID string, at time.Time) error
	MarkFailed(id int64, errorMessage string) error

	FindByProviderRef(txnID, msgID, clientRef string) (*model.Message, error)
	FindLatestByPhone(phone string) (*model.Message, error)

	// ApplyStatus is the reconciler's serialized compare-and-set: it locks
	// the row, validates the transition, and reports the previous status and
	// whether anything changed.
	ApplyStatus(id int64, to model.MessageStatus, errorMessage string) (prev model.MessageStatus, changed bool, err error)
}

type MessageRepository struct {
	DB *sql.DB
}

const messageColumns = `id, campaign_id, client_ref, phone, content, message_type, status,
        provider_txn_id, provider_msg_id, error_message, created_at, sent_at, updated_at`

func scanMessage(row interface{ Scan(...interface{}) error }) (*model.Message, error) {
	var m model.Message
	err := row.Scan(
		&m.ID, &m.CampaignID, &m.ClientRef, &m.Phone, &m.Content, &m.MessageType, &m.Status,
		&m.ProviderTxnID, &m.ProviderMsgID, &m.ErrorMessage, &m.CreatedAt, &m.SentAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) Create(m *model.Message) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Status == "" {
		m.Status = model.MessageStatusPending
	}
	query := `
        INSERT INTO messages (campaign_id, client_ref, phone, content, message_type, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		m.CampaignID, m.ClientRef, m.Phone, m.Content, m.MessageType, m.Status, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
}

func (r *MessageRepository) GetByID(id int64) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id=$1`
	m, err := scanMessage(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *MessageRepository) MarkSent(id int64, providerTxnID, providerMsgID string, at time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE messages SET status=$1, provider_txn_id=$2, provider_msg_id=$3, sent_at=$4, updated_at=NOW()
         WHERE id=$5 AND status=$6`,
		model.MessageStatusSent, providerTxnID, providerMsgID, at.UTC(), id, model.MessageStatusPending,
	)
	return err
}

func (r *MessageRepository) MarkFailed(id int64, errorMessage string) error {
	_, err := r.DB.Exec(
		`UPDATE messages SET status=$1, error_message=$2, updated_at=NOW()
         WHERE id=$3 AND status=$4`,
		model.MessageStatusFailed, errorMessage, id, model.MessageStatusPending,
	)
	return err
}

// FindByProviderRef looks for the most specific match: provider transaction
// id, then provider message id, then our own client reference.
func (r *MessageRepository) FindByProviderRef(txnID, msgID, clientRef string) (*model.Message, error) {
	lookups := []struct {
		column string
		value  string
	}{
		{"provider_txn_id", txnID},
		{"provider_msg_id", msgID},
		{"client_ref", clientRef},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		query := `SELECT ` + messageColumns + ` FROM messages WHERE ` + l.column + `=$1 ORDER BY id DESC LIMIT 1`
		m, err := scanMessage(r.DB.QueryRow(query, l.value))
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, nil
}

func (r *MessageRepository) FindLatestByPhone(phone string) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE phone=$1 ORDER BY id DESC LIMIT 1`
	m, err := scanMessage(r.DB.QueryRow(query, phone))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *MessageRepository) ApplyStatus(id int64, to model.MessageStatus, errorMessage string) (model.MessageStatus, bool, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return "", false, err
	}
	defer tx.Rollback()

	var prev model.MessageStatus
	if err := tx.QueryRow(`SELECT status FROM messages WHERE id=$1 FOR UPDATE`, id).Scan(&prev); err != nil {
		return "", false, err
	}

	if !prev.CanTransition(to) {
		return prev, false, nil
	}

	if errorMessage != "" {
		_, err = tx.Exec(`UPDATE messages SET status=$1, error_message=$2, updated_at=NOW() WHERE id=$3`,
			to, errorMessage, id)
	} else {
		_, err = tx.Exec(`UPDATE messages SET status=$1, updated_at=NOW() WHERE id=$2`, to, id)
	}
	if err != nil {
		return prev, false, err
	}

	if err := tx.Commit(); err != nil {
		return prev, false, err
	}
	return prev, true, nil
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
