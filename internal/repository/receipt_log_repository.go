package repository

import (
	"database/sql"
	"time"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
)

type ReceiptLogRepositoryInterface interface {
	Create(l *model.ReceiptLog) error
}

type ReceiptLogRepository struct {
	DB *sql.DB
}

func (r *ReceiptLogRepository) Create(l *model.ReceiptLog) error {
	l.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO receipt_logs (payload, mobile, txn_id, mapped_status, outcome, message_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		l.Payload, l.Mobile, l.TxnID, l.MappedStatus, l.Outcome, l.MessageID, l.CreatedAt,
	).Scan(&l.ID)
}

var _ ReceiptLogRepositoryInterface = (*ReceiptLogRepository)(nil)
