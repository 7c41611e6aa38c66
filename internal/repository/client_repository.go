package repository

import (
	"database/sql"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
)

// ClientRepositoryInterface is the tenant credential lookup. Read-only to
// the pipeline.
type ClientRepositoryInterface interface {
	GetByID(id int64) (*model.Client, error)
}

type ClientRepository struct {
	DB *sql.DB
}

func (r *ClientRepository) GetByID(id int64) (*model.Client, error) {
	query := `
        SELECT id, name, api_key, whatsapp_number, active, created_at
        FROM clients
        WHERE id = $1
    `
	var c model.Client
	err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.APIKey, &c.WhatsAppNumber, &c.Active, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

var _ ClientRepositoryInterface = (*ClientRepository)(nil)
