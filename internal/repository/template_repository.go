package repository

import (
	"database/sql"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
)

type TemplateRepositoryInterface interface {
	GetByID(id int64) (*model.Template, error)
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) GetByID(id int64) (*model.Template, error) {
	query := `
        SELECT id, client_id, name, header, body, footer, message_type, created_at
        FROM templates
        WHERE id = $1
    `
	var t model.Template
	err := r.DB.QueryRow(query, id).Scan(
		&t.ID, &t.ClientID, &t.Name, &t.Header, &t.Body, &t.Footer, &t.MessageType, &t.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
