package repository

import (
	"database/sql"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
)

// ContactRepositoryInterface is the pipeline's read-only view of contacts.
type ContactRepositoryInterface interface {
	GetByID(id int64) (*model.Contact, error)
	ListByGroup(groupID int64) ([]model.Contact, error)
}

type ContactRepository struct {
	DB *sql.DB
}

func (r *ContactRepository) GetByID(id int64) (*model.Contact, error) {
	query := `
        SELECT id, group_id, phone, name, email, custom_fields
        FROM contacts
        WHERE id = $1
    `
	row := r.DB.QueryRow(query, id)

	var c model.Contact
	if err := row.Scan(&c.ID, &c.GroupID, &c.Phone, &c.Name, &c.Email, &c.CustomFields); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &c, nil
}

// ListByGroup fetches a campaign's target contacts in stable order.
func (r *ContactRepository) ListByGroup(groupID int64) ([]model.Contact, error) {
	query := `
        SELECT id, group_id, phone, name, email, custom_fields
        FROM contacts
        WHERE group_id = $1
        ORDER BY id ASC
    `
	rows, err := r.DB.Query(query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.GroupID, &c.Phone, &c.Name, &c.Email, &c.CustomFields); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
