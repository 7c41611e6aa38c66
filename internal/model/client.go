// internal/model/client.go
package model

import "time"

// Client is a tenant. Each client carries its own provider credentials; the
// pipeline reads them, never writes them.
type Client struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	APIKey         string    `db:"api_key" json:"-"`
	WhatsAppNumber string    `db:"whatsapp_number" json:"whatsapp_number"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// HasCredentials reports whether the client can send at all. Absence of
// either value is a configuration error, not a retryable failure.
func (c *Client) HasCredentials() bool {
	return c.APIKey != "" && c.WhatsAppNumber != ""
}
