// internal/model/template.go
package model

import (
	"strings"
	"time"
)

type Template struct {
	ID          int64       `db:"id" json:"id"`
	ClientID    int64       `db:"client_id" json:"client_id"`
	Name        string      `db:"name" json:"name"`
	Header      string      `db:"header" json:"header"`
	Body        string      `db:"body" json:"body"`
	Footer      string      `db:"footer" json:"footer"`
	MessageType MessageType `db:"message_type" json:"message_type"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// FullText joins the non-empty sections for rendering.
func (t *Template) FullText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Header, t.Body, t.Footer} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}
