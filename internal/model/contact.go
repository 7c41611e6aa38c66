// internal/model/contact.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type Contact struct {
	ID           int64        `db:"id" json:"id"`
	GroupID      int64        `db:"group_id" json:"group_id"`
	Phone        string       `db:"phone" json:"phone"`
	Name         string       `db:"name" json:"name"`
	Email        string       `db:"email" json:"email"`
	CustomFields CustomFields `db:"custom_fields" json:"custom_fields"`
}

// Field resolves a mapping field path against the contact. Dotted paths under
// custom_fields look up free-form keys. Unknown paths resolve to "".
func (c *Contact) Field(path string) string {
	switch path {
	case "name":
		return c.Name
	case "phone":
		return c.Phone
	case "email":
		return c.Email
	}
	if key, ok := strings.CutPrefix(path, "custom_fields."); ok {
		return c.CustomFields[key]
	}
	return ""
}

// CustomFields is a free-form key/value JSONB column.
type CustomFields map[string]string

func (f CustomFields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

func (f *CustomFields) Scan(src interface{}) error {
	if src == nil {
		*f = CustomFields{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		s, ok := src.(string)
		if !ok {
			return fmt.Errorf("custom_fields: cannot scan %T", src)
		}
		b = []byte(s)
	}
	if len(b) == 0 {
		*f = CustomFields{}
		return nil
	}
	return json.Unmarshal(b, f)
}
