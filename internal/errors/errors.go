// internal/errors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredentials means the tenant has no provider API key or business
// number configured. Fail fast, never retried.
var ErrMissingCredentials = errors.New("client has no provider credentials configured")

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int64
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

func NewCampaignNotFound(id int64) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

type ErrMessageNotFound struct {
	MessageID int64
}

func (e *ErrMessageNotFound) Error() string {
	return fmt.Sprintf("message with ID %d not found", e.MessageID)
}

func NewMessageNotFound(id int64) error {
	return &ErrMessageNotFound{MessageID: id}
}

// UnmappedPlaceholdersError is raised before any contact is processed when
// the template uses placeholders the campaign mapping does not cover.
type UnmappedPlaceholdersError struct {
	Placeholders []string
}

func (e *UnmappedPlaceholdersError) Error() string {
	return fmt.Sprintf("template placeholders have no variable mapping: %s", strings.Join(e.Placeholders, ", "))
}
