package client

import (
	"github.com/google/uuid"

	"crm-service/internal/domain/audit"
)

// Client represents a customer contact that belongs to a company.
type Client struct {
	ID        uuid.UUID // ID is assigned on first save and never changes
	CompanyID uuid.UUID // CompanyID must reference an existing company
	Name      string
	Email     string
	Phone     string
	audit.Fields
}

// Merge copies the non-empty fields of patch onto c. Identity and audit
// fields are never taken from patch.
func (c *Client) Merge(patch *Client) {
	if patch.CompanyID != uuid.Nil {
		c.CompanyID = patch.CompanyID
	}
	if patch.Name != "" {
		c.Name = patch.Name
	}
	if patch.Email != "" {
		c.Email = patch.Email
	}
	if patch.Phone != "" {
		c.Phone = patch.Phone
	}
}
