package company

import (
	"github.com/google/uuid"

	"crm-service/internal/domain/audit"
)

// Company groups clients. A company cannot be removed while clients
// still reference it.
type Company struct {
	ID      uuid.UUID
	Name    string
	Address string
	Phone   string
	Website string
	audit.Fields
}

// Merge copies the non-empty descriptive fields of patch onto c.
func (c *Company) Merge(patch *Company) {
	if patch.Name != "" {
		c.Name = patch.Name
	}
	if patch.Address != "" {
		c.Address = patch.Address
	}
	if patch.Phone != "" {
		c.Phone = patch.Phone
	}
	if patch.Website != "" {
		c.Website = patch.Website
	}
}
