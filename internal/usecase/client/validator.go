package client

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	pkgerrors "crm-service/pkg/errors"
)

// CompanyLookup is the slice of the company repository the validator needs.
type CompanyLookup interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// Validator enforces the referential rules of a client before it is written.
type Validator struct {
	companies CompanyLookup
	log       *zap.Logger
}

// NewValidator creates a Validator backed by the given company lookup.
func NewValidator(companies CompanyLookup, log *zap.Logger) *Validator {
	return &Validator{companies: companies, log: log}
}

// ValidateCompanyID fails with a ValidationError unless a company with id exists.
func (v *Validator) ValidateCompanyID(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.NewValidationError("companyId", "is required")
	}

	exists, err := v.companies.ExistsByID(ctx, id)
	if err != nil {
		v.log.Error("failed to check company existence", zap.String("company_id", id.String()), zap.Error(err))
		return pkgerrors.NewInternalError("failed to check company", err)
	}
	if !exists {
		v.log.Warn("company does not exist", zap.String("company_id", id.String()))
		return pkgerrors.NewValidationError("companyId", "company "+id.String()+" does not exist")
	}
	return nil
}
