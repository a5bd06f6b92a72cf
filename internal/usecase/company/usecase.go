package company

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"crm-service/internal/domain/audit"
	domain "crm-service/internal/domain/company"
	"crm-service/internal/domain/paging"
	pkgerrors "crm-service/pkg/errors"
	"crm-service/pkg/metrics"
	"crm-service/pkg/security"
)

// Repository defines the interface for company data access operations.
// Lookups return (nil, nil) when no row matches.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Company, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Company, error)
	FindByName(ctx context.Context, name string) ([]domain.Company, error)
	FindByNamePage(ctx context.Context, name string, page paging.Request) ([]domain.Company, error)
	Save(ctx context.Context, c *domain.Company) (*domain.Company, error)
	// DeleteByID returns pkgerrors.ErrNoRowsAffected when nothing was deleted
	// and a ConflictError when clients still reference the company.
	DeleteByID(ctx context.Context, id uuid.UUID) error
	Transaction(ctx context.Context, fn func(tx Repository) error) error
}

// CurrentUser provides the identifier of the authenticated caller.
type CurrentUser interface {
	CurrentUserID(ctx context.Context) (uuid.UUID, error)
}

// CompanyUsecase defines the company operations used by transports.
type CompanyUsecase interface {
	FindCompanyByName(ctx context.Context, name string, page, size *int) ([]domain.Company, error)
	FindCompanyByID(ctx context.Context, id uuid.UUID) (*domain.Company, error)
	SaveCompany(ctx context.Context, c *domain.Company) (*domain.Company, error)
	UpdateCompany(ctx context.Context, c *domain.Company) (*domain.Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) error
}

type companyInput struct {
	Name    string `validate:"required,max=255"`
	Address string `validate:"omitempty,max=512"`
	Phone   string `validate:"omitempty,max=32"`
	Website string `validate:"omitempty,url,max=255"`
}

type companyPatch struct {
	Name    string `validate:"omitempty,max=255"`
	Address string `validate:"omitempty,max=512"`
	Phone   string `validate:"omitempty,max=32"`
	Website string `validate:"omitempty,url,max=255"`
}

// Usecase implements company management.
type Usecase struct {
	repo     Repository
	users    CurrentUser
	log      *zap.Logger
	validate *validator.Validate
	now      audit.Clock
}

var _ CompanyUsecase = (*Usecase)(nil)

// New creates a new company Usecase.
func New(r Repository, u CurrentUser, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, users: u, log: log, validate: validator.New(), now: audit.SystemClock}
}

// FindCompanyByName returns companies with the exact name, all or one page.
func (uc *Usecase) FindCompanyByName(ctx context.Context, name string, page, size *int) ([]domain.Company, error) {
	name, err := security.ValidateNameFilter(name)
	if err != nil {
		return nil, pkgerrors.NewValidationError("name", err.Error())
	}

	req, paged := paging.Resolve(page, size)
	if !paged {
		return uc.repo.FindByName(ctx, name)
	}
	return uc.repo.FindByNamePage(ctx, name, req)
}

// FindCompanyByID returns the company or a NotFoundError.
func (uc *Usecase) FindCompanyByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		uc.log.Error("failed to get company", zap.String("id", id.String()), zap.Error(err))
		return nil, err
	}
	if c == nil {
		return nil, pkgerrors.NewNotFoundError("company", id.String())
	}
	return c, nil
}

// SaveCompany creates a company stamped with the current user.
func (uc *Usecase) SaveCompany(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	if c == nil {
		return nil, pkgerrors.NewValidationError("", "company is required")
	}
	uc.log.Info("creating company", zap.String("name", c.Name))

	if err := uc.validate.Struct(companyInput{Name: c.Name, Address: c.Address, Phone: c.Phone, Website: c.Website}); err != nil {
		return nil, pkgerrors.FromValidator(err)
	}

	userID, err := uc.users.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	created := *c
	created.ID = uuid.New()
	created.Fields = audit.StampCreate(audit.Fields{}, userID, uc.now)

	saved, err := uc.repo.Save(ctx, &created)
	if err != nil {
		uc.log.Error("failed to create company", zap.Error(err))
		return nil, err
	}

	metrics.RecordWrite("company", "create")
	return saved, nil
}

// UpdateCompany merges the supplied fields into the stored company inside one
// transaction.
func (uc *Usecase) UpdateCompany(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	if c == nil || c.ID == uuid.Nil {
		return nil, pkgerrors.NewValidationError("id", "is required")
	}
	uc.log.Info("updating company", zap.String("id", c.ID.String()))

	if err := uc.validate.Struct(companyPatch{Name: c.Name, Address: c.Address, Phone: c.Phone, Website: c.Website}); err != nil {
		return nil, pkgerrors.FromValidator(err)
	}

	userID, err := uc.users.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	var saved *domain.Company
	err = uc.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := tx.FindByIDForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return pkgerrors.NewNotFoundError("company", c.ID.String())
		}

		merged := *existing
		merged.Merge(c)
		merged.Fields = audit.StampUpdate(existing.Fields, userID, uc.now)

		saved, err = tx.Save(ctx, &merged)
		return err
	})
	if err != nil {
		uc.log.Warn("failed to update company", zap.String("id", c.ID.String()), zap.Error(err))
		return nil, err
	}

	metrics.RecordWrite("company", "update")
	return saved, nil
}

// DeleteCompany removes a company that no client references.
func (uc *Usecase) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	uc.log.Info("deleting company", zap.String("id", id.String()))

	if err := uc.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrNoRowsAffected) {
			return pkgerrors.NewNotFoundError("company", id.String())
		}
		uc.log.Warn("failed to delete company", zap.String("id", id.String()), zap.Error(err))
		return err
	}

	metrics.RecordWrite("company", "delete")
	return nil
}
