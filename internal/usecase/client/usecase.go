package client

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"crm-service/internal/domain/audit"
	domain "crm-service/internal/domain/client"
	"crm-service/internal/domain/paging"
	pkgerrors "crm-service/pkg/errors"
	"crm-service/pkg/metrics"
	"crm-service/pkg/security"
)

// Repository defines the interface for client data access operations.
// Lookups return (nil, nil) when no row matches.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	FindByName(ctx context.Context, name string) ([]domain.Client, error)
	FindByNamePage(ctx context.Context, name string, page paging.Request) ([]domain.Client, error)
	// Save inserts c when its id is unknown and updates it otherwise.
	Save(ctx context.Context, c *domain.Client) (*domain.Client, error)
	// DeleteByID returns pkgerrors.ErrNoRowsAffected when nothing was deleted.
	DeleteByID(ctx context.Context, id uuid.UUID) error
	Transaction(ctx context.Context, fn func(tx Repository) error) error
}

// CompanyValidator checks the company reference of a client.
type CompanyValidator interface {
	ValidateCompanyID(ctx context.Context, id uuid.UUID) error
}

// CurrentUser provides the identifier of the authenticated caller.
type CurrentUser interface {
	CurrentUserID(ctx context.Context) (uuid.UUID, error)
}

// Usecase implements the business logic for client management operations.
type Usecase struct {
	repo      Repository          // Repository for data access
	companies CompanyValidator    // Referential checks on companyId
	users     CurrentUser         // Source of the audit user
	log       *zap.Logger         // Logger for structured logging
	validate  *validator.Validate // Validator for field validation
	now       audit.Clock         // Clock for audit timestamps
}

// New creates a new instance of Usecase.
func New(r Repository, v CompanyValidator, u CurrentUser, log *zap.Logger) *Usecase {
	return &Usecase{
		repo:      r,
		companies: v,
		users:     u,
		log:       log,
		validate:  validator.New(),
		now:       audit.SystemClock,
	}
}

// FindClientByName returns the clients whose name equals in.Name, either all
// of them or a single page.
func (uc *Usecase) FindClientByName(ctx context.Context, in FindByNameRequest) ([]domain.Client, error) {
	name, err := security.ValidateNameFilter(in.Name)
	if err != nil {
		uc.log.Warn("invalid name filter", zap.String("name", in.Name), zap.Error(err))
		return nil, pkgerrors.NewValidationError("name", err.Error())
	}

	page, paged := paging.Resolve(in.Page, in.Size)
	if !paged {
		uc.log.Info("finding clients by name", zap.String("name", name))
		clients, err := uc.repo.FindByName(ctx, name)
		if err != nil {
			uc.log.Error("failed to find clients by name", zap.String("name", name), zap.Error(err))
			return nil, err
		}
		return clients, nil
	}

	uc.log.Info("finding clients by name", zap.String("name", name), zap.Int("page", page.Page), zap.Int("size", page.Size))
	clients, err := uc.repo.FindByNamePage(ctx, name, page)
	if err != nil {
		uc.log.Error("failed to find client page by name", zap.String("name", name), zap.Int("page", page.Page), zap.Int("size", page.Size), zap.Error(err))
		return nil, err
	}
	return clients, nil
}

// FindClientByID returns the client with the given id or a NotFoundError.
func (uc *Usecase) FindClientByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		uc.log.Error("failed to get client", zap.String("id", id.String()), zap.Error(err))
		return nil, err
	}
	if c == nil {
		uc.log.Warn("client not found", zap.String("id", id.String()))
		return nil, pkgerrors.NewNotFoundError("client", id.String())
	}
	return c, nil
}

// SaveClient validates the company reference, stamps the audit fields with the
// current user and persists a new client.
func (uc *Usecase) SaveClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	if c == nil {
		return nil, pkgerrors.NewValidationError("", "client is required")
	}
	uc.log.Info("creating client", zap.String("name", c.Name), zap.String("company_id", c.CompanyID.String()))

	if err := uc.checkCreate(ctx, c); err != nil {
		return nil, err
	}

	userID, err := uc.users.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := uc.repo.Save(ctx, uc.prepareCreate(c, userID))
	if err != nil {
		uc.log.Error("failed to create client", zap.Error(err))
		return nil, err
	}

	metrics.RecordWrite("client", "create")
	return saved, nil
}

// SaveClients creates every client in one transaction. Nothing is persisted
// when any client fails validation or the store rejects a row.
func (uc *Usecase) SaveClients(ctx context.Context, clients []*domain.Client) ([]domain.Client, error) {
	if len(clients) == 0 {
		return nil, pkgerrors.NewValidationError("", "at least one client is required")
	}
	uc.log.Info("creating clients", zap.Int("count", len(clients)))

	checked := make(map[uuid.UUID]struct{}, len(clients))
	for _, c := range clients {
		if c == nil {
			return nil, pkgerrors.NewValidationError("", "client is required")
		}
		if err := uc.validate.Struct(createInput{Name: c.Name, Email: c.Email, Phone: c.Phone}); err != nil {
			uc.log.Warn("validate failed", zap.Error(err))
			return nil, pkgerrors.FromValidator(err)
		}
		if _, ok := checked[c.CompanyID]; ok {
			continue
		}
		if err := uc.companies.ValidateCompanyID(ctx, c.CompanyID); err != nil {
			return nil, err
		}
		checked[c.CompanyID] = struct{}{}
	}

	userID, err := uc.users.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved := make([]domain.Client, 0, len(clients))
	err = uc.repo.Transaction(ctx, func(tx Repository) error {
		for _, c := range clients {
			s, err := tx.Save(ctx, uc.prepareCreate(c, userID))
			if err != nil {
				return err
			}
			saved = append(saved, *s)
		}
		return nil
	})
	if err != nil {
		uc.log.Error("failed to create clients", zap.Int("count", len(clients)), zap.Error(err))
		return nil, err
	}

	metrics.EntityWritesTotal.WithLabelValues("client", "create").Add(float64(len(saved)))
	return saved, nil
}

// UpdateClient merges the supplied fields into the stored client. The read and
// the write run in one transaction with the row locked, so concurrent edits
// cannot overwrite each other.
func (uc *Usecase) UpdateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	if c == nil {
		return nil, pkgerrors.NewValidationError("", "client is required")
	}
	uc.log.Info("updating client", zap.String("id", c.ID.String()))

	if c.ID == uuid.Nil {
		return nil, pkgerrors.NewValidationError("id", "is required")
	}
	if err := uc.validate.Struct(updateInput{Name: c.Name, Email: c.Email, Phone: c.Phone}); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, pkgerrors.FromValidator(err)
	}

	userID, err := uc.users.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	if c.CompanyID != uuid.Nil {
		if err := uc.companies.ValidateCompanyID(ctx, c.CompanyID); err != nil {
			return nil, err
		}
	}

	var saved *domain.Client
	err = uc.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := tx.FindByIDForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return pkgerrors.NewNotFoundError("client", c.ID.String())
		}

		merged := *existing
		merged.Merge(c)
		merged.Fields = audit.StampUpdate(existing.Fields, userID, uc.now)

		saved, err = tx.Save(ctx, &merged)
		return err
	})
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			uc.log.Warn("client not found for update", zap.String("id", c.ID.String()))
		} else {
			uc.log.Error("failed to update client", zap.String("id", c.ID.String()), zap.Error(err))
		}
		return nil, err
	}

	metrics.RecordWrite("client", "update")
	return saved, nil
}

// DeleteClient removes the client with the given id. Deleting a missing id is
// a NotFoundError.
func (uc *Usecase) DeleteClient(ctx context.Context, id uuid.UUID) error {
	uc.log.Info("deleting client", zap.String("id", id.String()))

	if err := uc.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrNoRowsAffected) {
			uc.log.Warn("client not found for delete", zap.String("id", id.String()))
			return pkgerrors.NewNotFoundError("client", id.String())
		}
		uc.log.Error("failed to delete client", zap.String("id", id.String()), zap.Error(err))
		return err
	}

	metrics.RecordWrite("client", "delete")
	return nil
}

func (uc *Usecase) checkCreate(ctx context.Context, c *domain.Client) error {
	if err := uc.validate.Struct(createInput{Name: c.Name, Email: c.Email, Phone: c.Phone}); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return pkgerrors.FromValidator(err)
	}
	return uc.companies.ValidateCompanyID(ctx, c.CompanyID)
}

// prepareCreate returns a copy of c with a fresh id and creation audit fields.
func (uc *Usecase) prepareCreate(c *domain.Client, userID uuid.UUID) *domain.Client {
	created := *c
	created.ID = uuid.New()
	created.Fields = audit.StampCreate(audit.Fields{}, userID, uc.now)
	return &created
}
