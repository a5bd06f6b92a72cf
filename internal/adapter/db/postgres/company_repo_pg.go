package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"crm-service/internal/domain/audit"
	domain "crm-service/internal/domain/company"
	"crm-service/internal/domain/paging"
	"crm-service/internal/usecase/company"
	pkgerrors "crm-service/pkg/errors"
)

// CompanyRepoPG implements company.Repository using GORM.
type CompanyRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ company.Repository = (*CompanyRepoPG)(nil)

// NewCompanyRepoPG creates a new instance of CompanyRepoPG.
func NewCompanyRepoPG(db *gorm.DB, log *zap.Logger) *CompanyRepoPG {
	return &CompanyRepoPG{db: db, log: log}
}

func companyToSchema(c *domain.Company) CompanySchema {
	return CompanySchema{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		Phone:     c.Phone,
		Website:   c.Website,
		CreatedBy: c.CreatedBy,
		UpdatedBy: c.UpdatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func companyFromSchema(m CompanySchema) domain.Company {
	return domain.Company{
		ID:      m.ID,
		Name:    m.Name,
		Address: m.Address,
		Phone:   m.Phone,
		Website: m.Website,
		Fields: audit.Fields{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func (r *CompanyRepoPG) findOne(db *gorm.DB, id uuid.UUID) (*domain.Company, error) {
	var model CompanySchema
	if err := db.Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get company from db", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	c := companyFromSchema(model)
	return &c, nil
}

// FindByID retrieves a company by its id.
func (r *CompanyRepoPG) FindByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a company and locks its row on PostgreSQL.
func (r *CompanyRepoPG) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	return r.findOne(lockForUpdate(r.db.WithContext(ctx)), id)
}

// ExistsByID reports whether a company with the id exists.
func (r *CompanyRepoPG) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&CompanySchema{}).Where("id = ?", id).Count(&n).Error; err != nil {
		r.log.Error("failed to check company in db", zap.Error(err), zap.String("id", id.String()))
		return false, fmt.Errorf("failed to check company: %w", err)
	}
	return n > 0, nil
}

// FindByName retrieves every company with exactly the given name.
func (r *CompanyRepoPG) FindByName(ctx context.Context, name string) ([]domain.Company, error) {
	return r.findByName(r.db.WithContext(ctx), name)
}

// FindByNamePage retrieves one page of companies with the given name.
func (r *CompanyRepoPG) FindByNamePage(ctx context.Context, name string, page paging.Request) ([]domain.Company, error) {
	return r.findByName(r.db.WithContext(ctx).Offset(page.Offset()).Limit(page.Size), name)
}

func (r *CompanyRepoPG) findByName(db *gorm.DB, name string) ([]domain.Company, error) {
	var models []CompanySchema
	if err := db.Where("name = ?", name).Order("created_at, id").Find(&models).Error; err != nil {
		r.log.Error("failed to list companies from db", zap.Error(err), zap.String("name", name))
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	companies := make([]domain.Company, len(models))
	for i, m := range models {
		companies[i] = companyFromSchema(m)
	}
	return companies, nil
}

// Save inserts or updates a company.
func (r *CompanyRepoPG) Save(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	if c == nil {
		return nil, errors.New("company cannot be nil")
	}

	model := companyToSchema(c)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		r.log.Error("failed to save company in db", zap.Error(err), zap.String("id", c.ID.String()))
		return nil, translateError("company", "save", err)
	}

	saved := companyFromSchema(model)
	return &saved, nil
}

// DeleteByID removes a company. A company still referenced by clients yields
// a ConflictError.
func (r *CompanyRepoPG) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CompanySchema{})
	if res.Error != nil {
		r.log.Warn("failed to delete company in db", zap.Error(res.Error), zap.String("id", id.String()))
		var conflict *pkgerrors.ConflictError
		if err := translateError("company", "delete", res.Error); !errors.As(err, &conflict) {
			return err
		}
		return pkgerrors.NewConflictError("company", "company is still referenced by clients")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNoRowsAffected
	}
	return nil
}

// Transaction runs fn with a repository bound to a single transaction.
func (r *CompanyRepoPG) Transaction(ctx context.Context, fn func(tx company.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CompanyRepoPG{db: tx, log: r.log})
	})
}
