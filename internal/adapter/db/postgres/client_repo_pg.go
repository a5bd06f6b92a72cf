package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crm-service/internal/domain/audit"
	domain "crm-service/internal/domain/client"
	"crm-service/internal/domain/paging"
	"crm-service/internal/usecase/client"
	pkgerrors "crm-service/pkg/errors"
)

// ClientRepoPG implements client.Repository using GORM.
type ClientRepoPG struct {
	db  *gorm.DB    // GORM database connection, or the open transaction
	log *zap.Logger // Structured logger for database operations
}

var _ client.Repository = (*ClientRepoPG)(nil)

// NewClientRepoPG creates a new instance of ClientRepoPG.
func NewClientRepoPG(db *gorm.DB, log *zap.Logger) *ClientRepoPG {
	return &ClientRepoPG{db: db, log: log}
}

func clientToSchema(c *domain.Client) ClientSchema {
	return ClientSchema{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedBy: c.CreatedBy,
		UpdatedBy: c.UpdatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func clientFromSchema(m ClientSchema) domain.Client {
	return domain.Client{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Fields: audit.Fields{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func (r *ClientRepoPG) findOne(db *gorm.DB, id uuid.UUID) (*domain.Client, error) {
	var model ClientSchema
	if err := db.Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("client not found in db", zap.String("id", id.String()))
			return nil, nil
		}
		r.log.Error("failed to get client from db", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	c := clientFromSchema(model)
	return &c, nil
}

// FindByID retrieves a client by its id.
func (r *ClientRepoPG) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a client and locks its row on PostgreSQL.
func (r *ClientRepoPG) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	return r.findOne(lockForUpdate(r.db.WithContext(ctx)), id)
}

// FindByName retrieves every client with exactly the given name.
func (r *ClientRepoPG) FindByName(ctx context.Context, name string) ([]domain.Client, error) {
	return r.findByName(r.db.WithContext(ctx), name)
}

// FindByNamePage retrieves one page of clients with the given name, ordered
// by creation time.
func (r *ClientRepoPG) FindByNamePage(ctx context.Context, name string, page paging.Request) ([]domain.Client, error) {
	return r.findByName(r.db.WithContext(ctx).Offset(page.Offset()).Limit(page.Size), name)
}

func (r *ClientRepoPG) findByName(db *gorm.DB, name string) ([]domain.Client, error) {
	var models []ClientSchema
	if err := db.Where("name = ?", name).Order("created_at, id").Find(&models).Error; err != nil {
		r.log.Error("failed to list clients from db", zap.Error(err), zap.String("name", name))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	clients := make([]domain.Client, len(models))
	for i, m := range models {
		clients[i] = clientFromSchema(m)
	}
	return clients, nil
}

// Save inserts or updates a client.
func (r *ClientRepoPG) Save(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	if c == nil {
		return nil, errors.New("client cannot be nil")
	}

	model := clientToSchema(c)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(&model).Error; err != nil {
		r.log.Error("failed to save client in db", zap.Error(err), zap.String("id", c.ID.String()))
		return nil, translateError("client", "save", err)
	}

	r.log.Debug("client saved in db", zap.String("id", model.ID.String()))
	saved := clientFromSchema(model)
	return &saved, nil
}

// DeleteByID removes a client. It returns pkgerrors.ErrNoRowsAffected when no
// client has the id.
func (r *ClientRepoPG) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ClientSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete client in db", zap.Error(res.Error), zap.String("id", id.String()))
		return translateError("client", "delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNoRowsAffected
	}

	r.log.Debug("client deleted in db", zap.String("id", id.String()))
	return nil
}

// Transaction runs fn with a repository bound to a single database
// transaction. fn's error rolls the transaction back.
func (r *ClientRepoPG) Transaction(ctx context.Context, fn func(tx client.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ClientRepoPG{db: tx, log: r.log})
	})
}
