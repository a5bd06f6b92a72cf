package client

import (
	"context"

	"github.com/google/uuid"

	domain "crm-service/internal/domain/client"
)

// ClientUsecase defines the business operations on clients used by transports.
type ClientUsecase interface {
	FindClientByName(ctx context.Context, in FindByNameRequest) ([]domain.Client, error)
	FindClientByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	SaveClient(ctx context.Context, c *domain.Client) (*domain.Client, error)
	SaveClients(ctx context.Context, clients []*domain.Client) ([]domain.Client, error)
	UpdateClient(ctx context.Context, c *domain.Client) (*domain.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

var _ ClientUsecase = (*Usecase)(nil)
