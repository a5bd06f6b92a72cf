package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "crm-service/internal/domain/user"
	pkgerrors "crm-service/pkg/errors"
)

func TestUserRepoPG(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{ID: uuid.New(), Name: "admin", PasswordHash: "hash", Role: domain.RoleAdmin})
	require.NoError(t, err)

	got, err := repo.FindByName(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	missing, err := repo.FindByName(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.Create(ctx, &domain.User{Name: "admin", PasswordHash: "hash", Role: domain.RoleManager})
	var exists *pkgerrors.AlreadyExistsError
	assert.ErrorAs(t, err, &exists)
}
