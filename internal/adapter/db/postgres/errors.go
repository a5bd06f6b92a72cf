package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "crm-service/pkg/errors"
)

// translateError maps constraint violations onto the error taxonomy. Drivers
// without a gorm error translator are matched on their message.
func translateError(resource, op string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "duplicate key"):
		return pkgerrors.NewAlreadyExistsError(resource, "")
	case errors.Is(err, gorm.ErrForeignKeyViolated),
		strings.Contains(msg, "foreign key"):
		return pkgerrors.NewConflictError(resource, "operation violates a reference between records")
	}
	return fmt.Errorf("failed to %s %s: %w", op, resource, err)
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support it.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
