package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanySchema represents the database schema for the companies table.
type CompanySchema struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null;index"`
	Address   string    `gorm:"size:512"`
	Phone     string    `gorm:"size:32"`
	Website   string    `gorm:"size:255"`
	CreatedBy uuid.UUID `gorm:"type:uuid"`
	UpdatedBy uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

// TableName specifies the table name for the CompanySchema model.
func (CompanySchema) TableName() string {
	return "companies"
}

// ClientSchema represents the database schema for the clients table.
// Audit timestamps are owned by the service, so gorm must not touch them.
type ClientSchema struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Company   CompanySchema `gorm:"foreignKey:CompanyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Name      string        `gorm:"size:255;not null;index"`
	Email     string        `gorm:"size:255"`
	Phone     string        `gorm:"size:32"`
	CreatedBy uuid.UUID     `gorm:"type:uuid"`
	UpdatedBy uuid.UUID     `gorm:"type:uuid"`
	CreatedAt time.Time     `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime:false"`
}

// TableName specifies the table name for the ClientSchema model.
func (ClientSchema) TableName() string {
	return "clients"
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"size:16;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the tables used by the repositories.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{}, &CompanySchema{}, &ClientSchema{})
}
