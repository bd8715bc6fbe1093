// Package models defines the GORM-mapped rows the BF2 service persists:
// the material registry and the history of builds run against it.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Material is one entry in a building's material registry, keyed by the
// opaque MaterialID the engine treats as a plain string.
type Material struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	MaterialID string    `gorm:"uniqueIndex;not null"`
	Name       string    `gorm:"not null"`
	TextureURL string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// APIKey is a long-lived credential a client exchanges for a short-lived
// JWT at /auth/token. Only the bcrypt hash of the secret is stored; the
// plaintext is returned once at creation and never persisted.
type APIKey struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Label      string
	KeyHash    string `gorm:"not null"`
	Tier       string `gorm:"not null"`
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// BuildRecord is a persisted summary of one engine.Build invocation: the
// input spec, the resulting mesh summary, and any warnings. The full
// triangle/vertex geometry is not persisted.
type BuildRecord struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OwnerID       uuid.UUID      `gorm:"type:uuid;index;not null"`
	Status        string         `gorm:"not null"` // mirrors engine.State.String()
	SpecJSON      datatypes.JSON `gorm:"type:jsonb;not null"`
	Warnings      datatypes.JSON
	VertexCount   int
	TriangleCount int
	MaterialCount int
	ErrorKind     string
	ErrorDetail   string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}
