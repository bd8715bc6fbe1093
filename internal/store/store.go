// Package store wires the BF2 service's Postgres connection, mirroring
// the composition engine's db package: sqlx for hand-written queries,
// GORM for the model CRUD, one global Config struct, explicit error
// wrapping at every boundary.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arxos/bf2/facade/mesh"
	"github.com/arxos/bf2/facade/mesherr"
	"github.com/arxos/bf2/facade/spec"
	"github.com/arxos/bf2/internal/config"
	"github.com/arxos/bf2/internal/store/models"
)

// Store holds the live database handles. A single Store is created at
// startup and shared across request handlers.
type Store struct {
	DB     *sqlx.DB
	GormDB *gorm.DB
}

// Open connects to Postgres using cfg and runs the auto-migration for
// the BF2 model set.
func Open(cfg config.Config) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database with GORM: %w", err)
	}

	if err := gormDB.AutoMigrate(&models.Material{}, &models.BuildRecord{}, &models.APIKey{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	log.Println("store: database connection established")
	return &Store{DB: db, GormDB: gormDB}, nil
}

// Close closes the underlying database connections.
func (s *Store) Close() error {
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	sqlDB, err := s.GormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to access GORM database: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close GORM database: %w", err)
	}
	return nil
}

// Health pings the database with a short timeout.
func (s *Store) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// CreateBuild inserts a new BuildRecord in the "Created" state and
// returns its id.
func (s *Store) CreateBuild(ownerID uuid.UUID, bs spec.BuildingSpec) (uuid.UUID, error) {
	specJSON, err := json.Marshal(bs)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal building spec: %w", err)
	}

	rec := models.BuildRecord{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Status:   "Created",
		SpecJSON: datatypes.JSON(specJSON),
	}
	if err := s.GormDB.Create(&rec).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create build record: %w", err)
	}
	return rec.ID, nil
}

// UpdateBuildStatus records the engine's current pipeline state.
func (s *Store) UpdateBuildStatus(id uuid.UUID, status string) error {
	if err := s.GormDB.Model(&models.BuildRecord{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update build status: %w", err)
	}
	return nil
}

// CompleteBuild records a successful build's mesh summary and warnings.
func (s *Store) CompleteBuild(id uuid.UUID, summary mesh.Summary, warnings []mesherr.Warning) error {
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":         "Assembled",
		"vertex_count":   summary.VertexCount,
		"triangle_count": summary.TriangleCount,
		"material_count": summary.MaterialCount,
		"warnings":       datatypes.JSON(warningsJSON),
		"completed_at":   now,
	}
	if err := s.GormDB.Model(&models.BuildRecord{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to complete build record: %w", err)
	}
	return nil
}

// FailBuild records a build's terminal BuildError.
func (s *Store) FailBuild(id uuid.UUID, buildErr *mesherr.BuildError) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       "Failed",
		"error_kind":   buildErr.Kind.String(),
		"error_detail": buildErr.Error(),
		"completed_at": now,
	}
	if err := s.GormDB.Model(&models.BuildRecord{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to record build failure: %w", err)
	}
	return nil
}

// GetBuild fetches a build record by id.
func (s *Store) GetBuild(id uuid.UUID) (*models.BuildRecord, error) {
	var rec models.BuildRecord
	if err := s.GormDB.First(&rec, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch build record: %w", err)
	}
	return &rec, nil
}

// CreateAPIKey persists a new API key record. keyHash must already be
// the bcrypt hash of the secret; the store never sees the plaintext.
func (s *Store) CreateAPIKey(ownerID uuid.UUID, label, tier, keyHash string) (uuid.UUID, error) {
	rec := models.APIKey{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Label:   label,
		Tier:    tier,
		KeyHash: keyHash,
	}
	if err := s.GormDB.Create(&rec).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create api key: %w", err)
	}
	return rec.ID, nil
}

// GetAPIKey fetches an API key record by id.
func (s *Store) GetAPIKey(id uuid.UUID) (*models.APIKey, error) {
	var rec models.APIKey
	if err := s.GormDB.First(&rec, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch api key: %w", err)
	}
	return &rec, nil
}

// TouchAPIKey records a successful use of the key.
func (s *Store) TouchAPIKey(id uuid.UUID) error {
	now := time.Now()
	if err := s.GormDB.Model(&models.APIKey{}).Where("id = ?", id).Update("last_used_at", now).Error; err != nil {
		return fmt.Errorf("failed to touch api key: %w", err)
	}
	return nil
}

// UpsertMaterial inserts or updates a material registry entry.
func (s *Store) UpsertMaterial(materialID spec.MaterialID, name, textureURL string) error {
	var existing models.Material
	err := s.GormDB.Where("material_id = ?", string(materialID)).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		m := models.Material{
			ID:         uuid.New(),
			MaterialID: string(materialID),
			Name:       name,
			TextureURL: textureURL,
		}
		if err := s.GormDB.Create(&m).Error; err != nil {
			return fmt.Errorf("failed to create material: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up material: %w", err)
	}
	existing.Name = name
	existing.TextureURL = textureURL
	if err := s.GormDB.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update material: %w", err)
	}
	return nil
}

// ListMaterials returns every registered material, ordered by name.
func (s *Store) ListMaterials() ([]models.Material, error) {
	var out []models.Material
	if err := s.GormDB.Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return out, nil
}
