package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/DoyleJ11/decrypto-backend/internal/engine"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OpenPostgres connects to Postgres through gorm and applies pool limits.
func OpenPostgres(dsn string, pool PoolConfig) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database url is empty")
	}
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return conn, nil
}

// gameRecord stores the scalar fields as columns and both teams, rounds
// included, as one jsonb document.
type gameRecord struct {
	ID         string         `gorm:"primaryKey;size:36"`
	Name       string         `gorm:"size:128;not null"`
	Phase      string         `gorm:"size:32;not null"`
	ActiveTeam int            `gorm:"not null"`
	Teams      datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"not null;index"`
	UpdatedAt  time.Time      `gorm:"not null"`
}

func (gameRecord) TableName() string { return "decrypto_games" }

type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Migrate creates or updates the games table.
func (s *Gorm) Migrate() error {
	if err := s.db.AutoMigrate(&gameRecord{}); err != nil {
		return fmt.Errorf("migrate games: %w", err)
	}
	return nil
}

func (s *Gorm) Load(ctx context.Context, id string) (engine.Game, error) {
	var rec gameRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return engine.Game{}, ErrNotFound
		}
		return engine.Game{}, fmt.Errorf("load game %s: %w", id, err)
	}
	return fromRecord(rec)
}

func (s *Gorm) Save(ctx context.Context, g engine.Game) error {
	rec, err := toRecord(g)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("save game %s: %w", g.ID, err)
	}
	return nil
}

func (s *Gorm) List(ctx context.Context) ([]Summary, error) {
	var recs []gameRecord
	err := s.db.WithContext(ctx).
		Select("id", "name", "phase", "created_at").
		Order("created_at desc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	out := make([]Summary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Summary{
			ID:        rec.ID,
			Name:      rec.Name,
			Phase:     engine.Phase(rec.Phase),
			CreatedAt: rec.CreatedAt,
		})
	}
	return out, nil
}

func (s *Gorm) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&gameRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete game %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func toRecord(g engine.Game) (gameRecord, error) {
	teams, err := json.Marshal(g.Teams)
	if err != nil {
		return gameRecord{}, fmt.Errorf("encode teams: %w", err)
	}
	return gameRecord{
		ID:         g.ID,
		Name:       g.Name,
		Phase:      string(g.Phase),
		ActiveTeam: g.ActiveTeam,
		Teams:      datatypes.JSON(teams),
		CreatedAt:  g.CreatedAt,
	}, nil
}

func fromRecord(rec gameRecord) (engine.Game, error) {
	g := engine.Game{
		ID:         rec.ID,
		Name:       rec.Name,
		Phase:      engine.Phase(rec.Phase),
		ActiveTeam: rec.ActiveTeam,
		CreatedAt:  rec.CreatedAt,
	}
	if err := json.Unmarshal(rec.Teams, &g.Teams); err != nil {
		return engine.Game{}, fmt.Errorf("decode teams of %s: %w", rec.ID, err)
	}
	return g, nil
}
