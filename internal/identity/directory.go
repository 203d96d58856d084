package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MemoryDirectory struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{names: make(map[string]string)}
}

func (d *MemoryDirectory) DisplayName(_ context.Context, username string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[username]
	if !ok {
		return "", ErrUnknownPlayer
	}
	return name, nil
}

func (d *MemoryDirectory) SetDisplayName(_ context.Context, username, displayName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[username] = displayName
	return nil
}

// CachingDirectory remembers names read from or written to its backend.
// Writes go through to the backend before the cache is updated.
type CachingDirectory struct {
	backend Directory
	mu      sync.RWMutex
	cache   map[string]string
}

func NewCachingDirectory(backend Directory) *CachingDirectory {
	return &CachingDirectory{backend: backend, cache: make(map[string]string)}
}

func (d *CachingDirectory) DisplayName(ctx context.Context, username string) (string, error) {
	d.mu.RLock()
	name, ok := d.cache[username]
	d.mu.RUnlock()
	if ok {
		return name, nil
	}

	name, err := d.backend.DisplayName(ctx, username)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	d.cache[username] = name
	d.mu.Unlock()
	return name, nil
}

func (d *CachingDirectory) SetDisplayName(ctx context.Context, username, displayName string) error {
	if err := d.backend.SetDisplayName(ctx, username, displayName); err != nil {
		return err
	}
	d.mu.Lock()
	d.cache[username] = displayName
	d.mu.Unlock()
	return nil
}

// PostgresDirectory keeps display names in a players table.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

func NewPostgresDirectory(ctx context.Context, connString string) (*PostgresDirectory, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect players db: %w", err)
	}
	return &PostgresDirectory{pool: pool}, nil
}

func (d *PostgresDirectory) EnsureSchema(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS players (
		username     TEXT PRIMARY KEY,
		display_name TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create players table: %w", err)
	}
	return nil
}

func (d *PostgresDirectory) DisplayName(ctx context.Context, username string) (string, error) {
	var name string
	err := d.pool.QueryRow(ctx, "SELECT display_name FROM players WHERE username = $1", username).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUnknownPlayer
		}
		return "", fmt.Errorf("lookup player %s: %w", username, err)
	}
	return name, nil
}

func (d *PostgresDirectory) SetDisplayName(ctx context.Context, username, displayName string) error {
	_, err := d.pool.Exec(ctx, `INSERT INTO players (username, display_name) VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET display_name = EXCLUDED.display_name`, username, displayName)
	if err != nil {
		return fmt.Errorf("save player %s: %w", username, err)
	}
	return nil
}

func (d *PostgresDirectory) Close() {
	d.pool.Close()
}
