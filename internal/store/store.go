// Package store persists games. In-memory state in the lobby is
// authoritative while a game runs; stores only need to hold the latest
// snapshot so a game can be reloaded after a restart.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/decrypto-backend/internal/engine"
)

var ErrNotFound = errors.New("game not found")

// Summary is the listing entry for a stored game.
type Summary struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Phase     engine.Phase `json:"phase"`
	CreatedAt time.Time    `json:"createdAt"`
}

type Store interface {
	Load(ctx context.Context, id string) (engine.Game, error)
	Save(ctx context.Context, g engine.Game) error
	// List returns every stored game, newest first.
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}

func summarize(g engine.Game) Summary {
	return Summary{ID: g.ID, Name: g.Name, Phase: g.Phase, CreatedAt: g.CreatedAt}
}
