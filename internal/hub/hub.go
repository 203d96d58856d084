package hub

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/decrypto-backend/internal/engine"
	"github.com/DoyleJ11/decrypto-backend/internal/identity"
	"github.com/DoyleJ11/decrypto-backend/internal/lobby"
	"github.com/DoyleJ11/decrypto-backend/internal/store"
	"github.com/DoyleJ11/decrypto-backend/internal/words"
)

var ErrGameNotFound = errors.New("game not found")
var ErrHubClosed = errors.New("hub closed")

const storeTimeout = 5 * time.Second

type HubMsg interface{ isHubMsg() }

type CreateGame struct {
	Name    string
	Weights map[string]float64 // per-game word list weights, optional
	Reply   chan CreateResult
}

type CreateResult struct {
	Game engine.Game
	Err  error
}

// GetGame returns the live lobby for ID, loading it from the store if needed.
type GetGame struct {
	ID    string
	Reply chan GetResult
}

type GetResult struct {
	Lobby *lobby.Lobby
	Err   error
}

// RemoveGame stops the lobby and deletes the stored game.
type RemoveGame struct {
	ID    string
	Reply chan error
}

type ListGames struct {
	Reply chan ListResult
}

type ListResult struct {
	Games []store.Summary
	Err   error
}

type ShutdownHub struct{}

// gameLoaded carries a store read back to the loop.
type gameLoaded struct {
	id   string
	game engine.Game
	err  error
}

func (CreateGame) isHubMsg()  {}
func (GetGame) isHubMsg()     {}
func (RemoveGame) isHubMsg()  {}
func (ListGames) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}
func (gameLoaded) isHubMsg()  {}

// pendingLoad collects Get callers waiting on the same store read.
type pendingLoad struct {
	waiters []chan GetResult
	removed bool
}

type Config struct {
	Store  store.Store
	Words  words.Source
	Names  identity.Directory
	Logger *zap.Logger
	Rand   *rand.Rand
	Now    func() time.Time
}

// Hub owns the registry of live lobbies. Its loop is the only goroutine
// that touches the maps or the key-deck RNG. Store reads run off the loop so
// a slow database never delays lookups of live games.
type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	pending map[string]*pendingLoad
	store   store.Store
	words   words.Source
	names   identity.Directory
	log     *zap.Logger
	rng     *rand.Rand
	now     func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewHub(parent context.Context, cfg Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		pending: make(map[string]*pendingLoad),
		store:   cfg.Store,
		words:   cfg.Words,
		names:   cfg.Names,
		log:     cfg.Logger.Named("hub"),
		rng:     cfg.Rand,
		now:     cfg.Now,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go h.loop()
	return h
}

// Done is closed after every lobby has stopped and flushed its last save.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateGame:
				g, err := h.create(msg.Name, msg.Weights)
				msg.Reply <- CreateResult{Game: g, Err: err}

			case GetGame:
				h.get(msg.ID, msg.Reply)

			case gameLoaded:
				h.loaded(msg)

			case RemoveGame:
				msg.Reply <- h.remove(msg.ID)

			case ListGames:
				go func() {
					ctx, cancel := context.WithTimeout(h.ctx, storeTimeout)
					defer cancel()
					games, err := h.store.List(ctx)
					msg.Reply <- ListResult{Games: games, Err: err}
				}()

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) create(name string, weights map[string]float64) (engine.Game, error) {
	if h.words == nil {
		return engine.Game{}, errors.New("create game: no word source configured")
	}
	src := h.words
	if rw, ok := src.(words.Reweighter); ok && len(weights) > 0 {
		src = rw.WithWeights(weights)
	}
	secret, err := src.DistinctWords(2 * engine.NumWords)
	if err != nil {
		return engine.Game{}, fmt.Errorf("create game: %w", err)
	}
	g, err := engine.NewGame(uuid.NewString(), name, secret, h.rng, h.now())
	if err != nil {
		return engine.Game{}, fmt.Errorf("create game: %w", err)
	}

	ctx, cancel := context.WithTimeout(h.ctx, storeTimeout)
	defer cancel()
	if err := h.store.Save(ctx, g); err != nil {
		return engine.Game{}, fmt.Errorf("create game: %w", err)
	}
	h.lobbies[g.ID] = h.startLobby(g)
	h.log.Info("game created", zap.String("game_id", g.ID), zap.String("name", g.Name))
	return g.Clone(), nil
}

func (h *Hub) get(id string, reply chan GetResult) {
	if lb := h.lobbies[id]; lb != nil {
		reply <- GetResult{Lobby: lb}
		return
	}
	if p := h.pending[id]; p != nil {
		p.waiters = append(p.waiters, reply)
		return
	}
	h.pending[id] = &pendingLoad{waiters: []chan GetResult{reply}}
	go func() {
		ctx, cancel := context.WithTimeout(h.ctx, storeTimeout)
		defer cancel()
		g, err := h.store.Load(ctx, id)
		select {
		case h.inbox <- gameLoaded{id: id, game: g, err: err}:
		case <-h.ctx.Done():
		}
	}()
}

func (h *Hub) loaded(msg gameLoaded) {
	p := h.pending[msg.id]
	delete(h.pending, msg.id)
	if p == nil {
		return
	}

	var res GetResult
	switch {
	case p.removed || errors.Is(msg.err, store.ErrNotFound):
		res.Err = ErrGameNotFound
	case msg.err != nil:
		res.Err = fmt.Errorf("load game %s: %w", msg.id, msg.err)
	default:
		res.Lobby = h.startLobby(msg.game)
		h.lobbies[msg.id] = res.Lobby
		h.log.Info("game restored", zap.String("game_id", msg.id))
	}
	for _, w := range p.waiters {
		w <- res
	}
}

func (h *Hub) remove(id string) error {
	if p := h.pending[id]; p != nil {
		// The load in flight must not revive the game.
		p.removed = true
	}
	if lb := h.lobbies[id]; lb != nil {
		delete(h.lobbies, id)
		// Wait for the final save so it cannot resurrect the deleted row.
		_ = lb.Send(h.ctx, lobby.Shutdown{})
		<-lb.Done()
	}
	ctx, cancel := context.WithTimeout(h.ctx, storeTimeout)
	defer cancel()
	err := h.store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrGameNotFound
	}
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	h.log.Info("game removed", zap.String("game_id", id))
	return nil
}

func (h *Hub) startLobby(g engine.Game) *lobby.Lobby {
	return lobby.NewLobby(h.ctx, g, lobby.Deps{
		Store:  h.store,
		Names:  h.names,
		Logger: h.log,
	})
}

func (h *Hub) shutdown() {
	h.cancel()
	for id, lb := range h.lobbies {
		<-lb.Done()
		delete(h.lobbies, id)
	}
	h.log.Info("hub stopped")
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case <-h.ctx.Done():
		return ErrHubClosed
	default:
	}
	select {
	case h.inbox <- m:
		return nil
	case <-h.ctx.Done():
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await waits for a reply, giving up when ctx ends or the hub stops.
func await[T any](ctx context.Context, h *Hub, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-h.done:
		return zero, ErrHubClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (h *Hub) Create(ctx context.Context, name string, weights map[string]float64) (engine.Game, error) {
	reply := make(chan CreateResult, 1)
	if err := h.send(ctx, CreateGame{Name: name, Weights: weights, Reply: reply}); err != nil {
		return engine.Game{}, err
	}
	res, err := await(ctx, h, reply)
	if err != nil {
		return engine.Game{}, err
	}
	return res.Game, res.Err
}

func (h *Hub) Get(ctx context.Context, id string) (*lobby.Lobby, error) {
	reply := make(chan GetResult, 1)
	if err := h.send(ctx, GetGame{ID: id, Reply: reply}); err != nil {
		return nil, err
	}
	res, err := await(ctx, h, reply)
	if err != nil {
		return nil, err
	}
	return res.Lobby, res.Err
}

func (h *Hub) Remove(ctx context.Context, id string) error {
	reply := make(chan error, 1)
	if err := h.send(ctx, RemoveGame{ID: id, Reply: reply}); err != nil {
		return err
	}
	res, err := await(ctx, h, reply)
	if err != nil {
		return err
	}
	return res
}

func (h *Hub) List(ctx context.Context) ([]store.Summary, error) {
	reply := make(chan ListResult, 1)
	if err := h.send(ctx, ListGames{Reply: reply}); err != nil {
		return nil, err
	}
	res, err := await(ctx, h, reply)
	if err != nil {
		return nil, err
	}
	return res.Games, res.Err
}

// Shutdown stops every lobby and waits for their last saves or for ctx.
func (h *Hub) Shutdown(ctx context.Context) error {
	if err := h.send(ctx, ShutdownHub{}); err != nil && !errors.Is(err, ErrHubClosed) {
		return err
	}
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
