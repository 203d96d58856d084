package lobby

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/decrypto-backend/internal/engine"
	"github.com/DoyleJ11/decrypto-backend/internal/identity"
	"github.com/DoyleJ11/decrypto-backend/internal/store"
	"github.com/DoyleJ11/decrypto-backend/internal/types"
)

type Msg interface{ isLobbyMsg() }

// FromClient is a player action. Username is the authenticated identity.
type FromClient struct {
	Username string
	Cmd      engine.Command
}

func (FromClient) isLobbyMsg() {}

// Join attaches a connection for Username. A second Join for the same
// username replaces (and closes) the earlier outbox.
type Join struct {
	Username string
	Outbox   chan types.ServerMessage
}

func (Join) isLobbyMsg() {}

// Leave detaches Outbox if it is still the live connection for Username.
type Leave struct {
	Username string
	Outbox   chan types.ServerMessage
}

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type playersResolved struct {
	seq   int
	teams [2][]engine.Seat
}

func (playersResolved) isLobbyMsg() {}

type View struct {
	Version    int
	NumClients int
	Game       engine.Game
}

// Deps are the collaborators a lobby uses. Store and Names may be nil.
type Deps struct {
	Store  store.Store
	Names  identity.Directory
	Logger *zap.Logger
}

const saveTimeout = 5 * time.Second

// Lobby owns one game. All state changes happen on the loop goroutine, one
// message at a time, in arrival order.
type Lobby struct {
	inbox     chan Msg
	game      engine.Game
	version   int
	rosterSeq int
	clients   map[string]chan types.ServerMessage
	saves     chan engine.Game
	store     store.Store
	names     identity.Directory
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}
}

func NewLobby(parent context.Context, initial engine.Game, deps Deps) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Lobby{
		inbox:   make(chan Msg, 64),
		game:    initial,
		clients: make(map[string]chan types.ServerMessage),
		saves:   make(chan engine.Game, 1),
		store:   deps.Store,
		names:   deps.Names,
		log:     logger.Named("lobby").With(zap.String("game_id", initial.ID)),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.loop()
	if l.store != nil {
		l.wg.Add(1)
		go l.persist()
	}
	go func() {
		l.wg.Wait()
		close(l.done)
	}()
	return l
}

// Inbox exposes the raw inbox for callers that manage their own blocking.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the loop has exited and pending saves are flushed.
func (l *Lobby) Done() <-chan struct{} { return l.done }

var ErrClosed = errors.New("lobby closed")

// Send delivers m unless ctx ends or the lobby has shut down first.
func (l *Lobby) Send(ctx context.Context, m Msg) error {
	select {
	case <-l.ctx.Done():
		return ErrClosed
	default:
	}
	select {
	case l.inbox <- m:
		return nil
	case <-l.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a copy of the current game.
func (l *Lobby) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := l.Send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-l.ctx.Done():
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func (l *Lobby) loop() {
	defer l.wg.Done()
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.handleJoin(msg)

			case Leave:
				if ch, ok := l.clients[msg.Username]; ok && ch == msg.Outbox {
					close(ch)
					delete(l.clients, msg.Username)
				}

			case FromClient:
				l.handleCommand(msg)

			case playersResolved:
				// A newer roster may already be on its way.
				if msg.seq == l.rosterSeq {
					teams := msg.teams
					l.broadcast(func(string) (types.ServerMessage, bool) {
						return types.ServerMessage{Type: types.MsgPlayers, Version: l.version, Teams: &teams}, true
					})
				}

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					Game:       l.game.Clone(),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) handleJoin(msg Join) {
	if old, ok := l.clients[msg.Username]; ok && old != msg.Outbox {
		close(old)
	}
	l.clients[msg.Username] = msg.Outbox

	events, next, err := engine.Apply(l.game, msg.Username, engine.Join{})
	switch {
	case errors.Is(err, engine.ErrLateJoinRequired):
		l.log.Info("late join offered", zap.String("player", msg.Username))
	case err != nil:
		l.log.Warn("join rejected", zap.String("player", msg.Username), zap.Error(err))
	case len(events) > 0:
		l.commit(next)
		l.log.Info("player joined", zap.String("player", msg.Username), zap.Int("team", events[0].Team))
	default:
		l.log.Debug("player reconnected", zap.String("player", msg.Username))
	}

	l.broadcastStatus()
	l.broadcastHistory()
	l.refreshPlayers()
}

func (l *Lobby) handleCommand(msg FromClient) {
	events, next, err := engine.Apply(l.game, msg.Username, msg.Cmd)
	if err != nil {
		// Illegal actions are dropped without telling the sender.
		l.log.Debug("discarding command",
			zap.String("player", msg.Username),
			zap.String("command", fmt.Sprintf("%T", msg.Cmd)),
			zap.Error(err))
		return
	}
	if len(events) == 0 {
		return
	}

	l.commit(next)
	l.broadcastStatus()
	if hasAny(events, engine.EvtGameStarted, engine.EvtRoundAdvanced) {
		l.broadcastHistory()
	}
	if hasAny(events, engine.EvtGameStarted, engine.EvtRoundAdvanced, engine.EvtPlayerJoined, engine.EvtTeamsChanged) {
		l.refreshPlayers()
	}
}

func (l *Lobby) commit(next engine.Game) {
	l.game = next
	l.version++
	l.save(next)
}

// save hands the latest snapshot to the persist goroutine. Only the newest
// pending snapshot is kept.
func (l *Lobby) save(g engine.Game) {
	if l.store == nil {
		return
	}
	select {
	case l.saves <- g:
		return
	default:
	}
	select {
	case <-l.saves:
	default:
	}
	l.saves <- g
}

func (l *Lobby) persist() {
	defer l.wg.Done()
	for {
		select {
		case g := <-l.saves:
			l.write(l.ctx, g)
		case <-l.ctx.Done():
			select {
			case g := <-l.saves:
				l.write(context.Background(), g)
			default:
			}
			return
		}
	}
}

// write finishes a started save even if the lobby is shutting down.
func (l *Lobby) write(parent context.Context, g engine.Game) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), saveTimeout)
	defer cancel()
	if err := l.store.Save(ctx, g); err != nil {
		l.log.Error("save failed", zap.Error(err))
	}
}

func (l *Lobby) broadcastStatus() {
	l.broadcast(func(username string) (types.ServerMessage, bool) {
		status := engine.ProjectStatus(l.game, username)
		return types.ServerMessage{Type: types.MsgStatus, Version: l.version, Status: &status}, true
	})
}

func (l *Lobby) broadcastHistory() {
	if l.game.Phase == engine.PhasePreStart {
		return
	}
	var histories [2]engine.History
	for t := range histories {
		histories[t] = engine.BuildHistory(l.game, t)
	}
	l.broadcast(func(username string) (types.ServerMessage, bool) {
		team := l.game.TeamOf(username)
		if team == -1 {
			return types.ServerMessage{}, false
		}
		h := histories[team]
		return types.ServerMessage{Type: types.MsgHistory, Version: l.version, History: &h}, true
	})
}

// refreshPlayers resolves display names off the loop and posts the roster
// back to it, so a slow directory never stalls game actions.
func (l *Lobby) refreshPlayers() {
	teams := engine.Roster(l.game)
	l.rosterSeq++
	seq := l.rosterSeq
	go func() {
		ctx, cancel := context.WithTimeout(l.ctx, saveTimeout)
		defer cancel()
		for t := range teams {
			for i := range teams[t] {
				teams[t][i].Name = identity.ResolveName(ctx, l.names, teams[t][i].Username)
			}
		}
		select {
		case l.inbox <- playersResolved{seq: seq, teams: teams}:
		case <-l.ctx.Done():
		}
	}()
}

// broadcast sends to every connected client for which build returns true.
func (l *Lobby) broadcast(build func(username string) (types.ServerMessage, bool)) {
	for username, ch := range l.clients {
		msg, ok := build(username)
		if !ok {
			continue
		}
		select {
		case ch <- msg:
			//ok
		default:
			// Client is slow/full - drop them.
			l.log.Warn("dropping slow client", zap.String("player", username))
			close(ch)
			delete(l.clients, username)
		}
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more messages
		delete(l.clients, id)
	}
	l.cancel()
}

func hasAny(events []engine.Event, want ...engine.EventType) bool {
	for _, e := range events {
		for _, t := range want {
			if e.Type == t {
				return true
			}
		}
	}
	return false
}
