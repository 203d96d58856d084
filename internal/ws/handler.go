package ws

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/DoyleJ11/decrypto-backend/internal/engine"
	"github.com/DoyleJ11/decrypto-backend/internal/hub"
	"github.com/DoyleJ11/decrypto-backend/internal/identity"
	"github.com/DoyleJ11/decrypto-backend/internal/lobby"
	"github.com/DoyleJ11/decrypto-backend/internal/types"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
	pingInterval = 30 * time.Second
)

type Config struct {
	Hub            *hub.Hub
	Auth           identity.Authenticator
	Names          identity.Directory // optional
	OriginPatterns []string
	Logger         *zap.Logger
}

func Handler(cfg Config) http.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("ws")

	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("game")
		if gameID == "" {
			http.Error(w, "missing game", http.StatusBadRequest)
			return
		}

		id, err := cfg.Auth.Authenticate(r)
		if err != nil {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		if cfg.Names != nil && id.DisplayName != "" {
			if err := cfg.Names.SetDisplayName(r.Context(), id.Username, id.DisplayName); err != nil {
				logger.Warn("store display name", zap.String("player", id.Username), zap.Error(err))
			}
		}

		lb, err := cfg.Hub.Get(r.Context(), gameID)
		if errors.Is(err, hub.ErrGameNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("get game", zap.String("game_id", gameID), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: cfg.OriginPatterns,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		log := logger.With(zap.String("game_id", gameID), zap.String("player", id.Username))
		log.Debug("connected")

		out := make(chan types.ServerMessage, outboxSize)
		if err := lb.Send(r.Context(), lobby.Join{Username: id.Username, Outbox: out}); err != nil {
			conn.Close(websocket.StatusGoingAway, "game closed")
			return
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			_ = lb.Send(ctx, lobby.Leave{Username: id.Username, Outbox: out})
		}()

		connCtx, connCancel := context.WithCancel(r.Context())
		defer connCancel()

		// Writer goroutine. The lobby closes out when this connection is
		// replaced, dropped as slow, or the game shuts down.
		go func() {
			defer connCancel()
			for msg := range out {
				if err := write(connCtx, conn, msg); err != nil {
					return
				}
			}
			conn.Close(websocket.StatusGoingAway, "disconnected by server")
		}()

		// Keepalive
		go func() {
			t := time.NewTicker(pingInterval)
			defer t.Stop()
			for {
				select {
				case <-connCtx.Done():
					return
				case <-t.C:
					ctx, cancel := context.WithTimeout(connCtx, writeTimeout)
					err := conn.Ping(ctx)
					cancel()
					if err != nil {
						connCancel()
						return
					}
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(connCtx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Debug("disconnected")
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(connCtx, conn, errorMessage("bad json"))
				continue
			}

			cmd, ok := toEngineCommand(cm)
			if !ok {
				_ = write(connCtx, conn, errorMessage("unknown type"))
				continue
			}

			if err := lb.Send(connCtx, lobby.FromClient{Username: id.Username, Cmd: cmd}); err != nil {
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

func errorMessage(text string) types.ServerMessage {
	return types.ServerMessage{Type: types.MsgError, Error: text}
}

// toEngineCommand maps a wire message to a game command. Payload checks are
// left to the engine.
func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case types.MsgStart:
		return engine.Start{}, true
	case types.MsgSendClue:
		return engine.SendClue{Clues: m.Clues}, true
	case types.MsgSendEnemyGuess:
		return engine.SendEnemyGuess{Guess: m.Guess}, true
	case types.MsgSendTeamGuess:
		return engine.SendTeamGuess{Guess: m.Guess}, true
	case types.MsgLateJoin:
		return engine.LateJoin{Team: m.Team}, true
	case types.MsgChangeTeam:
		if m.Team == nil {
			return nil, false
		}
		return engine.ChangeTeam{Team: *m.Team}, true
	case types.MsgShuffle:
		return engine.ShuffleTeams{Seed: rand.Uint64()}, true
	default:
		return nil, false
	}
}
