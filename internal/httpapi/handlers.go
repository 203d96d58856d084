package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/decrypto-backend/internal/hub"
	"github.com/DoyleJ11/decrypto-backend/internal/identity"
	"github.com/DoyleJ11/decrypto-backend/internal/words"
)

const maxNameLength = 64

type newGameRequest struct {
	Name    string             `json:"name"`
	Weights map[string]float64 `json:"weights,omitempty"`
}

type gameRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type gameInfo struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Phase string      `json:"phase"`
	Teams [2][]string `json:"teams"`
}

type loginRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// ListLister is the part of a word source the API exposes.
type ListLister interface {
	Lists() []words.List
}

func ListGames(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := h.List(r.Context())
		if err != nil {
			log.Error("list games", zap.Error(err))
			http.Error(w, "failed to list games", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}

func NewGame(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req newGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || len(req.Name) > maxNameLength {
			http.Error(w, "invalid name", http.StatusBadRequest)
			return
		}

		g, err := h.Create(r.Context(), req.Name, req.Weights)
		if errors.Is(err, words.ErrNotEnoughWords) || errors.Is(err, words.ErrNoWeightedLists) {
			http.Error(w, "not enough words for these weights", http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Error("create game", zap.Error(err))
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, gameRef{ID: g.ID, Name: g.Name})
	}
}

func GetGame(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		lb, err := h.Get(r.Context(), id)
		if errors.Is(err, hub.ErrGameNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("get game", zap.String("game_id", id), zap.Error(err))
			http.Error(w, "failed to load game", http.StatusInternalServerError)
			return
		}
		v, err := lb.State(r.Context())
		if err != nil {
			http.Error(w, "game unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, gameInfo{
			ID:    v.Game.ID,
			Name:  v.Game.Name,
			Phase: string(v.Game.Phase),
			Teams: [2][]string{v.Game.Teams[0].Players, v.Game.Teams[1].Players},
		})
	}
}

func DeleteGame(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		err := h.Remove(r.Context(), id)
		if errors.Is(err, hub.ErrGameNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("delete game", zap.String("game_id", id), zap.Error(err))
			http.Error(w, "failed to delete game", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListSources(src ListLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, src.Lists())
	}
}

// Login issues a signed token for username and records its display name.
func Login(tokens *identity.JWTAuthenticator, names identity.Directory, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		id := identity.Identity{
			Username:    strings.TrimSpace(req.Username),
			DisplayName: strings.TrimSpace(req.DisplayName),
		}
		if id.Username == "" || len(id.Username) > maxNameLength || len(id.DisplayName) > maxNameLength {
			http.Error(w, "invalid username", http.StatusBadRequest)
			return
		}

		token, err := tokens.Generate(id)
		if err != nil {
			log.Error("generate token", zap.Error(err))
			http.Error(w, "failed to log in", http.StatusInternalServerError)
			return
		}
		if names != nil && id.DisplayName != "" {
			if err := names.SetDisplayName(r.Context(), id.Username, id.DisplayName); err != nil {
				log.Warn("store display name", zap.String("player", id.Username), zap.Error(err))
			}
		}
		writeJSON(w, http.StatusOK, struct {
			Token string `json:"token"`
		}{Token: token})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
