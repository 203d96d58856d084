package httpapi

import (
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/DoyleJ11/decrypto-backend/internal/hub"
	"github.com/DoyleJ11/decrypto-backend/internal/identity"
	"github.com/DoyleJ11/decrypto-backend/internal/ws"
)

type Deps struct {
	Hub            *hub.Hub
	Sources        ListLister
	Auth           identity.Authenticator
	Tokens         *identity.JWTAuthenticator // nil disables /api/login
	Names          identity.Directory
	AllowedOrigins []string
	Logger         *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(corsOptions(d.AllowedOrigins)))

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(ws.Config{
		Hub:            d.Hub,
		Auth:           d.Auth,
		Names:          d.Names,
		OriginPatterns: d.AllowedOrigins,
		Logger:         log,
	}))

	r.Route("/api", func(r chi.Router) {
		if d.Tokens != nil {
			r.Post("/login", Login(d.Tokens, d.Names, log))
		}
		r.Route("/decrypto", func(r chi.Router) {
			r.Get("/games", ListGames(d.Hub, log))
			r.Post("/new", NewGame(d.Hub, log))
			if d.Sources != nil {
				r.Get("/sources", ListSources(d.Sources))
			}
			r.Get("/{id}", GetGame(d.Hub, log))
			r.Delete("/{id}", DeleteGame(d.Hub, log))
		})
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// corsOptions allows origins whose host matches one of patterns, using the
// same pattern syntax as the websocket origin check.
func corsOptions(patterns []string) cors.Options {
	return cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return originAllowed(origin, patterns)
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}
}

func originAllowed(origin string, patterns []string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, p := range patterns {
		if ok, _ := path.Match(p, u.Host); ok {
			return true
		}
	}
	return false
}
