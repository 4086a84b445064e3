package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/coin_tracker/internal/domain"
	"github.com/vitos/coin_tracker/internal/usecase"
	"go.uber.org/zap"
)

// IconResolver maps a coin symbol to its icon URL.
type IconResolver interface {
	IconURL(symbol string) string
}

type Options struct {
	// RenderBudget is how long a page waits for its queries before it
	// renders the loading state.
	RenderBudget time.Duration
	// RefreshSeconds is the meta refresh interval of a loading page.
	RefreshSeconds int
	Theme          domain.ThemePalette
}

type Server struct {
	router    *http.ServeMux
	server    *http.Server
	service   *usecase.CoinService
	fetchRepo domain.FetchRepository
	icons     IconResolver
	templates *template.Template
	upgrader  websocket.Upgrader
	opts      Options
	logger    *zap.Logger
}

func NewServer(
	port int,
	service *usecase.CoinService,
	fetchRepo domain.FetchRepository,
	icons IconResolver,
	opts Options,
	logger *zap.Logger,
) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RefreshSeconds <= 0 {
		opts.RefreshSeconds = 1
	}
	if opts.Theme.Name == "" {
		opts.Theme = domain.DarkTheme
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    http.NewServeMux(),
		service:   service,
		fetchRepo: fetchRepo,
		icons:     icons,
		templates: tmpl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		opts:   opts,
		logger: logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() {
	// Coin list
	s.router.HandleFunc("GET /{$}", s.handleList)

	// Coin detail and its tabs
	s.router.HandleFunc("GET /{coinId}", s.handleDetail)
	s.router.HandleFunc("GET /{coinId}/price", s.handleDetail)
	s.router.HandleFunc("GET /{coinId}/chart", s.handleDetail)

	// Navigation from the list carries the display name
	s.router.HandleFunc("POST /{coinId}", s.handleNavigate)

	// JSON
	s.router.HandleFunc("GET /api/coins", s.handleCoinsJSON)
	s.router.HandleFunc("GET /api/coins/{coinId}", s.handleCoinJSON)
	s.router.HandleFunc("GET /api/fetches", s.handleFetchesJSON)

	// Live detail
	s.router.HandleFunc("GET /ws/coins/{coinId}", s.handleLive)

	// Status
	s.router.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the router wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.router)
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
