package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"saboteur/internal/engine"
	"saboteur/internal/lobby"
	"saboteur/internal/replay"
)

var (
	errTableNotFound = errors.New("table not found")
	errMissingTable  = errors.New("missing table parameter")
	errNotSeated     = errors.New("ticket is not seated at this table")
)

// Options configures a Server.
type Options struct {
	Port      int
	PublicURL string // base URL for QR codes; the request host when empty
	Catalog   engine.Catalog
	Store     replay.Store
	Logger    *zap.Logger
	Seed      func() (uint64, error) // engine.NewSeed when nil
}

// Server ties together the players pool, HTTP serving and WebSocket
// handling.
type Server struct {
	mu        sync.RWMutex
	hubs      map[string]*Hub
	pool      *lobby.Pool
	store     replay.Store
	catalog   engine.Catalog
	port      int
	publicURL string
	seed      func() (uint64, error)
	logger    *zap.Logger
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = replay.NewMemoryStore()
	}
	seed := opts.Seed
	if seed == nil {
		seed = engine.NewSeed
	}
	return &Server{
		hubs:      make(map[string]*Hub),
		pool:      lobby.NewPool(logger),
		store:     store,
		catalog:   opts.Catalog,
		port:      opts.Port,
		publicURL: opts.PublicURL,
		seed:      seed,
		logger:    logger.Named("server"),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		// :id is the player name on POST and the ticket everywhere else.
		api.POST("/search/:id", s.handleSearch)
		api.GET("/search/:id", s.handleStatus)
		api.DELETE("/search/:id", s.handleCancel)
		api.POST("/search/:id/confirm", s.handleConfirm)

		api.GET("/tables/:table", s.handleTable)
		api.GET("/tables/:table/qr", s.handleQR)
		api.GET("/tables/:table/replay", s.handleReplay)
	}
	r.GET("/ws", s.handleWS)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Start serves until ctx is cancelled, then shuts down every table.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Router(),
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("saboteur server starting", zap.String("addr", "http://localhost"+srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close stops every table.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, hub := range s.hubs {
		hub.Stop()
		delete(s.hubs, id)
	}
}
