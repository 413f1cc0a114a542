package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/party-rooms/internal/config"
	"github.com/thereayou/party-rooms/internal/database"
	"github.com/thereayou/party-rooms/internal/game"
	"github.com/thereayou/party-rooms/internal/handlers"
	"github.com/thereayou/party-rooms/internal/middleware"
	"github.com/thereayou/party-rooms/internal/questions"
	"github.com/thereayou/party-rooms/internal/websocket"
	"github.com/thereayou/party-rooms/pkg/auth"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Config     *config.Config
	Router     *gin.Engine
	Hub        *websocket.Hub
	Rooms      *game.Registry
	Bank       *questions.Bank
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	s := &Server{Config: cfg}

	store, err := s.openStore(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Bank = questions.NewBank(store)
	if err := s.Bank.Load(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("load questions: %w", err)
	}

	if cfg.AdminJWTSecret != "" {
		s.JWTManager = auth.NewJWTManager(cfg.AdminJWTSecret, cfg.AdminTokenTTL)
	} else {
		slog.Warn("ADMIN_JWT_SECRET is not set, question mutations are unauthenticated")
	}

	s.Hub = websocket.NewHub()
	s.Rooms = game.NewRegistry(game.RandomCodes{}, s.Bank)
	gameH := handlers.NewGameHandler(s.Rooms, s.Hub)
	if cfg.TurnTimer {
		s.Rooms.OnTurnExpired(gameH.TurnExpired)
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	APIEndpoints(router,
		handlers.NewWebSocketHandler(s.Hub, gameH, cfg.SendBuffer, cfg.AllowedOrigins),
		handlers.NewQuestionHandler(s.Bank),
		handlers.Health(s.Rooms, s.Hub),
		s.JWTManager,
	)
	s.Router = router

	return s, nil
}

func (s *Server) openStore(ctx context.Context) (questions.Store, error) {
	switch s.Config.QuestionStore {
	case config.StoreRedis:
		opts, err := redis.ParseURL(s.Config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		s.Redis = redis.NewClient(opts)
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		slog.Info("question store: redis")
		return questions.NewRedisStore(s.Redis), nil

	case config.StorePostgres:
		s.DB = &database.Database{}
		if err := s.DB.Connect(s.Config.DatabaseURL); err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		slog.Info("question store: postgres")
		return s.DB, nil

	default:
		slog.Info("question store: memory")
		return questions.NewMemoryStore(), nil
	}
}

// Run обслуживает HTTP до отмены ctx, затем закрывает соединения
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Config.Addr(),
		Handler: s.Router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Hub.Run(ctx)
	})

	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server run: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down", "rooms", s.Rooms.Len(), "connections", s.Hub.ClientCount())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.Close()
	return err
}

// Close освобождает подключения к хранилищам
func (s *Server) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			slog.Warn("redis close", "error", err)
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			slog.Warn("postgres close", "error", err)
		}
	}
}
