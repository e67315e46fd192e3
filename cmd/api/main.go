package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/commonground-app/backend/internal/config"
	"github.com/commonground-app/backend/internal/handler"
	"github.com/commonground-app/backend/internal/handler/ws"
	chatservice "github.com/commonground-app/backend/internal/service/chat"
	"github.com/commonground-app/backend/internal/service/mediation"
	"github.com/commonground-app/backend/internal/store/graph"
	"github.com/commonground-app/backend/internal/store/profile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	chatSvc := chatservice.NewService(chatservice.NewMemoryStore(), cfg.Channel.PageSize)

	profileStore := buildProfileStore(cfg.Redis, logger)
	graphStore := buildGraphStore(ctx, cfg.Neo4j, logger)

	composer, err := mediation.NewComposer(ctx, buildChatModel(ctx, cfg.AI, logger), mediation.ComposerConfig{Enabled: true})
	if err != nil {
		logger.Warn("intervention composer unavailable, using deterministic composition", zap.Error(err))
		composer = nil
	}

	engine := mediation.NewEngine(composer, profileStore, graphStore, logger)

	limits := ws.Limits{
		"join":         {RPS: cfg.Channel.JoinRPS, Burst: cfg.Channel.JoinBurst},
		"send_message": {RPS: cfg.Channel.SendRPS, Burst: cfg.Channel.SendBurst},
	}
	router := handler.NewRouter(chatSvc, engine, graphStore, limits, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func buildChatModel(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) model.ChatModel {
	if !cfg.Enabled() {
		logger.Info("ark credentials not configured, intervention composer runs deterministically")
		return nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		logger.Warn("chat model init failed, intervention composer runs deterministically", zap.Error(err))
		return nil
	}
	logger.Info("chat model initialized", zap.String("model", cfg.Model))
	return chatModel
}

func buildProfileStore(cfg config.RedisConfig, logger *zap.Logger) profile.Store {
	if !cfg.Enabled() {
		logger.Info("redis not configured, participant profiles held in memory")
		return profile.NewMemoryStore()
	}

	store, err := profile.NewRedisStore(cfg.Addr)
	if err != nil {
		logger.Warn("redis unavailable, participant profiles held in memory", zap.Error(err))
		return profile.NewMemoryStore()
	}
	logger.Info("profile store connected", zap.String("addr", cfg.Addr))
	return store
}

func buildGraphStore(ctx context.Context, cfg config.Neo4jConfig, logger *zap.Logger) graph.Store {
	if !cfg.Enabled() {
		logger.Info("neo4j not configured, relationship graph held in memory")
		return graph.NewMemoryStore()
	}

	store, err := graph.NewNeo4jStore(ctx, cfg.URI, cfg.Username, cfg.Password, cfg.Database)
	if err != nil {
		logger.Warn("neo4j unavailable, relationship graph held in memory", zap.Error(err))
		return graph.NewMemoryStore()
	}
	logger.Info("graph store connected", zap.String("uri", cfg.URI))
	return store
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
