package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bellapacxx/bingo-engine/config"
	"github.com/bellapacxx/bingo-engine/controllers"
	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/realtime"
	"github.com/bellapacxx/bingo-engine/repository"
	"github.com/bellapacxx/bingo-engine/routes"
	"github.com/bellapacxx/bingo-engine/services"
	"github.com/bellapacxx/bingo-engine/utils/logger"
)

// setupRepository picks postgres when DATABASE_URL is set, memory otherwise
func setupRepository(cfg *config.Config) repository.Repository {
	if cfg.DatabaseURL == "" {
		logger.Info("[INFO] DATABASE_URL not set, cards are kept in memory")
		return repository.NewInMemoryRepository()
	}
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		logger.Fatalf("[FATAL] %v", err)
	}
	return repository.NewGormRepository(db)
}

// setupRouter initializes Gin routes and middleware
func setupRouter(cfg *config.Config, ctl *controllers.Controller, hub *realtime.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, ctl, hub)
	return r
}

func main() {
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("[FATAL] config: %v", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warnf("[WARN] %v, keeping default level", err)
	}

	var patterns []*game.Pattern
	if cfg.PatternsFile != "" {
		if patterns, err = services.LoadPatterns(cfg.PatternsFile); err != nil {
			logger.Fatalf("[FATAL] %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := setupRepository(cfg)
	ch := realtime.NewMemory()
	defer ch.Close()

	// Players may only push claims; everything else is server-written.
	hub := realtime.NewHub(ch, realtime.PathPendingBingos)
	hub.SetCheckOrigin(func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(cfg.CORSOrigins, origin)
	})
	defer hub.Close()

	announcer := services.NewAnnouncer(ch, cfg.AnnounceInterval)
	go announcer.Run(ctx)

	session := services.NewSession(ch, repo, announcer)
	if err := session.Start(ctx); err != nil {
		logger.Fatalf("[FATAL] %v", err)
	}
	defer session.Stop()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	drawer := services.NewDrawer(ch, repo, rand.New(rand.NewSource(rnd.Int63())), cfg.DrawInterval, cfg.Rounds, patterns)
	verifier := services.NewVerifier(ch, repo, drawer)
	go verifier.Run(ctx)

	ctl := controllers.New(repo, session, drawer, rnd)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: setupRouter(cfg, ctl, hub)}

	go func() {
		logger.Infof("🚀 Bingo server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("[FATAL] Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("[INFO] shutting down")
	_ = drawer.Finish(context.Background())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("[ERROR] shutdown: %v", err)
	}
}
