package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satindergrewal/cadence/internal/account"
	"github.com/satindergrewal/cadence/internal/api"
	"github.com/satindergrewal/cadence/internal/catalog"
	"github.com/satindergrewal/cadence/internal/config"
	"github.com/satindergrewal/cadence/internal/curator"
	"github.com/satindergrewal/cadence/internal/fixtures"
	"github.com/satindergrewal/cadence/internal/gemini"
	"github.com/satindergrewal/cadence/internal/ollama"
	"github.com/satindergrewal/cadence/internal/player"
	"github.com/satindergrewal/cadence/internal/stream"
)

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (overrides CADENCE_PORT)")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("cadence starting up")

	seed, err := fixtures.Load(cfg.SeedFile)
	if err != nil {
		return err
	}
	cat, err := seed.Catalog()
	if err != nil {
		return err
	}
	roster, err := account.NewRoster(seed.Users, cfg.BcryptCost)
	if err != nil {
		return err
	}
	session := account.NewSession(roster, account.AdminCredential{
		Name:   cfg.AdminName,
		Secret: cfg.AdminSecret,
	}, log.Named("session"))

	// Player engine, fanned out to SSE and WebRTC listeners
	engine := player.NewEngine(nil, log.Named("player"))
	defer engine.Close()
	broadcaster := stream.NewBroadcaster()
	broadcaster.Seed(engine.Status())
	go broadcaster.Run(ctx, engine.Updates())

	gen := pickGenerator(ctx, cfg, log)
	cur := curator.New(gen, cfg.GenerateTimeout, log.Named("curator"))

	srv := api.NewServer(api.Deps{
		Session:       session,
		Catalog:       cat,
		Playlists:     catalog.NewCollection(seed.Playlists),
		Announcements: seed.Announcements,
		Engine:        engine,
		Curator:       cur,
		Broadcaster:   broadcaster,
		SigningKey:    cfg.SigningKey(),
		TokenTTL:      cfg.TokenTTL,
		Log:           log.Named("api"),
	})

	addr := ":" + strconv.Itoa(cfg.Port)
	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		httpSrv.Shutdown(shutCtx)
	}()

	log.Info("serving",
		zap.String("address", addr),
		zap.Int("tracks", cat.Len()),
		zap.Bool("ai_playlists", cur.Available()))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pickGenerator prefers Gemini, then a reachable Ollama. Nil disables AI playlists.
func pickGenerator(ctx context.Context, cfg config.Config, log *zap.Logger) curator.Generator {
	g, err := gemini.NewClient(ctx, gemini.Options{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}, log.Named("gemini"))
	if err == nil {
		log.Info("gemini connected", zap.String("model", g.Model()))
		return g
	}
	if !errors.Is(err, gemini.ErrNoAPIKey) {
		log.Warn("gemini unavailable", zap.Error(err))
	}

	if cfg.OllamaURL == "" {
		log.Warn("no generation backend configured, AI playlists disabled (set GEMINI_API_KEY or OLLAMA_URL)")
		return nil
	}
	o := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel, log.Named("ollama"))
	readyCtx, readyCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readyCancel()
	if !o.WaitForReady(readyCtx) {
		log.Warn("ollama not available, AI playlists disabled", zap.String("url", cfg.OllamaURL))
		return nil
	}
	return o
}
