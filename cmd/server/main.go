// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cyohn55/RTS/pkg/config"
	"github.com/cyohn55/RTS/pkg/engine"
	"github.com/cyohn55/RTS/pkg/entity"
	"github.com/cyohn55/RTS/pkg/event"
	"github.com/cyohn55/RTS/pkg/health"
	"github.com/cyohn55/RTS/pkg/history"
	"github.com/cyohn55/RTS/pkg/logging"
	"github.com/cyohn55/RTS/pkg/network"
	"github.com/cyohn55/RTS/pkg/resource"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to game configuration file")
	speciesPath := flag.String("species", "", "Path to YAML species sheet (built-in roster if empty)")
	createDefault := flag.Bool("default", false, "Create default configuration file and exit")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	// Load game configuration
	var gameConfig *config.GameConfig
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", *configPath,
		)
		gameConfig = config.DefaultConfig()
	} else {
		gameConfig, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Error(ctx, "Failed to load configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
	}

	// Deployment-level settings come from RTS_* environment variables
	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Failed to load environment configuration", err)
		os.Exit(1)
	}
	if err := config.ValidateEnvironmentConfig(envConfig); err != nil {
		logger.Error(ctx, "Invalid environment configuration", err)
		os.Exit(1)
	}

	// Species roster: YAML sheet if provided, built-in stats otherwise
	species := entity.DefaultSpecies()
	if *speciesPath != "" {
		species, err = config.LoadSpecies(*speciesPath)
		if err != nil {
			logger.Error(ctx, "Failed to load species sheet", err,
				"species_path", *speciesPath,
			)
			os.Exit(1)
		}
	}

	game := engine.NewGame(gameConfig, species)
	matchStart := time.Now()
	if err := game.InitializeMatch(gameConfig.Players, matchStart.UnixMilli()); err != nil {
		logger.Error(ctx, "Failed to initialize match", err)
		os.Exit(1)
	}

	resourceManager := resource.NewManager(envConfig)
	if err := resourceManager.Start(); err != nil {
		logger.Error(ctx, "Failed to start resource manager", err)
		os.Exit(1)
	}

	server := network.NewGameServer(game, envConfig.MaxClients)

	// Optional match-history persistence
	var store *history.Store
	if envConfig.DatabaseURL != "" {
		store, err = history.Open(envConfig.DatabaseURL)
		if err != nil {
			logger.Error(ctx, "Failed to open match history store", err)
			os.Exit(1)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error(ctx, "Failed to prepare match history schema", err)
			os.Exit(1)
		}
		recordResults(ctx, logger, game, store, resourceManager, matchStart)
	}

	// Spectator and health endpoints share one HTTP server
	hub := network.NewSpectatorHub(game)
	go hub.Run()

	healthChecker := health.NewHealthChecker()
	healthChecker.AddCheck(health.NewSimulationHealthCheck(
		func() bool { return server.Running() },
	))
	healthChecker.AddCheck(health.NewNetworkHealthCheck(
		func() string { return server.ListenerAddress() },
	))
	healthChecker.AddCheck(health.NewMemoryHealthCheck(
		envConfig.MaxMemoryMB, resourceManager.GetMemoryUsage,
	))
	healthChecker.AddCheck(resource.NewHealthCheck(resourceManager))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthChecker.LivenessHandler)
	mux.HandleFunc("/ready", healthChecker.ReadinessHandler)
	mux.Handle("/spectate", hub.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", gameConfig.NetworkConfig.SpectatorPort),
		Handler:      mux,
		ReadTimeout:  envConfig.ReadTimeout,
		WriteTimeout: envConfig.WriteTimeout,
	}
	go func() {
		logger.Info(ctx, "Starting spectator/health server",
			"addr", httpServer.Addr,
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Spectator/health server failed", err)
		}
	}()

	serverAddr := fmt.Sprintf("%s:%d", envConfig.ServerAddr, envConfig.ServerPort)
	logger.Info(ctx, "Starting game server",
		"address", serverAddr,
		"max_clients", envConfig.MaxClients,
		"tick_rate", gameConfig.TickRate,
	)
	if err := server.Start(serverAddr); err != nil {
		logger.Error(ctx, "Failed to start game server", err,
			"address", serverAddr,
		)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), envConfig.ShutdownTimeout)
	defer cancel()

	hub.Stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Spectator/health server shutdown failed", err)
	}
	server.Stop()

	if err := resourceManager.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Resource manager shutdown failed", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error(ctx, "Match history store close failed", err)
		}
	}
}

// recordResults writes the final tallies to the history store when the match
// ends. The event fires inside the tick, so the snapshot read and DB write
// run on a tracked goroutine instead of the simulation loop.
func recordResults(ctx context.Context, logger *logging.Logger, game *engine.Game, store *history.Store, rm *resource.Manager, matchStart time.Time) {
	game.EventBus.Subscribe(event.MatchEnded, func(e event.Event) {
		match, ok := e.(*event.MatchEvent)
		if !ok {
			return
		}
		winner := match.WinnerID
		duration := time.Since(matchStart).Milliseconds()

		err := rm.StartGoroutine(ctx, "record-match", func(ctx context.Context) {
			state := game.GetGameState()
			players := make([]history.PlayerRecord, 0, len(state.Players))
			for _, p := range state.Players {
				players = append(players, history.PlayerRecord{
					Seat:   p.ID,
					Name:   p.Name,
					AI:     p.AI,
					Kills:  p.Kills,
					Losses: p.Losses,
				})
			}

			id, err := store.RecordMatch(ctx, winner, duration, players)
			if err != nil {
				logger.Error(ctx, "Failed to record match result", err)
				return
			}
			logger.Info(ctx, "Recorded match result",
				"match_id", id,
				"winner_seat", winner,
			)
		})
		if err != nil {
			logger.Error(ctx, "Failed to schedule match recording", err)
		}
	})
}
