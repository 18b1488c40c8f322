package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/tactician/internal/config"
	"github.com/mitchelldurbincs/tactician/internal/game"
	"github.com/mitchelldurbincs/tactician/internal/game/events"
	"github.com/mitchelldurbincs/tactician/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/tactician/internal/game/mapgen"
	"github.com/mitchelldurbincs/tactician/internal/game/squad"
	"github.com/mitchelldurbincs/tactician/internal/grpc/statusserver"
	"github.com/mitchelldurbincs/tactician/internal/history"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	ticks := flag.Int("ticks", -1, "Ticks to run, 0 runs until interrupted (-1 to use config default)")
	seed := flag.Int64("seed", -1, "Map seed, 0 picks one from the clock (-1 to use config default)")
	noServer := flag.Bool("no-server", false, "Do not start the gRPC health endpoint")
	watch := flag.Bool("watch-config", true, "Reload tactics when the config file changes")
	historyFile := flag.String("history", "", "Write squad decision history here as JSON lines (empty to use config default)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *ticks == -1 {
		*ticks = cfg.Demo.Ticks
	}
	if *seed == -1 {
		*seed = cfg.Map.Seed
	}
	if *historyFile != "" {
		cfg.Demo.HistoryFile = *historyFile
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	logger, closer := setupLogging(cfg.Logging, os.Stdout)
	defer closer.Close()
	log.Logger = logger

	if err := run(cfg, *seed, *ticks, !*noServer, *watch, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Session failed")
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, seed int64, ticks int, serve, watch bool, logger zerolog.Logger) error {
	mc := mapgen.DefaultMapConfig(cfg.Map.Width, cfg.Map.Height)
	mc.WallRatio = cfg.Map.WallRatio
	mc.MinWallLength = cfg.Map.WallMinLength
	mc.MaxWallLengthRatio = cfg.Map.WallMaxLengthRatio
	mc.ResourceClusters = cfg.Map.ResourceClusters

	layout, err := mapgen.NewGenerator(mc, rand.New(rand.NewSource(seed)), logger).Generate()
	if err != nil {
		return fmt.Errorf("generating map: %w", err)
	}

	world := game.DefaultWorldOptions()
	world.SightRange = cfg.Engine.SightRange

	engine, err := game.NewEngine(game.EngineConfig{
		Terrain:        layout.Terrain,
		HomeStart:      layout.HomeStart.Center(),
		EnemyStart:     layout.EnemyStart.Center(),
		DepotClearance: cfg.Map.DepotClearance,
		CacheCapacity:  cfg.Map.DistanceCacheCapacity,
		World:          world,
		Tactics:        tacticsFromConfig(cfg.Tactics),
		TickBudget:     time.Duration(cfg.Engine.TickBudgetMs) * time.Millisecond,
		AlertCooldown:  time.Duration(cfg.Engine.AlertCooldownSeconds) * time.Second,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	console := subscribers.NewLoggerSubscriber("console", logger, zerolog.InfoLevel)
	// Decisions arrive every tick; they go to the history instead
	console.SetEventFilter([]string{
		events.TypeSessionStarted,
		events.TypeSquadCreated,
		events.TypeSquadRemoved,
		events.TypeSquadStateChanged,
		events.TypeMembershipViolation,
		events.TypeTickOverBudget,
		events.TypePhaseChanged,
	})
	engine.Bus().Subscribe(console)
	recorder := history.NewRecorder("history", history.NewBuffer(cfg.Demo.HistoryCapacity, logger), logger)
	engine.Bus().Subscribe(recorder)

	skirmish := game.DefaultSkirmishConfig()
	skirmish.SquadSize = cfg.Demo.SquadSize
	skirmish.EnemyCount = cfg.Demo.EnemyCount
	if err := game.SetupSkirmish(engine, skirmish); err != nil {
		return fmt.Errorf("setting up skirmish: %w", err)
	}

	if serve {
		srv, err := startStatusServer(cfg.Server, logger)
		if err != nil {
			return err
		}
		srv.WatchPhases(engine.Bus())
		defer srv.Shutdown()
	}

	if watch && config.ConfigFilePath() != "" {
		config.WatchConfig(func(next *config.Config) {
			engine.SetTactics(tacticsFromConfig(next.Tactics))
			logger.Info().Str("file", config.ConfigFilePath()).Msg("Tactics reloaded")
		}, func(err error) {
			logger.Warn().Err(err).Msg("Ignoring invalid config change")
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("session_id", engine.SessionID()).
		Int64("seed", seed).
		Int("ticks", ticks).
		Msg("Starting skirmish")

	err = engine.Run(ctx, ticks, time.Duration(cfg.Demo.TickIntervalMs)*time.Millisecond)
	summarize(engine, recorder.Buffer(), logger)

	if cfg.Demo.HistoryFile != "" {
		recorder.Buffer().Close()
		if saveErr := history.SaveFile(cfg.Demo.HistoryFile, recorder.Buffer().Snapshot()); saveErr != nil {
			logger.Error().Err(saveErr).Str("file", cfg.Demo.HistoryFile).Msg("Failed to save decision history")
		} else {
			logger.Info().Str("file", cfg.Demo.HistoryFile).Msg("Decision history saved")
		}
	}
	return err
}

func startStatusServer(cfg config.ServerConfig, logger zerolog.Logger) (*statusserver.Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	srv := statusserver.New(statusserver.Options{
		EnableReflection: cfg.EnableReflection,
		ShutdownDelay:    time.Duration(cfg.GracefulShutdownDelay) * time.Second,
	}, logger)
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("Failed to serve")
		}
	}()
	return srv, nil
}

func tacticsFromConfig(c config.TacticsConfig) squad.Tactics {
	return squad.Tactics{
		UseCombatSimulation: c.UseCombatSimulation,
		NearEnemyRadius:     c.NearEnemyRadius,
		RangeBuffer:         c.RangeBuffer,
		RetreatSwitchTicks:  c.RetreatSwitchTicks,
		CombatRegroupRadius: c.CombatRegroupRadius,
		ShortRangeThreshold: c.ShortRangeThreshold,
	}
}

func summarize(engine *game.Engine, decisions *history.Buffer, logger zerolog.Logger) {
	for _, s := range engine.Registry().Squads() {
		logger.Info().
			Str("squad", s.Name()).
			Int("units", s.Len()).
			Str("state", s.State().String()).
			Str("reason", s.Reason().String()).
			Msg("Squad summary")
	}

	m := engine.Monitor().Metrics()
	stats := engine.Map().CacheStats()
	hs := decisions.Stats()
	logger.Info().
		Str("phase", engine.Phase().String()).
		Int("ticks", m.Ticks).
		Int("over_budget", m.OverBudget).
		Int("budget_alerts", engine.Bus().Published(events.TypeTickOverBudget)).
		Int("violations", engine.Bus().Published(events.TypeMembershipViolation)).
		Dur("mean", m.Mean).
		Dur("peak", m.Peak).
		Int("cache_hits", stats.Hits).
		Int("cache_misses", stats.Misses).
		Int("cache_flushes", stats.Flushes).
		Int64("history_records", hs.TotalAdded).
		Int64("history_dropped", hs.TotalDropped).
		Int("friendly_alive", len(engine.World().Friendly())).
		Int("enemy_alive", len(engine.World().Hostile())).
		Msg("Skirmish finished")
}
