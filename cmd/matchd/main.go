// Package main implements the entry point for the placement matching daemon,
// which assigns law students to internship organizations using a weighted,
// capacity-constrained matching algorithm.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/lexmatch/placement-api/internal/config"
	"github.com/lexmatch/placement-api/internal/platform/logger"
	"github.com/lexmatch/placement-api/internal/redact"
)

func main() {
	var (
		migrateFlag = flag.Bool("migrate", false, "run database migrations and exit")
		runFlag     = flag.Bool("run", false, "execute a matching run synchronously and exit")
		serveFlag   = flag.Bool("serve", false, "start the background task runner and wait")
		enqueueFlag = flag.Bool("enqueue", false, "request a background matching run (implies -serve)")
		acceptFlag  = flag.String("accept", "", "accept the pending match with the given ID and exit")
		rejectFlag  = flag.String("reject", "", "reject the pending match with the given ID and exit")
		maxRounds   = flag.Int("max-rounds", 0, "maximum matching rounds per run (default from config)")
		roundNumber = flag.Int("round", 0, "explicit round number (0 = next available)")
		startedBy   = flag.String("started-by", "", "UUID of the user initiating the action")
		reason      = flag.String("reason", "", "reason recorded when rejecting a match")
	)
	flag.Parse()

	if err := run(&options{
		migrate:     *migrateFlag,
		run:         *runFlag,
		serve:       *serveFlag || *enqueueFlag,
		enqueue:     *enqueueFlag,
		accept:      *acceptFlag,
		reject:      *rejectFlag,
		maxRounds:   *maxRounds,
		roundNumber: *roundNumber,
		startedBy:   *startedBy,
		reason:      *reason,
	}); err != nil {
		// Redact before printing so connection strings from driver errors
		// never reach the terminal or service logs.
		log.Fatalf("matchd: %s", redact.Error(err))
	}
}

// options carries the parsed command line flags.
type options struct {
	migrate     bool
	run         bool
	serve       bool
	enqueue     bool
	accept      string
	reject      string
	maxRounds   int
	roundNumber int
	startedBy   string
	reason      string
}

// run is the testable core of main.
func run(opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("error closing database connection", "error", err)
		}
	}()

	if opts.migrate {
		return runMigrations(db, appLogger)
	}

	actor, err := parseActor(opts.startedBy)
	if err != nil {
		return err
	}

	maxRounds := opts.maxRounds
	if maxRounds <= 0 {
		maxRounds = cfg.Matching.MaxRounds
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	ctx := context.Background()

	switch {
	case opts.accept != "":
		matchID, err := uuid.Parse(opts.accept)
		if err != nil {
			return fmt.Errorf("invalid match ID %q: %w", opts.accept, err)
		}
		if _, err := app.matchingService.AcceptMatch(ctx, matchID, actor); err != nil {
			return err
		}
		appLogger.Info("match accepted", "match_id", matchID)
		return nil

	case opts.reject != "":
		matchID, err := uuid.Parse(opts.reject)
		if err != nil {
			return fmt.Errorf("invalid match ID %q: %w", opts.reject, err)
		}
		if _, err := app.matchingService.RejectMatch(ctx, matchID, actor, opts.reason); err != nil {
			return err
		}
		appLogger.Info("match rejected", "match_id", matchID)
		return nil

	case opts.run:
		round, err := app.matchingService.RunMatching(ctx, maxRounds, opts.roundNumber, actor)
		if err != nil {
			return err
		}
		appLogger.Info("matching run finished",
			"round_number", round.RoundNumber,
			"total_students", round.TotalStudents,
			"matched_students", round.MatchedStudents,
			"total_organizations", round.TotalOrganizations)
		return nil

	case opts.serve:
		if err := app.startTaskRunner(); err != nil {
			return err
		}

		if opts.enqueue {
			if err := app.matchingService.RequestMatchingRun(ctx, maxRounds, opts.roundNumber, actor); err != nil {
				return err
			}
		}

		appLogger.Info("task runner started, waiting for work")
		waitForShutdown(appLogger)
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("no operation specified")
	}
}

// parseActor parses the optional -started-by flag. An empty value means the
// action is system-initiated.
func parseActor(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	actor, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid started-by UUID %q: %w", raw, err)
	}
	return actor, nil
}

// waitForShutdown blocks until SIGINT or SIGTERM.
func waitForShutdown(appLogger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	appLogger.Info("shutdown signal received", "signal", sig.String())
}
