package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guesstimate-service/internal/app"
	"guesstimate-service/internal/config"
	"guesstimate-service/internal/domain"
	filesource "guesstimate-service/internal/infra/file"
	"guesstimate-service/internal/infra/memory"
	pgsource "guesstimate-service/internal/infra/postgres"
	redisstore "guesstimate-service/internal/infra/redis"
	"guesstimate-service/internal/pool"
	"guesstimate-service/internal/scoring"
	transport "guesstimate-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the multiplayer server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var source pool.Source
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pgpool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pgpool.Close()
		source = pgsource.NewQuestionSource(pgpool)
	case cfg.Questions.Path != "":
		source = filesource.NewSource(cfg.Questions.Path)
	default:
		source = memory.NewStaticSource(sampleQuestions())
	}

	questions, err := source.Load(ctx)
	if err != nil {
		return err
	}

	poolOpts := []pool.Option{}
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		voteStore := redisstore.NewVoteStore(redisClient)
		poolOpts = append(poolOpts, pool.WithVoteStore(voteStore))

		uuids := make([]string, len(questions))
		for i, q := range questions {
			uuids[i] = q.UUID
		}
		if tallies, err := voteStore.Tallies(ctx, uuids); err != nil {
			log.Printf("vote store: seeding tallies failed: %v", err)
		} else {
			poolOpts = append(poolOpts, pool.WithTallies(tallies))
		}
	}

	questionPool, err := pool.New(questions, poolOpts...)
	if err != nil {
		return err
	}
	scorer := scoring.NewNormalizer(questions)

	roundTimeout := config.Timeout(cfg.Room.RoundTimeout, 0)
	rooms := app.NewRoomRegistry(questionPool, scorer, roundTimeout)
	service := app.NewGameService(rooms)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting guesstimate service on :%s (%d questions)", finalPort, len(questions))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-stop:
			log.Println("shutting down server...")
		case <-gctx.Done():
			log.Println("context canceled, shutting down server...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// sampleQuestions provides a tiny built-in dataset so the server can start
// without a generated data file.
func sampleQuestions() []domain.Question {
	zero := 0.0
	hundred := 100.0
	return []domain.Question{
		{
			UUID:  "sample-population",
			Topic: "World population",
			Description: domain.Description{
				Prompt: "the number of people who have ever lived",
			},
			Answer:  domain.Answer{Value: 117e9},
			Excerpt: "An estimated 117 billion people have ever been born.",
			Scale:   domain.Interval{Lower: &zero},
		},
		{
			UUID:  "sample-sauna",
			Topic: "Sauna",
			Description: domain.Description{
				Prompt: "the percentage of households in Finland that own a sauna",
				Units:  "in %",
			},
			Answer:  domain.Answer{Min: 60, Max: 70, IsRange: true},
			Excerpt: "Roughly two thirds of Finnish households have a sauna.",
			Scale:   domain.Interval{Lower: &zero, Upper: &hundred},
		},
		{
			UUID:  "sample-everest",
			Topic: "Mount Everest",
			Description: domain.Description{
				Prompt: "the height of Mount Everest",
				Units:  "in metres",
			},
			Answer:  domain.Answer{Value: 8849},
			Excerpt: "Mount Everest's summit sits 8,849 metres above sea level.",
			Scale:   domain.Interval{Lower: &zero},
		},
	}
}
