package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/salesquest/gamification-service/internal/auth"
	"github.com/salesquest/gamification-service/internal/checkin"
	"github.com/salesquest/gamification-service/internal/config"
	"github.com/salesquest/gamification-service/internal/gamification"
	"github.com/salesquest/gamification-service/internal/httpapi"
	"github.com/salesquest/gamification-service/internal/leaderboard"
	"github.com/salesquest/gamification-service/internal/logging"
	"github.com/salesquest/gamification-service/internal/scheduler"
	"github.com/salesquest/gamification-service/internal/server"
	"github.com/salesquest/gamification-service/internal/teamgoal"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("gamification-service")

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		panic(fmt.Errorf("load timezone %s: %w", cfg.Timezone, err))
	}

	client, err := firestore.NewClient(ctx, cfg.GCPProjectID)
	if err != nil {
		panic(fmt.Errorf("firestore client: %w", err))
	}
	defer client.Close()

	var board leaderboard.Board
	if cfg.RedisAddr != "" {
		rdb, err := leaderboard.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			panic(fmt.Errorf("redis connect: %w", err))
		}
		defer rdb.Close()
		board = leaderboard.NewRedisBoard(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set, leaderboard disabled")
	}

	checkinRepo := checkin.NewFirestoreRepository(client)
	checkinService, err := checkin.NewService(checkinRepo, nil, loc)
	if err != nil {
		panic(err)
	}

	calendar := gamification.NewBusinessCalendar(loc, cfg.Holidays)
	progressRepo := gamification.NewFirestoreRepository(client)
	gamificationService, err := gamification.NewService(progressRepo, checkinRepo, calendar, nil, board)
	if err != nil {
		panic(err)
	}

	teamGoalRepo := teamgoal.NewFirestoreRepository(client)
	teamGoalService, err := teamgoal.NewService(teamGoalRepo, nil, nil)
	if err != nil {
		panic(err)
	}

	jobs := scheduler.New(loc, gamificationService, logger)
	jobs.Start()
	defer jobs.Stop()

	verifier, err := auth.NewVerifier(auth.Config{
		Mode:     auth.Mode(cfg.Auth.Mode),
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := server.NewRouter("gamification-service", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))

			httpapi.RegisterRoutes(r, httpapi.Services{
				CheckIns:     checkinService,
				Gamification: gamificationService,
				TeamGoals:    teamGoalService,
				Board:        board,
			}, logger)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}
