package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stayhub/internal/adapters/observability"
	"stayhub/internal/app"
	"stayhub/internal/shared"
	mysqlrepo "stayhub/internal/storage/mysql"
)

// Cancels pending reservations whose hold window has lapsed, one hotel per
// worker. Meant to run from cron.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("workers", cfg.SweepWorkers).
		Dur("hold_ttl", cfg.HoldTTL).
		Msg("sweeper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	svc := app.NewReservationService(repo, repo, repo, cfg.HoldTTL)

	ids, err := svc.HotelIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listing hotels failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.SweepWorkers))
	var wg sync.WaitGroup

	for _, id := range ids {
		id := id

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(hotelID int64) {
			defer wg.Done()
			defer sem.Release(int64(1))

			n, err := svc.ExpireStalePending(ctx, hotelID)
			if err != nil {
				log.Warn().Int64("hotel", hotelID).Err(err).Msg("sweep failed")
				return
			}
			if n > 0 {
				log.Info().Int64("hotel", hotelID).Int64("expired", n).Msg("holds expired")
			}
		}(id)
	}

	wg.Wait()
	log.Info().Msg("sweep completed")
}
