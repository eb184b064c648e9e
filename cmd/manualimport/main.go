package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"clubratings/ingestion/internal/client"
	"clubratings/ingestion/internal/config"
	"clubratings/ingestion/internal/importer"
	"clubratings/ingestion/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// manualimport runs a single import job and exits. Useful for backfills and
// for pulling a club's full rating history on demand.
//
// Usage:
//
//	manualimport -job snapshot -date 2024-08-01
//	manualimport -job history -club "Man City"
//	manualimport -job fixtures [-date 2024-08-01]
func main() {
	var (
		job     = flag.String("job", "snapshot", "Import job: snapshot, history or fixtures")
		dateStr = flag.String("date", "", "Date (YYYY-MM-DD); defaults to today for snapshot, unset for fixtures")
		clubArg = flag.String("club", "", "Club name, required for the history job")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})

	cfg := config.MustLoad()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	eloClient := client.NewClient(cfg.ClubEloBaseURL, cfg.ClubEloTimeout, cfg.ClubEloMaxAttempts)
	imp := importer.New(db, eloClient, "clubelo")

	var res importer.Result

	switch *job {
	case "snapshot":
		date := time.Now().UTC().Truncate(24 * time.Hour)
		if *dateStr != "" {
			date, err = time.Parse("2006-01-02", *dateStr)
			if err != nil {
				log.Fatal().Err(err).Str("date", *dateStr).Msg("Invalid date, expected YYYY-MM-DD")
			}
		}
		res, err = imp.SyncSnapshot(ctx, date)

	case "history":
		if *clubArg == "" {
			log.Fatal().Msg("The history job requires -club")
		}
		res, err = imp.SyncHistory(ctx, *clubArg)

	case "fixtures":
		var date *time.Time
		if *dateStr != "" {
			parsed, perr := time.Parse("2006-01-02", *dateStr)
			if perr != nil {
				log.Fatal().Err(perr).Str("date", *dateStr).Msg("Invalid date, expected YYYY-MM-DD")
			}
			date = &parsed
		}
		res, err = imp.SyncFixtures(ctx, date)

	default:
		log.Fatal().Str("job", *job).Msg("Unknown job, expected snapshot, history or fixtures")
	}

	if err != nil {
		log.Fatal().Err(err).Str("job", *job).Msg("Import failed")
	}

	log.Info().
		Str("job", *job).
		Int("success", res.Success).
		Int("errors", res.Errors).
		Msg("Import finished")
}
