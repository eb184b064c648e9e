package importer

import (
	"context"
	"strings"
	"time"

	"clubratings/ingestion/internal/client"
	"clubratings/ingestion/internal/metrics"
	"clubratings/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Coordinator is the per-row upsert contract. The store runs each call in
// its own transaction, so one conflicting row can never poison a batch.
type Coordinator interface {
	UpsertRating(ctx context.Context, in *models.RatingInput, date time.Time, source string) error
	UpsertFixture(ctx context.Context, in *models.FixtureInput, source string) error
}

// Result tallies one batch import
type Result struct {
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

// Importer drives fetch -> parse -> normalize -> upsert for the snapshot,
// history and fixtures jobs. Rows are processed sequentially in input
// order; a rejected or failed row is logged, counted and skipped, never
// fatal. Only fetch and parse failures abort a job.
type Importer struct {
	store  Coordinator
	client *client.Client
	source string
}

// New creates an importer writing facts tagged with the given source
func New(store Coordinator, c *client.Client, source string) *Importer {
	return &Importer{
		store:  store,
		client: c,
		source: source,
	}
}

// ImportSnapshot imports one day's rating rows, all keyed to the batch date
func (i *Importer) ImportSnapshot(ctx context.Context, rows []client.RawRow, date time.Time) Result {
	start := time.Now()
	var res Result

	for _, row := range rows {
		in, err := models.RatingInputFromRow(row)
		if err != nil {
			log.Warn().Err(err).Str("club", row["Club"]).Msg("Rejected rating row")
			metrics.RecordRowRejected("snapshot", "validation")
			res.Errors++
			continue
		}

		if err := i.store.UpsertRating(ctx, in, date, i.source); err != nil {
			log.Error().Err(err).Str("club", in.Club).Msg("Failed to upsert rating fact")
			metrics.RecordRowRejected("snapshot", "persistence")
			res.Errors++
			continue
		}

		metrics.RecordRowImported("snapshot")
		res.Success++
	}

	log.Info().
		Time("date", date).
		Int("success", res.Success).
		Int("errors", res.Errors).
		Dur("duration", time.Since(start)).
		Msg("Snapshot import complete")

	return res
}

// ImportHistory imports one club's full rating history. Each row's
// effective date comes from that row's own From field, because history rows
// span many dates.
func (i *Importer) ImportHistory(ctx context.Context, rows []client.RawRow, clubKey string) Result {
	start := time.Now()
	var res Result

	for _, row := range rows {
		if strings.TrimSpace(row["Club"]) == "" {
			// Copy before filling in the club name; callers may reuse rows.
			named := make(client.RawRow, len(row)+1)
			for k, v := range row {
				named[k] = v
			}
			named["Club"] = clubKey
			row = named
		}

		in, err := models.RatingInputFromRow(row)
		if err != nil {
			log.Warn().Err(err).Str("club", clubKey).Msg("Rejected history row")
			metrics.RecordRowRejected("history", "validation")
			res.Errors++
			continue
		}

		if in.From.IsZero() {
			log.Warn().Str("club", clubKey).Msg("Rejected history row without effective date")
			metrics.RecordRowRejected("history", "validation")
			res.Errors++
			continue
		}

		if err := i.store.UpsertRating(ctx, in, in.From, i.source); err != nil {
			log.Error().Err(err).Str("club", in.Club).Time("date", in.From).Msg("Failed to upsert rating fact")
			metrics.RecordRowRejected("history", "persistence")
			res.Errors++
			continue
		}

		metrics.RecordRowImported("history")
		res.Success++
	}

	log.Info().
		Str("club", clubKey).
		Int("success", res.Success).
		Int("errors", res.Errors).
		Dur("duration", time.Since(start)).
		Msg("History import complete")

	return res
}

// ImportFixtures imports fixture prediction rows
func (i *Importer) ImportFixtures(ctx context.Context, rows []client.RawRow) Result {
	start := time.Now()
	var res Result

	for _, row := range rows {
		in, err := models.FixtureInputFromRow(row)
		if err != nil {
			log.Warn().Err(err).Str("home", row["Home"]).Str("away", row["Away"]).Msg("Rejected fixture row")
			metrics.RecordRowRejected("fixtures", "validation")
			res.Errors++
			continue
		}

		if err := i.store.UpsertFixture(ctx, in, i.source); err != nil {
			log.Error().Err(err).Str("home", in.Home).Str("away", in.Away).Msg("Failed to upsert fixture fact")
			metrics.RecordRowRejected("fixtures", "persistence")
			res.Errors++
			continue
		}

		metrics.RecordRowImported("fixtures")
		res.Success++
	}

	log.Info().
		Int("success", res.Success).
		Int("errors", res.Errors).
		Dur("duration", time.Since(start)).
		Msg("Fixtures import complete")

	return res
}

// SyncSnapshot fetches and imports the rating snapshot for one date
func (i *Importer) SyncSnapshot(ctx context.Context, date time.Time) (Result, error) {
	start := time.Now()

	rows, err := i.client.FetchSnapshot(ctx, date)
	if err != nil {
		metrics.RecordImport("snapshot", "error", time.Since(start).Seconds())
		return Result{}, err
	}

	res := i.ImportSnapshot(ctx, rows, date)
	metrics.RecordImport("snapshot", "success", time.Since(start).Seconds())
	return res, nil
}

// SyncHistory fetches and imports the full rating history of one club
func (i *Importer) SyncHistory(ctx context.Context, clubName string) (Result, error) {
	start := time.Now()

	rows, err := i.client.FetchHistory(ctx, clubName)
	if err != nil {
		metrics.RecordImport("history", "error", time.Since(start).Seconds())
		return Result{}, err
	}

	res := i.ImportHistory(ctx, rows, models.ClubIdentityKey(clubName))
	metrics.RecordImport("history", "success", time.Since(start).Seconds())
	return res, nil
}

// SyncFixtures fetches and imports fixture predictions, optionally for a
// single match date
func (i *Importer) SyncFixtures(ctx context.Context, date *time.Time) (Result, error) {
	start := time.Now()

	rows, err := i.client.FetchFixtures(ctx, date)
	if err != nil {
		metrics.RecordImport("fixtures", "error", time.Since(start).Seconds())
		return Result{}, err
	}

	res := i.ImportFixtures(ctx, rows)
	metrics.RecordImport("fixtures", "success", time.Since(start).Seconds())
	return res, nil
}
