package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Fixture represents one persisted fixture prediction fact. At most one fact
// exists per (home club, away club, match date); re-imports overwrite the
// mutable fields.
type Fixture struct {
	ID          int64           `db:"id"`
	HomeClubID  int64           `db:"home_club_id"`
	AwayClubID  int64           `db:"away_club_id"`
	MatchDate   time.Time       `db:"match_date"`
	Country     string          `db:"country"`
	Competition string          `db:"competition"`
	HomeLevel   sql.NullInt32   `db:"home_level"`
	AwayLevel   sql.NullInt32   `db:"away_level"`
	HomeElo     float64         `db:"home_elo"`
	AwayElo     float64         `db:"away_elo"`
	ProbHome    sql.NullFloat64 `db:"prob_home"`
	ProbDraw    sql.NullFloat64 `db:"prob_draw"`
	ProbAway    sql.NullFloat64 `db:"prob_away"`
	Source      string          `db:"source"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`

	// Populated by read-side list queries (joins on clubs)
	HomeClub string `db:"home_club"`
	AwayClub string `db:"away_club"`
}

// FixtureInput is one normalized fixture row from the source
type FixtureInput struct {
	Date        time.Time
	Country     string
	Competition string
	Home        string
	Away        string
	HomeLevel   *int
	AwayLevel   *int
	HomeElo     float64
	AwayElo     float64
	ProbHome    *float64
	ProbDraw    *float64
	ProbAway    *float64
}

// FixtureInputFromRow normalizes a raw header-mapped row into a
// FixtureInput. Both elo values are required and must parse as numbers.
// Probabilities and levels may be absent, but a present-and-unparseable
// value rejects the row instead of being stored as null.
func FixtureInputFromRow(row map[string]string) (*FixtureInput, error) {
	date, err := ParseFlexibleDate(row["Date"])
	if err != nil {
		return nil, err
	}

	home := strings.TrimSpace(row["Home"])
	away := strings.TrimSpace(row["Away"])
	if home == "" || away == "" {
		return nil, fmt.Errorf("missing home or away club name")
	}

	homeElo, err := parseRequiredFloat("home elo", row["EloHome"])
	if err != nil {
		return nil, err
	}
	awayElo, err := parseRequiredFloat("away elo", row["EloAway"])
	if err != nil {
		return nil, err
	}

	homeLevel, err := parseOptionalInt("home level", row["LevelHome"])
	if err != nil {
		return nil, err
	}
	awayLevel, err := parseOptionalInt("away level", row["LevelAway"])
	if err != nil {
		return nil, err
	}

	probHome, err := parseOptionalFloat("home win probability", row["ProbHome"])
	if err != nil {
		return nil, err
	}
	probDraw, err := parseOptionalFloat("draw probability", row["ProbDraw"])
	if err != nil {
		return nil, err
	}
	probAway, err := parseOptionalFloat("away win probability", row["ProbAway"])
	if err != nil {
		return nil, err
	}

	return &FixtureInput{
		Date:        date,
		Country:     strings.TrimSpace(row["Country"]),
		Competition: strings.TrimSpace(row["Competition"]),
		Home:        home,
		Away:        away,
		HomeLevel:   homeLevel,
		AwayLevel:   awayLevel,
		HomeElo:     homeElo,
		AwayElo:     awayElo,
		ProbHome:    probHome,
		ProbDraw:    probDraw,
		ProbAway:    probAway,
	}, nil
}

// HomeClubEntity builds the club entity for the home side
func (fi *FixtureInput) HomeClubEntity() *Club {
	return fixtureClub(fi.Home, fi.Country, fi.HomeLevel)
}

// AwayClubEntity builds the club entity for the away side
func (fi *FixtureInput) AwayClubEntity() *Club {
	return fixtureClub(fi.Away, fi.Country, fi.AwayLevel)
}

func fixtureClub(name, country string, level *int) *Club {
	club := &Club{
		IdentityKey: ClubIdentityKey(name),
		DisplayName: strings.TrimSpace(name),
		Country:     country,
	}
	if level != nil {
		club.Level = *level
	}
	return club
}

// ToFixture builds the persistable fact for resolved home and away clubs
func (fi *FixtureInput) ToFixture(homeClubID, awayClubID int64, source string) *Fixture {
	fixture := &Fixture{
		HomeClubID:  homeClubID,
		AwayClubID:  awayClubID,
		MatchDate:   fi.Date,
		Country:     fi.Country,
		Competition: fi.Competition,
		HomeElo:     fi.HomeElo,
		AwayElo:     fi.AwayElo,
		Source:      source,
	}

	if fi.HomeLevel != nil {
		fixture.HomeLevel = sql.NullInt32{Int32: int32(*fi.HomeLevel), Valid: true}
	}
	if fi.AwayLevel != nil {
		fixture.AwayLevel = sql.NullInt32{Int32: int32(*fi.AwayLevel), Valid: true}
	}
	if fi.ProbHome != nil {
		fixture.ProbHome = sql.NullFloat64{Float64: *fi.ProbHome, Valid: true}
	}
	if fi.ProbDraw != nil {
		fixture.ProbDraw = sql.NullFloat64{Float64: *fi.ProbDraw, Valid: true}
	}
	if fi.ProbAway != nil {
		fixture.ProbAway = sql.NullFloat64{Float64: *fi.ProbAway, Valid: true}
	}

	return fixture
}
