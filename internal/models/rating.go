package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Rating represents one persisted club rating fact. At most one fact exists
// per (club, date); re-imports overwrite rank, country, level and elo but
// preserve identity.
type Rating struct {
	ID         int64           `db:"id"`
	ClubID     int64           `db:"club_id"`
	RatingDate time.Time       `db:"rating_date"`
	Rank       sql.NullInt32   `db:"rank"`
	Country    string          `db:"country"`
	Level      int             `db:"level"`
	Elo        float64         `db:"elo"`
	Source     string          `db:"source"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`

	// ClubName is populated by read-side list queries (join on clubs)
	ClubName string `db:"club_name"`
}

// RatingInput is one normalized rating row from the source
type RatingInput struct {
	Club    string // trimmed source club name; doubles as the identity key
	Country string
	Level   int
	Rank    *int // nil when the source reports no rank
	Elo     float64
	From    time.Time // row effective date, used by history imports
}

// RatingInputFromRow normalizes a raw header-mapped row into a RatingInput.
// Level and Elo are required and must parse as numbers; a rank other than
// the None sentinel must parse as an integer. Any violation rejects the
// whole row.
func RatingInputFromRow(row map[string]string) (*RatingInput, error) {
	club := strings.TrimSpace(row["Club"])
	if club == "" {
		return nil, fmt.Errorf("missing club name")
	}

	level, err := parseRequiredInt("level", row["Level"])
	if err != nil {
		return nil, err
	}

	elo, err := parseRequiredFloat("elo", row["Elo"])
	if err != nil {
		return nil, err
	}

	rank, err := parseOptionalInt("rank", row["Rank"])
	if err != nil {
		return nil, err
	}

	in := &RatingInput{
		Club:    club,
		Country: strings.TrimSpace(row["Country"]),
		Level:   level,
		Rank:    rank,
		Elo:     elo,
	}

	if from := row["From"]; from != "" {
		t, err := ParseFlexibleDate(from)
		if err != nil {
			return nil, err
		}
		in.From = t
	}

	return in, nil
}

// ToClub builds the club entity this rating row describes
func (ri *RatingInput) ToClub() *Club {
	return &Club{
		IdentityKey: ClubIdentityKey(ri.Club),
		DisplayName: ri.Club,
		Country:     ri.Country,
		Level:       ri.Level,
	}
}

// ToRating builds the persistable fact for a resolved club and date
func (ri *RatingInput) ToRating(clubID int64, date time.Time, source string) *Rating {
	rating := &Rating{
		ClubID:     clubID,
		RatingDate: date,
		Country:    ri.Country,
		Level:      ri.Level,
		Elo:        ri.Elo,
		Source:     source,
	}

	if ri.Rank != nil {
		rating.Rank = sql.NullInt32{Int32: int32(*ri.Rank), Valid: true}
	}

	return rating
}
