package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"clubratings/ingestion/internal/cache"
	"clubratings/ingestion/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	defaultPerPage = 50
	maxPerPage     = 500
)

type pageParams struct {
	Page    int
	PerPage int
	Offset  int
}

// parsePagination reads page/per_page query params with sane bounds
func parsePagination(r *http.Request) pageParams {
	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}

	perPage := defaultPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = v
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return pageParams{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
	}
}

type listResponse struct {
	Data    interface{} `json:"data"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Total   int         `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode API response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

type ratingResponse struct {
	Club    string  `json:"club"`
	Date    string  `json:"date"`
	Rank    *int    `json:"rank"`
	Country string  `json:"country"`
	Level   int     `json:"level"`
	Elo     float64 `json:"elo"`
	Source  string  `json:"source"`
}

func toRatingResponse(r *models.Rating) ratingResponse {
	resp := ratingResponse{
		Club:    r.ClubName,
		Date:    r.RatingDate.Format("2006-01-02"),
		Country: r.Country,
		Level:   r.Level,
		Elo:     r.Elo,
		Source:  r.Source,
	}
	if r.Rank.Valid {
		rank := int(r.Rank.Int32)
		resp.Rank = &rank
	}
	return resp
}

type fixtureResponse struct {
	Date        string   `json:"date"`
	Country     string   `json:"country"`
	Competition string   `json:"competition"`
	Home        string   `json:"home"`
	Away        string   `json:"away"`
	HomeElo     float64  `json:"home_elo"`
	AwayElo     float64  `json:"away_elo"`
	ProbHome    *float64 `json:"prob_home"`
	ProbDraw    *float64 `json:"prob_draw"`
	ProbAway    *float64 `json:"prob_away"`
}

func toFixtureResponse(f *models.Fixture) fixtureResponse {
	resp := fixtureResponse{
		Date:        f.MatchDate.Format("2006-01-02"),
		Country:     f.Country,
		Competition: f.Competition,
		Home:        f.HomeClub,
		Away:        f.AwayClub,
		HomeElo:     f.HomeElo,
		AwayElo:     f.AwayElo,
	}
	if f.ProbHome.Valid {
		v := f.ProbHome.Float64
		resp.ProbHome = &v
	}
	if f.ProbDraw.Valid {
		v := f.ProbDraw.Float64
		resp.ProbDraw = &v
	}
	if f.ProbAway.Valid {
		v := f.ProbAway.Float64
		resp.ProbAway = &v
	}
	return resp
}

// handleListRatings serves GET /api/v1/ratings?date=YYYY-MM-DD&country=XX
func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	page := parsePagination(r)
	country := r.URL.Query().Get("country")

	ratings, total, err := s.db.Ratings.ListByDate(r.Context(), date, country, page.PerPage, page.Offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list ratings")
		writeError(w, http.StatusInternalServerError, "failed to list ratings")
		return
	}

	data := make([]ratingResponse, 0, len(ratings))
	for _, rating := range ratings {
		data = append(data, toRatingResponse(rating))
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data:    data,
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   total,
	})
}

// handleClubHistory serves GET /api/v1/clubs/{identityKey}/ratings
func (s *Server) handleClubHistory(w http.ResponseWriter, r *http.Request) {
	identityKey := chi.URLParam(r, "identityKey")
	page := parsePagination(r)

	ratings, total, err := s.db.Ratings.ListByClub(r.Context(), identityKey, page.PerPage, page.Offset)
	if err != nil {
		log.Error().Err(err).Str("club", identityKey).Msg("Failed to list club history")
		writeError(w, http.StatusInternalServerError, "failed to list club history")
		return
	}

	data := make([]ratingResponse, 0, len(ratings))
	for _, rating := range ratings {
		data = append(data, toRatingResponse(rating))
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data:    data,
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   total,
	})
}

// handleListClubs serves GET /api/v1/clubs?country=XX
func (s *Server) handleListClubs(w http.ResponseWriter, r *http.Request) {
	page := parsePagination(r)
	country := r.URL.Query().Get("country")

	clubs, err := s.db.Clubs.List(r.Context(), country, page.PerPage, page.Offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list clubs")
		writeError(w, http.StatusInternalServerError, "failed to list clubs")
		return
	}

	total, err := s.db.Clubs.Count(r.Context(), country)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count clubs")
		writeError(w, http.StatusInternalServerError, "failed to count clubs")
		return
	}

	type clubResponse struct {
		IdentityKey string `json:"identity_key"`
		DisplayName string `json:"display_name"`
		Country     string `json:"country"`
		Level       int    `json:"level"`
	}

	data := make([]clubResponse, 0, len(clubs))
	for _, club := range clubs {
		data = append(data, clubResponse{
			IdentityKey: club.IdentityKey,
			DisplayName: club.DisplayName,
			Country:     club.Country,
			Level:       club.Level,
		})
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data:    data,
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   total,
	})
}

// handleImportStatus serves GET /api/v1/imports/status with the last
// recorded run per job. A job that has never completed maps to null.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	if s.state == nil {
		writeError(w, http.StatusServiceUnavailable, "import-state tracking unavailable")
		return
	}

	states := make(map[string]*cache.ImportState, 2)
	for _, job := range []string{"snapshot", "fixtures"} {
		st, err := s.state.GetImportState(r.Context(), job)
		if err != nil {
			log.Error().Err(err).Str("job", job).Msg("Failed to read import state")
			writeError(w, http.StatusInternalServerError, "failed to read import state")
			return
		}
		states[job] = st
	}

	writeJSON(w, http.StatusOK, states)
}

// handleListFixtures serves GET /api/v1/fixtures?date=YYYY-MM-DD&country=XX
func (s *Server) handleListFixtures(w http.ResponseWriter, r *http.Request) {
	var date time.Time
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	page := parsePagination(r)
	country := r.URL.Query().Get("country")

	fixtures, total, err := s.db.Fixtures.ListByDate(r.Context(), date, country, page.PerPage, page.Offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list fixtures")
		writeError(w, http.StatusInternalServerError, "failed to list fixtures")
		return
	}

	data := make([]fixtureResponse, 0, len(fixtures))
	for _, fixture := range fixtures {
		data = append(data, toFixtureResponse(fixture))
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data:    data,
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   total,
	})
}
