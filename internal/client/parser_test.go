package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable_RatingRows(t *testing.T) {
	raw := []byte(`Rank,Club,Country,Level,Elo,From,To
1,Man City,ENG,1,2043.5,2024-08-01,2024-08-02
None,Forest Green,ENG,4,1301.2,2024-08-01,2024-08-02
`)

	rows, err := parseTable(raw, ratingColumns)
	require.NoError(t, err, "Should parse a well formed payload")
	require.Len(t, rows, 2, "Should return one row per record line")

	assert.Equal(t, "Man City", rows[0]["Club"], "Fields should map by header name")
	assert.Equal(t, "2043.5", rows[0]["Elo"], "Numeric fields stay strings until normalization")
	assert.Equal(t, "None", rows[1]["Rank"], "The rank sentinel passes through untouched")
}

func TestParseTable_TrimsWhitespace(t *testing.T) {
	raw := []byte("Rank, Club ,Country,Level,Elo,From,To\n1,  Real Madrid  ,ESP,1,2008.1,2024-08-01,2024-08-02\n")

	rows, err := parseTable(raw, ratingColumns)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Real Madrid", rows[0]["Club"], "Field values should be trimmed")
}

func TestParseTable_HeaderOnly(t *testing.T) {
	raw := []byte("Rank,Club,Country,Level,Elo,From,To\n")

	rows, err := parseTable(raw, ratingColumns)
	require.NoError(t, err, "A header-only payload is valid")
	assert.Empty(t, rows, "Should yield zero rows, not an error")
}

func TestParseTable_MalformedCSV(t *testing.T) {
	raw := []byte("Rank,Club,Country,Level,Elo,From,To\n1,\"unterminated,ENG,1,2000,2024-08-01,2024-08-02\n")

	_, err := parseTable(raw, ratingColumns)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedInput, "Syntactically broken payloads should surface as malformed input")
}

func TestParseTable_MissingColumn(t *testing.T) {
	raw := []byte("Rank,Club,Country,Level,From,To\n1,Arsenal,ENG,1,2024-08-01,2024-08-02\n")

	_, err := parseTable(raw, ratingColumns)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedInput, "A missing expected column invalidates the payload")
	assert.Contains(t, err.Error(), "Elo", "Error should name the missing column")
}

func TestParseTable_EmptyPayload(t *testing.T) {
	_, err := parseTable([]byte(""), ratingColumns)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedInput, "An empty payload has no header row")
}
