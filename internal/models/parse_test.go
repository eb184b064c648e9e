package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlexibleDate_BothFormats(t *testing.T) {
	iso, err := ParseFlexibleDate("2024-08-03")
	require.NoError(t, err, "Should parse ISO dates")

	slash, err := ParseFlexibleDate("8/3/2024")
	require.NoError(t, err, "Should parse slash dates without leading zeros")

	assert.True(t, iso.Equal(slash), "Both shapes should name the same day")
	assert.Equal(t, time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC), iso)
}

func TestParseFlexibleDate_PaddedSlash(t *testing.T) {
	d, err := ParseFlexibleDate("08/03/2024")
	require.NoError(t, err, "Leading zeros in slash dates are fine")
	assert.Equal(t, time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC), d)
}

func TestParseFlexibleDate_Trimmed(t *testing.T) {
	d, err := ParseFlexibleDate("  2024-08-03  ")
	require.NoError(t, err, "Surrounding whitespace should be ignored")
	assert.Equal(t, time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC), d)
}

func TestParseFlexibleDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "03-08-2024", "2024/08/03", "not a date"} {
		_, err := ParseFlexibleDate(s)
		assert.Error(t, err, "Should reject %q", s)
	}
}

func TestParseOptionalInt_Sentinels(t *testing.T) {
	v, err := parseOptionalInt("rank", "")
	require.NoError(t, err)
	assert.Nil(t, v, "Empty means absent")

	v, err = parseOptionalInt("rank", "None")
	require.NoError(t, err)
	assert.Nil(t, v, "The None sentinel means absent")

	v, err = parseOptionalInt("rank", "17")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 17, *v)

	_, err = parseOptionalInt("rank", "abc")
	assert.Error(t, err, "Present but unparseable invalidates the value")
}

func TestParseOptionalFloat_RejectsNaN(t *testing.T) {
	_, err := parseOptionalFloat("prob", "NaN")
	assert.Error(t, err, "NaN carries no information and should be rejected")

	_, err = parseRequiredFloat("elo", "NaN")
	assert.Error(t, err, "Required fields reject NaN too")
}
