package utils

import (
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToSeconds(t *testing.T) {
	cases := map[string]int{
		"00:00:00":  0,
		"00:00:01":  1,
		"00:15:00":  900,
		"01:00:00":  3600,
		"25:30:15":  91815,
		"123:00:00": 442800,
		"1:02:03":   3723,
	}
	for in, want := range cases {
		got, err := TimeToSeconds(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestTimeToSeconds_Malformed(t *testing.T) {
	for _, in := range []string{"", "10:00", "00:00:00:00", "aa:00:00", "00::00", "00:60:00", "00:00:60", "-1:00:00", " 01:00:00", "01:00:0x", "NaN", "9999999999999999:00:00", "99999999999999999999:00:00"} {
		_, err := TimeToSeconds(in)
		var mde *MalformedDurationError
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.As(err, &mde), "input %q should be a MalformedDurationError", in)
		assert.Equal(t, in, mde.Value)
	}
}

func TestTimeToSeconds_LargestHours(t *testing.T) {
	n, err := TimeToSeconds(strconv.Itoa(maxHours) + ":59:59")
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestAddSeconds(t *testing.T) {
	total, err := AddSeconds(3600, 1800, "00:30:00")
	require.NoError(t, err)
	assert.Equal(t, 5400, total)

	_, err = AddSeconds(math.MaxInt-10, 11, "00:00:11")
	var mde *MalformedDurationError
	require.True(t, errors.As(err, &mde))
	assert.Equal(t, "00:00:11", mde.Value)
}

func TestSecondsToTime(t *testing.T) {
	assert.Equal(t, "00:00:00", SecondsToTime(0))
	assert.Equal(t, "00:15:00", SecondsToTime(900))
	assert.Equal(t, "26:00:01", SecondsToTime(26*3600+1))
	assert.Equal(t, "100:00:00", SecondsToTime(360000))
	assert.Equal(t, "00:00:00", SecondsToTime(-5))
}

func TestRoundTrip(t *testing.T) {
	for h := 0; h < 100; h += 7 {
		for m := 0; m < 60; m += 13 {
			for s := 0; s < 60; s += 11 {
				in := SecondsToTime(h*3600 + m*60 + s)
				n, err := TimeToSeconds(in)
				require.NoError(t, err)
				assert.Equal(t, in, SecondsToTime(n))
			}
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, ok := ParseTimestamp("2024/04/01 09:30")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC), ts)

	ts, ok = ParseTimestamp("2024-04-01 09:30:15")
	require.True(t, ok)
	assert.Equal(t, 15, ts.Second())

	ts, ok = ParseTimestamp("2024/4/1 9:05")
	require.True(t, ok)
	assert.Equal(t, 5, ts.Minute())

	for _, bad := range []string{"", "   ", "nan", "NaT", "yesterday"} {
		_, ok := ParseTimestamp(bad)
		assert.False(t, ok, bad)
	}
}
