package request

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMillisUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Millis
	}{
		{`50`, 50},
		{`"50"`, 50},
		{`" 1200 "`, 1200},
		{`50.9`, 50},
		{`"50.9"`, 50},
		{`null`, 0},
		{`""`, 0},
		{`0`, 0},
		{`-20`, -20},
		{`"-9223372036854775808"`, math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var req FinishRaceRequest
			err := json.Unmarshal([]byte(`{"raceTime":`+tt.in+`}`), &req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.RaceTime)
		})
	}
}

func TestMillisUnmarshalRejectsNonNumeric(t *testing.T) {
	for _, in := range []string{
		`"fast"`, `true`, `{}`, `[1]`,
		`9223372036854775808`, `"9223372036854775808"`, `-9.223372036854775808e18`, `1e19`,
	} {
		var req FinishRaceRequest
		err := json.Unmarshal([]byte(`{"raceTime":`+in+`}`), &req)
		assert.Error(t, err, in)
	}
}

func TestMillisMissingFieldIsZero(t *testing.T) {
	var req FinishRaceRequest
	require.NoError(t, json.Unmarshal([]byte(`{"raceId":"r"}`), &req))
	assert.Equal(t, Millis(0), req.RaceTime)
	assert.Equal(t, "r", req.RaceID)
}

func TestDecodeEmptyBody(t *testing.T) {
	r := httptest.NewRequest("DELETE", "/race", strings.NewReader(""))
	var req CancelRaceRequest
	require.NoError(t, Decode(r, &req))
	assert.Empty(t, req.RaceID)
}

func TestDecodeMalformedBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/name", strings.NewReader("{nope"))
	var req SetNameRequest
	assert.Error(t, Decode(r, &req))
}
