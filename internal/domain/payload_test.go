package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUpstreamPayload(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
	}{
		{"bare array", `[{"lat":1,"lon":2},{"lat":3,"lon":4}]`, 2},
		{"data wrapper", `{"data":[{"lat":1,"lon":2}]}`, 1},
		{"keyed object", `{"full_count":2,"version":4,"abc":{"lat":1,"lon":2},"def":{"flight_id":"x"},"stats":{"total":1}}`, 2},
		{"unexpected object", `{"foo":"bar"}`, 0},
		{"scalar", `42`, 0},
		{"empty array", `[]`, 0},
		{"array with scalars", `[1,"two",{"lat":1}]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUpstreamPayload([]byte(tt.body))
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.wantCount)
		})
	}
}

func TestParseUpstreamPayload_KeyedOrderIsStable(t *testing.T) {
	body := []byte(`{"zz":{"lat":3,"callsign":"C"},"aa":{"lat":1,"callsign":"A"},"mm":{"lat":2,"callsign":"B"}}`)

	got, err := ParseUpstreamPayload(body)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].String(FieldIdentifier))
	assert.Equal(t, "B", got[1].String(FieldIdentifier))
	assert.Equal(t, "C", got[2].String(FieldIdentifier))
}

func TestParseUpstreamPayload_Malformed(t *testing.T) {
	for _, body := range []string{`{"data":[`, `[] trailing-garbage`, `{"data":[]} {}`} {
		t.Run(body, func(t *testing.T) {
			_, err := ParseUpstreamPayload([]byte(body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestNormalizeFlights(t *testing.T) {
	body := []byte(`{"data":[
		{"fr24_id":"1","callsign":"SK100","orig_iata":"ARN","dest_iata":"CPH","lat":59.0,"lon":16.0},
		{"fr24_id":"2","callsign":"N/A","orig_iata":"ARN","dest_iata":"CPH"},
		{"fr24_id":"3","callsign":"DY200","orig_iata":"---","dest_iata":"OSL"}
	]}`)

	records, err := ParseUpstreamPayload(body)
	require.NoError(t, err)

	flights, rejected := NormalizeFlights(records)
	assert.Equal(t, 2, rejected)
	require.Len(t, flights, 1)
	assert.Equal(t, "SK100", flights[0].Identifier)
	assert.Equal(t, "1", flights[0].FlightID)
}
