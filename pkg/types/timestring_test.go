package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "morning", input: "09:30", want: 570},
		{name: "midnight", input: "00:00", want: 0},
		{name: "end of day", input: "24:00", want: 1440},
		{name: "postgres time", input: "10:00:00", want: 600},
		{name: "postgres time with fraction", input: "10:00:00.000000", want: 600},
		{name: "non zero seconds", input: "10:00:30", wantErr: true},
		{name: "single digit hour", input: "9:00", wantErr: true},
		{name: "minutes overflow", input: "10:60", wantErr: true},
		{name: "after end of day", input: "24:30", wantErr: true},
		{name: "garbage", input: "noon", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Minutes())
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	start := MustTimeString("09:45")

	next, err := start.AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, "10:15", next.String())

	_, err = MustTimeString("23:45").AddMinutes(30)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	a := MustTimeString("10:00")
	b := MustTimeString("10:30")

	assert.True(t, a.IsBefore(b))
	assert.True(t, b.IsAfter(a))
	assert.False(t, a.IsAfter(a))
	assert.True(t, a.Equal(MustTimeString("10:00")))
}

func TestTimeString_JSON(t *testing.T) {
	var payload struct {
		Time TimeString `json:"time"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"time":"18:30"}`), &payload))
	assert.Equal(t, "18:30", payload.Time.String())

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"time":"18:30"}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"time":"7pm"}`), &payload))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan([]byte("07:15:00")))
	assert.Equal(t, "07:15", ts.String())

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 21, 5, 0, 0, time.UTC)))
	assert.Equal(t, "21:05", ts.String())

	assert.Error(t, ts.Scan(42))

	var nullable NullTimeString
	require.NoError(t, nullable.Scan(nil))
	assert.False(t, nullable.Valid)

	value, err := nullable.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}
