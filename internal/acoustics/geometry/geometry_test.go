package geometry

import (
	"math"
	"testing"

	"github.com/RMahshie/roomtreat/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	tests := []struct {
		name      string
		dims      RoomDimensions
		want      Room
		wantField string
	}{
		{
			name: "metric defaults",
			dims: RoomDimensions{Length: 5, Width: 4, Height: 2.5},
			want: Room{Length: 5, Width: 4, Height: 2.5, Usage: Mixing, Unit: Metric},
		},
		{
			name: "imperial converted",
			dims: RoomDimensions{Length: 10, Width: 10, Height: 10, Unit: Imperial, Usage: Recording},
			want: Room{Length: 3.048, Width: 3.048, Height: 3.048, Usage: Recording, Unit: Imperial},
		},
		{
			name:      "zero length",
			dims:      RoomDimensions{Length: 0, Width: 4, Height: 2.5},
			wantField: "length",
		},
		{
			name:      "negative height",
			dims:      RoomDimensions{Length: 5, Width: 4, Height: -1},
			wantField: "height",
		},
		{
			name:      "nan width",
			dims:      RoomDimensions{Length: 5, Width: math.NaN(), Height: 2.5},
			wantField: "width",
		},
		{
			name:      "unknown unit",
			dims:      RoomDimensions{Length: 5, Width: 4, Height: 2.5, Unit: "cubits"},
			wantField: "unit",
		},
		{
			name:      "unknown usage",
			dims:      RoomDimensions{Length: 5, Width: 4, Height: 2.5, Usage: "karaoke"},
			wantField: "usage",
		},
		{
			name:      "too large",
			dims:      RoomDimensions{Length: 120, Width: 4, Height: 2.5, Unit: Imperial},
			wantField: "length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRoom(tt.dims)
			if tt.wantField != "" {
				var verr *errs.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Length, got.Length, 1e-9)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)
			assert.Equal(t, tt.want.Usage, got.Usage)
			assert.Equal(t, tt.want.Unit, got.Unit)
		})
	}
}

func TestUnitRoundTrip(t *testing.T) {
	for _, v := range []float64{0.1, 1, 7.25, 13.333, 98.4} {
		m := ToMeters(v, Imperial)
		back := FromMeters(m, Imperial)
		assert.InDelta(t, 0, math.Abs(back-v)/v, 1e-6, "value %v", v)
	}

	room, err := NewRoom(RoomDimensions{Length: 16.4, Width: 13.1, Height: 8.2, Unit: Imperial})
	require.NoError(t, err)
	back := room.In(Imperial)
	assert.InDelta(t, 16.4, back.Length, 16.4*1e-6)
	assert.InDelta(t, 13.1, back.Width, 13.1*1e-6)
	assert.InDelta(t, 8.2, back.Height, 8.2*1e-6)
}

func TestRoomDerived(t *testing.T) {
	room, err := NewRoom(RoomDimensions{Length: 5, Width: 4, Height: 2.5})
	require.NoError(t, err)

	assert.InDelta(t, 50.0, room.Volume(), 1e-9)
	assert.InDelta(t, 85.0, room.SurfaceArea(), 1e-9)
	assert.InDelta(t, 20.0, room.FloorArea(), 1e-9)
	assert.Equal(t, [3]float64{2.5, 4, 5}, room.Sorted())
}

func TestTargetRT60(t *testing.T) {
	assert.Equal(t, Band{Min: 0.2, Max: 0.3}, Mixing.TargetRT60())
	assert.True(t, Production.TargetRT60().Contains(0.3))
	assert.False(t, Mixing.TargetRT60().Contains(0.45))

	for _, u := range []Usage{Mixing, Recording, Production, Other} {
		d := u.DefaultRT60()
		assert.GreaterOrEqual(t, d, 0.2)
		assert.LessOrEqual(t, d, 0.3)
	}
	assert.InDelta(t, 0.25, Mixing.DefaultRT60(), 1e-9)
}
