package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/cortexvoice/internal/viseme"
)

func TestAllocateEvenPartition(t *testing.T) {
	shapes := []viseme.Shape{viseme.ShapeAA, viseme.ShapeOH, viseme.ShapeRR, viseme.ShapeDD}
	intervals := Allocate(shapes, 1.0)

	require.Len(t, intervals, 4)
	for i, iv := range intervals {
		assert.Equal(t, shapes[i], iv.Shape)
		assert.InDelta(t, 0.25*float64(i), iv.Start, 1e-9)
		assert.InDelta(t, 0.25*float64(i+1), iv.End, 1e-9)
	}
}

func TestAllocateContiguous(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		duration float64
	}{
		{"one shape", 1, 2.5},
		{"three shapes", 3, 1.0},
		{"seven shapes awkward duration", 7, 3.33},
		{"many shapes", 100, 12.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shapes := make([]viseme.Shape, tt.count)
			for i := range shapes {
				shapes[i] = viseme.ShapeAA
			}
			intervals := Allocate(shapes, tt.duration)

			require.Len(t, intervals, tt.count)
			assert.Zero(t, intervals[0].Start)
			assert.InDelta(t, tt.duration, intervals[len(intervals)-1].End, 1e-9*tt.duration)
			for i := 1; i < len(intervals); i++ {
				assert.Greater(t, intervals[i].Start, intervals[i-1].Start)
				assert.Equal(t, intervals[i-1].End, intervals[i].Start)
			}
		})
	}
}

func TestAllocateEmpty(t *testing.T) {
	intervals := Allocate(nil, 1.0)
	assert.Empty(t, intervals)

	intervals = Allocate([]viseme.Shape{}, 5.0)
	assert.Empty(t, intervals)
}

func TestAllocateZeroDuration(t *testing.T) {
	shapes := []viseme.Shape{viseme.ShapePP, viseme.ShapeSS}
	intervals := Allocate(shapes, 0)

	require.Len(t, intervals, 2)
	for _, iv := range intervals {
		assert.Zero(t, iv.Start)
		assert.Zero(t, iv.End)
	}
}
