package sphere

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camsphere/internal/mathutil"
)

func baseSpec(d Distribution) Spec {
	return Spec{
		Target:          mathutil.Vec3{1, -2, 3},
		MinRadius:       4,
		MaxRadius:       6,
		HorizontalCount: 6,
		VerticalCount:   4,
		Distribution:    d,
	}
}

var allDistributions = []Distribution{Linear, Uniform, Fibonacci, Weighted8020, EquatorDense}

func TestDistributeCountAndShell(t *testing.T) {
	for _, d := range allDistributions {
		for _, half := range []bool{false, true} {
			spec := baseSpec(d)
			spec.HalfSphere = half

			poses, err := Distribute(spec)
			require.NoError(t, err, "%v half=%v", d, half)
			require.Len(t, poses, spec.Count(), "%v half=%v", d, half)

			for _, p := range poses {
				dist := p.Position.Dist(spec.Target)
				assert.GreaterOrEqual(t, dist, spec.MinRadius-1e-9, "%v pose %d", d, p.Index)
				assert.LessOrEqual(t, dist, spec.MaxRadius+1e-9, "%v pose %d", d, p.Index)
				assert.InDelta(t, p.Radius, dist, 1e-9, "%v pose %d", d, p.Index)
				if half {
					assert.GreaterOrEqual(t, p.Elevation, 0.0, "%v pose %d", d, p.Index)
				}
			}
		}
	}
}

func TestDistributeIndexesAreSequential(t *testing.T) {
	for _, d := range allDistributions {
		poses, err := Distribute(baseSpec(d))
		require.NoError(t, err)
		for i, p := range poses {
			assert.Equal(t, i, p.Index)
		}
	}
}

func TestOrientationAimsAtTarget(t *testing.T) {
	for _, d := range allDistributions {
		poses, err := Distribute(baseSpec(d))
		require.NoError(t, err)

		for _, p := range poses {
			want := baseSpec(d).Target.Sub(p.Position).Normalize()
			fwd := p.Orientation.Forward()
			assert.InDelta(t, 1.0, fwd.Dot(want), 1e-9, "%v pose %d", d, p.Index)
		}
	}
}

func TestOrientationIsOrthonormal(t *testing.T) {
	poses, err := Distribute(baseSpec(Fibonacci))
	require.NoError(t, err)

	for _, p := range poses {
		r, u, f := p.Orientation.Right(), p.Orientation.Up(), p.Orientation.Forward()
		assert.InDelta(t, 1.0, r.Len(), 1e-9)
		assert.InDelta(t, 1.0, u.Len(), 1e-9)
		assert.InDelta(t, 1.0, f.Len(), 1e-9)
		assert.InDelta(t, 0.0, r.Dot(u), 1e-9)
		assert.InDelta(t, 0.0, r.Dot(f), 1e-9)
		assert.InDelta(t, 0.0, u.Dot(f), 1e-9)
	}
}

func TestPoleDegeneracyResolved(t *testing.T) {
	// Linear half-sphere with multiple rings puts ring 0 exactly on the
	// world-up axis through the target.
	spec := baseSpec(Linear)
	spec.HalfSphere = true
	spec.MinRadius = 5
	spec.MaxRadius = 5

	poses, err := Distribute(spec)
	require.NoError(t, err)

	found := false
	for _, p := range poses {
		if math.Abs(p.Elevation-math.Pi/2) < 1e-12 {
			found = true
		}
		assert.True(t, p.Position.IsFinite(), "pose %d position", p.Index)
		for _, c := range p.Orientation {
			assert.False(t, math.IsNaN(c), "pose %d orientation", p.Index)
		}
		assert.InDelta(t, 1.0, p.Orientation.Right().Len(), 1e-9, "pose %d right", p.Index)
	}
	assert.True(t, found, "expected a pose on the pole")
}

func TestDistributeDeterministic(t *testing.T) {
	for _, d := range allDistributions {
		a, err := Distribute(baseSpec(d))
		require.NoError(t, err)
		b, err := Distribute(baseSpec(d))
		require.NoError(t, err)
		assert.Equal(t, a, b, "%v", d)
	}
}

func TestLinearSingleRingExample(t *testing.T) {
	spec := Spec{
		Target:          mathutil.Vec3{},
		MinRadius:       5,
		MaxRadius:       5,
		HorizontalCount: 4,
		VerticalCount:   1,
		Distribution:    Linear,
	}

	poses, err := Distribute(spec)
	require.NoError(t, err)
	require.Len(t, poses, 4)

	wantAz := []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}
	for i, p := range poses {
		assert.InDelta(t, 0.0, p.Elevation, 1e-12, "pose %d", i)
		assert.InDelta(t, wantAz[i], p.Azimuth, 1e-12, "pose %d", i)
		assert.InDelta(t, 5.0, p.Radius, 1e-12, "pose %d", i)
	}
}

func TestWeightedSplit(t *testing.T) {
	spec := Spec{
		Target:          mathutil.Vec3{},
		MinRadius:       3,
		MaxRadius:       3,
		HorizontalCount: 5,
		VerticalCount:   2,
		Distribution:    Weighted8020,
	}

	poses, err := Distribute(spec)
	require.NoError(t, err)
	require.Len(t, poses, 10)

	upper, lower := 0, 0
	for _, p := range poses {
		if p.Elevation > 0 {
			upper++
		} else if p.Elevation < 0 {
			lower++
		}
	}
	assert.Equal(t, 8, upper)
	assert.Equal(t, 2, lower)

	// upper block comes first
	for _, p := range poses[:8] {
		assert.Greater(t, p.Elevation, 0.0, "pose %d", p.Index)
	}
	for _, p := range poses[8:] {
		assert.Less(t, p.Elevation, 0.0, "pose %d", p.Index)
	}
}

func TestWeightedHalfSphereIsAllUpper(t *testing.T) {
	spec := baseSpec(Weighted8020)
	spec.HalfSphere = true

	poses, err := Distribute(spec)
	require.NoError(t, err)
	require.Len(t, poses, spec.Count())
	for _, p := range poses {
		assert.Greater(t, p.Elevation, 0.0, "pose %d", p.Index)
	}
}

func TestRadiusInterpolatesByRing(t *testing.T) {
	spec := baseSpec(Linear) // 4 rings, radius 4..6
	poses, err := Distribute(spec)
	require.NoError(t, err)

	h := spec.HorizontalCount
	for ring := 0; ring < spec.VerticalCount; ring++ {
		want := 4 + 2*float64(ring)/3
		for j := 0; j < h; j++ {
			assert.InDelta(t, want, poses[ring*h+j].Radius, 1e-12, "ring %d", ring)
		}
	}
}

func TestFloorConstraintClampsElevation(t *testing.T) {
	spec := baseSpec(Uniform)
	spec.Target = mathutil.Vec3{0, 0, 1}
	spec.Floor = &FloorPlane{
		Point:  mathutil.Vec3{0, 0, 0},
		Normal: mathutil.Vec3{0, 0, 1},
	}

	poses, err := Distribute(spec)
	require.NoError(t, err)
	require.Len(t, poses, spec.Count())

	for _, p := range poses {
		assert.GreaterOrEqual(t, p.Position[2], -1e-9, "pose %d below floor", p.Index)
		// spherical coords stay consistent with the clamped position
		want := sphericalPosition(spec.Target, p.Radius, p.Azimuth, p.Elevation)
		assert.InDelta(t, want[0], p.Position[0], 1e-9)
		assert.InDelta(t, want[1], p.Position[1], 1e-9)
		assert.InDelta(t, want[2], p.Position[2], 1e-9)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"zero min radius", func(s *Spec) { s.MinRadius = 0 }},
		{"negative min radius", func(s *Spec) { s.MinRadius = -1 }},
		{"min above max", func(s *Spec) { s.MinRadius = 7 }},
		{"zero horizontal", func(s *Spec) { s.HorizontalCount = 0 }},
		{"zero vertical", func(s *Spec) { s.VerticalCount = 0 }},
		{"unknown distribution", func(s *Spec) { s.Distribution = Distribution(99) }},
		{"zero floor normal", func(s *Spec) { s.Floor = &FloorPlane{} }},
		{"downward floor normal", func(s *Spec) {
			s.Floor = &FloorPlane{Normal: mathutil.Vec3{0, 0, -1}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := baseSpec(Linear)
			tc.mutate(&spec)

			poses, err := Distribute(spec)
			assert.Nil(t, poses)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestParseDistribution(t *testing.T) {
	for _, d := range allDistributions {
		got, err := ParseDistribution(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	_, err := ParseDistribution("spiral")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRemoveOverlapping(t *testing.T) {
	spec := baseSpec(Fibonacci)
	poses, err := Distribute(spec)
	require.NoError(t, err)

	// duplicate every pose; the duplicates must all be dropped
	doubled := append(append([]Pose{}, poses...), poses...)
	kept := RemoveOverlapping(doubled, 1e-6)
	require.Len(t, kept, len(poses))
	for i, p := range kept {
		assert.Equal(t, i, p.Index)
	}

	// threshold <= 0 is a no-op
	assert.Equal(t, doubled, RemoveOverlapping(doubled, 0))
}
