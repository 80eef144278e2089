package sphere

import (
	"math"

	"camsphere/internal/mathutil"
)

// goldenAngle is π(3−√5), the azimuth increment of the Fibonacci spiral.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// sample is a spherical coordinate before pose assembly. ring indexes the
// elevation band for radius interpolation; strategies without rings use
// the global sample index instead.
type sample struct {
	azimuth   float64
	elevation float64
	ring      int
	rings     int
}

// Distribute maps a validated spec to its ordered pose sequence.
// Deterministic: the same spec always yields bit-identical poses.
func Distribute(spec Spec) ([]Pose, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var samples []sample
	switch spec.Distribution {
	case Linear:
		samples = gridSamples(spec, linearElevations(spec))
	case Uniform:
		samples = gridSamples(spec, uniformElevations(spec))
	case EquatorDense:
		samples = gridSamples(spec, equatorDenseElevations(spec))
	case Fibonacci:
		samples = fibonacciSamples(spec.Count(), spec.HalfSphere)
	case Weighted8020:
		samples = weightedSamples(spec.Count(), spec.HalfSphere)
	}

	poses := make([]Pose, len(samples))
	for i, s := range samples {
		poses[i] = assemblePose(spec, i, s)
	}
	return poses, nil
}

// linearElevations spaces rings on even angular steps over the active
// range, excluding the poles on the full sphere. A single ring sits at the
// midpoint of the range.
func linearElevations(spec Spec) []float64 {
	v := spec.VerticalCount
	out := make([]float64, v)
	for i := 0; i < v; i++ {
		switch {
		case v == 1 && spec.HalfSphere:
			out[i] = math.Pi / 4
		case v == 1:
			out[i] = 0
		case spec.HalfSphere:
			// pole down to equator, inclusive
			out[i] = (math.Pi / 2) * (1 - float64(i)/float64(v-1))
		default:
			out[i] = math.Pi/2 - math.Pi*float64(i+1)/float64(v+1)
		}
	}
	return out
}

// uniformElevations spaces rings so each band covers equal surface area:
// sin(elevation) is evenly spaced over the active range, sampled at
// interior points so the poles never collapse a whole ring.
func uniformElevations(spec Spec) []float64 {
	v := spec.VerticalCount
	lo := -1.0
	if spec.HalfSphere {
		lo = 0.0
	}
	out := make([]float64, v)
	for i := 0; i < v; i++ {
		z := 1.0 - (1.0-lo)*float64(i+1)/float64(v+1)
		out[i] = math.Asin(z)
	}
	return out
}

// equatorDenseElevations draws rings from a cosine kernel peaked at the
// equator: elevation = asin(u) with u evenly spaced mid-band, which gives
// ring density proportional to cos(elevation).
func equatorDenseElevations(spec Spec) []float64 {
	v := spec.VerticalCount
	out := make([]float64, v)
	for i := 0; i < v; i++ {
		t := (float64(i) + 0.5) / float64(v)
		if spec.HalfSphere {
			out[i] = math.Asin(1 - t)
		} else {
			out[i] = math.Asin(1 - 2*t)
		}
	}
	return out
}

// gridSamples crosses the given elevation rings with evenly spaced
// azimuth steps, ring-major so pose order matches ring order.
func gridSamples(spec Spec, elevations []float64) []sample {
	h := spec.HorizontalCount
	out := make([]sample, 0, len(elevations)*h)
	for ring, el := range elevations {
		for j := 0; j < h; j++ {
			out = append(out, sample{
				azimuth:   2 * math.Pi * float64(j) / float64(h),
				elevation: el,
				ring:      ring,
				rings:     len(elevations),
			})
		}
	}
	return out
}

// fibonacciSamples spreads n points with the golden-angle spiral.
// sin(elevation) is evenly spaced mid-band over the active range, so the
// half-sphere case re-derives the spiral for [0, π/2] instead of
// truncating the full sphere; density is preserved either way.
func fibonacciSamples(n int, halfSphere bool) []sample {
	lo := -1.0
	if halfSphere {
		lo = 0.0
	}
	out := make([]sample, n)
	for i := 0; i < n; i++ {
		z := 1.0 - (1.0-lo)*(float64(i)+0.5)/float64(n)
		out[i] = sample{
			azimuth:   math.Mod(float64(i)*goldenAngle, 2*math.Pi),
			elevation: math.Asin(z),
			ring:      i,
			rings:     n,
		}
	}
	return out
}

// weightedSamples builds two independent Fibonacci spirals: 80% of the
// points over the upper hemisphere followed by 20% over the lower one.
// With halfSphere set the lower block is empty by definition.
func weightedSamples(n int, halfSphere bool) []sample {
	if halfSphere {
		return fibonacciSamples(n, true)
	}
	upper := int(float64(n) * 0.8)
	lower := n - upper

	out := fibonacciSamples(upper, true)
	for i := 0; i < lower; i++ {
		z := -(float64(i) + 0.5) / float64(lower)
		out = append(out, sample{
			azimuth:   math.Mod(float64(i)*goldenAngle, 2*math.Pi),
			elevation: math.Asin(z),
			ring:      i,
			rings:     lower,
		})
	}
	// renumber rings over the whole sequence for radius interpolation
	for i := range out {
		out[i].ring = i
		out[i].rings = n
	}
	return out
}

// ringRadius interpolates the shell radius linearly in the ring index:
// ring 0 at min_radius, the outermost ring at max_radius.
func ringRadius(spec Spec, ring, rings int) float64 {
	if rings <= 1 || spec.MinRadius == spec.MaxRadius {
		return spec.MinRadius
	}
	t := float64(ring) / float64(rings-1)
	return spec.MinRadius + (spec.MaxRadius-spec.MinRadius)*t
}

func assemblePose(spec Spec, index int, s sample) Pose {
	r := ringRadius(spec, s.ring, s.rings)
	el := s.elevation

	pos := sphericalPosition(spec.Target, r, s.azimuth, el)
	if spec.Floor != nil {
		el = clampAboveFloor(spec, r, s.azimuth, el)
		pos = sphericalPosition(spec.Target, r, s.azimuth, el)
	}

	orient := mathutil.LookAt(pos, spec.Target)
	return Pose{
		Index:       index,
		Position:    pos,
		Orientation: orient,
		Rotation:    mathutil.Mat3ToQuat(orient),
		Radius:      r,
		Azimuth:     s.azimuth,
		Elevation:   el,
	}
}

// sphericalPosition converts (radius, azimuth, elevation) anchored at the
// target into a Cartesian point. Elevation 0 is the equator, +π/2 the
// world-up pole.
func sphericalPosition(target mathutil.Vec3, r, az, el float64) mathutil.Vec3 {
	return target.Add(mathutil.Vec3{
		r * math.Cos(el) * math.Cos(az),
		r * math.Cos(el) * math.Sin(az),
		r * math.Sin(el),
	})
}

// floorOffset is the signed distance of the pose position from the floor
// plane along its normal.
func floorOffset(spec Spec, r, az, el float64) float64 {
	pos := sphericalPosition(spec.Target, r, az, el)
	return pos.Sub(spec.Floor.Point).Dot(spec.Floor.Normal.Normalize())
}

// clampAboveFloor raises the elevation to the smallest angle that keeps
// the pose on or above the floor plane. If even the pole is below the
// floor the pole is the best available placement.
func clampAboveFloor(spec Spec, r, az, el float64) float64 {
	if floorOffset(spec, r, az, el) >= 0 {
		return el
	}
	hi := math.Pi / 2
	if floorOffset(spec, r, az, hi) < 0 {
		return hi
	}
	lo := el
	for i := 0; i < 64; i++ {
		mid := (lo + hi) / 2
		if floorOffset(spec, r, az, mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}
