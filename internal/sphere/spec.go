package sphere

import (
	"fmt"

	"camsphere/internal/mathutil"
)

// Distribution selects how camera positions are spread over the sphere.
type Distribution int

const (
	// Linear spaces azimuth and elevation on even angular steps.
	Linear Distribution = iota
	// Uniform spaces elevation rings on equal-area bands.
	Uniform
	// Fibonacci spreads points via the golden-angle spiral.
	Fibonacci
	// Weighted8020 puts 80% of the points in the upper hemisphere
	// and 20% in the lower one, each as its own Fibonacci spiral.
	Weighted8020
	// EquatorDense concentrates elevation rings near the equator.
	EquatorDense
)

var distributionNames = map[Distribution]string{
	Linear:       "linear",
	Uniform:      "uniform",
	Fibonacci:    "fibonacci",
	Weighted8020: "weighted",
	EquatorDense: "equator_dense",
}

func (d Distribution) String() string {
	if s, ok := distributionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("distribution(%d)", int(d))
}

// ParseDistribution maps a config/CLI tag to a Distribution.
func ParseDistribution(s string) (Distribution, error) {
	for d, name := range distributionNames {
		if s == name {
			return d, nil
		}
	}
	return 0, &ValidationError{Field: "distribution", Reason: fmt.Sprintf("unknown tag %q", s)}
}

// MarshalText implements encoding.TextMarshaler so the tag round-trips
// through JSON manifests and config files.
func (d Distribution) MarshalText() ([]byte, error) {
	if _, ok := distributionNames[d]; !ok {
		return nil, fmt.Errorf("sphere: cannot marshal %v", d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Distribution) UnmarshalText(b []byte) error {
	parsed, err := ParseDistribution(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CameraParams is the intrinsic template copied verbatim onto every
// generated camera. Opaque to the engine.
type CameraParams struct {
	FocalLength float64 `json:"focal_length"` // mm
	SensorWidth float64 `json:"sensor_width"` // mm
	ClipStart   float64 `json:"clip_start"`
	ClipEnd     float64 `json:"clip_end"`
}

// FloorPlane is an optional constraint plane; cameras are never placed
// below it. Normal must point up out of the floor (positive Z component).
type FloorPlane struct {
	Point  mathutil.Vec3 `json:"point"`
	Normal mathutil.Vec3 `json:"normal"`
}

// Spec is the immutable input of one generation request.
type Spec struct {
	Target          mathutil.Vec3 `json:"target"`
	MinRadius       float64       `json:"min_radius"`
	MaxRadius       float64       `json:"max_radius"`
	HorizontalCount int           `json:"horizontal_count"`
	VerticalCount   int           `json:"vertical_count"`
	Distribution    Distribution  `json:"distribution"`
	HalfSphere      bool          `json:"half_sphere"`
	BaseCamera      *CameraParams `json:"base_camera,omitempty"`
	Floor           *FloorPlane   `json:"floor,omitempty"`
}

// Count returns the number of poses the spec yields. Every strategy
// produces exactly HorizontalCount × VerticalCount poses.
func (s Spec) Count() int {
	return s.HorizontalCount * s.VerticalCount
}

// ValidationError reports a malformed Spec. It is fatal: no poses are
// produced when validation fails.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sphere: invalid spec: %s: %s", e.Field, e.Reason)
}

// Validate checks the spec before any pose is produced.
func (s Spec) Validate() error {
	if s.MinRadius <= 0 {
		return &ValidationError{Field: "min_radius", Reason: fmt.Sprintf("must be > 0, got %g", s.MinRadius)}
	}
	if s.MinRadius > s.MaxRadius {
		return &ValidationError{Field: "max_radius", Reason: fmt.Sprintf("must be >= min_radius (%g), got %g", s.MinRadius, s.MaxRadius)}
	}
	if s.HorizontalCount < 1 {
		return &ValidationError{Field: "horizontal_count", Reason: fmt.Sprintf("must be >= 1, got %d", s.HorizontalCount)}
	}
	if s.VerticalCount < 1 {
		return &ValidationError{Field: "vertical_count", Reason: fmt.Sprintf("must be >= 1, got %d", s.VerticalCount)}
	}
	if _, ok := distributionNames[s.Distribution]; !ok {
		return &ValidationError{Field: "distribution", Reason: fmt.Sprintf("unknown value %d", int(s.Distribution))}
	}
	if s.Floor != nil {
		if s.Floor.Normal.Len() < 1e-12 {
			return &ValidationError{Field: "floor.normal", Reason: "must be non-zero"}
		}
		if s.Floor.Normal[2] <= 0 {
			return &ValidationError{Field: "floor.normal", Reason: "must point upward (positive Z)"}
		}
	}
	return nil
}

// Pose is one generated camera placement. Index is the stable position in
// the sequence; Radius, Azimuth and Elevation are the spherical
// coordinates that produced Position, retained for the manifest.
type Pose struct {
	Index       int           `json:"index"`
	Position    mathutil.Vec3 `json:"position"`
	Orientation mathutil.Mat3 `json:"-"`
	Rotation    mathutil.Quat `json:"rotation"`
	Radius      float64       `json:"radius"`
	Azimuth     float64       `json:"azimuth"`
	Elevation   float64       `json:"elevation"`
}
