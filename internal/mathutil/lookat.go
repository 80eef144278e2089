package mathutil

// WorldUp is the global up axis (+Z, matching the scene convention).
var WorldUp = Vec3{0, 0, 1}

// worldForward disambiguates the camera basis when the view direction is
// parallel to WorldUp (camera directly above or below the target).
var worldForward = Vec3{0, 1, 0}

// LookAt builds a rotation whose columns are the camera basis
// (right, up, forward) for a camera at eye aimed at target.
// forward points from eye toward target; right = WorldUp × forward,
// falling back to worldForward as the secondary axis at the poles so the
// result is always orthonormal and finite.
func LookAt(eye, target Vec3) Mat3 {
	fwd := target.Sub(eye).Normalize()
	if fwd.Len() < 0.5 {
		// eye coincides with target; keep an arbitrary but fixed aim
		fwd = worldForward
	}

	right := WorldUp.Cross(fwd)
	if right.Len() < 1e-9 {
		right = worldForward.Cross(fwd)
	}
	right = right.Normalize()
	up := fwd.Cross(right)

	return Mat3FromCols(right, up, fwd)
}

// Forward returns the camera forward axis of a look-at rotation.
func (m Mat3) Forward() Vec3 { return m.Col(2) }

// Right returns the camera right axis of a look-at rotation.
func (m Mat3) Right() Vec3 { return m.Col(0) }

// Up returns the camera up axis of a look-at rotation.
func (m Mat3) Up() Vec3 { return m.Col(1) }
