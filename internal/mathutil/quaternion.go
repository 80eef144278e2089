package mathutil

import "math"

// Quat represents a quaternion (x, y, z, w).
type Quat [4]float64

// Mat3ToQuat converts a rotation matrix to a unit quaternion using the
// Shepperd branch selection (largest diagonal term drives the division).
func Mat3ToQuat(m Mat3) Quat {
	tr := m[0] + m[4] + m[8]

	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		return Quat{
			(m[7] - m[5]) / s,
			(m[2] - m[6]) / s,
			(m[3] - m[1]) / s,
			s / 4,
		}
	case m[0] > m[4] && m[0] > m[8]:
		s := math.Sqrt(1+m[0]-m[4]-m[8]) * 2
		return Quat{
			s / 4,
			(m[1] + m[3]) / s,
			(m[2] + m[6]) / s,
			(m[7] - m[5]) / s,
		}
	case m[4] > m[8]:
		s := math.Sqrt(1+m[4]-m[0]-m[8]) * 2
		return Quat{
			(m[1] + m[3]) / s,
			s / 4,
			(m[5] + m[7]) / s,
			(m[2] - m[6]) / s,
		}
	default:
		s := math.Sqrt(1+m[8]-m[0]-m[4]) * 2
		return Quat{
			(m[2] + m[6]) / s,
			(m[5] + m[7]) / s,
			s / 4,
			(m[3] - m[1]) / s,
		}
	}
}

// QuatToMat3 converts a quaternion to a 3×3 rotation matrix.
func QuatToMat3(q Quat) Mat3 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}
