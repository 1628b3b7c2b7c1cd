package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s := math.Sin(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math.Cos(angle / 2),
	}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 1e-10 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float64 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	m := q.ToMat3()
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Mat3 is a row-major 3x3 rotation matrix.
type Mat3 [3][3]float64

// ToMat3 converts the normalized quaternion to a rotation matrix.
func (q Quat) ToMat3() Mat3 {
	q = q.Normalize()

	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z

	return Mat3{
		{1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy)},
		{2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx)},
		{2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy)},
	}
}

// eulerEpsilon matches the single precision threshold used by DCC tools
// when detecting gimbal lock.
const eulerEpsilon = 16 * 1.1920929e-07

// ToEuler converts the quaternion to XYZ Euler angles.
// Of the two equivalent decompositions, the one with the smallest total
// absolute angle is returned.
func (q Quat) ToEuler() Euler {
	m := q.ToMat3()

	cy := math.Hypot(m[0][0], m[1][0])
	if cy <= eulerEpsilon {
		return Euler{
			X: math.Atan2(-m[1][2], m[1][1]),
			Y: math.Atan2(-m[2][0], cy),
			Z: 0,
		}
	}

	e1 := Euler{
		X: math.Atan2(m[2][1], m[2][2]),
		Y: math.Atan2(-m[2][0], cy),
		Z: math.Atan2(m[1][0], m[0][0]),
	}
	e2 := Euler{
		X: math.Atan2(-m[2][1], -m[2][2]),
		Y: math.Atan2(-m[2][0], -cy),
		Z: math.Atan2(-m[1][0], -m[0][0]),
	}

	if math.Abs(e1.X)+math.Abs(e1.Y)+math.Abs(e1.Z) > math.Abs(e2.X)+math.Abs(e2.Y)+math.Abs(e2.Z) {
		return e2
	}
	return e1
}
