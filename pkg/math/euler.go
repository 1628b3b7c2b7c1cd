package math

import "math"

// Euler is a rotation in radians applied in X, then Y, then Z order
// (R = Rz * Ry * Rx).
type Euler struct {
	X, Y, Z float64
}

// EulerDegrees builds an Euler rotation from angles in degrees.
func EulerDegrees(x, y, z float64) Euler {
	return Euler{Radians(x), Radians(y), Radians(z)}
}

// Degrees returns the angles in degrees.
func (e Euler) Degrees() Vec3 {
	return Vec3{Degrees(e.X), Degrees(e.Y), Degrees(e.Z)}
}

// ToMat4 returns the rotation matrix.
func (e Euler) ToMat4() Mat4 {
	return RotateZ(e.Z).Mul(RotateY(e.Y)).Mul(RotateX(e.X))
}

// ToQuat converts the rotation to a quaternion.
func (e Euler) ToQuat() Quat {
	qx := QuatFromAxisAngle(Vec3{X: 1}, e.X)
	qy := QuatFromAxisAngle(Vec3{Y: 1}, e.Y)
	qz := QuatFromAxisAngle(Vec3{Z: 1}, e.Z)
	return qz.Mul(qy).Mul(qx)
}

// ApproxEqual reports whether all angles differ by at most eps radians.
func (e Euler) ApproxEqual(other Euler, eps float64) bool {
	return math.Abs(e.X-other.X) <= eps &&
		math.Abs(e.Y-other.Y) <= eps &&
		math.Abs(e.Z-other.Z) <= eps
}
