package math

import (
	"math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add: got %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("Sub: got %v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale: got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot: got %v", got)
	}
	if got := (Vec3{3, 4, 0}).Length(); got != 5 {
		t.Errorf("Length: got %v", got)
	}
}

func TestRadiansDegrees(t *testing.T) {
	if got := Radians(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("Radians(180) = %v", got)
	}
	if got := Degrees(math.Pi / 2); math.Abs(got-90) > 1e-12 {
		t.Errorf("Degrees(pi/2) = %v", got)
	}
}

func TestUniform(t *testing.T) {
	if Uniform(1) != Vec3One() {
		t.Error("Uniform(1) should equal Vec3One")
	}
}
