package math

// Transform is the scale/rotation/translation triple of an object. Rotation
// holds one Euler angle per axis, in radians.
type Transform struct {
	Scale    Vec3
	Rotation Vec3
	Position Vec3
}

// NewTransform returns a unit-scale, unrotated transform at the origin.
func NewTransform() Transform {
	return Transform{Scale: NewVec3One()}
}

// Translate moves the transform by delta.
func (t *Transform) Translate(delta Vec3) {
	t.Position = t.Position.Add(delta)
}

// Local composes Scale * RotZ * RotX * RotY * Translate. The rotation order
// is fixed.
func (t Transform) Local() Mat4 {
	m := NewMat4Scale(t.Scale)
	m = m.Mul(NewMat4EulerZ(t.Rotation.Z))
	m = m.Mul(NewMat4EulerX(t.Rotation.X))
	m = m.Mul(NewMat4EulerY(t.Rotation.Y))
	return m.Mul(NewMat4Translation(t.Position))
}
