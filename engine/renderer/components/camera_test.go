package components

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/stretchr/testify/assert"
)

func newTestCamera() *Camera {
	return NewCamera(math.NewVec3(0, 0, -100), math.NewVec3Zero(), math.NewVec3Up(), 100, 10)
}

func held(keys ...core.KeyCode) core.InputState {
	s := core.InputState{}
	for _, k := range keys {
		s.Current.Keys[k] = true
	}
	return s
}

func TestCameraOrbitRight(t *testing.T) {
	c := newTestCamera()
	step := math.DegToRad(10)

	for k := 1; k <= 7; k++ {
		assert.True(t, c.HandleInput(held(core.KEY_D)))
		angle := float32(k) * step
		assert.InDelta(t, angle, c.OrbitAngle, 1e-5)
		assert.InDelta(t, -100*math32.Sin(angle), c.Eye.X, 1e-3)
		assert.InDelta(t, 0, c.Eye.Y, 1e-6)
		assert.InDelta(t, -100*math32.Cos(angle), c.Eye.Z, 1e-3)
	}
	// the eye stays on the orbit
	assert.InDelta(t, 100, c.Eye.Length(), 1e-3)
}

func TestCameraRightWinsOverLeft(t *testing.T) {
	c := newTestCamera()
	c.HandleInput(held(core.KEY_D, core.KEY_A))
	assert.InDelta(t, math.DegToRad(10), c.OrbitAngle, 1e-6)

	c.HandleInput(held(core.KEY_A))
	c.HandleInput(held(core.KEY_A))
	assert.InDelta(t, -math.DegToRad(10), c.OrbitAngle, 1e-6)
}

func TestCameraVerticalSharesAngle(t *testing.T) {
	c := newTestCamera()
	c.HandleInput(held(core.KEY_D))
	c.HandleInput(held(core.KEY_W))

	angle := math.DegToRad(20)
	assert.InDelta(t, angle, c.OrbitAngle, 1e-6)
	// X was left behind by the horizontal step, Y and Z follow the shared angle
	assert.InDelta(t, -100*math32.Sin(math.DegToRad(10)), c.Eye.X, 1e-3)
	assert.InDelta(t, -100*math32.Sin(angle), c.Eye.Y, 1e-3)
	assert.InDelta(t, -100*math32.Cos(angle), c.Eye.Z, 1e-3)

	// W wins over S
	c.HandleInput(held(core.KEY_W, core.KEY_S))
	assert.InDelta(t, math.DegToRad(30), c.OrbitAngle, 1e-6)
}

func TestCameraViewIsLazy(t *testing.T) {
	c := newTestCamera()
	v0 := c.GetView()
	assert.Equal(t, 1, c.rebuilds)

	// no orbit keys: nothing changes and nothing is rebuilt
	assert.False(t, c.HandleInput(held(core.KEY_UP)))
	assert.Equal(t, v0, c.GetView())
	assert.Equal(t, 1, c.rebuilds)

	c.HandleInput(held(core.KEY_A))
	v1 := c.GetView()
	assert.NotEqual(t, v0, v1)
	assert.Equal(t, 2, c.rebuilds)
	c.GetView()
	assert.Equal(t, 2, c.rebuilds)

	// the target is always straight ahead
	assert.True(t, c.Target.Transform(v1).Compare(math.NewVec3(0, 0, 100), 1e-3))
}
