package components

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
)

/**
 * @brief The keys that drive the orbit. Right and Up win when both keys of a
 * pair are held.
 */
type OrbitBindings struct {
	RotateRight core.KeyCode
	RotateLeft  core.KeyCode
	RotateUp    core.KeyCode
	RotateDown  core.KeyCode
}

func DefaultOrbitBindings() OrbitBindings {
	return OrbitBindings{
		RotateRight: core.KEY_D,
		RotateLeft:  core.KEY_A,
		RotateUp:    core.KEY_W,
		RotateDown:  core.KEY_S,
	}
}

/**
 * @brief A camera orbiting Target on a fixed radius. Both orbit directions
 * share a single angle: horizontal input moves the eye in the XZ plane,
 * vertical input in the YZ plane.
 */
type Camera struct {
	Eye    math.Vec3
	Target math.Vec3
	Up     math.Vec3
	/** @brief The orbit angle in radians. */
	OrbitAngle float32
	Radius     float32
	/** @brief The angle added per frame while a key is held, in radians. */
	Step     float32
	Bindings OrbitBindings

	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty    bool
	ViewMatrix math.Mat4

	rebuilds int
}

func NewCamera(eye, target, up math.Vec3, radius, stepDegrees float32) *Camera {
	c := &Camera{
		Eye:      eye,
		Target:   target,
		Up:       up,
		Radius:   radius,
		Step:     math.DegToRad(stepDegrees),
		Bindings: DefaultOrbitBindings(),
		IsDirty:  true,
	}
	return c
}

/**
 * @brief Applies one frame of orbit input. Returns true if the eye moved.
 */
func (c *Camera) HandleInput(input core.InputState) bool {
	moved := false
	b := c.Bindings

	if input.IsHeld(b.RotateRight) || input.IsHeld(b.RotateLeft) {
		if input.IsHeld(b.RotateRight) {
			c.OrbitAngle += c.Step
		} else if input.IsHeld(b.RotateLeft) {
			c.OrbitAngle -= c.Step
		}
		c.Eye.X = -c.Radius * math32.Sin(c.OrbitAngle)
		c.Eye.Z = -c.Radius * math32.Cos(c.OrbitAngle)
		moved = true
	}

	if input.IsHeld(b.RotateUp) || input.IsHeld(b.RotateDown) {
		if input.IsHeld(b.RotateUp) {
			c.OrbitAngle += c.Step
		} else if input.IsHeld(b.RotateDown) {
			c.OrbitAngle -= c.Step
		}
		c.Eye.Y = -c.Radius * math32.Sin(c.OrbitAngle)
		c.Eye.Z = -c.Radius * math32.Cos(c.OrbitAngle)
		moved = true
	}

	if moved {
		c.IsDirty = true
	}
	return moved
}

/**
 * @brief Returns the view matrix, rebuilding it only if the eye changed
 * since the last call.
 */
func (c *Camera) GetView() math.Mat4 {
	if c.IsDirty {
		c.ViewMatrix = math.NewMat4LookAtLH(c.Eye, c.Target, c.Up)
		c.IsDirty = false
		c.rebuilds++
	}
	return c.ViewMatrix
}
