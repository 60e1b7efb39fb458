package testbed

import (
	"testing"

	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func held(keys ...core.KeyCode) core.InputState {
	var s core.InputState
	for _, k := range keys {
		s.Current.Keys[k] = true
		s.Previous.Keys[k] = true
	}
	return s
}

func TestRootDelta(t *testing.T) {
	tests := []struct {
		name string
		keys []core.KeyCode
		want math.Vec3
	}{
		{"idle", nil, math.NewVec3(0, 0, 0)},
		{"up", []core.KeyCode{core.KEY_UP}, math.NewVec3(0, 1, 0)},
		{"down", []core.KeyCode{core.KEY_DOWN}, math.NewVec3(0, -1, 0)},
		{"up wins over down", []core.KeyCode{core.KEY_DOWN, core.KEY_UP}, math.NewVec3(0, 1, 0)},
		{"left", []core.KeyCode{core.KEY_LEFT}, math.NewVec3(-1, 0, 0)},
		{"right wins over left", []core.KeyCode{core.KEY_LEFT, core.KEY_RIGHT}, math.NewVec3(1, 0, 0)},
		{"diagonal", []core.KeyCode{core.KEY_UP, core.KEY_LEFT}, math.NewVec3(-1, 1, 0)},
		{"orbit keys ignored", []core.KeyCode{core.KEY_A, core.KEY_D}, math.NewVec3(0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RootDelta(held(tt.keys...), 1))
		})
	}
}

func TestHoldingUpMovesRootOneStepPerFrame(t *testing.T) {
	s, err := scene.NewChain(scene.DefaultChainConfig(), nil)
	require.NoError(t, err)

	g := NewCubeChain(nil)
	require.NoError(t, g.Initialize(s))

	const frames = 7
	for i := 0; i < frames; i++ {
		require.NoError(t, g.Update(s, held(core.KEY_UP), 1.0/60))
	}
	assert.InDelta(t, float32(frames), s.Root().Transform.Position.Y, 1e-5)
	assert.Zero(t, s.Root().Transform.Position.X)
	// only the root moves
	assert.Equal(t, math.NewVec3(0, 0, -8), s.Node(1).Transform.Position)

	state := g.State.(*gameState)
	assert.Equal(t, uint64(frames), state.Frame)
}

func TestUpdateRejectsEmptyScene(t *testing.T) {
	g := NewCubeChain(nil)
	s := scene.New(4, nil)
	assert.ErrorIs(t, g.Update(s, core.InputState{}, 0), scene.ErrEmptyScene)
	assert.ErrorIs(t, g.Initialize(s), scene.ErrEmptyScene)
}
