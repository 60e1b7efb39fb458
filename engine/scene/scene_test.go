package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/cubechain/engine/math"
	"github.com/spaghettifunk/cubechain/engine/renderer"
	"github.com/spaghettifunk/cubechain/engine/renderer/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testView       = math.NewMat4LookAtLH(math.NewVec3(0, 0, -100), math.NewVec3Zero(), math.NewVec3Up())
	testProjection = math.NewMat4PerspectiveLH(math.DegToRad(45), 1280.0/720.0, 0.1, 1000)
)

func headlessAllocator(t *testing.T) (BindingAllocator, *headless.Backend) {
	t.Helper()
	backend := headless.New(headless.Options{})
	require.NoError(t, backend.Initialize("scene-test", 1280, 720))
	return func() (*renderer.ConstantBufferBinding, error) {
		return renderer.NewConstantBufferBinding(backend, renderer.SlotTransform, renderer.MatrixPayloadSize)
	}, backend
}

func TestChainWorldMatrices(t *testing.T) {
	s, err := NewChain(DefaultChainConfig(), nil)
	require.NoError(t, err)
	require.Equal(t, 50, s.Len())

	s.Root().Transform.Position = math.NewVec3(3, -2, 0)
	s.Update(testView, testProjection)

	assert.Equal(t, s.Node(0).Transform.Local(), s.Node(0).World(), "root has no parent term")
	for i := 1; i < s.Len(); i++ {
		n := s.Node(i)
		assert.Equal(t, i-1, n.Parent())
		want := n.Transform.Local().Mul(s.Node(i - 1).World())
		assert.Equal(t, want, n.World(), "node %d", i)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	alloc, _ := headlessAllocator(t)
	s, err := NewChain(DefaultChainConfig(), alloc)
	require.NoError(t, err)
	defer s.Destroy()

	s.Update(testView, testProjection)
	worlds := make([]math.Mat4, s.Len())
	wvps := make([]math.Mat4, s.Len())
	for i := range worlds {
		worlds[i] = s.Node(i).World()
		wvps[i] = s.Node(i).Binding().Matrix()
	}

	s.Update(testView, testProjection)
	for i := range worlds {
		assert.Equal(t, worlds[i], s.Node(i).World())
		assert.Equal(t, wvps[i], s.Node(i).Binding().Matrix())
	}
}

func TestUpdateWritesWorldViewProjection(t *testing.T) {
	alloc, _ := headlessAllocator(t)
	s, err := NewChain(ChainConfig{Count: 3, ChildScale: 0.5, ChildPosition: math.NewVec3(1, 0, 0)}, alloc)
	require.NoError(t, err)
	defer s.Destroy()

	s.Update(testView, testProjection)
	for i := 0; i < s.Len(); i++ {
		want := s.Node(i).World().Mul(testView).Mul(testProjection)
		assert.True(t, want.Compare(s.Node(i).Binding().Matrix(), 1e-4), "node %d", i)
	}
	assert.Len(t, s.Bindings(), 3)
}

func TestChildSeesParentOfSameFrame(t *testing.T) {
	s, err := NewChain(ChainConfig{Count: 2, ChildScale: 1}, nil)
	require.NoError(t, err)

	s.Update(testView, testProjection)
	s.Root().Transform.Translate(math.NewVec3(0, 1, 0))
	s.Update(testView, testProjection)

	assert.Equal(t, math.NewVec3(0, 1, 0), s.Node(1).World().Translation())
}

func TestDefaultChainConverges(t *testing.T) {
	s, err := NewChain(DefaultChainConfig(), nil)
	require.NoError(t, err)
	s.Update(testView, testProjection)

	// the Z rotation leaves the -Z offset alone, so node i sits at
	// -8 * (1 + 0.9 + ... + 0.9^(i-1)), bounded by -8 / (1 - 0.9) = -80
	prev := float32(0)
	for i := 1; i < s.Len(); i++ {
		p := s.Node(i).World().Translation()
		want := -80 * (1 - math32.Pow(0.9, float32(i)))
		assert.InDelta(t, want, p.Z, 1e-3, "node %d", i)
		assert.InDelta(t, 0, p.X, 1e-4)
		assert.InDelta(t, 0, p.Y, 1e-4)
		assert.Less(t, p.Z, prev, "each child is further back")
		assert.Greater(t, p.Z, float32(-80))
		prev = p.Z

		// uniform scale decays by 0.9 per level
		row := s.Node(i).World().Data
		scale := math.NewVec3(row[0], row[1], row[2]).Length()
		assert.InDelta(t, math32.Pow(0.9, float32(i)), scale, 1e-4)
	}

	// the last cube fits in the first one's 10x10x10 box scaled by 0.9^49
	last := s.Node(49).World()
	corner := math.NewVec3(5, 5, 5).Transform(last)
	assert.Less(t, corner.Sub(last.Translation()).Length(), 5*math32.Sqrt(3)*math32.Pow(0.9, 49)+1e-3)
}

func TestSceneCapacityAndParents(t *testing.T) {
	s := New(2, nil)
	_, err := s.AddNode(math.NewTransform(), 0)
	assert.ErrorIs(t, err, ErrInvalidParent, "the first node cannot have a parent")

	i, err := s.AddNode(math.NewTransform(), NoParent)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.False(t, s.Node(0).HasParent())

	_, err = s.AddNode(math.NewTransform(), 5)
	assert.ErrorIs(t, err, ErrInvalidParent)

	i, err = s.AddNode(math.NewTransform(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = s.AddNode(math.NewTransform(), 1)
	assert.ErrorIs(t, err, ErrSceneFull)
	assert.NotEqual(t, s.Node(0).ID, s.Node(1).ID)
}

func TestSceneDestroyReleasesBuffers(t *testing.T) {
	alloc, backend := headlessAllocator(t)
	s, err := NewChain(DefaultChainConfig(), alloc)
	require.NoError(t, err)
	assert.Equal(t, 50, backend.LiveResources())

	s.Destroy()
	assert.Equal(t, 0, backend.LiveResources())
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Root())
}
