package loader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gometacall/gometacall/internal/loader"
	"github.com/gometacall/gometacall/internal/loaders/mockloader"
)

func TestLoadFromMemoryAndLookup(t *testing.T) {
	m := loader.NewManager()
	m.RegisterFactory("mock", mockloader.New)

	h, err := m.LoadFromMemory("mock", "arith", "mul(left, right) = left * right")
	require.NoError(t, err)
	require.NotNil(t, h)

	raw, ok := m.Lookup("mul")
	require.True(t, ok)
	require.NotNil(t, raw)
}

func TestIsInitializedTracksLazyConstruction(t *testing.T) {
	m := loader.NewManager()
	m.RegisterFactory("mock", mockloader.New)

	require.False(t, m.IsInitialized("mock"))
	_, err := m.LoadFromMemory("mock", "x", "id(n) = n")
	require.NoError(t, err)
	require.True(t, m.IsInitialized("mock"))
}

func TestLoadFromUnregisteredTagFails(t *testing.T) {
	m := loader.NewManager()
	_, err := m.LoadFromMemory("nope", "x", "id(n) = n")
	require.Error(t, err)
}

func TestHandleClearRemovesFromHostLookup(t *testing.T) {
	m := loader.NewManager()
	m.RegisterFactory("mock", mockloader.New)

	h, err := m.LoadFromMemory("mock", "arith", "double(n) = n * 2")
	require.NoError(t, err)

	_, ok := m.Lookup("double")
	require.True(t, ok)

	require.NoError(t, h.Clear())
	_, ok = m.Lookup("double")
	require.False(t, ok, "a cleared handle's functions must no longer resolve")

	require.NoError(t, h.Clear(), "Clear must be idempotent")
}

func TestHandleLookupByIdentity(t *testing.T) {
	m := loader.NewManager()
	m.RegisterFactory("mock", mockloader.New)

	_, err := m.LoadFromMemory("mock", "arith", "add(a, b) = a + b")
	require.NoError(t, err)

	h, ok := m.Handle("mock", "arith")
	require.True(t, ok)
	require.Equal(t, "arith", h.Identity)
}

func TestDestroyIsIdempotent(t *testing.T) {
	m := loader.NewManager()
	m.RegisterFactory("mock", mockloader.New)
	m.RegisterFactory("mock2", mockloader.New)

	_, err := m.LoadFromMemory("mock", "a", "id(n) = n")
	require.NoError(t, err)
	_, err = m.LoadFromMemory("mock2", "b", "id(n) = n")
	require.NoError(t, err)

	require.NotPanics(t, func() {
		m.Destroy()
		m.Destroy()
	})
}

func TestInspectReportsLoadedIdentities(t *testing.T) {
	m := loader.NewManager()
	m.RegisterFactory("mock", mockloader.New)

	_, err := m.LoadFromMemory("mock", "script-a", "id(n) = n")
	require.NoError(t, err)

	infos := m.Inspect()
	require.Len(t, infos, 1)
	require.Equal(t, "mock", infos[0].Tag)
	require.Contains(t, infos[0].Handles, "script-a")
}
