package plugin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gometacall/gometacall/internal/apperr"
)

func TestLoadDescriptorsResolvesDependenciesFirst(t *testing.T) {
	var order []string

	descs := []Descriptor{
		{
			Name: "codec",
			Kind: SerialDescriptor,
			Singleton: func() (interface{}, error) {
				order = append(order, "codec")
				return "codec-instance", nil
			},
		},
		{
			Name:         "loader",
			Kind:         LoaderDescriptor,
			Dependencies: []string{"codec"},
			Singleton: func() (interface{}, error) {
				order = append(order, "loader")
				return "loader-instance", nil
			},
		},
	}

	m := NewManager()
	require.NoError(t, m.LoadDescriptors(descs))
	require.Equal(t, []string{"codec", "loader"}, order)

	inst, ok := m.Get("loader")
	require.True(t, ok)
	require.Equal(t, "loader-instance", inst)
}

func TestLoadDescriptorsDetectsCycle(t *testing.T) {
	descs := []Descriptor{
		{Name: "a", Dependencies: []string{"b"}, Singleton: func() (interface{}, error) { return nil, nil }},
		{Name: "b", Dependencies: []string{"a"}, Singleton: func() (interface{}, error) { return nil, nil }},
	}

	m := NewManager()
	err := m.LoadDescriptors(descs)
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.CyclicConfiguration))
}

func TestLoadDescriptorsMissingDependency(t *testing.T) {
	descs := []Descriptor{
		{Name: "a", Dependencies: []string{"ghost"}, Singleton: func() (interface{}, error) { return nil, nil }},
	}

	m := NewManager()
	err := m.LoadDescriptors(descs)
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.NotFoundKind))
}

type destroyableStub struct {
	destroyed *bool
	name      string
	order     *[]string
}

func (d destroyableStub) Destroy() error {
	*d.destroyed = true
	*d.order = append(*d.order, d.name)
	return nil
}

func TestDestroyTearsDownInReverseOrder(t *testing.T) {
	var destroyedA, destroyedB bool
	var destroyOrder []string

	descs := []Descriptor{
		{Name: "a", Singleton: func() (interface{}, error) {
			return destroyableStub{destroyed: &destroyedA, name: "a", order: &destroyOrder}, nil
		}},
		{Name: "b", Dependencies: []string{"a"}, Singleton: func() (interface{}, error) {
			return destroyableStub{destroyed: &destroyedB, name: "b", order: &destroyOrder}, nil
		}},
	}

	m := NewManager()
	require.NoError(t, m.LoadDescriptors(descs))

	m.Destroy()
	require.True(t, destroyedA)
	require.True(t, destroyedB)
	require.Equal(t, []string{"b", "a"}, destroyOrder)
	require.Empty(t, m.Names())
}

func TestGetUnknownDescriptor(t *testing.T) {
	m := NewManager()
	_, ok := m.Get("nope")
	require.False(t, ok)
}
