package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapper/internal/zerrors"
)

func buildGraph(edges map[NodeID][]NodeID) *Graph {
	g := New()
	for id, deps := range edges {
		g.AddNode(Node{ID: id, DependsOn: deps})
	}
	return g
}

func TestComputeStartWaves_LinearChain(t *testing.T) {
	g := buildGraph(map[NodeID][]NodeID{
		"db":  nil,
		"api": {"db"},
		"web": {"api"},
	})

	waves, err := g.ComputeStartWaves(map[NodeID]bool{"db": true, "api": true, "web": true})
	require.NoError(t, err)
	require.Len(t, waves, 3)
	assert.Equal(t, Wave{"db"}, waves[0])
	assert.Equal(t, Wave{"api"}, waves[1])
	assert.Equal(t, Wave{"web"}, waves[2])
}

func TestComputeStartWaves_IndependentNodesShareAWave(t *testing.T) {
	g := buildGraph(map[NodeID][]NodeID{
		"db":    nil,
		"cache": nil,
		"api":   {"db", "cache"},
	})

	waves, err := g.ComputeStartWaves(map[NodeID]bool{"db": true, "cache": true, "api": true})
	require.NoError(t, err)
	require.Len(t, waves, 2)
	assert.Equal(t, Wave{"cache", "db"}, waves[0])
	assert.Equal(t, Wave{"api"}, waves[1])
}

func TestComputeStartWaves_DependencyOutsideToStartIsTreatedAsSatisfied(t *testing.T) {
	g := buildGraph(map[NodeID][]NodeID{
		"db":  nil,
		"api": {"db"},
	})

	waves, err := g.ComputeStartWaves(map[NodeID]bool{"api": true})
	require.NoError(t, err)
	require.Len(t, waves, 1)
	assert.Equal(t, Wave{"api"}, waves[0])
}

func TestComputeStartWaves_CircularDependencyFails(t *testing.T) {
	g := buildGraph(map[NodeID][]NodeID{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	})

	_, err := g.ComputeStartWaves(map[NodeID]bool{"a": true, "b": true, "c": true})
	require.Error(t, err)
	var cycleErr *zerrors.CircularDependency
	require.ErrorAs(t, err, &cycleErr)
	assert.NotEmpty(t, cycleErr.Path)
	assert.Equal(t, cycleErr.Path[0], cycleErr.Path[len(cycleErr.Path)-1])
}

func TestComputeStartWaves_UnknownDependencyFails(t *testing.T) {
	g := buildGraph(map[NodeID][]NodeID{
		"api": {"missing"},
	})

	_, err := g.ComputeStartWaves(map[NodeID]bool{"api": true})
	require.Error(t, err)
	var unknown *zerrors.UnknownDependency
	assert.ErrorAs(t, err, &unknown)
}

func TestComputeStopWaves_ReverseOfStartOrder(t *testing.T) {
	g := buildGraph(map[NodeID][]NodeID{
		"db":  nil,
		"api": {"db"},
		"web": {"api"},
	})

	waves, err := g.ComputeStopWaves(map[NodeID]bool{"db": true, "api": true, "web": true})
	require.NoError(t, err)
	require.Len(t, waves, 3)
	assert.Equal(t, Wave{"web"}, waves[0])
	assert.Equal(t, Wave{"api"}, waves[1])
	assert.Equal(t, Wave{"db"}, waves[2])
}

func TestComputeStopWaves_DependentOutsideToStopIsTreatedAsSatisfied(t *testing.T) {
	g := buildGraph(map[NodeID][]NodeID{
		"db":  nil,
		"api": {"db"},
	})

	waves, err := g.ComputeStopWaves(map[NodeID]bool{"db": true})
	require.NoError(t, err)
	require.Len(t, waves, 1)
	assert.Equal(t, Wave{"db"}, waves[0])
}

func TestDependenciesAndDependents(t *testing.T) {
	g := buildGraph(map[NodeID][]NodeID{
		"db":  nil,
		"api": {"db"},
		"web": {"api"},
	})

	assert.Equal(t, []NodeID{"db"}, g.Dependencies("api"))
	assert.ElementsMatch(t, []NodeID{"api"}, g.Dependents("db"))
	assert.Nil(t, g.Dependencies("nonexistent"))
}

func TestComputeStartWaves_EmptySetYieldsNoWaves(t *testing.T) {
	g := buildGraph(map[NodeID][]NodeID{"db": nil})
	waves, err := g.ComputeStartWaves(map[NodeID]bool{})
	require.NoError(t, err)
	assert.Empty(t, waves)
}
