package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapper/internal/zapconfig"
)

type fakeLiveStatus struct {
	running map[string]bool
}

func (f fakeLiveStatus) IsRunning(svc zapconfig.Service) bool {
	return f.running[svc.Name]
}

func testContext() zapconfig.Context {
	return zapconfig.Context{
		Services: []zapconfig.Service{
			{Name: "db", Kind: zapconfig.KindContainer, HealthCheck: zapconfig.HealthCheck{Seconds: 5}},
			{Name: "api", Kind: zapconfig.KindNative, DependsOn: []string{"db"}, HealthCheck: zapconfig.HealthCheck{Seconds: 5}},
			{Name: "web", Kind: zapconfig.KindNative, DependsOn: []string{"api"}, HealthCheck: zapconfig.HealthCheck{Seconds: 5}},
		},
	}
}

func TestPlan_StartAllNotRunningProducesDependencyOrderedWaves(t *testing.T) {
	plan, err := Plan(testContext(), Request{Op: OpStart}, fakeLiveStatus{running: map[string]bool{}})
	require.NoError(t, err)
	require.Len(t, plan.Waves, 3)
	assert.Equal(t, "db", plan.Waves[0].Actions[0].Name)
	assert.Equal(t, "api", plan.Waves[1].Actions[0].Name)
	assert.Equal(t, "web", plan.Waves[2].Actions[0].Name)
}

func TestPlan_StartSkipsAlreadyRunningServices(t *testing.T) {
	plan, err := Plan(testContext(), Request{Op: OpStart}, fakeLiveStatus{running: map[string]bool{"db": true, "api": true, "web": true}})
	require.NoError(t, err)
	assert.Empty(t, plan.Waves)
}

func TestPlan_StartForceIncludesRunningServices(t *testing.T) {
	plan, err := Plan(testContext(), Request{Op: OpStart, ForceStart: true}, fakeLiveStatus{running: map[string]bool{"db": true, "api": true, "web": true}})
	require.NoError(t, err)
	require.Len(t, plan.Waves, 3)
}

func TestPlan_StartWithExplicitTargetsIgnoresProfileFilter(t *testing.T) {
	ctx := testContext()
	ctx.Services[2].Profiles = []string{"extra"} // web only in "extra" profile

	plan, err := Plan(ctx, Request{Op: OpStart, Targets: []string{"web"}, ActiveProfile: "default"}, fakeLiveStatus{running: map[string]bool{}})
	require.NoError(t, err)
	require.Len(t, plan.Waves, 1)
	assert.Equal(t, "web", plan.Waves[0].Actions[0].Name)
}

func TestPlan_StartWithActiveProfileStopsOutOfProfileRunningServices(t *testing.T) {
	ctx := testContext()
	ctx.Services[2].Profiles = []string{"extra"} // web only in "extra" profile

	plan, err := Plan(ctx, Request{Op: OpStart, ActiveProfile: "default"}, fakeLiveStatus{running: map[string]bool{"web": true}})
	require.NoError(t, err)
	require.NotEmpty(t, plan.Waves)
	firstWave := plan.Waves[0]
	require.Len(t, firstWave.Actions, 1)
	assert.Equal(t, "web", firstWave.Actions[0].Name)
	assert.Equal(t, ActionStop, firstWave.Actions[0].Type)
}

func TestPlan_StartWithActiveProfileStopsDependentOutOfProfileServicesInOrder(t *testing.T) {
	ctx := zapconfig.Context{
		Services: []zapconfig.Service{
			{Name: "cache", Kind: zapconfig.KindContainer, Profiles: []string{"prod"}},
			{Name: "worker", Kind: zapconfig.KindNative, DependsOn: []string{"cache"}, Profiles: []string{"prod"}},
		},
	}

	plan, err := Plan(ctx, Request{Op: OpStart, ActiveProfile: "dev"}, fakeLiveStatus{running: map[string]bool{"cache": true, "worker": true}})
	require.NoError(t, err)
	require.Len(t, plan.Waves, 2)

	firstWave := plan.Waves[0]
	require.Len(t, firstWave.Actions, 1)
	assert.Equal(t, "worker", firstWave.Actions[0].Name)
	assert.Equal(t, ActionStop, firstWave.Actions[0].Type)

	secondWave := plan.Waves[1]
	require.Len(t, secondWave.Actions, 1)
	assert.Equal(t, "cache", secondWave.Actions[0].Name)
	assert.Equal(t, ActionStop, secondWave.Actions[0].Type)
}

func TestPlan_StopOnlyStopsRunningServicesInReverseOrder(t *testing.T) {
	plan, err := Plan(testContext(), Request{Op: OpStop}, fakeLiveStatus{running: map[string]bool{"db": true, "api": true, "web": true}})
	require.NoError(t, err)
	require.Len(t, plan.Waves, 3)
	assert.Equal(t, "web", plan.Waves[0].Actions[0].Name)
	assert.Equal(t, "api", plan.Waves[1].Actions[0].Name)
	assert.Equal(t, "db", plan.Waves[2].Actions[0].Name)
}

func TestPlan_StopWithNothingRunningYieldsEmptyPlan(t *testing.T) {
	plan, err := Plan(testContext(), Request{Op: OpStop}, fakeLiveStatus{running: map[string]bool{}})
	require.NoError(t, err)
	assert.Empty(t, plan.Waves)
}

func TestPlan_RestartConcatenatesStopThenStartWaves(t *testing.T) {
	plan, err := Plan(testContext(), Request{Op: OpRestart, Targets: []string{"api"}}, fakeLiveStatus{running: map[string]bool{"api": true}})
	require.NoError(t, err)
	require.Len(t, plan.Waves, 2)
	assert.Equal(t, ActionStop, plan.Waves[0].Actions[0].Type)
	assert.Equal(t, ActionStart, plan.Waves[1].Actions[0].Type)
}
