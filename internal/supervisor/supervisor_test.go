package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockExecCommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestSupervisorHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

func TestSupervisorHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 || args[0] != "pm2" {
		os.Exit(1)
	}
	sub := args[1:]

	switch sub[0] {
	case "jlist":
		fmt.Println(`[{"name":"zap.demo.api","pid":777,"pm2_env":{"status":"online","pm_cwd":"/proj","restart_time":0,"pm_uptime":0},"monit":{"memory":10485760,"cpu":1.5}}]`)
		os.Exit(0)
	case "start", "stop", "delete", "restart":
		os.Exit(0)
	case "kill":
		os.Exit(0)
	case "logs":
		fmt.Println("zap.demo.api | hello")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stderr, "unhandled pm2 subcommand: %v\n", sub)
	os.Exit(1)
}

func withMockedExec(t *testing.T) {
	t.Helper()
	old := execCommandContext
	execCommandContext = mockExecCommandContext
	t.Cleanup(func() { execCommandContext = old })
}

func TestList_ParsesJlistOutput(t *testing.T) {
	withMockedExec(t)
	p := New()

	procs, err := p.List(context.Background())
	require.NoError(t, err)
	require.Len(t, procs, 1)
	assert.Equal(t, "zap.demo.api", procs[0].Name)
	assert.Equal(t, StatusOnline, procs[0].Status)
	assert.Equal(t, 777, procs[0].Pid)
}

func TestStart_FallsBackToProjectRootWhenCwdMissing(t *testing.T) {
	withMockedExec(t)
	p := New()
	root := t.TempDir()

	err := p.Start(context.Background(), StartSpec{
		Project:    "demo",
		Service:    "api",
		WireName:   "zap.demo.api",
		ScriptPath: "/tmp/script.sh",
		Cwd:        "/does/not/exist",
		LogPath:    "/tmp/zap.demo.api.log",
	}, root)
	require.NoError(t, err)
}

func TestStop_Succeeds(t *testing.T) {
	withMockedExec(t)
	p := New()
	require.NoError(t, p.Stop(context.Background(), "zap.demo.api", 0))
}

func TestIsStaleStateError(t *testing.T) {
	assert.True(t, isStaleStateError("Error: state is corrupted"))
	assert.True(t, isStaleStateError("daemon is not running"))
	assert.False(t, isStaleStateError("some unrelated error"))
}
