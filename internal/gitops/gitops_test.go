package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapper/internal/zapconfig"
)

func TestRewriteURL_SSHRewritesHTTPSGitHubURL(t *testing.T) {
	p := New(zapconfig.GitMethodSSH)
	assert.Equal(t, "git@github.com:acme/widgets.git", p.RewriteURL("https://github.com/acme/widgets"))
	assert.Equal(t, "git@github.com:acme/widgets.git", p.RewriteURL("https://github.com/acme/widgets.git"))
}

func TestRewriteURL_HTTPAndCLILeaveURLUnchanged(t *testing.T) {
	assert.Equal(t, "https://github.com/acme/widgets", New(zapconfig.GitMethodHTTP).RewriteURL("https://github.com/acme/widgets"))
	assert.Equal(t, "https://github.com/acme/widgets", New(zapconfig.GitMethodCLI).RewriteURL("https://github.com/acme/widgets"))
}

func TestRewriteURL_AlreadySSHIsIdempotent(t *testing.T) {
	p := New(zapconfig.GitMethodSSH)
	assert.Equal(t, "git@github.com:acme/widgets.git", p.RewriteURL("git@github.com:acme/widgets.git"))
}

func mockExecCommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestGitopsHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

func TestGitopsHelperProcess(t *testing.T) {
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
	if len(args) == 0 || args[0] != "git" {
		os.Exit(1)
	}
	sub := args[1:]
	for _, a := range sub {
		if a == "status" {
			fmt.Println("# branch.head main")
			fmt.Println("# branch.ab +1 -2")
			fmt.Println(" M file.go")
			os.Exit(0)
		}
		if a == "clone" || a == "pull" || a == "checkout" {
			os.Exit(0)
		}
	}
	os.Exit(1)
}

func TestClone_SkipsWhenAlreadyCheckedOut(t *testing.T) {
	old := execCommandContext
	execCommandContext = mockExecCommandContext
	t.Cleanup(func() { execCommandContext = old })

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))

	p := New(zapconfig.GitMethodHTTP)
	require.NoError(t, p.Clone(context.Background(), "https://github.com/acme/widgets", dir))
}

func TestStatus_ParsesPorcelainV2(t *testing.T) {
	old := execCommandContext
	execCommandContext = mockExecCommandContext
	t.Cleanup(func() { execCommandContext = old })

	p := New(zapconfig.GitMethodHTTP)
	status, err := p.Status(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "main", status.Branch)
	assert.Equal(t, 1, status.Ahead)
	assert.Equal(t, 2, status.Behind)
	assert.True(t, status.Dirty)
}
