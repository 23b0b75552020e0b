package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteWrapperScript generates the shell wrapper pm2 execs for one
// (project, service) start, deleting any prior wrapper scripts for the
// same pair first. It returns the new script's absolute path.
func WriteWrapperScript(projectRoot, project, service, sourcePath, cmd string) (string, error) {
	dir := filepath.Join(projectRoot, ".zap")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	if err := removeStaleWrapperScripts(dir, project, service); err != nil {
		return "", err
	}

	scriptPath := filepath.Join(dir, fmt.Sprintf("%s.%s.%d.sh", project, service, time.Now().UnixNano()))

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "export PATH=%q\n", os.Getenv("PATH"))
	b.WriteString(`exec 2> >(while IFS= read -r line; do printf '\033[31m%s\033[0m\n' "$line"; done)` + "\n")
	if sourcePath != "" {
		fmt.Fprintf(&b, "[ -n %q ] && . %q\n", sourcePath, sourcePath)
	}
	b.WriteString(cmd + "\n")

	if err := os.WriteFile(scriptPath, []byte(b.String()), 0o755); err != nil {
		return "", err
	}
	return scriptPath, nil
}

func removeStaleWrapperScripts(dir, project, service string) error {
	prefix := fmt.Sprintf("%s.%s.", project, service)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".sh") {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
	return nil
}
