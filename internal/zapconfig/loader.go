package zapconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"zapper/pkg/logging"

	"gopkg.in/yaml.v3"
)

const configLoaderSubsystem = "ConfigLoader"

// ConfigFileNames are tried, in order, when walking upward from a
// directory looking for a project's declarative configuration.
var ConfigFileNames = []string{"zapper.yaml", "zapper.yml"}

// Load reads and decodes a zapper.yaml document. The document is handed
// to Normalize as a bare map[string]interface{} rather than a
// schema-validated struct, so this function's only job is "read the
// bytes, decode the mapping".
func Load(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config at %s: %w", path, err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config at %s: %w", path, err)
	}

	logging.Info(configLoaderSubsystem, "loaded configuration from %s", path)
	return doc, nil
}

// FindConfigPath walks upward from startDir looking for one of
// ConfigFileNames, the way most project-local dev tools locate their
// config without requiring an explicit --config flag every invocation.
func FindConfigPath(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent directory", ConfigFileNames[0], startDir)
		}
		dir = parent
	}
}
