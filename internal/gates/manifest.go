package gates

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type packageManifest struct {
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func hasTSConfig(projectPath string) bool {
	_, err := os.Stat(filepath.Join(projectPath, "tsconfig.json"))
	return err == nil
}

func readPackageManifest(projectPath string) (*packageManifest, bool) {
	data, err := os.ReadFile(filepath.Join(projectPath, "package.json"))
	if err != nil {
		return nil, false
	}
	var m packageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return &m, true
}

// testRunner picks vitest over jest over a generic "test" script, the
// first one the manifest's dependencies or scripts mention.
func testRunner(m *packageManifest) string {
	if m == nil {
		return ""
	}
	if dependsOn(m, "vitest") {
		return "vitest"
	}
	if dependsOn(m, "jest") {
		return "jest"
	}
	if _, ok := m.Scripts["test"]; ok {
		return "generic"
	}
	return ""
}

func dependsOn(m *packageManifest, name string) bool {
	if _, ok := m.Dependencies[name]; ok {
		return true
	}
	if _, ok := m.DevDependencies[name]; ok {
		return true
	}
	if script, ok := m.Scripts["test"]; ok && containsWord(script, name) {
		return true
	}
	return false
}

func containsWord(haystack, word string) bool {
	for i := 0; i+len(word) <= len(haystack); i++ {
		if haystack[i:i+len(word)] == word {
			return true
		}
	}
	return false
}
