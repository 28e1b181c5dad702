package history

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

var libraryExtensions = []string{".so", ".pyd", ".dylib", ".dll"}

// CollectArtifacts lists the shared libraries directly inside dir whose name
// starts with the module name. Python extension suffixes such as
// ".cpython-311-x86_64-linux-gnu.so" are matched by prefix.
func CollectArtifacts(dir, module string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No outputs yet
		}

		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var artifacts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if isArtifactFor(name, module) {
			artifacts = append(artifacts, name)
		}
	}

	sort.Strings(artifacts)
	return artifacts, nil
}

func isArtifactFor(filename, module string) bool {
	lower := strings.ToLower(filename)

	for _, prefix := range []string{module, "lib" + module} {
		if !strings.HasPrefix(filename, prefix) {
			continue
		}

		rest := filename[len(prefix):]
		if rest == "" || rest[0] != '.' {
			continue
		}

		for _, ext := range libraryExtensions {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
	}

	return false
}
