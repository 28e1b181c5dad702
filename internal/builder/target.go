package builder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// BuildTarget identifies one native extension to produce
type BuildTarget struct {
	// Name is the dotted module name of the single library the CMake project produces.
	Name string

	// SourceDir is the root of the CMake project.
	SourceDir string

	// BuildTemp is the scratch directory cmake runs in.
	BuildTemp string

	// OutputDir is where the packaging step expects the compiled library.
	OutputDir string
}

// NewTarget lays out a target the way setuptools does: the library for
// "pkg.sub.mod" lands in <buildLib>/pkg/sub, and each extension gets its own
// temp directory so their CMake caches never collide.
func NewTarget(name, sourceDir, buildLib, buildTemp string) BuildTarget {
	parts := strings.Split(name, ".")
	outDir := filepath.Join(append([]string{buildLib}, parts[:len(parts)-1]...)...)

	return BuildTarget{
		Name:      name,
		SourceDir: sourceDir,
		BuildTemp: filepath.Join(buildTemp, name),
		OutputDir: outDir,
	}
}

// resolve returns a copy of t with every directory made absolute.
func (t BuildTarget) resolve() (BuildTarget, error) {
	if t.Name == "" {
		return t, &ConfigError{Field: "name", Err: fmt.Errorf("extension name is empty")}
	}

	fields := []struct {
		name string
		path *string
	}{
		{"source_dir", &t.SourceDir},
		{"build_temp", &t.BuildTemp},
		{"output_dir", &t.OutputDir},
	}

	for _, f := range fields {
		if *f.path == "" {
			return t, &ConfigError{Field: f.name, Err: fmt.Errorf("path is empty")}
		}

		abs, err := filepath.Abs(*f.path)
		if err != nil {
			return t, &ConfigError{Field: f.name, Err: err}
		}

		*f.path = abs
	}

	return t, nil
}
