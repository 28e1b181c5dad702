// Package manifest reads extbuild.hcl, the static declaration of a Python
// package and the CMake extensions it ships.
//
//	package "gescpp" {
//	  version     = "0.0.1"
//	  description = "GES in cpp"
//	  zip_safe    = false
//	}
//
//	extension "gescpp" {
//	  source_dir = "."
//	}
//
// Expressions may refer to env.NAME for process environment variables and to
// platform, the host operating system as reported by runtime.GOOS.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"

	"github.com/Norgate-AV/extbuild/internal/builder"
)

// FileName is the manifest file looked up in a project directory
const FileName = "extbuild.hcl"

var moduleName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ErrNotFound is returned when no manifest exists in or above a directory
var ErrNotFound = errors.New("no " + FileName + " found")

type Manifest struct {
	Package    Package     `hcl:"package,block"`
	Extensions []Extension `hcl:"extension,block"`

	// Dir is the absolute directory the manifest was loaded from
	Dir string
}

type Package struct {
	Name        string `hcl:"name,label"`
	Version     string `hcl:"version"`
	Description string `hcl:"description,optional"`
	ZipSafe     bool   `hcl:"zip_safe,optional"`
}

// Extension declares one CMake project whose single output library is
// importable as Name.
type Extension struct {
	Name      string `hcl:"name,label"`
	SourceDir string `hcl:"source_dir,optional"`
}

// Load reads and validates the manifest at path
func Load(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	var m Manifest
	if err := hclsimple.DecodeFile(abs, evalContext(os.Environ()), &m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", abs, err)
	}

	if err := m.init(filepath.Dir(abs)); err != nil {
		return nil, err
	}

	return &m, nil
}

// Parse decodes manifest source. filename selects the syntax (.hcl or .json)
// and dir is the directory relative source_dir values resolve against.
func Parse(filename string, src []byte, dir string) (*Manifest, error) {
	var m Manifest
	if err := hclsimple.Decode(filename, src, evalContext(os.Environ()), &m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	if err := m.init(dir); err != nil {
		return nil, err
	}

	return &m, nil
}

// evalContext exposes the environment and host platform to manifest expressions
func evalContext(environ []string) *hcl.EvalContext {
	env := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}

		env[key] = cty.StringVal(value)
	}

	envVal := cty.MapValEmpty(cty.String)
	if len(env) > 0 {
		envVal = cty.MapVal(env)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":      envVal,
			"platform": cty.StringVal(runtime.GOOS),
		},
	}
}

func (m *Manifest) init(dir string) error {
	m.Dir = dir

	if err := m.Validate(); err != nil {
		return err
	}

	for i := range m.Extensions {
		ext := &m.Extensions[i]
		if ext.SourceDir == "" {
			ext.SourceDir = "."
		}

		src := filepath.FromSlash(ext.SourceDir)
		if !filepath.IsAbs(src) {
			src = filepath.Join(dir, src)
		}

		ext.SourceDir = filepath.Clean(src)
	}

	return nil
}

func (m *Manifest) Validate() error {
	if m.Package.Name == "" {
		return fmt.Errorf("package name is empty")
	}

	if m.Package.Version == "" {
		return fmt.Errorf("package %q has no version", m.Package.Name)
	}

	if len(m.Extensions) == 0 {
		return fmt.Errorf("package %q declares no extensions", m.Package.Name)
	}

	seen := make(map[string]bool, len(m.Extensions))
	for _, ext := range m.Extensions {
		if !moduleName.MatchString(ext.Name) {
			return fmt.Errorf("invalid extension name %q: must be a dotted Python module path", ext.Name)
		}

		if seen[ext.Name] {
			return fmt.Errorf("extension %q declared more than once", ext.Name)
		}

		seen[ext.Name] = true
	}

	return nil
}

// Select returns the named extension, or every extension when name is empty
func (m *Manifest) Select(name string) ([]Extension, error) {
	if name == "" {
		return m.Extensions, nil
	}

	for _, ext := range m.Extensions {
		if ext.Name == name {
			return []Extension{ext}, nil
		}
	}

	return nil, fmt.Errorf("extension %q is not declared in package %q", name, m.Package.Name)
}

// Target lays out the build target for ext under the given output roots
func (ext Extension) Target(buildLib, buildTemp string) builder.BuildTarget {
	return builder.NewTarget(ext.Name, ext.SourceDir, buildLib, buildTemp)
}

// Find walks up from dir looking for FileName
func Find(dir string) (string, error) {
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}

		dir = parent
	}
}

// Locate resolves a command argument to a manifest path. An empty argument
// means the working directory; a directory is searched with Find.
func Locate(arg string) (string, error) {
	if arg == "" {
		arg = "."
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		return Find(abs)
	}

	return abs, nil
}
