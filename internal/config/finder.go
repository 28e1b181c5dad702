package config

import (
	"os"
	"path/filepath"
)

var extensions = []string{"yml", "yaml", "json", "toml"}

// FindLocalConfig finds local config file by walking up directories
func FindLocalConfig(dir string) string {
	for {
		for _, ext := range extensions {
			path := filepath.Join(dir, ".extbuild."+ext)

			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

// ProjectDir returns the directory a command operates on: the first argument
// if it is a directory, its parent if it is a file, else the working directory.
func ProjectDir(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return os.Getwd()
	}

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return abs, nil
	}

	return filepath.Dir(abs), nil
}
