package utils

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	archFlag      = regexp.MustCompile(`-arch (\S+)`)
	versionPrefix = regexp.MustCompile(`^(\d+)\.(\d+)`)
)

// ParseArchFlags extracts the values of every "-arch <value>" token in flags
func ParseArchFlags(flags string) []string {
	archs := make([]string, 0)

	for _, m := range archFlag.FindAllStringSubmatch(flags, -1) {
		archs = append(archs, m[1])
	}

	return archs
}

// CompactVersion turns "3.11.4 (main, ...)" into "311"
func CompactVersion(version string) (string, error) {
	m := versionPrefix.FindStringSubmatch(strings.TrimSpace(version))
	if m == nil {
		return "", fmt.Errorf("cannot parse interpreter version %q as major.minor", version)
	}

	return m[1] + m[2], nil
}

// EnsureTrailingSeparator appends the OS path separator unless dir already ends with one
func EnsureTrailingSeparator(dir string) string {
	if strings.HasSuffix(dir, string(os.PathSeparator)) {
		return dir
	}

	return dir + string(os.PathSeparator)
}
