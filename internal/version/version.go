package version

// Set at build time with -ldflags "-X github.com/Norgate-AV/extbuild/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
