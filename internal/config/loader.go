package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override config keys
const EnvPrefix = "EXTBUILD"

// flagKeys maps command flags onto config keys
var flagKeys = map[string]string{
	"cmake":            "cmake",
	"python":           "python",
	"torch-cmake-path": "torch_cmake_path",
	"debug":            "debug",
	"parallel":         "parallel",
	"build-lib":        "build_lib",
	"build-temp":       "build_temp",
	"verbose":          "verbose",
	"log-level":        "log_level",
	"log-format":       "log_format",
	"no-history":       "no_history",
	"history-dir":      "history_dir",
}

// Loader handles configuration loading from various sources
type Loader struct {
	// Directory searched for the global config file, empty to skip it
	globalDir string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	l := &Loader{}

	if dir, err := os.UserConfigDir(); err == nil {
		l.globalDir = filepath.Join(dir, "extbuild")
	}

	return l
}

// LoadForBuild loads configuration for the project named by args.
// Precedence, lowest first: defaults, global file, local file, environment, flags.
func (l *Loader) LoadForBuild(flags *pflag.FlagSet, args []string) (*Config, error) {
	projectDir, err := ProjectDir(args)
	if err != nil {
		return nil, err
	}

	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(projectDir)
	l.bindEnv()
	l.bindCommandFlags(flags)

	return Load(projectDir)
}

// Load builds a Config from the current viper state
func Load(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:     projectDir,
		CMakePath:      viper.GetString("cmake"),
		PythonPath:     viper.GetString("python"),
		TorchCMakePath: viper.GetString("torch_cmake_path"),
		Debug:          viper.GetBool("debug"),
		Parallel:       viper.GetInt("parallel"),
		BuildLib:       viper.GetString("build_lib"),
		BuildTemp:      viper.GetString("build_temp"),
		Verbose:        viper.GetBool("verbose"),
		LogLevel:       viper.GetString("log_level"),
		LogFormat:      viper.GetString("log_format"),
		NoHistory:      viper.GetBool("no_history"),
		HistoryDir:     viper.GetString("history_dir"),
	}

	if cfg.Verbose && cfg.LogLevel == DefaultLogLevel {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("cmake", DefaultCMakePath)
	viper.SetDefault("python", DefaultPythonPath)
	viper.SetDefault("build_lib", DefaultBuildLib)
	viper.SetDefault("build_temp", DefaultBuildTemp)
	viper.SetDefault("history_dir", DefaultHistoryDir)
	viper.SetDefault("log_level", DefaultLogLevel)
	viper.SetDefault("log_format", DefaultLogFormat)
	viper.SetDefault("debug", DefaultDebug)
	viper.SetDefault("verbose", DefaultVerbose)
	viper.SetDefault("parallel", 0)
}

// loadGlobalConfig loads global configuration from the user config directory
func (l *Loader) loadGlobalConfig() {
	if l.globalDir == "" {
		return
	}

	for _, ext := range extensions {
		globalPath := filepath.Join(l.globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig merges the nearest .extbuild.* file above projectDir
func (l *Loader) loadLocalConfig(projectDir string) {
	localPath := FindLocalConfig(projectDir)
	if localPath == "" {
		return
	}

	viper.SetConfigFile(localPath)
	_ = viper.MergeInConfig()
}

// bindEnv lets EXTBUILD_* variables override file values
func (l *Loader) bindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(flags *pflag.FlagSet) {
	if flags == nil {
		return
	}

	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}
