package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	project := t.TempDir()

	tests := []struct {
		name        string
		setupViper  func()
		wantConfig  *Config
		wantErr     bool
		errContains string
	}{
		{
			name: "load with all defaults",
			setupViper: func() {
				viper.Reset()
				NewLoader().setupViperDefaults()
			},
			wantConfig: &Config{
				CMakePath:  DefaultCMakePath,
				PythonPath: DefaultPythonPath,
				BuildLib:   filepath.Join(project, "build", "lib"),
				BuildTemp:  filepath.Join(project, "build", "temp"),
				HistoryDir: filepath.Join(project, DefaultHistoryDir),
				LogLevel:   DefaultLogLevel,
				LogFormat:  DefaultLogFormat,
			},
		},
		{
			name: "load with custom values",
			setupViper: func() {
				viper.Reset()
				viper.Set("cmake", "/opt/cmake/bin/cmake")
				viper.Set("python", "/usr/bin/python3.11")
				viper.Set("torch_cmake_path", "/opt/torch/share/cmake")
				viper.Set("debug", true)
				viper.Set("parallel", 8)
				viper.Set("build_lib", "out/lib")
				viper.Set("build_temp", "/scratch")
				viper.Set("log_level", "WARN")
				viper.Set("log_format", "json")
				viper.Set("no_history", true)
			},
			wantConfig: &Config{
				CMakePath:      "/opt/cmake/bin/cmake",
				PythonPath:     "/usr/bin/python3.11",
				TorchCMakePath: func() string { abs, _ := filepath.Abs("/opt/torch/share/cmake"); return abs }(),
				Debug:          true,
				Parallel:       8,
				BuildLib:       filepath.Join(project, "out", "lib"),
				BuildTemp:      func() string { abs, _ := filepath.Abs("/scratch"); return abs }(),
				HistoryDir:     filepath.Join(project, DefaultHistoryDir),
				LogLevel:       "warn",
				LogFormat:      "json",
				NoHistory:      true,
			},
		},
		{
			name: "verbose raises default log level",
			setupViper: func() {
				viper.Reset()
				NewLoader().setupViperDefaults()
				viper.Set("verbose", true)
			},
			wantConfig: &Config{
				CMakePath:  DefaultCMakePath,
				PythonPath: DefaultPythonPath,
				BuildLib:   filepath.Join(project, "build", "lib"),
				BuildTemp:  filepath.Join(project, "build", "temp"),
				HistoryDir: filepath.Join(project, DefaultHistoryDir),
				Verbose:    true,
				LogLevel:   "debug",
				LogFormat:  DefaultLogFormat,
			},
		},
		{
			name: "negative parallelism",
			setupViper: func() {
				viper.Reset()
				viper.Set("parallel", -1)
			},
			wantErr:     true,
			errContains: "invalid parallel job count",
		},
		{
			name: "unknown log level",
			setupViper: func() {
				viper.Reset()
				viper.Set("log_level", "chatty")
			},
			wantErr:     true,
			errContains: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupViper()

			cfg, err := Load(project)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			tt.wantConfig.ProjectDir = project
			assert.Equal(t, tt.wantConfig, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		wantErr     bool
		errContains string
		checkFields func(*testing.T, *Config)
	}{
		{
			name:   "empty config gets defaults",
			config: &Config{},
			checkFields: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultCMakePath, cfg.CMakePath)
				assert.Equal(t, DefaultPythonPath, cfg.PythonPath)
				assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
				assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
				assert.True(t, filepath.IsAbs(cfg.BuildLib))
				assert.True(t, filepath.IsAbs(cfg.BuildTemp))
				assert.True(t, filepath.IsAbs(cfg.HistoryDir))
				assert.Empty(t, cfg.TorchCMakePath)
			},
		},
		{
			name:   "relative paths resolve against project dir",
			config: &Config{ProjectDir: "proj", BuildLib: "lib", TorchCMakePath: "torch"},
			checkFields: func(t *testing.T, cfg *Config) {
				assert.True(t, filepath.IsAbs(cfg.ProjectDir))
				assert.Equal(t, filepath.Join(cfg.ProjectDir, "lib"), cfg.BuildLib)
				assert.Equal(t, filepath.Join(cfg.ProjectDir, "torch"), cfg.TorchCMakePath)
			},
		},
		{
			name:   "cmake path is left for PATH lookup",
			config: &Config{CMakePath: "cmake3"},
			checkFields: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "cmake3", cfg.CMakePath)
			},
		},
		{
			name:   "relative cmake file resolves against project dir",
			config: &Config{ProjectDir: "proj", CMakePath: "./tools/cmake"},
			checkFields: func(t *testing.T, cfg *Config) {
				assert.Equal(t, filepath.Join(cfg.ProjectDir, "tools", "cmake"), cfg.CMakePath)
			},
		},
		{
			name:   "absolute cmake file is kept",
			config: &Config{CMakePath: "/opt/cmake/bin/cmake"},
			checkFields: func(t *testing.T, cfg *Config) {
				abs, _ := filepath.Abs("/opt/cmake/bin/cmake")
				assert.Equal(t, abs, cfg.CMakePath)
			},
		},
		{
			name:        "invalid log format",
			config:      &Config{LogFormat: "xml"},
			wantErr:     true,
			errContains: "invalid log format",
		},
		{
			name:        "negative parallel",
			config:      &Config{Parallel: -4},
			wantErr:     true,
			errContains: "invalid parallel job count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			if tt.checkFields != nil {
				tt.checkFields(t, tt.config)
			}
		})
	}
}

func TestIsValidLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidLogLevel(tt.level), "isValidLogLevel(%q)", tt.level)
	}
}
