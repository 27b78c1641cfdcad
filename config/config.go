// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// DefaultPath is read when no configuration file is given. A missing
// default file is not an error.
const DefaultPath = "/etc/clevo-wmi/config.yaml"

// EnvPrefix prefixes environment overrides, e.g. CLEVO_WMI_INIT_COLOR.
const EnvPrefix = "CLEVO_WMI"

// Set at link time with -X.
var (
	gitVersion = "dev"
	gitHash    = "unknown"
)

type Version struct {
	Version string
	GitHash string
}

type Config struct {
	// InitColor is applied once at load, 1 for green and 0 for
	// yellow. Anything else leaves the LED untouched.
	InitColor int    `mapstructure:"init_color"`
	Platform  string `mapstructure:"platform"`
	// MethodPath overrides the ACPI path of the platform's WMI method.
	MethodPath string `mapstructure:"method_path"`

	Socket         string `mapstructure:"socket"`
	MetricsAddress string `mapstructure:"metrics_address"`
	GRPCAddress    string `mapstructure:"grpc_address"`

	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	ReArmRetries    int           `mapstructure:"rearm_retries"`
	ReArmBackoffMin time.Duration `mapstructure:"rearm_backoff_min"`
	ReArmBackoffMax time.Duration `mapstructure:"rearm_backoff_max"`

	// ResumeWatchInterval enables the sleep clock watcher for systems
	// without a system-sleep hook. Zero disables it.
	ResumeWatchInterval  time.Duration `mapstructure:"resume_watch_interval"`
	ResumeWatchThreshold time.Duration `mapstructure:"resume_watch_threshold"`

	FanLegacyHex bool `mapstructure:"fan_legacy_hex"`

	ECIOPath     string `mapstructure:"ec_io_path"`
	ACPICallPath string `mapstructure:"acpi_call_path"`
	WMISysfsRoot string `mapstructure:"wmi_sysfs_root"`
	UinputPath   string `mapstructure:"uinput_path"`

	Version Version `mapstructure:"-"`
}

var DefaultConfig = &Config{
	InitColor: 1,
	Platform:  "w35_37et",

	Socket:         "/run/clevo-wmi.sock",
	MetricsAddress: "[::1]:9370",
	GRPCAddress:    "[::1]:9371",

	LogLevel:      "info",
	LogMaxSizeMB:  10,
	LogMaxBackups: 3,

	ReArmBackoffMin: 100 * time.Millisecond,
	ReArmBackoffMax: 2 * time.Second,

	ResumeWatchThreshold: 2 * time.Second,

	ECIOPath:     "/sys/kernel/debug/ec/ec0/io",
	ACPICallPath: "/proc/acpi/call",
	WMISysfsRoot: "/sys/bus/wmi/devices",
	UinputPath:   "/dev/uinput",

	Version: Version{
		Version: gitVersion,
		GitHash: gitHash,
	},
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig
	v.SetDefault("init_color", d.InitColor)
	v.SetDefault("platform", d.Platform)
	v.SetDefault("method_path", d.MethodPath)
	v.SetDefault("socket", d.Socket)
	v.SetDefault("metrics_address", d.MetricsAddress)
	v.SetDefault("grpc_address", d.GRPCAddress)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_max_size_mb", d.LogMaxSizeMB)
	v.SetDefault("log_max_backups", d.LogMaxBackups)
	v.SetDefault("rearm_retries", d.ReArmRetries)
	v.SetDefault("rearm_backoff_min", d.ReArmBackoffMin)
	v.SetDefault("rearm_backoff_max", d.ReArmBackoffMax)
	v.SetDefault("resume_watch_interval", d.ResumeWatchInterval)
	v.SetDefault("resume_watch_threshold", d.ResumeWatchThreshold)
	v.SetDefault("fan_legacy_hex", d.FanLegacyHex)
	v.SetDefault("ec_io_path", d.ECIOPath)
	v.SetDefault("acpi_call_path", d.ACPICallPath)
	v.SetDefault("wmi_sysfs_root", d.WMISysfsRoot)
	v.SetDefault("uinput_path", d.UinputPath)
}

// Load builds the configuration from defaults, the YAML file at path,
// the environment and finally overrides, each layer winning over the
// previous one. An empty path reads DefaultPath if it exists.
func Load(fs afero.Fs, path string, overrides map[string]interface{}) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !notExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	c.Version = DefaultConfig.Version
	return c, c.validate()
}

func notExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}

func (c *Config) validate() error {
	if c.Platform == "" {
		return errors.New("config: platform must be set")
	}
	if c.ReArmRetries < 0 {
		return fmt.Errorf("config: rearm_retries %d is negative", c.ReArmRetries)
	}
	if c.ResumeWatchInterval < 0 || c.ResumeWatchThreshold < 0 {
		return errors.New("config: resume watch durations must not be negative")
	}
	return nil
}
