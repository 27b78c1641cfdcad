// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestDefaults(t *testing.T) {
	c, err := Load(afero.NewMemMapFs(), "", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.InitColor != 1 || c.Platform != "w35_37et" || c.Socket != "/run/clevo-wmi.sock" {
		t.Errorf("Unexpected defaults %+v", c)
	}
	if c.ReArmRetries != 0 || c.ResumeWatchInterval != 0 || c.FanLegacyHex {
		t.Errorf("Optional behavior enabled by default: %+v", c)
	}
	if c.Version.Version == "" {
		t.Error("Version not set")
	}
}

func TestMissingExplicitFile(t *testing.T) {
	if _, err := Load(afero.NewMemMapFs(), "/nope.yaml", nil); err == nil {
		t.Error("Expected error for missing configuration file")
	}
}

func TestFileAndEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, DefaultPath, []byte(`
init_color: 0
rearm_retries: 3
rearm_backoff_min: 250ms
fan_legacy_hex: true
log_level: debug
`), 0o644)
	t.Setenv("CLEVO_WMI_REARM_RETRIES", "5")
	t.Setenv("CLEVO_WMI_SOCKET", "/tmp/clevo.sock")

	c, err := Load(fs, "", map[string]interface{}{"log_level": "warn"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.InitColor != 0 {
		t.Errorf("init_color = %d, expected 0 from file", c.InitColor)
	}
	if c.ReArmRetries != 5 {
		t.Errorf("rearm_retries = %d, expected 5 from environment", c.ReArmRetries)
	}
	if c.ReArmBackoffMin != 250*time.Millisecond {
		t.Errorf("rearm_backoff_min = %v", c.ReArmBackoffMin)
	}
	if !c.FanLegacyHex {
		t.Error("fan_legacy_hex not read from file")
	}
	if c.Socket != "/tmp/clevo.sock" {
		t.Errorf("socket = %q", c.Socket)
	}
	if c.LogLevel != "warn" {
		t.Errorf("log_level = %q, expected override to win", c.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	if _, err := Load(afero.NewMemMapFs(), "", map[string]interface{}{"rearm_retries": -1}); err == nil {
		t.Error("Expected error for negative retries")
	}
}
