// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfigureLevel(t *testing.T) {
	l := logContainer{level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}
	if err := l.Configure(Options{Level: "debug"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if !l.GetLogger().Core().Enabled(zapcore.DebugLevel) {
		t.Error("Debug level not enabled")
	}
	if err := l.Configure(Options{Level: "chatty"}); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clevo-wmid.log")
	l := logContainer{level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}
	if err := l.Configure(Options{File: path, MaxSizeMB: 1}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	l.GetSimpleLogger().Infof("key %x pressed", 0xa3)
	l.Sync()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"key a3 pressed"`) {
		t.Errorf("Unexpected log file content %q", b)
	}
}
