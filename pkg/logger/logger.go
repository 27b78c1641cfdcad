// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var LogContainer = logContainer{level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}

// Options controls where and how verbosely the daemon logs.
type Options struct {
	// Level is a zap level name, e.g. "debug" or "info".
	Level string
	// File enables an additional JSON log written to this path and
	// rotated by size. Empty disables the file sink.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

type logContainer struct {
	m            sync.Mutex
	level        zap.AtomicLevel
	logger       *zap.Logger
	simpleLogger *zap.SugaredLogger
}

// Configure (re)builds the loggers. Loggers handed out before the call
// keep their old sinks but share the new level.
func (l *logContainer) Configure(o Options) error {
	if o.Level != "" {
		if err := l.level.UnmarshalText([]byte(o.Level)); err != nil {
			return err
		}
	}
	core := getConsoleCore(l.level)
	if o.File != "" {
		core = zapcore.NewTee(core, getJsonCore(l.level, getLogWriter(o)))
	}
	l.m.Lock()
	defer l.m.Unlock()
	l.logger = zap.New(core)
	l.simpleLogger = l.logger.Sugar()
	return nil
}

// GetLogger returns the pointer to the logger and creates one if none exists
func (l *logContainer) GetLogger() *zap.Logger {
	l.m.Lock()
	defer l.m.Unlock()
	if l.logger == nil {
		l.logger = zap.New(getConsoleCore(l.level))
		l.simpleLogger = l.logger.Sugar()
	}
	return l.logger
}

// GetSimpleLogger returns the pointer to the sugared logger and creates one
// if none exists
func (l *logContainer) GetSimpleLogger() *zap.SugaredLogger {
	l.GetLogger()
	l.m.Lock()
	defer l.m.Unlock()
	return l.simpleLogger
}

// Sync flushes both loggers.
func (l *logContainer) Sync() {
	l.m.Lock()
	defer l.m.Unlock()
	if l.logger != nil {
		_ = l.logger.Sync()
	}
}

func getConsoleEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getJsonEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.EpochTimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func getLogWriter(o Options) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
	})
}

func getConsoleCore(level zapcore.LevelEnabler) zapcore.Core {
	return zapcore.NewCore(getConsoleEncoder(), zapcore.AddSync(os.Stderr), level)
}

func getJsonCore(level zapcore.LevelEnabler, w zapcore.WriteSyncer) zapcore.Core {
	return zapcore.NewCore(getJsonEncoder(), w, level)
}
