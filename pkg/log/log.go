// Copyright 2026 Roleflow Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/wire"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ProviderSet is the Wire provider set for the log package.
var ProviderSet = wire.NewSet(ProvideLogger)

// Conf defines logger configuration.
type Conf struct {
	Output     string `mapstructure:"output"`     // stdout | file
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	Level      string `mapstructure:"level"`
	KeepDays   int    `mapstructure:"keepDays"`
	RotateSize int    `mapstructure:"rotateSize"` // MB
	RotateNum  int    `mapstructure:"rotateNum"`
}

// SetDefaults fills unset fields with defaults.
func (c *Conf) SetDefaults() {
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.Level == "" {
		c.Level = "INFO"
	}
	if c.Output == "file" {
		if c.Path == "" {
			c.Path = "./logs"
		}
		if c.Filename == "" {
			c.Filename = "app.log"
		}
		if c.RotateSize <= 0 {
			c.RotateSize = 100
		}
		if c.RotateNum <= 0 {
			c.RotateNum = 10
		}
		if c.KeepDays <= 0 {
			c.KeepDays = 7
		}
	}
}

// Logger wraps zap.SugaredLogger for dependency injection usage.
type Logger struct {
	*zap.SugaredLogger
}

var (
	mu     sync.RWMutex
	global *Logger
)

func init() {
	// Keep package-level helpers usable before New is called.
	base, _ := zap.NewProduction()
	global = &Logger{SugaredLogger: base.Sugar()}
}

// ProvideLogger creates a dependency-injected logger instance and also
// updates the global logger used by the package-level helpers.
func ProvideLogger(conf *Conf) (*Logger, error) {
	return New(conf)
}

// New creates a logger from configuration.
func New(conf *Conf) (*Logger, error) {
	if conf == nil {
		conf = &Conf{}
	}
	conf.SetDefaults()

	level, err := parseLevel(conf.Level)
	if err != nil {
		return nil, err
	}

	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConf)

	var sink zapcore.WriteSyncer
	switch conf.Output {
	case "stdout":
		sink = zapcore.AddSync(os.Stdout)
	case "file":
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(conf.Path, conf.Filename),
			MaxSize:    conf.RotateSize,
			MaxBackups: conf.RotateNum,
			MaxAge:     conf.KeepDays,
			Compress:   true,
		})
	default:
		return nil, fmt.Errorf("unsupported log output: %s", conf.Output)
	}

	core := zapcore.NewCore(encoder, sink, level)
	base := zap.New(&traceCore{Core: core}, zap.AddCaller(), zap.AddCallerSkip(1))
	l := &Logger{SugaredLogger: base.Sugar()}

	mu.Lock()
	global = l
	mu.Unlock()

	return l, nil
}

func parseLevel(value string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "INFO", "":
		return zapcore.InfoLevel, nil
	case "WARN", "WARNING":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level: %s", value)
	}
}

func logger() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Sync flushes buffered log entries.
func Sync() {
	_ = logger().SugaredLogger.Sync()
}
