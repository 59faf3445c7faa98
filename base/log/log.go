// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006-01-02 15:04:05.999999"

var logger *zap.Logger

func init() {
	var err error
	logger, err = zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
}

// Logger get current logger
func Logger() *zap.Logger {
	return logger
}

// CloseLogger silences everything below fatal level.
func CloseLogger() {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.FatalLevel)
	var err error
	logger, err = cfg.Build()
	if err != nil {
		panic(err)
	}
}

// Options controls where and how logs are written. Logs always go to stderr
// since stdout carries command output.
type Options struct {
	Debug      bool
	Path       string
	MaxSize    int
	MaxAge     int
	MaxBackups int
	Compress   bool
}

func AddFlags(flagSet *pflag.FlagSet) {
	flagSet.String("log-path", "", "path of log file")
	flagSet.Int("log-max-size", 100, "maximum size in megabytes of the log file")
	flagSet.Int("log-max-age", 0, "maximum number of days to retain old log files")
	flagSet.Int("log-max-backups", 0, "maximum number of old log files to retain")
	flagSet.Bool("log-compress", false, "compress rotated log files")
}

// OptionsFromFlags reads options registered by AddFlags.
func OptionsFromFlags(flagSet *pflag.FlagSet, debug bool) Options {
	opts := Options{Debug: debug}
	if flagSet.Changed("log-path") {
		opts.Path, _ = flagSet.GetString("log-path")
	}
	opts.MaxSize, _ = flagSet.GetInt("log-max-size")
	opts.MaxAge, _ = flagSet.GetInt("log-max-age")
	opts.MaxBackups, _ = flagSet.GetInt("log-max-backups")
	opts.Compress, _ = flagSet.GetBool("log-compress")
	return opts
}

// Build creates a logger. Debug mode uses the console encoder, otherwise
// entries are JSON at info level.
func Build(opts Options) *zap.Logger {
	var (
		encoder zapcore.Encoder
		level   zapcore.LevelEnabler = zap.InfoLevel
	)
	if opts.Debug {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
		encoder = zapcore.NewConsoleEncoder(cfg)
		level = zap.DebugLevel
	} else {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
		encoder = zapcore.NewJSONEncoder(cfg)
	}
	writers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stderr)}
	if opts.Path != "" {
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}))
	}
	return zap.New(zapcore.NewCore(encoder, zap.CombineWriteSyncers(writers...), level))
}

// SetLogger replaces the current logger with one configured by flags.
func SetLogger(flagSet *pflag.FlagSet, debug bool) {
	logger = Build(OptionsFromFlags(flagSet, debug))
}
