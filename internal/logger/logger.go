// Package logger centralises zap logger construction so every binary logs
// with the same encoding and level conventions.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for consistent structured logging across herdcore.
// Use these constants instead of raw strings.
const (
	FieldOperation  = "operation"
	FieldProperty   = "property_id"
	FieldAnimal     = "animal_id"
	FieldFemale     = "female_id"
	FieldMale       = "male_id"
	FieldEvent      = "event_id"
	FieldCycle      = "cycle_id"
	FieldScore      = "score"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldError      = "error"
)

// New builds a logger for the given level name. JSON output targets machine
// consumption; the console encoder is for interactive use.
func New(level string, jsonOutput bool) (*zap.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		return cfg.Build()
	}
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(os.Stderr),
		lvl,
	)
	return zap.New(core), nil
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zap.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zap.InfoLevel, err
	}
	return lvl, nil
}
