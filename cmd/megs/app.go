package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/megs-sim/megs"
	"github.com/megs-sim/megs/config"
	"github.com/megs-sim/megs/contract"
	"github.com/megs-sim/megs/engine"
	"github.com/megs-sim/megs/env"
	"github.com/megs-sim/megs/host"
)

// app is one wired host: engine, host imports, contract and environment.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	engine   *engine.WazeroEngine
	imports  *engine.ImportTable
	recorder *host.Recorder
	env      *env.Environment
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	eng, err := engine.NewWazeroEngineWithConfig(ctx, &engine.Config{
		MemoryLimitPages: cfg.Engine.MemoryLimitPages,
	})
	if err != nil {
		return nil, err
	}

	rec := host.NewRecorder()
	table, err := eng.Define(ctx, host.Functions(rec))
	if err != nil {
		return nil, multierr.Append(err, eng.Close(ctx))
	}

	c := host.Contract(table.Signatures())
	if cfg.Contract.File != "" {
		c, err = contract.LoadFile(cfg.Contract.File)
		if err != nil {
			return nil, multierr.Combine(err, table.Close(ctx), eng.Close(ctx))
		}
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		engine:   eng,
		imports:  table,
		recorder: rec,
		env:      env.New(eng, c, env.WithLogger(logger)),
	}, nil
}

// load adds every module under the configured root.
func (a *app) load(ctx context.Context) (int, error) {
	return a.env.LoadDir(ctx, a.cfg.Modules.Root, a.cfg.Modules.Extension)
}

func (a *app) Close(ctx context.Context) error {
	return multierr.Combine(
		a.env.Close(ctx),
		a.imports.Close(ctx),
		a.engine.Close(ctx),
	)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// parsePoint parses "x,y" or "x,y,z".
func parsePoint(s string) (megs.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return megs.Point{}, fmt.Errorf("point %q: want x,y or x,y,z", s)
	}
	var v [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return megs.Point{}, fmt.Errorf("point %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return megs.Point{X: v[0], Y: v[1], Z: v[2]}, nil
}
