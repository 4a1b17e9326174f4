// Package gen orchestrates binding generation: it walks every loaded
// assembly of a locked type system, drives the target-language emitter
// and delivers the rendered files to an output sink.
package gen

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/crossbind/crossbind/gen/golang"
	"github.com/crossbind/crossbind/gen/sink"
	"github.com/crossbind/crossbind/typesystem"
)

// Config holds the configuration for binding generation.
type Config struct {
	// OutDir is the directory where generated packages will be written.
	// e.g. "./bindings"
	OutDir string

	// ModuleBase is the Go import path prefix the generated packages
	// live under. Required so cross-assembly references resolve.
	// e.g. "example.com/myapp/bindings"
	ModuleBase string

	// Assemblies restricts generation to the named assemblies. Empty
	// generates every assembly loaded into the type system.
	Assemblies []string

	// PackageNames overrides the derived Go package name per assembly.
	// e.g. map[string]string{"@scope/widgets": "widgets"}
	PackageNames map[string]string

	// Validators controls emission of runtime argument validators.
	// Default: true.
	Validators *bool

	// WidenNumericUnions makes union validators accept every Go
	// numeric kind where a union lists the number primitive.
	// Default: true.
	WidenNumericUnions *bool

	// AcceptForeignProxies makes union validators fall back to
	// accepting any bridge-backed proxy value. Default: true.
	AcceptForeignProxies *bool

	// Sink overrides the output destination. Default: a filesystem
	// sink rooted at OutDir.
	Sink sink.OutputSink

	// Logger receives progress and warnings. Default: the standard
	// logger.
	Logger *logrus.Logger
}

// Result reports what a generation run produced.
type Result struct {
	// Files lists every written path, relative to the sink root, in
	// emission order.
	Files []string

	// TypesGenerated counts the types rendered across all assemblies.
	TypesGenerated int

	// Warnings carries the emitter's non-fatal findings.
	Warnings []golang.Warning
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func applyConfigDefaults(cfg *Config) (*Config, error) {
	out := *cfg
	if out.Sink == nil {
		if out.OutDir == "" {
			return nil, fmt.Errorf("OutDir is required")
		}
		out.Sink = sink.NewFilesystemSink(out.OutDir)
	}
	if out.ModuleBase == "" {
		return nil, fmt.Errorf("ModuleBase is required")
	}
	if out.Logger == nil {
		out.Logger = logrus.StandardLogger()
	}
	return &out, nil
}

// Generate renders Go bindings for the assemblies of ts. The type
// system must be locked first; generation reads derived relationships
// that are only stable after Lock.
func Generate(ctx context.Context, ts *typesystem.TypeSystem, cfg *Config) (*Result, error) {
	cfg, err := applyConfigDefaults(cfg)
	if err != nil {
		return nil, err
	}
	if err := ts.Lock(); err != nil {
		return nil, fmt.Errorf("type system validation failed: %w", err)
	}

	assemblies, err := selectAssemblies(ts, cfg.Assemblies)
	if err != nil {
		return nil, err
	}

	emitter := golang.NewEmitter(ts, golang.Config{
		ModuleBase:           cfg.ModuleBase,
		PackageNames:         cfg.PackageNames,
		Validators:           boolOr(cfg.Validators, true),
		WidenNumericUnions:   boolOr(cfg.WidenNumericUnions, true),
		AcceptForeignProxies: boolOr(cfg.AcceptForeignProxies, true),
	})

	result := &Result{}
	for _, asm := range assemblies {
		log := cfg.Logger.WithField("assembly", asm.Name())
		log.Debug("emitting assembly")
		paths, err := emitter.EmitAssembly(ctx, asm, cfg.Sink)
		result.Files = append(result.Files, paths...)
		if err != nil {
			return result, fmt.Errorf("failed to emit %s: %w", asm.Name(), err)
		}
		result.TypesGenerated += len(asm.AllTypes())
		log.WithField("files", len(paths)).Info("assembly emitted")
	}

	result.Warnings = emitter.Warnings()
	for _, w := range result.Warnings {
		cfg.Logger.Warnf("%s", w)
	}
	return result, nil
}

// selectAssemblies resolves the requested assembly names, or all
// loaded assemblies when no filter is given.
func selectAssemblies(ts *typesystem.TypeSystem, names []string) ([]*typesystem.Assembly, error) {
	if len(names) == 0 {
		return ts.Assemblies(), nil
	}
	out := make([]*typesystem.Assembly, 0, len(names))
	for _, name := range names {
		asm, err := ts.FindAssembly(name)
		if err != nil {
			return nil, err
		}
		out = append(out, asm)
	}
	return out, nil
}
