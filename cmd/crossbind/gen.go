package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/crossbind/crossbind/gen"
	"github.com/crossbind/crossbind/spec"
	"github.com/crossbind/crossbind/typesystem"
)

type GenCmd struct {
	Out         string   `arg:"" optional:"" help:"Output directory for generated packages."`
	Descriptors []string `arg:"" optional:"" help:"Assembly descriptor files to generate from."`

	ModuleBase   string            `help:"Import path prefix for generated packages." name:"module-base"`
	SearchPath   []string          `help:"Directory searched for dependency descriptors (repeatable)." name:"search-path"`
	PackageName  map[string]string `help:"Override the Go package name per assembly (assembly=name)." name:"package-name"`
	NoValidators bool              `help:"Skip emission of runtime argument validators."`
	Config       string            `help:"Path to a crossbind.yaml config file." short:"c"`
}

func (c *GenCmd) Run() error {
	fileCfg, err := loadFileConfig(c.Config)
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = fileCfg.Out
	}
	moduleBase := c.ModuleBase
	if moduleBase == "" {
		moduleBase = fileCfg.ModuleBase
	}
	descriptors := c.Descriptors
	if len(descriptors) == 0 {
		descriptors = fileCfg.Descriptors
	}
	searchPaths := append(c.SearchPath, fileCfg.SearchPaths...)
	packageNames := fileCfg.PackageNames
	if len(c.PackageName) > 0 {
		packageNames = c.PackageName
	}
	validators := fileCfg.Validators
	if c.NoValidators {
		off := false
		validators = &off
	}

	if out == "" {
		return fmt.Errorf("an output directory is required (argument or \"out\" in config)")
	}
	if len(descriptors) == 0 {
		return fmt.Errorf("at least one descriptor is required (argument or \"descriptors\" in config)")
	}

	ts, err := loadDescriptors(descriptors, searchPaths)
	if err != nil {
		return err
	}

	result, err := gen.Generate(context.Background(), ts, &gen.Config{
		OutDir:       out,
		ModuleBase:   moduleBase,
		PackageNames: packageNames,
		Validators:   validators,
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"types": result.TypesGenerated,
		"files": len(result.Files),
	}).Info("generation complete")
	return nil
}

// loadDescriptors loads every descriptor file into a fresh type
// system, pulling dependencies in from the search paths.
func loadDescriptors(paths []string, searchPaths []string) (*typesystem.TypeSystem, error) {
	resolver := newDirResolver(searchPaths)
	ts := typesystem.New()
	for _, path := range paths {
		doc, err := spec.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		if _, err := ts.LoadWithDependencies(doc, resolver); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		logrus.WithField("assembly", doc.Name).Debug("descriptor loaded")
	}
	return ts, nil
}
