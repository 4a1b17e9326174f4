package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type CheckCmd struct {
	Descriptors []string `arg:"" help:"Assembly descriptor files to validate."`

	SearchPath []string `help:"Directory searched for dependency descriptors (repeatable)." name:"search-path"`
}

func (c *CheckCmd) Run() error {
	ts, err := loadDescriptors(c.Descriptors, c.SearchPath)
	if err != nil {
		return err
	}
	if err := ts.Lock(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	types := 0
	for _, asm := range ts.Assemblies() {
		types += len(asm.AllTypes())
	}
	logrus.WithFields(logrus.Fields{
		"assemblies": len(ts.Assemblies()),
		"types":      types,
	}).Info("descriptors are valid")
	return nil
}
