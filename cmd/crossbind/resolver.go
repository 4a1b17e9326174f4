package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/crossbind/crossbind/spec"
	"github.com/crossbind/crossbind/typesystem"
)

// newDirResolver resolves dependency descriptors by probing
// <name>.json in each search directory, first hit wins.
func newDirResolver(dirs []string) typesystem.DependencyResolver {
	return typesystem.ResolverFunc(func(name string) (*spec.Assembly, error) {
		for _, dir := range dirs {
			path := filepath.Join(dir, name+".json")
			if _, err := os.Stat(path); err != nil {
				continue
			}
			logrus.WithFields(logrus.Fields{"assembly": name, "path": path}).Debug("resolved dependency descriptor")
			return spec.Load(path)
		}
		if len(dirs) == 0 {
			return nil, fmt.Errorf("dependency %q is not loaded and no --search-path was given", name)
		}
		return nil, fmt.Errorf("dependency %q not found in search paths [%s]", name, strings.Join(dirs, ", "))
	})
}
