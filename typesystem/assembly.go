package typesystem

import (
	"sort"
	"strings"
	"sync"

	"github.com/blang/semver/v4"

	"github.com/crossbind/crossbind/spec"
)

// ModuleLike is the shared container surface of assemblies and
// submodules: both map names to types and may nest further submodules.
type ModuleLike interface {
	// FQN returns the container's fully qualified name.
	FQN() string

	// Types returns the types owned directly by this container, sorted
	// by FQN.
	Types() []Type

	// Submodules returns the directly nested submodules, sorted by FQN.
	Submodules() []*Submodule
}

// Assembly is a versioned, named unit describing the exported type
// surface of one package. Assemblies are created once by the loader and
// never mutated afterwards; derived views (root partition, dependency
// resolution) are memoized.
type Assembly struct {
	ts      *TypeSystem
	name    string
	version semver.Version

	// deps maps dependency assembly names to declared semver ranges.
	deps map[string]string

	// types maps FQN to every type the assembly owns, including types
	// living in submodules.
	types map[string]Type

	submoduleDocs map[string]*spec.Docs
	docs          *spec.Docs

	partitionOnce sync.Once
	rootTypes     []Type
	submodules    []*Submodule
}

// Name returns the assembly name.
func (a *Assembly) Name() string { return a.name }

// FQN returns the assembly name; for an assembly the two coincide.
func (a *Assembly) FQN() string { return a.name }

// Version returns the assembly version.
func (a *Assembly) Version() semver.Version { return a.version }

// Docs returns assembly-level documentation, or nil.
func (a *Assembly) Docs() *spec.Docs { return a.docs }

// AllTypes returns every type the assembly owns, including submodule
// types, sorted by FQN.
func (a *Assembly) AllTypes() []Type {
	result := make([]Type, 0, len(a.types))
	for _, t := range a.types {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FQN() < result[j].FQN() })
	return result
}

// FindType looks up a type owned by this assembly. Returns nil if the
// FQN is unknown.
func (a *Assembly) FindType(fqn string) Type { return a.types[fqn] }

// Types returns the assembly's root types: those declared outside any
// submodule.
func (a *Assembly) Types() []Type {
	a.partition()
	return a.rootTypes
}

// Submodules returns the assembly's direct submodules.
func (a *Assembly) Submodules() []*Submodule {
	a.partition()
	return a.submodules
}

// DependencyRanges returns the declared dependency version ranges keyed
// by assembly name.
func (a *Assembly) DependencyRanges() map[string]string { return a.deps }

// Dependencies resolves every declared dependency against the owning
// type system. Resolution fails if a dependency was never loaded or if
// the loaded version falls outside the declared range.
func (a *Assembly) Dependencies() ([]*Assembly, error) {
	names := make([]string, 0, len(a.deps))
	for name := range a.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]*Assembly, 0, len(names))
	for _, name := range names {
		dep, err := a.ts.FindAssembly(name)
		if err != nil {
			return nil, Errorf(CodeNotFound, a.name, "dependency %q is not loaded", name)
		}
		if rangeExpr := a.deps[name]; rangeExpr != "" {
			rng, err := semver.ParseRange(rangeExpr)
			if err != nil {
				return nil, Errorf(CodeMalformedSpec, a.name, "invalid version range %q for dependency %q: %v", rangeExpr, name, err)
			}
			if !rng(dep.version) {
				return nil, Errorf(CodeConflict, a.name, "dependency %q version %s does not satisfy range %q", name, dep.version, rangeExpr)
			}
		}
		result = append(result, dep)
	}
	return result, nil
}

// partition splits the flat type map into root types and nested
// submodules. Runs once; safe for concurrent callers.
func (a *Assembly) partition() {
	a.partitionOnce.Do(func() {
		byPath := make(map[string]*Submodule)

		// submodule declares paths that may own no types directly
		for path := range a.submoduleDocs {
			a.submoduleAt(byPath, strings.TrimPrefix(path, a.name+"."))
		}

		for _, t := range a.AllTypes() {
			ns := t.Namespace()
			if ns == "" {
				a.rootTypes = append(a.rootTypes, t)
				continue
			}
			sub := a.submoduleAt(byPath, ns)
			sub.types = append(sub.types, t)
		}

		for _, sub := range byPath {
			sort.Slice(sub.types, func(i, j int) bool { return sub.types[i].FQN() < sub.types[j].FQN() })
			sort.Slice(sub.children, func(i, j int) bool { return sub.children[i].fqn < sub.children[j].fqn })
		}
		sort.Slice(a.submodules, func(i, j int) bool { return a.submodules[i].fqn < a.submodules[j].fqn })
	})
}

// submoduleAt returns the submodule for a dotted namespace path,
// creating it and every intermediate container layer on the way up.
func (a *Assembly) submoduleAt(byPath map[string]*Submodule, ns string) *Submodule {
	if sub, ok := byPath[ns]; ok {
		return sub
	}
	sub := &Submodule{
		asm:  a,
		fqn:  a.name + "." + ns,
		name: ns,
		docs: a.submoduleDocs[a.name+"."+ns],
	}
	if idx := strings.LastIndex(ns, "."); idx >= 0 {
		sub.name = ns[idx+1:]
		parent := a.submoduleAt(byPath, ns[:idx])
		parent.children = append(parent.children, sub)
	} else {
		a.submodules = append(a.submodules, sub)
	}
	byPath[ns] = sub
	return sub
}

// Submodule is a nested namespace within an assembly, owning its own
// types and possibly further submodules.
type Submodule struct {
	asm      *Assembly
	fqn      string
	name     string
	docs     *spec.Docs
	types    []Type
	children []*Submodule
}

// FQN returns the submodule's fully qualified namespace path.
func (s *Submodule) FQN() string { return s.fqn }

// Name returns the last path segment of the submodule.
func (s *Submodule) Name() string { return s.name }

// Docs returns submodule-level documentation, or nil.
func (s *Submodule) Docs() *spec.Docs { return s.docs }

// Assembly returns the owning assembly.
func (s *Submodule) Assembly() *Assembly { return s.asm }

// Types returns the types declared directly in this submodule.
func (s *Submodule) Types() []Type { return s.types }

// Submodules returns the directly nested submodules.
func (s *Submodule) Submodules() []*Submodule { return s.children }

// newAssembly builds an Assembly and its types from a validated
// descriptor.
func newAssembly(ts *TypeSystem, doc *spec.Assembly) (*Assembly, error) {
	version, err := semver.Parse(doc.Version)
	if err != nil {
		return nil, Errorf(CodeMalformedSpec, doc.Name, "invalid version %q: %v", doc.Version, err)
	}

	a := &Assembly{
		ts:            ts,
		name:          doc.Name,
		version:       version,
		deps:          doc.Dependencies,
		types:         make(map[string]Type, len(doc.Types)),
		submoduleDocs: make(map[string]*spec.Docs, len(doc.Submodules)),
		docs:          doc.Docs,
	}
	for path, sub := range doc.Submodules {
		if sub != nil {
			a.submoduleDocs[path] = sub.Docs
		} else {
			a.submoduleDocs[path] = nil
		}
	}
	for fqn, tspec := range doc.Types {
		t, err := newType(ts, a, fqn, tspec)
		if err != nil {
			return nil, err
		}
		a.types[fqn] = t
	}
	return a, nil
}
