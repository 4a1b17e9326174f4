// Package typesystem implements the cross-language API metamodel: it
// loads assembly descriptors into an object model of classes,
// interfaces, and enums, resolves inter-assembly dependencies, and
// exposes a lock that freezes the graph before code generation.
package typesystem

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/blang/semver/v4"

	"github.com/crossbind/crossbind/spec"
)

// DependencyResolver supplies descriptors for dependencies that are not
// yet loaded. Implementations typically read <name>.json from a set of
// search directories.
type DependencyResolver interface {
	// Resolve returns the descriptor for the named assembly.
	Resolve(name string) (*spec.Assembly, error)
}

// ResolverFunc adapts a function to the DependencyResolver interface.
type ResolverFunc func(name string) (*spec.Assembly, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(name string) (*spec.Assembly, error) { return f(name) }

// TypeSystem owns the set of loaded assemblies. Loading is single-writer
// behind a mutex; after Lock the structure is immutable data and all
// reads, including the generator's per-type walk, are safe to run
// concurrently.
type TypeSystem struct {
	mu         sync.Mutex
	assemblies map[string]*Assembly

	locked   atomic.Bool
	lockOnce sync.Once
	lockErr  error
}

// New creates an empty, unlocked TypeSystem.
func New() *TypeSystem {
	return &TypeSystem{assemblies: make(map[string]*Assembly)}
}

// Load validates a descriptor and adds its assembly. Loading an
// assembly whose name is already present succeeds and returns the
// existing assembly when the versions match exactly, and fails with a
// conflict error otherwise.
func (t *TypeSystem) Load(doc *spec.Assembly) (*Assembly, error) {
	if t.locked.Load() {
		return nil, Errorf(CodeLocked, doc.Name, "type system is locked")
	}
	if errs := doc.Validate(); len(errs) > 0 {
		return nil, &Error{
			Code:    CodeMalformedSpec,
			FQN:     doc.Name,
			Message: "descriptor failed validation",
			Cause:   errors.Join(errs...),
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.assemblies[doc.Name]; ok {
		if existing.version.String() == doc.Version {
			return existing, nil
		}
		return nil, Errorf(CodeConflict, doc.Name,
			"assembly already loaded at version %s, cannot load %s", existing.version, doc.Version)
	}

	a, err := newAssembly(t, doc)
	if err != nil {
		return nil, err
	}
	t.assemblies[doc.Name] = a
	return a, nil
}

// LoadWithDependencies loads a descriptor after recursively resolving
// and loading every declared dependency, depth-first. A dependency that
// is already loaded is reused when its version satisfies the declared
// range; an unsatisfiable range is a conflict.
func (t *TypeSystem) LoadWithDependencies(doc *spec.Assembly, resolver DependencyResolver) (*Assembly, error) {
	if t.locked.Load() {
		return nil, Errorf(CodeLocked, doc.Name, "type system is locked")
	}

	names := make([]string, 0, len(doc.Dependencies))
	for name := range doc.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dep, err := t.FindAssembly(name)
		if IsNotFound(err) {
			depDoc, rerr := resolver.Resolve(name)
			if rerr != nil {
				return nil, Errorf(CodeNotFound, doc.Name, "dependency %q cannot be resolved: %v", name, rerr)
			}
			dep, err = t.LoadWithDependencies(depDoc, resolver)
		}
		if err != nil {
			return nil, err
		}
		if rangeExpr := doc.Dependencies[name]; rangeExpr != "" {
			rng, perr := semver.ParseRange(rangeExpr)
			if perr != nil {
				return nil, Errorf(CodeMalformedSpec, doc.Name, "invalid version range %q for dependency %q: %v", rangeExpr, name, perr)
			}
			if !rng(dep.version) {
				return nil, Errorf(CodeConflict, doc.Name,
					"dependency %q version %s does not satisfy range %q", name, dep.version, rangeExpr)
			}
		}
	}

	return t.Load(doc)
}

// FindAssembly returns the loaded assembly with the given name.
func (t *TypeSystem) FindAssembly(name string) (*Assembly, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.assemblies[name]
	if !ok {
		return nil, Errorf(CodeNotFound, name, "assembly not loaded")
	}
	return a, nil
}

// FindFQN returns the type with the given fully qualified name. The
// owning assembly is identified by FQN prefix.
func (t *TypeSystem) FindFQN(fqn string) (Type, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, a := range t.assemblies {
		if fqn == name || strings.HasPrefix(fqn, name+".") {
			if typ := a.FindType(fqn); typ != nil {
				return typ, nil
			}
		}
	}
	return nil, Errorf(CodeNotFound, fqn, "no loaded assembly owns this FQN")
}

// FindClass returns the class with the given FQN, failing if the FQN
// names anything else.
func (t *TypeSystem) FindClass(fqn string) (*ClassType, error) {
	typ, err := t.FindFQN(fqn)
	if err != nil {
		return nil, err
	}
	c, ok := typ.(*ClassType)
	if !ok {
		return nil, Errorf(CodeInvalidType, fqn, "expected a class, found a %s", typ.Kind())
	}
	return c, nil
}

// FindInterface returns the interface with the given FQN.
func (t *TypeSystem) FindInterface(fqn string) (*InterfaceType, error) {
	typ, err := t.FindFQN(fqn)
	if err != nil {
		return nil, err
	}
	i, ok := typ.(*InterfaceType)
	if !ok {
		return nil, Errorf(CodeInvalidType, fqn, "expected an interface, found a %s", typ.Kind())
	}
	return i, nil
}

// FindEnum returns the enum with the given FQN.
func (t *TypeSystem) FindEnum(fqn string) (*EnumType, error) {
	typ, err := t.FindFQN(fqn)
	if err != nil {
		return nil, err
	}
	e, ok := typ.(*EnumType)
	if !ok {
		return nil, Errorf(CodeInvalidType, fqn, "expected an enum, found a %s", typ.Kind())
	}
	return e, nil
}

// Assemblies returns all loaded assemblies, sorted by name.
func (t *TypeSystem) Assemblies() []*Assembly {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]*Assembly, 0, len(t.assemblies))
	for _, a := range t.assemblies {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].name < result[j].name })
	return result
}

// Locked reports whether Lock has been called.
func (t *TypeSystem) Locked() bool { return t.locked.Load() }

// Lock freezes the graph and validates cross-assembly structure: base
// references must resolve to classes with acyclic chains, interface
// references to interfaces, dependencies must be loaded within their
// declared ranges, and datatype interfaces may only declare read-only
// properties. Lock is idempotent; repeated calls return the first
// outcome. After Lock, any load attempt fails with a locked error.
func (t *TypeSystem) Lock() error {
	t.lockOnce.Do(func() {
		t.locked.Store(true)
		t.lockErr = t.validate()
	})
	return t.lockErr
}

// validate runs the structural checks that need the whole graph
// present. Returns all problems found, joined.
func (t *TypeSystem) validate() error {
	var errs []error

	names := make([]string, 0, len(t.assemblies))
	for name := range t.assemblies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		a := t.assemblies[name]
		if _, err := a.Dependencies(); err != nil {
			errs = append(errs, err)
		}
		for _, typ := range a.AllTypes() {
			switch v := typ.(type) {
			case *ClassType:
				if _, err := v.Ancestors(); err != nil {
					errs = append(errs, err)
				}
				if _, err := v.Interfaces(true); err != nil {
					errs = append(errs, err)
				}
				errs = append(errs, t.validateOverrides(v)...)
			case *InterfaceType:
				if _, err := v.Interfaces(true); err != nil {
					errs = append(errs, err)
					continue
				}
				datatype, err := v.Datatype()
				if err != nil {
					errs = append(errs, err)
					continue
				}
				if datatype {
					props, err := v.Properties(true)
					if err != nil {
						errs = append(errs, err)
						continue
					}
					for _, p := range props {
						if !p.Immutable {
							errs = append(errs, Errorf(CodeInvalidType, v.FQN(),
								"datatype interface declares mutable property %q", p.Name))
						}
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}

// validateOverrides checks that every declared override target exists.
// Lookup failures on the FQN itself are already reported elsewhere.
func (t *TypeSystem) validateOverrides(c *ClassType) []error {
	var errs []error
	check := func(member, overrides string) {
		if overrides == "" {
			return
		}
		if _, err := t.FindFQN(overrides); err != nil {
			errs = append(errs, Errorf(CodeInvalidType, c.FQN(),
				"member %q overrides unknown type %q", member, overrides))
		}
	}
	for _, m := range c.methods {
		check(m.Name, m.Overrides)
	}
	for _, p := range c.properties {
		check(p.Name, p.Overrides)
	}
	return errs
}
