package typesystem

import (
	"strings"
	"sync"

	"github.com/crossbind/crossbind/spec"
)

// TypeKind identifies the category of a type.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
)

// String returns the string representation of the type kind.
func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "Class"
	case KindInterface:
		return "Interface"
	case KindEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// Type is the common surface of the three exported type categories.
// The set of implementations is closed: ClassType, InterfaceType, and
// EnumType, so kind dispatch is always an exhaustive type switch.
type Type interface {
	// Kind returns the type's category for type switching.
	Kind() TypeKind

	// FQN returns the fully qualified name (assembly[.namespace].Name).
	FQN() string

	// Name returns the simple type name.
	Name() string

	// Namespace returns the dotted namespace within the assembly,
	// empty for root types.
	Namespace() string

	// Docs returns the type's documentation, or nil.
	Docs() *spec.Docs

	// Assembly returns the owning assembly.
	Assembly() *Assembly

	// Ensure only types in this package can implement Type.
	sealed()
}

// typeBase carries the identity shared by every type, plus the mutex
// guarding per-instance derived caches. Caches are only trusted once the
// owning TypeSystem is locked; concurrent post-lock readers may race to
// compute a cache but every write lands in this instance's private cells
// under mu.
type typeBase struct {
	ts        *TypeSystem
	asm       *Assembly
	fqn       string
	name      string
	namespace string
	docs      *spec.Docs

	mu sync.Mutex
}

func (b *typeBase) FQN() string         { return b.fqn }
func (b *typeBase) Name() string        { return b.name }
func (b *typeBase) Namespace() string   { return b.namespace }
func (b *typeBase) Docs() *spec.Docs    { return b.docs }
func (b *typeBase) Assembly() *Assembly { return b.asm }
func (b *typeBase) sealed()             {}

// assertLocked guards derived-relationship accessors: their memoized
// results are only stable once no further assembly can be loaded.
func (b *typeBase) assertLocked() error {
	if !b.ts.Locked() {
		return Errorf(CodeUnlocked, b.fqn, "type system must be locked before resolving relationships")
	}
	return nil
}

// ClassType represents an exported class.
type ClassType struct {
	typeBase

	// Abstract marks a class that cannot be constructed directly.
	Abstract bool

	baseFQN     string
	ifaceFQNs   []string
	initializer *Initializer
	methods     []*Method
	properties  []*Property

	base         *ClassType
	baseResolved bool
	ancestors    []*ClassType
	ifaceCache   map[bool][]*InterfaceType
	methodCache  map[bool]map[string]*Method
	propCache    map[bool]map[string]*Property
}

// Kind returns KindClass.
func (c *ClassType) Kind() TypeKind { return KindClass }

// Initializer returns the class constructor, or nil if the descriptor
// declared none.
func (c *ClassType) Initializer() *Initializer { return c.initializer }

// OwnMethods returns the methods declared directly on this class, in
// declaration order.
func (c *ClassType) OwnMethods() []*Method { return c.methods }

// OwnProperties returns the properties declared directly on this class,
// in declaration order.
func (c *ClassType) OwnProperties() []*Property { return c.properties }

// BaseFQN returns the declared base class FQN, empty if the class has
// no base.
func (c *ClassType) BaseFQN() string { return c.baseFQN }

// Base resolves the declared base class. It fails if the base FQN is
// unresolved or names a non-class.
func (c *ClassType) Base() (*ClassType, error) {
	if err := c.assertLocked(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseLocked()
}

func (c *ClassType) baseLocked() (*ClassType, error) {
	if c.baseResolved {
		return c.base, nil
	}
	if c.baseFQN == "" {
		c.baseResolved = true
		return nil, nil
	}
	t, err := c.ts.FindFQN(c.baseFQN)
	if err != nil {
		return nil, err
	}
	base, ok := t.(*ClassType)
	if !ok {
		return nil, Errorf(CodeInvalidType, c.fqn, "base %q is a %s, not a class", c.baseFQN, t.Kind())
	}
	c.base = base
	c.baseResolved = true
	return base, nil
}

// Ancestors returns the base class chain: the direct base first, the
// most distant ancestor last. The result never contains the receiver.
func (c *ClassType) Ancestors() ([]*ClassType, error) {
	if err := c.assertLocked(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.ancestors != nil {
		defer c.mu.Unlock()
		return c.ancestors, nil
	}
	c.mu.Unlock()

	seen := map[string]bool{c.fqn: true}
	chain := []*ClassType{}
	cur := c
	for {
		base, err := cur.Base()
		if err != nil {
			return nil, err
		}
		if base == nil {
			break
		}
		if seen[base.fqn] {
			return nil, Errorf(CodeInvalidType, c.fqn, "inheritance cycle through %q", base.fqn)
		}
		seen[base.fqn] = true
		chain = append(chain, base)
		cur = base
	}

	c.mu.Lock()
	c.ancestors = chain
	c.mu.Unlock()
	return chain, nil
}

// Interfaces returns the interfaces this class implements. When
// inherited is true the result also contains the transitive interfaces
// of each declared interface, deduplicated by FQN; the two variants are
// cached independently.
func (c *ClassType) Interfaces(inherited bool) ([]*InterfaceType, error) {
	if err := c.assertLocked(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	if cached, ok := c.ifaceCache[inherited]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	result, err := resolveInterfaces(c.ts, c.fqn, c.ifaceFQNs, inherited)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.ifaceCache == nil {
		c.ifaceCache = make(map[bool][]*InterfaceType, 2)
	}
	c.ifaceCache[inherited] = result
	c.mu.Unlock()
	return result, nil
}

// Methods returns the class's methods keyed by name. When inherited is
// true the map is seeded from the base's resolved methods and then
// overwritten with this class's own declarations, so a redeclaration
// always wins.
func (c *ClassType) Methods(inherited bool) (map[string]*Method, error) {
	if err := c.assertLocked(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	if cached, ok := c.methodCache[inherited]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	result := make(map[string]*Method)
	if inherited {
		base, err := c.Base()
		if err != nil {
			return nil, err
		}
		if base != nil {
			baseMethods, err := base.Methods(true)
			if err != nil {
				return nil, err
			}
			for name, m := range baseMethods {
				result[name] = m
			}
		}
	}
	for _, m := range c.methods {
		result[m.Name] = m
	}

	c.mu.Lock()
	if c.methodCache == nil {
		c.methodCache = make(map[bool]map[string]*Method, 2)
	}
	c.methodCache[inherited] = result
	c.mu.Unlock()
	return result, nil
}

// Properties returns the class's properties keyed by name, with the
// same seeding rule as Methods.
func (c *ClassType) Properties(inherited bool) (map[string]*Property, error) {
	if err := c.assertLocked(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	if cached, ok := c.propCache[inherited]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	result := make(map[string]*Property)
	if inherited {
		base, err := c.Base()
		if err != nil {
			return nil, err
		}
		if base != nil {
			baseProps, err := base.Properties(true)
			if err != nil {
				return nil, err
			}
			for name, p := range baseProps {
				result[name] = p
			}
		}
	}
	for _, p := range c.properties {
		result[p.Name] = p
	}

	c.mu.Lock()
	if c.propCache == nil {
		c.propCache = make(map[bool]map[string]*Property, 2)
	}
	c.propCache[inherited] = result
	c.mu.Unlock()
	return result, nil
}

// InterfaceType represents an exported interface.
type InterfaceType struct {
	typeBase

	extendsFQNs []string
	methods     []*Method
	properties  []*Property

	ifaceCache  map[bool][]*InterfaceType
	methodCache map[bool]map[string]*Method
	propCache   map[bool]map[string]*Property
}

// Kind returns KindInterface.
func (i *InterfaceType) Kind() TypeKind { return KindInterface }

// OwnMethods returns the methods declared directly on this interface.
func (i *InterfaceType) OwnMethods() []*Method { return i.methods }

// OwnProperties returns the properties declared directly on this interface.
func (i *InterfaceType) OwnProperties() []*Property { return i.properties }

// Interfaces returns the interfaces this one extends; see
// ClassType.Interfaces for the inherited semantics.
func (i *InterfaceType) Interfaces(inherited bool) ([]*InterfaceType, error) {
	if err := i.assertLocked(); err != nil {
		return nil, err
	}
	i.mu.Lock()
	if cached, ok := i.ifaceCache[inherited]; ok {
		i.mu.Unlock()
		return cached, nil
	}
	i.mu.Unlock()

	result, err := resolveInterfaces(i.ts, i.fqn, i.extendsFQNs, inherited)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	if i.ifaceCache == nil {
		i.ifaceCache = make(map[bool][]*InterfaceType, 2)
	}
	i.ifaceCache[inherited] = result
	i.mu.Unlock()
	return result, nil
}

// Methods returns the interface's methods keyed by name; when inherited
// is true the map is seeded from each extended interface in declaration
// order, then overwritten with this interface's own declarations.
func (i *InterfaceType) Methods(inherited bool) (map[string]*Method, error) {
	if err := i.assertLocked(); err != nil {
		return nil, err
	}
	i.mu.Lock()
	if cached, ok := i.methodCache[inherited]; ok {
		i.mu.Unlock()
		return cached, nil
	}
	i.mu.Unlock()

	result := make(map[string]*Method)
	if inherited {
		extends, err := i.Interfaces(false)
		if err != nil {
			return nil, err
		}
		for _, ext := range extends {
			extMethods, err := ext.Methods(true)
			if err != nil {
				return nil, err
			}
			for name, m := range extMethods {
				result[name] = m
			}
		}
	}
	for _, m := range i.methods {
		result[m.Name] = m
	}

	i.mu.Lock()
	if i.methodCache == nil {
		i.methodCache = make(map[bool]map[string]*Method, 2)
	}
	i.methodCache[inherited] = result
	i.mu.Unlock()
	return result, nil
}

// Properties returns the interface's properties keyed by name, with the
// same seeding rule as Methods.
func (i *InterfaceType) Properties(inherited bool) (map[string]*Property, error) {
	if err := i.assertLocked(); err != nil {
		return nil, err
	}
	i.mu.Lock()
	if cached, ok := i.propCache[inherited]; ok {
		i.mu.Unlock()
		return cached, nil
	}
	i.mu.Unlock()

	result := make(map[string]*Property)
	if inherited {
		extends, err := i.Interfaces(false)
		if err != nil {
			return nil, err
		}
		for _, ext := range extends {
			extProps, err := ext.Properties(true)
			if err != nil {
				return nil, err
			}
			for name, p := range extProps {
				result[name] = p
			}
		}
	}
	for _, p := range i.properties {
		result[p.Name] = p
	}

	i.mu.Lock()
	if i.propCache == nil {
		i.propCache = make(map[bool]map[string]*Property, 2)
	}
	i.propCache[inherited] = result
	i.mu.Unlock()
	return result, nil
}

// Datatype reports whether the interface is a struct-shaped data record:
// no methods anywhere on its inherited surface. Derived structurally,
// never stored.
func (i *InterfaceType) Datatype() (bool, error) {
	methods, err := i.Methods(true)
	if err != nil {
		return false, err
	}
	return len(methods) == 0, nil
}

// EnumMember represents a single enum member.
type EnumMember struct {
	Name string
	Docs *spec.Docs
}

// EnumType represents an exported enum.
type EnumType struct {
	typeBase

	members []EnumMember
}

// Kind returns KindEnum.
func (e *EnumType) Kind() TypeKind { return KindEnum }

// Members returns the enum members in declaration order.
func (e *EnumType) Members() []EnumMember { return e.members }

// resolveInterfaces resolves a list of interface FQNs; with inherited it
// unions in the transitive interfaces of each, deduplicated by FQN in
// depth-first declaration order.
func resolveInterfaces(ts *TypeSystem, owner string, fqns []string, inherited bool) ([]*InterfaceType, error) {
	var result []*InterfaceType
	seen := make(map[string]bool)

	var add func(fqn string) error
	add = func(fqn string) error {
		if seen[fqn] {
			return nil
		}
		t, err := ts.FindFQN(fqn)
		if err != nil {
			return err
		}
		iface, ok := t.(*InterfaceType)
		if !ok {
			return Errorf(CodeInvalidType, owner, "interface reference %q is a %s, not an interface", fqn, t.Kind())
		}
		seen[fqn] = true
		result = append(result, iface)
		if inherited {
			for _, ext := range iface.extendsFQNs {
				if err := add(ext); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, fqn := range fqns {
		if err := add(fqn); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// newType builds one Type from its descriptor form. The simple name and
// namespace default to what the FQN implies for the owning assembly.
func newType(ts *TypeSystem, asm *Assembly, fqn string, tspec *spec.TypeSpec) (Type, error) {
	name := tspec.Name
	namespace := tspec.Namespace
	if name == "" || namespace == "" {
		derivedName, derivedNS := splitFQN(fqn, asm.Name())
		if name == "" {
			name = derivedName
		}
		if namespace == "" {
			namespace = derivedNS
		}
	}
	base := typeBase{
		ts:        ts,
		asm:       asm,
		fqn:       fqn,
		name:      name,
		namespace: namespace,
		docs:      tspec.Docs,
	}

	switch tspec.Kind {
	case spec.KindClass:
		c := &ClassType{
			typeBase:  base,
			Abstract:  tspec.Abstract,
			baseFQN:   tspec.Base,
			ifaceFQNs: tspec.Interfaces,
		}
		if tspec.Initializer != nil {
			init, err := newInitializer(ts, tspec.Initializer)
			if err != nil {
				return nil, err
			}
			c.initializer = init
		}
		for _, ms := range tspec.Methods {
			m, err := newMethod(ts, ms)
			if err != nil {
				return nil, err
			}
			c.methods = append(c.methods, m)
		}
		for _, ps := range tspec.Properties {
			p, err := newProperty(ts, ps)
			if err != nil {
				return nil, err
			}
			c.properties = append(c.properties, p)
		}
		return c, nil

	case spec.KindInterface:
		i := &InterfaceType{
			typeBase:    base,
			extendsFQNs: tspec.Interfaces,
		}
		for _, ms := range tspec.Methods {
			m, err := newMethod(ts, ms)
			if err != nil {
				return nil, err
			}
			i.methods = append(i.methods, m)
		}
		for _, ps := range tspec.Properties {
			p, err := newProperty(ts, ps)
			if err != nil {
				return nil, err
			}
			i.properties = append(i.properties, p)
		}
		return i, nil

	case spec.KindEnum:
		e := &EnumType{typeBase: base}
		for _, ms := range tspec.Members {
			e.members = append(e.members, EnumMember{Name: ms.Name, Docs: ms.Docs})
		}
		return e, nil

	default:
		return nil, Errorf(CodeMalformedSpec, fqn, "unknown type kind %q", tspec.Kind)
	}
}

// splitFQN derives the simple name and namespace from an FQN owned by
// the named assembly: "asm.ns1.ns2.Name" yields ("Name", "ns1.ns2").
func splitFQN(fqn, assembly string) (name, namespace string) {
	rest := strings.TrimPrefix(fqn, assembly+".")
	if idx := strings.LastIndex(rest, "."); idx >= 0 {
		return rest[idx+1:], rest[:idx]
	}
	return rest, ""
}
