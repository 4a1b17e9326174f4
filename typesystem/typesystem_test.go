package typesystem

import (
	"strings"
	"testing"

	"github.com/crossbind/crossbind/spec"
)

func classSpec(base string) *spec.TypeSpec {
	return &spec.TypeSpec{Kind: spec.KindClass, Base: base}
}

func loadChain(t *testing.T) *TypeSystem {
	t.Helper()
	ts := New()
	_, err := ts.Load(&spec.Assembly{
		Name:    "pkgA",
		Version: "1.0.0",
		Types: map[string]*spec.TypeSpec{
			"pkgA.C": classSpec(""),
			"pkgA.B": classSpec("pkgA.C"),
			"pkgA.A": classSpec("pkgA.B"),
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := ts.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	return ts
}

func TestAncestors_Chain(t *testing.T) {
	ts := loadChain(t)

	a, err := ts.FindClass("pkgA.A")
	if err != nil {
		t.Fatalf("FindClass() error = %v", err)
	}
	ancestors, err := a.Ancestors()
	if err != nil {
		t.Fatalf("Ancestors() error = %v", err)
	}

	got := make([]string, len(ancestors))
	for i, c := range ancestors {
		got[i] = c.FQN()
	}
	want := []string{"pkgA.B", "pkgA.C"}
	if len(got) != len(want) {
		t.Fatalf("Ancestors() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ancestors()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Never contains the receiver, never duplicates.
	seen := map[string]bool{}
	for _, c := range ancestors {
		if c.FQN() == a.FQN() {
			t.Errorf("Ancestors() contains the receiver")
		}
		if seen[c.FQN()] {
			t.Errorf("Ancestors() contains duplicate %q", c.FQN())
		}
		seen[c.FQN()] = true
	}
}

func TestAncestors_Cycle(t *testing.T) {
	ts := New()
	_, err := ts.Load(&spec.Assembly{
		Name:    "pkgA",
		Version: "1.0.0",
		Types: map[string]*spec.TypeSpec{
			"pkgA.X": classSpec("pkgA.Y"),
			"pkgA.Y": classSpec("pkgA.X"),
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	err = ts.Lock()
	if err == nil {
		t.Fatal("Lock() succeeded, want inheritance cycle error")
	}
	if !strings.Contains(err.Error(), "inheritance cycle") {
		t.Errorf("Lock() error = %v, want inheritance cycle", err)
	}
}

func TestLoad_ConflictAndReuse(t *testing.T) {
	ts := New()
	doc := &spec.Assembly{Name: "pkgA", Version: "1.0.0"}
	first, err := ts.Load(doc)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Same name and version: reuse.
	again, err := ts.Load(&spec.Assembly{Name: "pkgA", Version: "1.0.0"})
	if err != nil {
		t.Fatalf("Load() same version error = %v", err)
	}
	if again != first {
		t.Errorf("Load() same version returned a new assembly")
	}

	// Same name, different version: conflict.
	_, err = ts.Load(&spec.Assembly{Name: "pkgA", Version: "2.0.0"})
	if !IsConflict(err) {
		t.Errorf("Load() different version error = %v, want conflict", err)
	}
}

func TestLoad_AfterLock(t *testing.T) {
	ts := New()
	if err := ts.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	// Idempotent.
	if err := ts.Lock(); err != nil {
		t.Fatalf("second Lock() error = %v", err)
	}
	_, err := ts.Load(&spec.Assembly{Name: "pkgA", Version: "1.0.0"})
	if !IsLocked(err) {
		t.Errorf("Load() after Lock error = %v, want locked", err)
	}
}

func TestFindFQN_NotFound(t *testing.T) {
	ts := New()
	_, err := ts.FindFQN("pkgA.Missing")
	if !IsNotFound(err) {
		t.Errorf("FindFQN() error = %v, want not_found", err)
	}
}

func TestEndToEnd_AnimalDog(t *testing.T) {
	ts := New()
	_, err := ts.Load(&spec.Assembly{
		Name:    "pkgA",
		Version: "1.0.0",
		Types: map[string]*spec.TypeSpec{
			"pkgA.Animal": {Kind: spec.KindClass},
			"pkgA.Dog":    {Kind: spec.KindClass, Base: "pkgA.Animal"},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := ts.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	typ, err := ts.FindFQN("pkgA.Dog")
	if err != nil {
		t.Fatalf("FindFQN() error = %v", err)
	}
	if typ.Kind() != KindClass {
		t.Errorf("Kind() = %v, want Class", typ.Kind())
	}
	dog := typ.(*ClassType)
	ancestors, err := dog.Ancestors()
	if err != nil {
		t.Fatalf("Ancestors() error = %v", err)
	}
	if len(ancestors) != 1 || ancestors[0].FQN() != "pkgA.Animal" {
		t.Errorf("Ancestors() = %v, want [pkgA.Animal]", ancestors)
	}
}

func TestBase_NonClass(t *testing.T) {
	ts := New()
	_, err := ts.Load(&spec.Assembly{
		Name:    "pkgA",
		Version: "1.0.0",
		Types: map[string]*spec.TypeSpec{
			"pkgA.IShape": {Kind: spec.KindInterface},
			"pkgA.Circle": {Kind: spec.KindClass, Base: "pkgA.IShape"},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	err = ts.Lock()
	if !IsInvalidType(err) {
		t.Errorf("Lock() error = %v, want invalid_type", err)
	}
}

func TestInterfaces_InheritedIdempotent(t *testing.T) {
	ts := New()
	_, err := ts.Load(&spec.Assembly{
		Name:    "pkgA",
		Version: "1.0.0",
		Types: map[string]*spec.TypeSpec{
			"pkgA.IBase":  {Kind: spec.KindInterface},
			"pkgA.IChild": {Kind: spec.KindInterface, Interfaces: []string{"pkgA.IBase"}},
			"pkgA.Widget": {Kind: spec.KindClass, Interfaces: []string{"pkgA.IChild"}},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := ts.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	w, err := ts.FindClass("pkgA.Widget")
	if err != nil {
		t.Fatalf("FindClass() error = %v", err)
	}

	first, err := w.Interfaces(true)
	if err != nil {
		t.Fatalf("Interfaces(true) error = %v", err)
	}
	second, err := w.Interfaces(true)
	if err != nil {
		t.Fatalf("Interfaces(true) second call error = %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("Interfaces(true) = %d entries, want 2 (IChild, IBase)", len(first))
	}
	if len(first) != len(second) {
		t.Fatalf("Interfaces(true) not idempotent: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Interfaces(true)[%d] differs across calls", i)
		}
	}

	direct, err := w.Interfaces(false)
	if err != nil {
		t.Fatalf("Interfaces(false) error = %v", err)
	}
	if len(direct) != 1 || direct[0].FQN() != "pkgA.IChild" {
		t.Errorf("Interfaces(false) = %v, want [pkgA.IChild]", direct)
	}
}

func TestMethods_SubclassRedeclarationWins(t *testing.T) {
	ret := &spec.OptionalValueSpec{Type: &spec.TypeRefSpec{Primitive: spec.PrimitiveString}}
	ts := New()
	_, err := ts.Load(&spec.Assembly{
		Name:    "pkgA",
		Version: "1.0.0",
		Types: map[string]*spec.TypeSpec{
			"pkgA.Animal": {
				Kind: spec.KindClass,
				Methods: []*spec.MethodSpec{
					{Name: "speak", Returns: ret},
					{Name: "eat"},
				},
			},
			"pkgA.Dog": {
				Kind: spec.KindClass,
				Base: "pkgA.Animal",
				Methods: []*spec.MethodSpec{
					{Name: "speak", Returns: ret, Overrides: "pkgA.Animal"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := ts.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	dog, err := ts.FindClass("pkgA.Dog")
	if err != nil {
		t.Fatalf("FindClass() error = %v", err)
	}

	own, err := dog.Methods(false)
	if err != nil {
		t.Fatalf("Methods(false) error = %v", err)
	}
	if len(own) != 1 {
		t.Errorf("Methods(false) = %d entries, want 1", len(own))
	}

	all, err := dog.Methods(true)
	if err != nil {
		t.Fatalf("Methods(true) error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Methods(true) = %d entries, want 2", len(all))
	}
	if all["speak"].Overrides != "pkgA.Animal" {
		t.Errorf("speak not overwritten by the subclass redeclaration")
	}
}

func TestDatatype_Derivation(t *testing.T) {
	num := &spec.TypeRefSpec{Primitive: spec.PrimitiveNumber}
	ts := New()
	_, err := ts.Load(&spec.Assembly{
		Name:    "pkgA",
		Version: "1.0.0",
		Types: map[string]*spec.TypeSpec{
			"pkgA.Point": {
				Kind: spec.KindInterface,
				Properties: []*spec.PropertySpec{
					{Name: "x", Type: num, Immutable: true},
					{Name: "y", Type: num, Immutable: true},
				},
			},
			"pkgA.IMovable": {
				Kind:    spec.KindInterface,
				Methods: []*spec.MethodSpec{{Name: "move"}},
			},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := ts.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	point, _ := ts.FindInterface("pkgA.Point")
	if dt, err := point.Datatype(); err != nil || !dt {
		t.Errorf("Point.Datatype() = (%v, %v), want (true, nil)", dt, err)
	}
	movable, _ := ts.FindInterface("pkgA.IMovable")
	if dt, err := movable.Datatype(); err != nil || dt {
		t.Errorf("IMovable.Datatype() = (%v, %v), want (false, nil)", dt, err)
	}
}

func TestLock_MutableDatatypeProperty(t *testing.T) {
	num := &spec.TypeRefSpec{Primitive: spec.PrimitiveNumber}
	ts := New()
	_, err := ts.Load(&spec.Assembly{
		Name:    "pkgA",
		Version: "1.0.0",
		Types: map[string]*spec.TypeSpec{
			"pkgA.Point": {
				Kind: spec.KindInterface,
				Properties: []*spec.PropertySpec{
					{Name: "x", Type: num},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	err = ts.Lock()
	if err == nil || !strings.Contains(err.Error(), "mutable property") {
		t.Errorf("Lock() error = %v, want mutable datatype property", err)
	}
}

func TestDerivedAccess_BeforeLock(t *testing.T) {
	ts := New()
	_, err := ts.Load(&spec.Assembly{
		Name:    "pkgA",
		Version: "1.0.0",
		Types:   map[string]*spec.TypeSpec{"pkgA.X": {Kind: spec.KindClass}},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	c, err := ts.FindClass("pkgA.X")
	if err != nil {
		t.Fatalf("FindClass() error = %v", err)
	}
	if _, err := c.Ancestors(); !codeIs(err, CodeUnlocked) {
		t.Errorf("Ancestors() before Lock error = %v, want unlocked", err)
	}
}

func TestLoadWithDependencies(t *testing.T) {
	depDoc := &spec.Assembly{
		Name:    "base",
		Version: "1.2.0",
		Types:   map[string]*spec.TypeSpec{"base.Root": {Kind: spec.KindClass}},
	}
	mainDoc := &spec.Assembly{
		Name:         "app",
		Version:      "0.1.0",
		Dependencies: map[string]string{"base": ">=1.0.0 <2.0.0"},
		Types: map[string]*spec.TypeSpec{
			"app.Thing": {Kind: spec.KindClass, Base: "base.Root"},
		},
	}

	resolver := ResolverFunc(func(name string) (*spec.Assembly, error) {
		if name == "base" {
			return depDoc, nil
		}
		return nil, Errorf(CodeNotFound, name, "unknown")
	})

	ts := New()
	if _, err := ts.LoadWithDependencies(mainDoc, resolver); err != nil {
		t.Fatalf("LoadWithDependencies() error = %v", err)
	}
	if err := ts.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	thing, err := ts.FindClass("app.Thing")
	if err != nil {
		t.Fatalf("FindClass() error = %v", err)
	}
	ancestors, err := thing.Ancestors()
	if err != nil {
		t.Fatalf("Ancestors() error = %v", err)
	}
	if len(ancestors) != 1 || ancestors[0].FQN() != "base.Root" {
		t.Errorf("Ancestors() = %v, want [base.Root]", ancestors)
	}

	app, _ := ts.FindAssembly("app")
	deps, err := app.Dependencies()
	if err != nil {
		t.Fatalf("Dependencies() error = %v", err)
	}
	if len(deps) != 1 || deps[0].Name() != "base" {
		t.Errorf("Dependencies() = %v, want [base]", deps)
	}
}

func TestLoadWithDependencies_RangeViolation(t *testing.T) {
	depDoc := &spec.Assembly{Name: "base", Version: "3.0.0"}
	mainDoc := &spec.Assembly{
		Name:         "app",
		Version:      "0.1.0",
		Dependencies: map[string]string{"base": ">=1.0.0 <2.0.0"},
	}
	resolver := ResolverFunc(func(name string) (*spec.Assembly, error) { return depDoc, nil })

	ts := New()
	_, err := ts.LoadWithDependencies(mainDoc, resolver)
	if !IsConflict(err) {
		t.Errorf("LoadWithDependencies() error = %v, want conflict", err)
	}
}

func TestSubmodulePartition(t *testing.T) {
	ts := New()
	a, err := ts.Load(&spec.Assembly{
		Name:    "pkgA",
		Version: "1.0.0",
		Types: map[string]*spec.TypeSpec{
			"pkgA.Root":          {Kind: spec.KindClass},
			"pkgA.sub.Leaf":      {Kind: spec.KindClass},
			"pkgA.sub.deep.Tiny": {Kind: spec.KindClass},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	roots := a.Types()
	if len(roots) != 1 || roots[0].FQN() != "pkgA.Root" {
		t.Errorf("Types() = %v, want [pkgA.Root]", roots)
	}

	subs := a.Submodules()
	if len(subs) != 1 || subs[0].FQN() != "pkgA.sub" {
		t.Fatalf("Submodules() = %v, want [pkgA.sub]", subs)
	}
	sub := subs[0]
	if len(sub.Types()) != 1 || sub.Types()[0].FQN() != "pkgA.sub.Leaf" {
		t.Errorf("sub.Types() = %v, want [pkgA.sub.Leaf]", sub.Types())
	}
	if len(sub.Submodules()) != 1 || sub.Submodules()[0].FQN() != "pkgA.sub.deep" {
		t.Fatalf("sub.Submodules() = %v, want [pkgA.sub.deep]", sub.Submodules())
	}
	deep := sub.Submodules()[0]
	if len(deep.Types()) != 1 || deep.Types()[0].FQN() != "pkgA.sub.deep.Tiny" {
		t.Errorf("deep.Types() = %v, want [pkgA.sub.deep.Tiny]", deep.Types())
	}
}
