package typesystem

import "github.com/crossbind/crossbind/spec"

// Parameter describes one callable parameter.
type Parameter struct {
	Name     string
	Type     *TypeReference
	Optional bool
	Variadic bool
	Docs     *spec.Docs
}

// Method describes a method declared by a class or interface.
type Method struct {
	Name       string
	Parameters []*Parameter
	Returns    *OptionalValue // nil for void methods
	Static     bool
	Abstract   bool
	Protected  bool
	Async      bool

	// Overrides is the FQN of the type whose member this method
	// redeclares, empty if it introduces the member.
	Overrides string

	Docs *spec.Docs
}

// Initializer describes a class constructor.
type Initializer struct {
	Parameters []*Parameter
	Protected  bool
	Docs       *spec.Docs
}

// Property describes a property declared by a class or interface.
type Property struct {
	Name      string
	Type      *TypeReference
	Optional  bool
	Static    bool
	Immutable bool
	Abstract  bool
	Protected bool
	Overrides string
	Docs      *spec.Docs
}

// Callable is the common surface of methods and initializers. The
// validator and call emitters operate on Callables without caring which
// of the two they were handed.
type Callable interface {
	// CallableName returns the member name, or "<init>" for initializers.
	CallableName() string

	// CallableParameters returns the declared parameters in order.
	CallableParameters() []*Parameter
}

func (m *Method) CallableName() string              { return m.Name }
func (m *Method) CallableParameters() []*Parameter  { return m.Parameters }
func (i *Initializer) CallableName() string         { return "<init>" }
func (i *Initializer) CallableParameters() []*Parameter { return i.Parameters }

// Deprecated reports whether the member's docs carry a deprecation.
func (m *Method) Deprecated() bool   { return m.Docs != nil && m.Docs.Deprecated != "" }
func (p *Property) Deprecated() bool { return p.Docs != nil && p.Docs.Deprecated != "" }

func newParameter(ts *TypeSystem, ps *spec.ParameterSpec) (*Parameter, error) {
	ref, err := newTypeReference(ts, ps.Type)
	if err != nil {
		return nil, err
	}
	return &Parameter{
		Name:     ps.Name,
		Type:     ref,
		Optional: ps.Optional,
		Variadic: ps.Variadic,
		Docs:     ps.Docs,
	}, nil
}

func newParameters(ts *TypeSystem, specs []*spec.ParameterSpec) ([]*Parameter, error) {
	params := make([]*Parameter, 0, len(specs))
	for _, ps := range specs {
		p, err := newParameter(ts, ps)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func newMethod(ts *TypeSystem, ms *spec.MethodSpec) (*Method, error) {
	params, err := newParameters(ts, ms.Parameters)
	if err != nil {
		return nil, err
	}
	var returns *OptionalValue
	if ms.Returns != nil {
		ref, err := newTypeReference(ts, ms.Returns.Type)
		if err != nil {
			return nil, err
		}
		returns = &OptionalValue{Type: ref, Optional: ms.Returns.Optional}
	}
	return &Method{
		Name:       ms.Name,
		Parameters: params,
		Returns:    returns,
		Static:     ms.Static,
		Abstract:   ms.Abstract,
		Protected:  ms.Protected,
		Async:      ms.Async,
		Overrides:  ms.Overrides,
		Docs:       ms.Docs,
	}, nil
}

func newInitializer(ts *TypeSystem, is *spec.InitializerSpec) (*Initializer, error) {
	params, err := newParameters(ts, is.Parameters)
	if err != nil {
		return nil, err
	}
	return &Initializer{
		Parameters: params,
		Protected:  is.Protected,
		Docs:       is.Docs,
	}, nil
}

func newProperty(ts *TypeSystem, ps *spec.PropertySpec) (*Property, error) {
	ref, err := newTypeReference(ts, ps.Type)
	if err != nil {
		return nil, err
	}
	return &Property{
		Name:      ps.Name,
		Type:      ref,
		Optional:  ps.Optional,
		Static:    ps.Static,
		Immutable: ps.Immutable,
		Abstract:  ps.Abstract,
		Protected: ps.Protected,
		Overrides: ps.Overrides,
		Docs:      ps.Docs,
	}, nil
}
