// Package spec defines the assembly descriptor document model.
// A descriptor is a self-contained JSON document describing the exported
// type surface of one package: its classes, interfaces, enums, their
// members, and the type references that connect them. Descriptors are
// produced by an upstream front-end; this package only consumes them.
package spec

// TypeKind discriminates the three categories of exported types.
type TypeKind string

const (
	KindClass     TypeKind = "class"
	KindInterface TypeKind = "interface"
	KindEnum      TypeKind = "enum"
)

// CollectionKind discriminates collection type references.
type CollectionKind string

const (
	CollectionArray CollectionKind = "array"
	CollectionMap   CollectionKind = "map"
)

// PrimitiveType names a built-in primitive.
type PrimitiveType string

const (
	PrimitiveString  PrimitiveType = "string"
	PrimitiveNumber  PrimitiveType = "number"
	PrimitiveBoolean PrimitiveType = "boolean"
	PrimitiveDate    PrimitiveType = "date"
	PrimitiveJSON    PrimitiveType = "json"
	PrimitiveAny     PrimitiveType = "any"
)

// Assembly is the root of a descriptor document.
type Assembly struct {
	// Name is the assembly name. It is the unique key within a type
	// system and the leading segment of every FQN the assembly owns.
	Name string `json:"name" validate:"required"`

	// Version is the assembly version, a semver string.
	Version string `json:"version" validate:"required,semver"`

	// Dependencies maps dependency assembly names to the semver range
	// this assembly was built against.
	Dependencies map[string]string `json:"dependencies,omitempty"`

	// Types maps FQN (assembly[.namespace].Name) to the type's spec.
	Types map[string]*TypeSpec `json:"types,omitempty" validate:"dive"`

	// Submodules maps submodule FQNs to their specs.
	Submodules map[string]*SubmoduleSpec `json:"submodules,omitempty"`

	// Docs holds assembly-level documentation.
	Docs *Docs `json:"docs,omitempty"`
}

// SubmoduleSpec describes a nested namespace within an assembly.
type SubmoduleSpec struct {
	// Docs holds submodule-level documentation.
	Docs *Docs `json:"docs,omitempty"`
}

// TypeSpec describes one exported type.
//
// The type's FQN is the key under Assembly.Types; Name and Namespace are
// optional and derived from the FQN when absent.
type TypeSpec struct {
	Kind TypeKind `json:"kind" validate:"required,oneof=class interface enum"`

	// Name is the simple type name. Derived from the FQN key if empty.
	Name string `json:"name,omitempty"`

	// Namespace is the dotted namespace path within the assembly,
	// without the assembly name prefix. Derived from the FQN key if empty.
	Namespace string `json:"namespace,omitempty"`

	// Base is the FQN of the base class. Classes only.
	Base string `json:"base,omitempty"`

	// Interfaces lists the FQNs of implemented (class) or extended
	// (interface) interfaces.
	Interfaces []string `json:"interfaces,omitempty"`

	// Abstract marks a class that cannot be constructed directly.
	Abstract bool `json:"abstract,omitempty"`

	// Datatype marks an interface as a struct-shaped data record:
	// read-only properties only, no methods.
	Datatype bool `json:"datatype,omitempty"`

	// Initializer is the class constructor. Classes only.
	Initializer *InitializerSpec `json:"initializer,omitempty"`

	// Methods lists the type's own (non-inherited) methods.
	Methods []*MethodSpec `json:"methods,omitempty" validate:"dive"`

	// Properties lists the type's own (non-inherited) properties.
	Properties []*PropertySpec `json:"properties,omitempty" validate:"dive"`

	// Members lists enum members, in declaration order. Enums only.
	Members []*EnumMemberSpec `json:"members,omitempty" validate:"dive"`

	Docs *Docs `json:"docs,omitempty"`
}

// InitializerSpec describes a class constructor.
type InitializerSpec struct {
	Parameters []*ParameterSpec `json:"parameters,omitempty" validate:"dive"`
	Protected  bool             `json:"protected,omitempty"`
	Docs       *Docs            `json:"docs,omitempty"`
}

// MethodSpec describes a method.
type MethodSpec struct {
	Name       string             `json:"name" validate:"required"`
	Parameters []*ParameterSpec   `json:"parameters,omitempty" validate:"dive"`
	Returns    *OptionalValueSpec `json:"returns,omitempty"`
	Static     bool               `json:"static,omitempty"`
	Abstract   bool               `json:"abstract,omitempty"`
	Protected  bool               `json:"protected,omitempty"`
	Async      bool               `json:"async,omitempty"`

	// Overrides is the FQN of the type that declares the member this
	// method redeclares, if any.
	Overrides string `json:"overrides,omitempty"`

	Docs *Docs `json:"docs,omitempty"`
}

// PropertySpec describes a property.
type PropertySpec struct {
	Name      string       `json:"name" validate:"required"`
	Type      *TypeRefSpec `json:"type" validate:"required"`
	Optional  bool         `json:"optional,omitempty"`
	Static    bool         `json:"static,omitempty"`
	Immutable bool         `json:"immutable,omitempty"`
	Abstract  bool         `json:"abstract,omitempty"`
	Protected bool         `json:"protected,omitempty"`
	Overrides string       `json:"overrides,omitempty"`
	Docs      *Docs        `json:"docs,omitempty"`
}

// ParameterSpec describes a callable parameter.
type ParameterSpec struct {
	Name     string       `json:"name" validate:"required"`
	Type     *TypeRefSpec `json:"type" validate:"required"`
	Optional bool         `json:"optional,omitempty"`
	Variadic bool         `json:"variadic,omitempty"`
	Docs     *Docs        `json:"docs,omitempty"`
}

// OptionalValueSpec pairs a type reference with optionality. Used for
// method return values; a nil OptionalValueSpec means void.
type OptionalValueSpec struct {
	Type     *TypeRefSpec `json:"type" validate:"required"`
	Optional bool         `json:"optional,omitempty"`
}

// TypeRefSpec is a type reference. Exactly one of Primitive, FQN,
// Collection, or Union must be set.
type TypeRefSpec struct {
	// Primitive names a built-in primitive type.
	Primitive PrimitiveType `json:"primitive,omitempty" validate:"omitempty,oneof=string number boolean date json any"`

	// FQN references a named type (class, interface, or enum).
	FQN string `json:"fqn,omitempty"`

	// Collection describes an array or map reference.
	Collection *CollectionSpec `json:"collection,omitempty"`

	// Union describes a union of type references.
	Union *UnionSpec `json:"union,omitempty"`
}

// CollectionSpec describes an array or map type reference.
type CollectionSpec struct {
	Kind CollectionKind `json:"kind" validate:"required,oneof=array map"`

	// ElementType is the array element type or map value type. Map keys
	// are always strings.
	ElementType *TypeRefSpec `json:"elementtype" validate:"required"`
}

// UnionSpec describes a union of type references.
type UnionSpec struct {
	// Types lists the union members, in declaration order.
	// Must contain at least two entries.
	Types []*TypeRefSpec `json:"types" validate:"required,min=2"`
}

// EnumMemberSpec describes a single enum member.
type EnumMemberSpec struct {
	Name string `json:"name" validate:"required"`
	Docs *Docs  `json:"docs,omitempty"`
}

// Docs holds documentation attached to a descriptor entity.
type Docs struct {
	// Summary is the first sentence, suitable for brief descriptions.
	Summary string `json:"summary,omitempty"`

	// Remarks is the remaining documentation body.
	Remarks string `json:"remarks,omitempty"`

	// Deprecated is non-empty if the entity is deprecated; the value is
	// the deprecation message.
	Deprecated string `json:"deprecated,omitempty"`

	// Stability is the API maturity marker, e.g. "stable" or
	// "experimental". Informational only.
	Stability string `json:"stability,omitempty" validate:"omitempty,oneof=deprecated experimental stable external"`
}

// IsZero returns true if the docs carry no content.
func (d *Docs) IsZero() bool {
	return d == nil || (d.Summary == "" && d.Remarks == "" && d.Deprecated == "" && d.Stability == "")
}
