package spec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError describes one structural problem in a descriptor.
type ValidationError struct {
	// Code is a machine-readable error identifier.
	Code string

	// Path locates the offending entity (FQN, or FQN.member).
	Path string

	// Message is a human-readable description.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Decode reads and validates an assembly descriptor from r.
func Decode(r io.Reader) (*Assembly, error) {
	dec := json.NewDecoder(r)
	var doc Assembly
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed descriptor: %w", err)
	}
	if errs := doc.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("malformed descriptor for %q: %w", doc.Name, errors.Join(errs...))
	}
	return &doc, nil
}

// Load reads and validates an assembly descriptor from a file.
func Load(path string) (*Assembly, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open descriptor: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Validate checks the descriptor for structural issues and returns all
// problems found, not just the first. A nil result means the descriptor
// is well-formed.
func (a *Assembly) Validate() []error {
	var errs []error

	if err := validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, &ValidationError{
					Code:    "invalid_field",
					Path:    fe.Namespace(),
					Message: fmt.Sprintf("failed %q validation", fe.Tag()),
				})
			}
		} else {
			errs = append(errs, err)
		}
	}

	for fqn, ts := range a.Types {
		if ts == nil {
			errs = append(errs, &ValidationError{Code: "missing_type", Path: fqn, Message: "type spec is null"})
			continue
		}
		errs = append(errs, a.validateType(fqn, ts)...)
	}

	return errs
}

func (a *Assembly) validateType(fqn string, ts *TypeSpec) []error {
	var errs []error

	if a.Name != "" && fqn != a.Name && !strings.HasPrefix(fqn, a.Name+".") {
		errs = append(errs, &ValidationError{
			Code:    "foreign_fqn",
			Path:    fqn,
			Message: fmt.Sprintf("FQN is not rooted in assembly %q", a.Name),
		})
	}

	switch ts.Kind {
	case KindClass:
		if len(ts.Members) > 0 {
			errs = append(errs, &ValidationError{Code: "unexpected_members", Path: fqn, Message: "enum members on a class"})
		}
	case KindInterface:
		if ts.Base != "" {
			errs = append(errs, &ValidationError{Code: "unexpected_base", Path: fqn, Message: "base class on an interface"})
		}
		if ts.Initializer != nil {
			errs = append(errs, &ValidationError{Code: "unexpected_initializer", Path: fqn, Message: "initializer on an interface"})
		}
		if len(ts.Members) > 0 {
			errs = append(errs, &ValidationError{Code: "unexpected_members", Path: fqn, Message: "enum members on an interface"})
		}
		if ts.Datatype {
			for _, p := range ts.Properties {
				if p != nil && !p.Immutable {
					errs = append(errs, &ValidationError{
						Code:    "mutable_datatype_property",
						Path:    fqn + "." + p.Name,
						Message: "datatype interfaces may only declare read-only properties",
					})
				}
			}
			if len(ts.Methods) > 0 {
				errs = append(errs, &ValidationError{
					Code:    "datatype_method",
					Path:    fqn,
					Message: "datatype interfaces may not declare methods",
				})
			}
		}
	case KindEnum:
		if ts.Base != "" || len(ts.Interfaces) > 0 || ts.Initializer != nil ||
			len(ts.Methods) > 0 || len(ts.Properties) > 0 {
			errs = append(errs, &ValidationError{Code: "invalid_enum", Path: fqn, Message: "enums carry members only"})
		}
		if len(ts.Members) == 0 {
			errs = append(errs, &ValidationError{Code: "empty_enum", Path: fqn, Message: "enum declares no members"})
		}
	}

	if ts.Initializer != nil {
		errs = append(errs, validateParameters(fqn+".<init>", ts.Initializer.Parameters)...)
	}
	for _, m := range ts.Methods {
		if m == nil {
			continue
		}
		errs = append(errs, validateParameters(fqn+"."+m.Name, m.Parameters)...)
		if m.Returns != nil {
			errs = append(errs, validateRef(fqn+"."+m.Name, m.Returns.Type)...)
		}
	}
	for _, p := range ts.Properties {
		if p == nil {
			continue
		}
		errs = append(errs, validateRef(fqn+"."+p.Name, p.Type)...)
	}

	return errs
}

// validateRef checks that exactly one type-reference discriminator is
// set, recursing into collections and unions.
func validateRef(path string, ref *TypeRefSpec) []error {
	if ref == nil {
		return nil
	}
	var errs []error
	set := 0
	if ref.Primitive != "" {
		set++
	}
	if ref.FQN != "" {
		set++
	}
	if ref.Collection != nil {
		set++
		if ref.Collection.ElementType != nil {
			errs = append(errs, validateRef(path, ref.Collection.ElementType)...)
		}
	}
	if ref.Union != nil {
		set++
		for _, m := range ref.Union.Types {
			errs = append(errs, validateRef(path, m)...)
		}
	}
	if set != 1 {
		errs = append(errs, &ValidationError{
			Code:    "ambiguous_type_reference",
			Path:    path,
			Message: fmt.Sprintf("type reference must set exactly one of primitive, fqn, collection, or union (got %d)", set),
		})
	}
	return errs
}

// validateParameters enforces parameter ordering: required parameters
// first, then optional ones, with at most one variadic parameter in the
// last position.
func validateParameters(path string, params []*ParameterSpec) []error {
	var errs []error
	seenOptional := false
	for i, p := range params {
		if p == nil {
			continue
		}
		if p.Variadic && i != len(params)-1 {
			errs = append(errs, &ValidationError{
				Code:    "variadic_not_last",
				Path:    path,
				Message: fmt.Sprintf("variadic parameter %q must be last", p.Name),
			})
		}
		errs = append(errs, validateRef(path, p.Type)...)
		if p.Optional || p.Variadic {
			seenOptional = true
		} else if seenOptional {
			errs = append(errs, &ValidationError{
				Code:    "required_after_optional",
				Path:    path,
				Message: fmt.Sprintf("required parameter %q follows an optional parameter", p.Name),
			})
		}
	}
	return errs
}
