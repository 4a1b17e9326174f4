// Package runtime is the invocation-bridge client surface imported by
// generated bindings. Generated proxies hold a Ref to a backing object
// living behind the bridge and route every constructor call, method
// invocation, and property access through the package-level helpers
// here. The bridge itself is pluggable; this package owns none of the
// host-side object lifecycle.
package runtime

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Ref identifies an object instance living behind the bridge.
type Ref struct {
	// ID is the bridge-assigned instance identifier.
	ID string
}

// IsZero reports whether the ref points at nothing.
func (r Ref) IsZero() bool { return r.ID == "" }

// Referencable is implemented by every generated proxy. A value that
// satisfies it but is not one of the proxy types a validator knows
// about is a foreign instance: an object implementing the structural
// shape through a different proxy.
type Referencable interface {
	Reference() Ref
}

// Bridge is the opaque channel through which generated code operates on
// backing objects. Implementations must be safe for concurrent use.
type Bridge interface {
	// Initialize prepares the bridge for use. Called once, before any
	// other operation.
	Initialize() error

	Construct(fqn string, args []any) (Ref, error)
	Invoke(ref Ref, member string, args []any) (any, error)
	InvokeVoid(ref Ref, member string, args []any) error
	StaticInvoke(fqn, member string, args []any) (any, error)
	StaticInvokeVoid(fqn, member string, args []any) error
	Get(ref Ref, property string) (any, error)
	Set(ref Ref, property string, value any) error
	StaticGet(fqn, property string) (any, error)
	StaticSet(fqn, property string, value any) error
}

// ErrNoBridge is returned when generated code runs before SetBridge.
var ErrNoBridge = errors.New("runtime: no bridge configured")

var (
	mu       sync.Mutex
	bridge   Bridge
	initOnce sync.Once
	initErr  error
)

// SetBridge installs the bridge implementation. Must be called before
// the first generated call; replacing the bridge afterwards resets the
// initialization state.
func SetBridge(b Bridge) {
	mu.Lock()
	defer mu.Unlock()
	bridge = b
	initOnce = sync.Once{}
	initErr = nil
}

func current() (Bridge, error) {
	mu.Lock()
	defer mu.Unlock()
	if bridge == nil {
		return nil, ErrNoBridge
	}
	return bridge, nil
}

// Initialize makes the bridge ready for use. Idempotent; generated
// constructors and static entry points call it before first contact.
func Initialize() error {
	b, err := current()
	if err != nil {
		return err
	}
	initOnce.Do(func() { initErr = b.Initialize() })
	return initErr
}

// Construct creates a new backing object for fqn and stores its ref.
func Construct(fqn string, args []any, out *Ref) error {
	b, err := current()
	if err != nil {
		return err
	}
	ref, err := b.Construct(fqn, args)
	if err != nil {
		return fmt.Errorf("construct %s: %w", fqn, err)
	}
	*out = ref
	return nil
}

// Invoke calls a value-returning instance method and assigns the result
// into ret, which must be a non-nil pointer.
func Invoke(ref Ref, member string, args []any, ret any) error {
	b, err := current()
	if err != nil {
		return err
	}
	value, err := b.Invoke(ref, member, args)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", member, err)
	}
	return assign(ret, value, member)
}

// InvokeVoid calls a void instance method.
func InvokeVoid(ref Ref, member string, args []any) error {
	b, err := current()
	if err != nil {
		return err
	}
	if err := b.InvokeVoid(ref, member, args); err != nil {
		return fmt.Errorf("invoke %s: %w", member, err)
	}
	return nil
}

// StaticInvoke calls a value-returning static method on the type fqn.
func StaticInvoke(fqn, member string, args []any, ret any) error {
	b, err := current()
	if err != nil {
		return err
	}
	value, err := b.StaticInvoke(fqn, member, args)
	if err != nil {
		return fmt.Errorf("invoke %s.%s: %w", fqn, member, err)
	}
	return assign(ret, value, member)
}

// StaticInvokeVoid calls a void static method on the type fqn.
func StaticInvokeVoid(fqn, member string, args []any) error {
	b, err := current()
	if err != nil {
		return err
	}
	if err := b.StaticInvokeVoid(fqn, member, args); err != nil {
		return fmt.Errorf("invoke %s.%s: %w", fqn, member, err)
	}
	return nil
}

// Get reads an instance property into ret.
func Get(ref Ref, property string, ret any) error {
	b, err := current()
	if err != nil {
		return err
	}
	value, err := b.Get(ref, property)
	if err != nil {
		return fmt.Errorf("get %s: %w", property, err)
	}
	return assign(ret, value, property)
}

// Set writes an instance property.
func Set(ref Ref, property string, value any) error {
	b, err := current()
	if err != nil {
		return err
	}
	if err := b.Set(ref, property, value); err != nil {
		return fmt.Errorf("set %s: %w", property, err)
	}
	return nil
}

// StaticGet reads a static property of the type fqn into ret.
func StaticGet(fqn, property string, ret any) error {
	b, err := current()
	if err != nil {
		return err
	}
	value, err := b.StaticGet(fqn, property)
	if err != nil {
		return fmt.Errorf("get %s.%s: %w", fqn, property, err)
	}
	return assign(ret, value, property)
}

// StaticSet writes a static property of the type fqn.
func StaticSet(fqn, property string, value any) error {
	b, err := current()
	if err != nil {
		return err
	}
	if err := b.StaticSet(fqn, property, value); err != nil {
		return fmt.Errorf("set %s.%s: %w", fqn, property, err)
	}
	return nil
}

// IsForeignProxy reports whether v carries a bridge ref without being a
// locally known proxy type. Union validators use this as the acceptance
// fallback for interface members.
func IsForeignProxy(v any) bool {
	_, ok := v.(Referencable)
	return ok
}

// assign stores a bridge value into the pointer ret, converting numeric
// representations where the static types differ.
func assign(ret, value any, member string) error {
	if ret == nil {
		return nil
	}
	dst := reflect.ValueOf(ret)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return fmt.Errorf("result of %s: destination must be a non-nil pointer", member)
	}
	dst = dst.Elem()
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(value)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()) && isNumeric(src.Kind()) && isNumeric(dst.Kind()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("result of %s: cannot assign %T to %s", member, value, dst.Type())
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
