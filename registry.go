package kumitate

import (
	"fmt"
	"reflect"
)

// Constructor builds one instance of T, requesting dependencies from the
// container and external configuration from its input. Constructors are
// normally generated by the kumitate command from component annotations.
type Constructor[I any, T any] func(c *Container[I]) (T, error)

// Registry maps component types to their construction functions. It is
// populated once at startup, normally by a generated NewRegistry function,
// and may be shared by any number of containers.
type Registry[I any] struct {
	ctors map[reflect.Type]func(c *Container[I]) (any, error)
}

// NewRegistry creates an empty registry for containers with input type I.
func NewRegistry[I any]() *Registry[I] {
	return &Registry[I]{
		ctors: make(map[reflect.Type]func(c *Container[I]) (any, error)),
	}
}

// Register adds the construction function for component type T. Registering
// the same type twice is a wiring bug and panics.
func Register[I any, T any](r *Registry[I], fn Constructor[I, T]) {
	t := typeOf[T]()
	if _, ok := r.ctors[t]; ok {
		panic(fmt.Sprintf("kumitate: component %s registered twice", t))
	}

	r.ctors[t] = func(c *Container[I]) (any, error) {
		return fn(c)
	}
}

// NewContainer creates a container with an empty cache, taking ownership of
// the input value.
func (r *Registry[I]) NewContainer(input I) *Container[I] {
	return &Container[I]{
		input:    input,
		registry: r,
		cache:    make(map[reflect.Type]any),
	}
}
