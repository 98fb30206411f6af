// Package kumitate provides a lazily-populated dependency container and the
// runtime support for its code generator.
//
// Components are plain structs annotated with a //kumitate:component
// directive and per-field build tags. The kumitate command generates one
// construction function per component and a NewRegistry function wiring them
// together:
//
//	//kumitate:component input=Config
//	type Service struct {
//		Addr  string `kumitate:"input:Addr"`
//		Store *Store `kumitate:"get"`
//	}
//
//	r := NewRegistry()
//	c := r.NewContainer(Config{Addr: "localhost:8080"})
//	svc, err := kumitate.Get[Service](c)
//
// Use go:generate to trigger code generation:
//
//	//go:generate go tool kumitate ./
package kumitate

import "reflect"

// NoInput is the input type of registries whose components need no external
// configuration.
type NoInput = struct{}

// Container owns one externally supplied input value and a cache of shared
// component instances, created lazily on first request. Once a type is
// cached it is never evicted or replaced, so every caller observes the
// identical instance for the lifetime of the container.
//
// A Container is not safe for concurrent use.
type Container[I any] struct {
	input    I
	registry *Registry[I]
	cache    map[reflect.Type]any
	stack    []reflect.Type
}

// Input returns the input value supplied to NewContainer. The value is
// immutable for the container's lifetime.
func (c *Container[I]) Input() I {
	return c.input
}

// Get returns the shared instance of T, constructing and caching it on the
// first request. Dependencies of T are obtained recursively from the same
// container.
func Get[T any, I any](c *Container[I]) (*T, error) {
	t := typeOf[T]()
	if v, ok := c.cache[t]; ok {
		return v.(*T), nil
	}

	v, err := Build[T](c)
	if err != nil {
		return nil, err
	}

	p := &v
	c.cache[t] = p

	return p, nil
}

// Build constructs a fresh instance of T, bypassing the cache. Dependencies
// that T's constructor requests through Get are still shared with the rest
// of the container.
func Build[T any, I any](c *Container[I]) (T, error) {
	var zero T

	t := typeOf[T]()
	for _, inFlight := range c.stack {
		if inFlight == t {
			stack := make([]reflect.Type, 0, len(c.stack)+1)
			stack = append(stack, c.stack...)
			return zero, &CycleError{Stack: append(stack, t)}
		}
	}

	ctor, ok := c.registry.ctors[t]
	if !ok {
		return zero, &BuildError{Type: t, Err: ErrNotRegistered}
	}

	c.stack = append(c.stack, t)
	v, err := ctor(c)
	c.stack = c.stack[:len(c.stack)-1]
	if err != nil {
		if _, ok := err.(*CycleError); ok {
			return zero, err
		}

		return zero, &BuildError{Type: t, Err: err}
	}

	return v.(T), nil
}

// MustGet is like Get but panics on construction failure. Intended for
// wiring code in main, where a broken dependency graph is unrecoverable.
func MustGet[T any, I any](c *Container[I]) *T {
	v, err := Get[T](c)
	if err != nil {
		panic(err)
	}

	return v
}

// MustBuild is like Build but panics on construction failure.
func MustBuild[T any, I any](c *Container[I]) T {
	v, err := Build[T](c)
	if err != nil {
		panic(err)
	}

	return v
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
