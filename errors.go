package kumitate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrNotRegistered is returned when a requested component type has no
// construction function in the registry.
var ErrNotRegistered = errors.New("component is not registered")

// BuildError reports a failed construction, tagged with the component type
// whose constructor failed.
type BuildError struct {
	Type reflect.Type
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s: %v", e.Type, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// CycleError reports a dependency cycle discovered during construction.
// Stack holds the in-flight component types in request order, ending with
// the type that closed the cycle.
type CycleError struct {
	Stack []reflect.Type
}

func (e *CycleError) Error() string {
	if len(e.Stack) == 0 {
		return "dependency cycle detected"
	}

	names := make([]string, 0, len(e.Stack))
	for _, t := range e.Stack {
		names = append(names, t.String())
	}

	return "dependency cycle detected: " + strings.Join(names, " -> ")
}
