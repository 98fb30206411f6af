package kumitate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nitohi/kumitate/internal/pkg/collection"
)

// Graph is the dependency graph of one package's components.
type Graph struct {
	components map[string]*Component

	// edges maps a component name to the names of the components it
	// depends on, in field order.
	edges map[string][]string

	order []*Component
}

// NewGraph builds and checks the dependency graph: every get and build
// dependency must be a declared component, and the graph must be acyclic.
func NewGraph(scan *PackageScan) (*Graph, error) {
	g := &Graph{
		components: make(map[string]*Component, len(scan.Components)),
		edges:      make(map[string][]string),
	}

	for _, component := range scan.Components {
		if _, ok := g.components[component.Name]; ok {
			return nil, fmt.Errorf("%s: component %s declared twice", component.Pos, component.Name)
		}

		g.components[component.Name] = component
	}

	for _, component := range scan.Components {
		for _, field := range component.Fields {
			if field.Rule != FieldGet && field.Rule != FieldBuild {
				continue
			}

			if _, ok := g.components[field.Dep]; !ok {
				return nil, fmt.Errorf("%s: component %s field %s requires %s, which is not a component",
					component.Pos, component.Name, field.Name, field.Dep)
			}

			g.edges[component.Name] = append(g.edges[component.Name], field.Dep)
		}
	}

	if err := g.detectCycles(); err != nil {
		return nil, err
	}

	g.order = g.topologicalOrder()

	return g, nil
}

// Order returns the components with dependencies before their dependents.
// The order is deterministic for a given scan.
func (g *Graph) Order() []*Component {
	return g.order
}

// nodeColor represents the color of a node during DFS for cycle detection.
type nodeColor int

const (
	white nodeColor = iota // unvisited
	gray                   // currently being processed
	black                  // completely processed
)

// CycleError represents an error when a dependency cycle is detected.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return "circular dependency detected"
	}

	return fmt.Sprintf("circular dependency detected: %s -> %s", strings.Join(e.Cycle, " -> "), e.Cycle[0])
}

// detectCycles detects cycles in the dependency graph using DFS.
func (g *Graph) detectCycles() error {
	names := sortedNames(g.components)

	colors := make(map[string]nodeColor, len(names))
	parent := make(map[string]string)

	for _, name := range names {
		if colors[name] == white {
			if cycle := g.dfsCycle(name, colors, parent); cycle != nil {
				return &CycleError{Cycle: cycle}
			}
		}
	}

	return nil
}

// dfsCycle performs DFS and returns the cycle if one is found.
func (g *Graph) dfsCycle(name string, colors map[string]nodeColor, parent map[string]string) []string {
	colors[name] = gray

	for _, dep := range g.edges[name] {
		if colors[dep] == gray {
			return buildCyclePath(dep, name, parent)
		}

		if colors[dep] == white {
			parent[dep] = name
			if cycle := g.dfsCycle(dep, colors, parent); cycle != nil {
				return cycle
			}
		}
	}

	colors[name] = black

	return nil
}

// buildCyclePath builds the cycle path from the detected back edge.
func buildCyclePath(cycleStart, cycleEnd string, parent map[string]string) []string {
	cycle := []string{cycleEnd}

	current := cycleEnd
	for current != cycleStart {
		current = parent[current]
		if current == "" {
			break
		}

		cycle = append([]string{current}, cycle...)
	}

	return cycle
}

// topologicalOrder orders the components so every dependency precedes its
// dependents, breaking ties by name.
func (g *Graph) topologicalOrder() []*Component {
	names := sortedNames(g.components)

	dependents := make(map[string][]string)
	degree := make(map[string]int, len(names))
	for _, name := range names {
		degree[name] = len(g.edges[name])
		for _, dep := range g.edges[name] {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	queue := collection.NewQueue[string]()
	for _, name := range names {
		if degree[name] == 0 {
			queue.Push(name)
		}
	}

	order := make([]*Component, 0, len(names))
	queue.Iter(func(name string) bool {
		order = append(order, g.components[name])

		for _, dependent := range dependents[name] {
			degree[dependent]--
			if degree[dependent] == 0 {
				queue.Push(dependent)
			}
		}

		return true
	})

	return order
}

func sortedNames(components map[string]*Component) []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
