package packages

import (
	"fmt"
)

// Node is one package in the dependency graph.
type Node struct {
	Key          string
	Dependencies []string
}

// ResolveOrder returns every key ordered so that dependencies precede their dependents.
// When several packages are eligible at once, declaration order wins.
func ResolveOrder(nodes []Node) ([]string, error) {
	declared := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if declared[n.Key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, n.Key)
		}
		declared[n.Key] = true
	}
	for _, n := range nodes {
		for _, dep := range n.Dependencies {
			if !declared[dep] {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownDependency, n.Key, dep)
			}
		}
	}

	emitted := make(map[string]bool, len(nodes))
	order := make([]string, 0, len(nodes))
	for len(order) < len(nodes) {
		next := -1
		for i, n := range nodes {
			if !emitted[n.Key] && ready(n, emitted) {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, &CycleError{Keys: findCycle(nodes, emitted)}
		}
		emitted[nodes[next].Key] = true
		order = append(order, nodes[next].Key)
	}
	return order, nil
}

func ready(n Node, emitted map[string]bool) bool {
	for _, dep := range n.Dependencies {
		if dep == n.Key || !emitted[dep] {
			return false
		}
	}
	return true
}

// findCycle walks the unresolved nodes and returns one dependency cycle, closed with its first key.
func findCycle(nodes []Node, emitted map[string]bool) []string {
	deps := make(map[string][]string)
	for _, n := range nodes {
		if !emitted[n.Key] {
			deps[n.Key] = n.Dependencies
		}
	}

	const (
		unvisited = iota
		inStack
		done
	)
	state := make(map[string]int)
	var stack []string
	var cycle []string

	var visit func(key string) bool
	visit = func(key string) bool {
		state[key] = inStack
		stack = append(stack, key)
		for _, dep := range deps[key] {
			if _, unresolved := deps[dep]; !unresolved {
				continue
			}
			switch state[dep] {
			case inStack:
				for i, k := range stack {
					if k == dep {
						cycle = append(append([]string{}, stack[i:]...), dep)
						return true
					}
				}
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[key] = done
		return false
	}

	for _, n := range nodes {
		if _, unresolved := deps[n.Key]; unresolved && state[n.Key] == unvisited {
			if visit(n.Key) {
				return cycle
			}
		}
	}
	return nil
}
