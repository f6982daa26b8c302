package analyzer

import "slices"

// DetectCycle walks the dependency graph depth-first in task order and
// returns the first cycle found, or nil. The path lists the tasks after the
// re-entered node in visiting order and ends with the re-entered node, so
// A -> B -> A yields [B, A]. Dependencies naming unknown ids are ignored.
func DetectCycle(tasks []Task) []string {
	graph := make(map[string]Task, len(tasks))
	order := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := graph[t.ID]; !ok {
			order = append(order, t.ID)
		}
		graph[t.ID] = t
	}

	visited := make(map[string]bool, len(graph))
	var stack []string

	var visit func(node string) []string
	visit = func(node string) []string {
		visited[node] = true
		stack = append(stack, node)

		for _, dep := range graph[node].Dependencies {
			if _, known := graph[dep]; !known {
				continue
			}
			if !visited[dep] {
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
				continue
			}
			if i := slices.Index(stack, dep); i >= 0 {
				cycle := slices.Clone(stack[i+1:])
				return append(cycle, dep)
			}
		}

		stack = stack[:len(stack)-1]
		return nil
	}

	for _, id := range order {
		if visited[id] {
			continue
		}
		if cycle := visit(id); cycle != nil {
			return cycle
		}
	}
	return nil
}
