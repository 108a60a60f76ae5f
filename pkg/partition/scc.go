package partition

import "sort"

// graph is a module dependency graph with sorted adjacency lists.
type graph map[string][]string

func (g graph) add(from, to string) {
	for _, t := range g[from] {
		if t == to {
			return
		}
	}
	g[from] = append(g[from], to)
}

func (g graph) vertices() []string {
	seen := make(map[string]bool)
	for from, tos := range g {
		seen[from] = true
		for _, to := range tos {
			seen[to] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// components returns the strongly connected components of g using Tarjan's
// algorithm. Vertices and edges are visited in sorted order and each
// component is sorted, so the result is deterministic.
func (g graph) components() [][]string {
	for _, tos := range g {
		sort.Strings(tos)
	}
	var (
		index   = 0
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		stack   []string
		out     [][]string
	)
	var connect func(v string)
	connect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, seen := indices[w]; !seen {
				connect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			out = append(out, scc)
		}
	}
	for _, v := range g.vertices() {
		if _, seen := indices[v]; !seen {
			connect(v)
		}
	}
	return out
}

// cycles returns the components with more than one vertex.
func (g graph) cycles() [][]string {
	var out [][]string
	for _, scc := range g.components() {
		if len(scc) > 1 {
			out = append(out, scc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Cycles returns the strongly connected components with more than one vertex
// of the dependency graph deps, each sorted, ordered by first vertex.
func Cycles(deps map[string][]string) [][]string {
	g := make(graph)
	for from, tos := range deps {
		for _, to := range tos {
			g.add(from, to)
		}
	}
	return g.cycles()
}
