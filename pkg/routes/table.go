// Package routes holds the static route table: an ordered list of exact
// paths, each mapped to a canned response.
//
// A Table is built once at startup and never mutated, so it is safe for
// concurrent use without locking.
package routes

import "github.com/getmockd/canaryd/pkg/config"

// Route maps an exact request path to a canned response.
type Route struct {
	Path       string
	Body       string
	StatusCode int
	Comment    string
}

// Table is an immutable route table.
type Table struct {
	routes   []Route
	index    map[string]int
	shadowed []int
}

// New builds a Table from an ordered list of routes. When two routes share a
// path the first one wins and the later ones are reported by Shadowed.
func New(defs []Route) *Table {
	t := &Table{
		routes: make([]Route, len(defs)),
		index:  make(map[string]int, len(defs)),
	}
	copy(t.routes, defs)

	for i, r := range t.routes {
		if _, exists := t.index[r.Path]; exists {
			t.shadowed = append(t.shadowed, i)
			continue
		}
		t.index[r.Path] = i
	}
	return t
}

// FromConfig builds a Table from the configuration document's routes.
func FromConfig(defs []config.RouteConfig) *Table {
	routes := make([]Route, len(defs))
	for i, d := range defs {
		routes[i] = Route{
			Path:       d.Path,
			Body:       d.Response,
			StatusCode: d.ResponseCode,
			Comment:    d.Comment,
		}
	}
	return New(routes)
}

// Lookup returns the route whose path equals path exactly. Matching is
// case-sensitive; trailing slashes and query strings are not normalized.
func (t *Table) Lookup(path string) (Route, bool) {
	i, ok := t.index[path]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Routes returns a copy of the routes in configuration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len returns the number of configured routes, shadowed ones included.
func (t *Table) Len() int {
	return len(t.routes)
}

// Shadowed returns the indices of routes hidden by an earlier route with the
// same path.
func (t *Table) Shadowed() []int {
	out := make([]int, len(t.shadowed))
	copy(out, t.shadowed)
	return out
}
