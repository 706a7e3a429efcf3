package middleware

import (
	"net/http"
)

type Access int

const (
	// Zero value, so anything the table does not know is protected
	Protected Access = iota
	Public
)

func (a Access) String() string {
	if a == Public {
		return "public"
	}
	return "protected"
}

// RouteTable is a ServeMux that also remembers who may reach each pattern.
// Fill it at startup, it must not be changed once it serves requests.
type RouteTable struct {
	mux    *http.ServeMux
	access map[string]Access
}

func NewRouteTable() *RouteTable {
	return &RouteTable{
		mux:    http.NewServeMux(),
		access: make(map[string]Access),
	}
}

func (t *RouteTable) Handle(pattern string, access Access, h http.Handler) {
	t.mux.Handle(pattern, h)
	t.access[pattern] = access
}

// Pattern returns the registered pattern matching r or empty string
func (t *RouteTable) Pattern(r *http.Request) string {
	_, pattern := t.mux.Handler(r)
	return pattern
}

func (t *RouteTable) Classify(r *http.Request) Access {
	return t.access[t.Pattern(r)]
}

func (t *RouteTable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.mux.ServeHTTP(w, r)
}
