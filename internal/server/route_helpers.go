package server

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/ternarybob/creatorlogic/internal/handlers"
)

// methods dispatches one API path by HTTP method. Anything unlisted gets a
// JSON 405 carrying an Allow header.
type methods map[string]http.HandlerFunc

func (m methods) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h := m[r.Method]; h != nil {
		h(w, r)
		return
	}
	w.Header().Set("Allow", m.allow())
	handlers.WriteError(w, http.StatusMethodNotAllowed, fmt.Sprintf("%s not allowed on %s", r.Method, r.URL.Path))
}

func (m methods) allow() string {
	names := make([]string, 0, len(m))
	for name, h := range m {
		if h != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// singleSegment serves prefix/{id} only. Deeper or empty ids fall through to notFound.
func singleSegment(prefix string, next http.Handler, notFound http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, prefix)
		if id == "" || strings.Contains(id, "/") {
			notFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	}
}
