package http

import (
	"context"
	"strings"
)

// Route binds a method and a target pattern to a handler. A pattern ending in
// "*" matches every path starting with what precedes it.
type Route struct {
	Method  string
	Path    string
	Handler Handler
}

var NotFoundHandler Handler = func(ctx context.Context, target string, body []byte) (Result, error) {
	return Result{Status: StatusNotFound}, nil
}

func (route Route) matches(path string) bool {
	if prefix, ok := strings.CutSuffix(route.Path, "*"); ok {
		return strings.HasPrefix(path, prefix)
	}
	return route.Path == path
}

// TargetPath returns target without its query string.
func TargetPath(target string) string {
	path, _, _ := strings.Cut(strings.TrimSpace(target), "?")
	return path
}
