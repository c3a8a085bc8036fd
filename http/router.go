package http

import (
	"context"
	"strings"
)

// Router builds a Handlers table from per-target routes. Targets that match no
// route of a registered method get NotFound; methods without any route are left
// out of the table and so answer 405.
type Router struct {
	Routes     []Route
	Middleware []Middleware
	NotFound   Handler
}

func NewRouter() Router {
	return Router{
		Routes:   make([]Route, 0),
		NotFound: NotFoundHandler,
	}
}

func (router *Router) GET(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodGet}, path, handler, middleware...)
}

func (router *Router) HEAD(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodHead}, path, handler, middleware...)
}

func (router *Router) POST(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodPost}, path, handler, middleware...)
}

func (router *Router) PUT(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodPut}, path, handler, middleware...)
}

func (router *Router) Patch(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodPatch}, path, handler, middleware...)
}

func (router *Router) DELETE(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodDelete}, path, handler, middleware...)
}

func (router *Router) OPTIONS(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodOptions}, path, handler, middleware...)
}

func (router *Router) Any(methods []string, path string, handler Handler, middleware ...Middleware) {
	handler = Chain(handler, middleware...)

	for _, method := range methods {
		router.Routes = append(router.Routes, Route{
			Method:  strings.ToLower(method),
			Path:    path,
			Handler: handler,
		})
	}
}

// Use adds middleware that wraps every verb handler of the built table.
func (router *Router) Use(middleware ...Middleware) {
	router.Middleware = append(router.Middleware, middleware...)
}

func (router *Router) Group(path string, groupFunc func(group *Router), middleware ...Middleware) {
	group := NewRouter()

	groupFunc(&group)

	for _, route := range group.Routes {
		route.Path = path + route.Path
		route.Handler = Chain(route.Handler, middleware...)
		router.Routes = append(router.Routes, route)
	}
}

// Handlers returns one handler per registered method. Routes are tried in
// registration order and the first match wins.
func (router *Router) Handlers() Handlers {
	notFound := router.NotFound
	if notFound == nil {
		notFound = NotFoundHandler
	}

	byMethod := make(map[string][]Route)
	for _, route := range router.Routes {
		byMethod[route.Method] = append(byMethod[route.Method], route)
	}

	handlers := make(Handlers, len(byMethod))
	for method, routes := range byMethod {
		handlers[method] = func(ctx context.Context, target string, body []byte) (Result, error) {
			path := TargetPath(target)
			for _, route := range routes {
				if route.matches(path) {
					return route.Handler(ctx, target, body)
				}
			}
			return notFound(ctx, target, body)
		}
	}

	return handlers.Use(router.Middleware...)
}
