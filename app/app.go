// Package app is the sample application served by the userver binary: a user
// table and a set of service flags, both kept in host-owned stores.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/freekieb7/userver/http"
	"github.com/freekieb7/userver/store"
)

const DefaultUptimeFile = "/proc/uptime"

var ErrNoBody = errors.New("app: request has no body")

// DefaultServices is the initial set of service flags.
func DefaultServices() map[string]any {
	return map[string]any{"debug": 0, "shutdown": 0}
}

type App struct {
	Users      store.Store
	Services   store.Store
	UptimeFile string
	Logger     *slog.Logger
}

func New(users, services store.Store, logger *slog.Logger) *App {
	if logger == nil {
		logger = http.DefaultLogger()
	}
	return &App{
		Users:      users,
		Services:   services,
		UptimeFile: DefaultUptimeFile,
		Logger:     logger,
	}
}

// Handlers returns the verb table to hand to the server.
func (a *App) Handlers() http.Handlers {
	router := http.NewRouter()

	router.GET("/users", a.listUsers)
	router.GET("/services", a.listServices)
	router.GET("/services/*", a.getService)
	router.GET("/uptime", a.uptime)
	router.POST("/users", a.addUsers)
	router.Patch("/services", a.patchServices)
	router.HEAD("*", a.head)
	router.DELETE("*", a.deleteService)

	router.Use(http.LogMiddleware(a.Logger))
	return router.Handlers()
}

func (a *App) listUsers(ctx context.Context, target string, body []byte) (http.Result, error) {
	return jsonResult(a.Users.All())
}

func (a *App) listServices(ctx context.Context, target string, body []byte) (http.Result, error) {
	return jsonResult(a.Services.All())
}

func (a *App) getService(ctx context.Context, target string, body []byte) (http.Result, error) {
	value, err := a.Services.Get(serviceName(target))
	if errors.Is(err, store.ErrNotFound) {
		return http.NotFoundHandler(ctx, target, body)
	}
	if err != nil {
		return http.Result{}, err
	}
	return jsonResult(value)
}

func (a *App) uptime(ctx context.Context, target string, body []byte) (http.Result, error) {
	data, err := os.ReadFile(a.UptimeFile)
	if err != nil {
		return http.Result{}, fmt.Errorf("app: read uptime: %w", err)
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[:i+1]
	}
	return http.Result{Status: http.StatusOK, Body: string(data)}, nil
}

func (a *App) addUsers(ctx context.Context, target string, body []byte) (http.Result, error) {
	values, err := decodeObject(body)
	if err != nil {
		return http.Result{}, err
	}
	a.Logger.DebugContext(ctx, "storing users", slog.Int("count", len(values)))
	for k, v := range values {
		a.Users.Set(k, v)
	}

	return http.Result{Status: http.StatusOK}, nil
}

func (a *App) patchServices(ctx context.Context, target string, body []byte) (http.Result, error) {
	values, err := decodeObject(body)
	if err != nil {
		return http.Result{}, err
	}
	updated := a.Services.UpdateExisting(values)
	a.Logger.DebugContext(ctx, "services patched", slog.Int("updated", updated), slog.Int("requested", len(values)))

	return http.Result{Status: http.StatusNoContent}, nil
}

func (a *App) head(ctx context.Context, target string, body []byte) (http.Result, error) {
	return http.Result{Status: http.StatusOK, Body: "nothing"}, nil
}

func (a *App) deleteService(ctx context.Context, target string, body []byte) (http.Result, error) {
	if err := a.Services.Delete(lastSegment(target)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return http.NotFoundHandler(ctx, target, body)
		}
		return http.Result{}, err
	}

	return http.Result{Status: http.StatusOK, Body: "deleted resource."}, nil
}

func jsonResult(v any) (http.Result, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return http.Result{}, fmt.Errorf("app: encode response: %w", err)
	}
	return http.Result{
		Status:  http.StatusOK,
		Body:    string(b),
		Headers: http.Headers{"content_type": "application/json"},
	}, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	if body == nil {
		return nil, ErrNoBody
	}
	var values map[string]any
	if err := json.Unmarshal(body, &values); err != nil {
		return nil, fmt.Errorf("app: decode body: %w", err)
	}
	return values, nil
}

func serviceName(target string) string {
	return strings.TrimPrefix(http.TargetPath(target), "/services/")
}

// lastSegment returns what follows the final slash of the target path.
func lastSegment(target string) string {
	path := http.TargetPath(target)
	return path[strings.LastIndexByte(path, '/')+1:]
}
