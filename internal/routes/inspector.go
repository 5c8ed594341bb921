package routes

import (
	"context"
	"embed"
	"fmt"
	"path"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
)

//go:embed inspector/*.js
var inspectorFS embed.FS

const (
	inspectorRootGroup = "pagebuilder"
	inspectorGroup     = "inspector"
)

// inspectorScripts lists the support scripts in load order: the runtime
// defines the marker element the overlay reads.
var inspectorScripts = []struct {
	route string
	file  string
}{
	{route: "runtime", file: "runtime.js"},
	{route: "overlay", file: "overlay.js"},
}

// Inspector serves the inspector support scripts and reports their URLs to
// the document builder.
type Inspector struct {
	cfg     runtimeconfig.Config
	manager *urlkit.RouteManager
	base    string
}

// NewInspector returns the inspector asset provider. URLs are built through
// a go-urlkit route group rooted at the configured base path.
func NewInspector(cfg runtimeconfig.Config) *Inspector {
	base := strings.TrimSuffix(CleanPath(cfg.Inspector.BasePath), "/")
	paths := make(map[string]string, len(inspectorScripts))
	for _, script := range inspectorScripts {
		paths[script.route] = "/" + script.file
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name: inspectorRootGroup,
				Groups: []urlkit.GroupConfig{
					{
						Name:  inspectorGroup,
						Path:  base,
						Paths: paths,
					},
				},
			},
		},
	})
	return &Inspector{cfg: cfg, manager: manager, base: base}
}

func (i *Inspector) Name() string { return "inspector" }

// Routes exposes the scripts only when the inspector is enabled for the site
// environment.
func (i *Inspector) Routes(context.Context) ([]Route, error) {
	if !i.cfg.InspectorEnabled() {
		return nil, nil
	}
	urls := i.ScriptURLs()
	routes := make([]Route, 0, len(inspectorScripts))
	for idx, script := range inspectorScripts {
		file := "inspector/" + script.file
		routes = append(routes, Route{
			Path:        urls[idx],
			ContentType: "application/javascript",
			Render: func(context.Context) ([]byte, error) {
				return inspectorFS.ReadFile(file)
			},
		})
	}
	return routes, nil
}

// ScriptURLs returns the script URLs in load order.
func (i *Inspector) ScriptURLs() []string {
	out := make([]string, 0, len(inspectorScripts))
	for _, script := range inspectorScripts {
		url, err := i.build(script.route)
		if err != nil || url == "" {
			url = i.fallbackURL(script.file)
		}
		out = append(out, url)
	}
	return out
}

func (i *Inspector) build(route string) (url string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: inspector route %q: %v", route, rec)
		}
	}()
	group := i.manager.Group(inspectorRootGroup).Group(inspectorGroup)
	return group.Builder(route).Build()
}

func (i *Inspector) fallbackURL(file string) string {
	return path.Join("/", i.base, file)
}
