// Package tools exposes railctl operations as agent-callable tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"railctl/pkg/scraper"
	"railctl/pkg/trainstatus"
)

// Tool represents a callable tool.
type Tool struct {
	Name        string                                                         `json:"name"`
	Description string                                                         `json:"description"`
	Parameters  map[string]any                                                 `json:"parameters"`
	Handler     func(ctx context.Context, args map[string]any) (string, error) `json:"-"`
}

// StatusReporter compiles train status text. *trainstatus.Resolver satisfies it.
type StatusReporter interface {
	Report(ctx context.Context, req trainstatus.Request, now time.Time) string
	Directory() *trainstatus.Directory
}

// PageFetcher downloads and extracts a web page. *scraper.Client satisfies it.
type PageFetcher interface {
	FetchPage(ctx context.Context, rawURL string) (scraper.Page, error)
}

// Registry holds available tools.
type Registry struct {
	tools    map[string]*Tool
	resolver StatusReporter
	pages    PageFetcher
	now      func() time.Time
}

// NewRegistry creates a registry with the train status tools. pages may be nil, in
// which case scrape_web_content is not offered.
func NewRegistry(resolver StatusReporter, pages PageFetcher) *Registry {
	r := &Registry{
		tools:    make(map[string]*Tool),
		resolver: resolver,
		pages:    pages,
		now:      time.Now,
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	r.Register(&Tool{
		Name: "get_train_status",
		Description: "Check live TRA train status. Use mode 'routine_morning' or 'routine_evening' for the configured commute, " +
			"or give both 'dep' and 'arr' station names to check any pair for the next hour.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"mode": map[string]any{
					"type":        "string",
					"enum":        []string{"check", "routine_morning", "routine_evening"},
					"description": "Which query to run. Defaults to a live check of the return leg.",
				},
				"dep": map[string]any{
					"type":        "string",
					"description": "Departure station name, e.g. 台北 or Taipei",
				},
				"arr": map[string]any{
					"type":        "string",
					"description": "Arrival station name, e.g. 鶯歌 or Yingge",
				},
			},
		},
		Handler: r.handleTrainStatus,
	})

	r.Register(&Tool{
		Name:        "list_stations",
		Description: "List the station names get_train_status understands.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: r.handleListStations,
	})

	if r.pages == nil {
		return
	}
	r.Register(&Tool{
		Name:        "scrape_web_content",
		Description: "Fetch a web page and return its title and main paragraph text.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "Absolute http(s) URL of the page",
				},
			},
			"required": []string{"url"},
		},
		Handler: r.handleScrape,
	})
}

// Register adds a tool to the registry.
func (r *Registry) Register(t *Tool) {
	r.tools[t.Name] = t
}

// Get returns a tool by name.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// Names returns the registered tool names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all tools in OpenAI function format.
func (r *Registry) List() []map[string]any {
	var result []map[string]any
	for _, name := range r.Names() {
		t := r.tools[name]
		result = append(result, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}
	return result
}

// Execute runs a tool by name with given arguments.
func (r *Registry) Execute(ctx context.Context, name string, argsJSON string) (string, error) {
	tool := r.tools[name]
	if tool == nil {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	var args map[string]any
	if strings.TrimSpace(argsJSON) != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}

	return tool.Handler(ctx, args)
}

// Tool handlers

func (r *Registry) handleTrainStatus(ctx context.Context, args map[string]any) (string, error) {
	mode, _ := args["mode"].(string)
	dep, _ := args["dep"].(string)
	arr, _ := args["arr"].(string)

	req := trainstatus.Request{
		Mode:        trainstatus.ParseMode(mode),
		Origin:      dep,
		Destination: arr,
	}
	return r.resolver.Report(ctx, req, r.now()), nil
}

func (r *Registry) handleListStations(ctx context.Context, args map[string]any) (string, error) {
	var sb strings.Builder
	sb.WriteString("Supported stations:\n")
	for _, s := range r.resolver.Directory().Stations() {
		fmt.Fprintf(&sb, "- %s (%s)\n", strings.Join(s.Names, " / "), s.Code)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (r *Registry) handleScrape(ctx context.Context, args map[string]any) (string, error) {
	url, _ := args["url"].(string)
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("url is required")
	}

	page, err := r.pages.FetchPage(ctx, strings.TrimSpace(url))
	if err != nil {
		return "", fmt.Errorf("failed to scrape page: %w", err)
	}
	return page.Summary(), nil
}
