package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/catalogview/pkg/config"
	"github.com/vanderheijden86/catalogview/pkg/filter"
	"github.com/vanderheijden86/catalogview/pkg/loader"
	"github.com/vanderheijden86/catalogview/pkg/metrics"
	"github.com/vanderheijden86/catalogview/pkg/model"
	"github.com/vanderheijden86/catalogview/pkg/render"
	"github.com/vanderheijden86/catalogview/pkg/version"
	"github.com/vanderheijden86/catalogview/pkg/viewstate"
)

type robotIndicator struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category,omitempty"`
	DatasetCount int      `json:"dataset_count"`
	Tags         []string `json:"tags,omitempty"`
	Selected     bool     `json:"selected,omitempty"`
}

type robotState struct {
	Indicator string   `json:"indicator,omitempty"`
	Dataset   string   `json:"dataset,omitempty"`
	Tags      []string `json:"tags"`
	Mode      string   `json:"mode"`
	Search    string   `json:"search,omitempty"`
	Category  string   `json:"category,omitempty"`
}

type robotFilterOutput struct {
	GeneratedAt        string                `json:"generated_at"`
	CatalogGeneratedAt string                `json:"catalog_generated_at,omitempty"`
	Version            string                `json:"version"`
	Source             string                `json:"source"`
	Hash               string                `json:"hash"`
	DeepLink           string                `json:"deep_link"`
	State              robotState            `json:"state"`
	Stats              filter.Stats          `json:"stats"`
	Empty              string                `json:"empty,omitempty"`
	Indicators         []robotIndicator      `json:"indicators"`
	Metrics            []metrics.TimingStats `json:"metrics,omitempty"`
}

type robotError struct {
	Error  string `json:"error"`
	Source string `json:"source"`
}

func runRobot(ctx context.Context, source string, cfg config.Config, opts cliOptions, stdout, stderr io.Writer) int {
	if opts.robotMetrics {
		metrics.SetEnabled(true)
		metrics.ResetAll()
	}

	cat, err := loader.LoadWithOptions(ctx, source, loader.Options{Timeout: loader.DefaultTimeout})
	if err != nil {
		_ = writeRobotJSON(stdout, robotError{Error: err.Error(), Source: source})
		fmt.Fprintf(stderr, "Error loading catalog: %v\n", err)
		return 1
	}

	out := buildRobotOutput(cat, source, cfg.BaseURL, opts)
	if opts.robotMetrics {
		out.Metrics = metrics.AllTimingStats()
	}
	if err := writeRobotJSON(stdout, out); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return 0
}

// buildRobotOutput applies category, search and hash the same way the TUI
// does, then reports what the indicator list would show.
func buildRobotOutput(cat *model.Catalog, source, baseURL string, opts cliOptions) robotFilterOutput {
	ctrl := viewstate.New(cat,
		viewstate.WithCategory(opts.category),
		viewstate.WithSearch(opts.search),
	)
	if opts.hash != "" {
		ctrl.ApplyHash(opts.hash)
	}
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	st := ctrl.State()
	tree := render.Build(render.Input{Catalog: cat, Filtered: ctrl.Filtered(), State: st, Loaded: true})

	out := robotFilterOutput{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.Version,
		Source:      source,
		Hash:        ctrl.Hash(),
		DeepLink:    ctrl.DeepLink(baseURL),
		State: robotState{
			Indicator: st.SelectedIndicatorID,
			Dataset:   st.SelectedDatasetID,
			Tags:      st.ActiveTags(),
			Mode:      st.Mode.String(),
			Search:    st.SearchQuery,
			Category:  st.SelectedCategory,
		},
		Stats:      tree.Stats,
		Empty:      tree.Empty.Message(),
		Indicators: make([]robotIndicator, 0, len(tree.Indicators)),
	}
	if !cat.GeneratedAt.IsZero() {
		out.CatalogGeneratedAt = cat.GeneratedAt.UTC().Format(time.RFC3339)
	}
	for _, row := range tree.Indicators {
		var tags []string
		if ind := cat.IndicatorByID(row.ID); ind != nil {
			tags = append(tags, ind.TagIDs...)
			filter.SortTagIDs(tags)
		}
		out.Indicators = append(out.Indicators, robotIndicator{
			ID:           row.ID,
			Name:         row.Name,
			Category:     row.Category,
			DatasetCount: row.DatasetCount,
			Tags:         tags,
			Selected:     row.Selected,
		})
	}
	return out
}

func writeRobotJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
