// Package steps provides the shared step catalog all projects follow.
//
// The catalog is loaded once at startup and is immutable afterwards; every
// component that needs step identity or count reads the same *Catalog.
package steps

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
)

// CatalogSize is the number of steps in the fallback catalog.
const CatalogSize = 33

// Resource is a link attached to a step template.
type Resource struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Template is one immutable catalog step definition.
type Template struct {
	Number        int        `json:"number"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Phase         string     `json:"phase"`
	Resources     []Resource `json:"resources"`
	ExternalLinks []Resource `json:"external_links"`
}

// catalogFile is the on-disk shape: either a bare array of templates or an
// object wrapping them in a "steps" key.
type catalogFile struct {
	Steps []Template `json:"steps"`
}

// Catalog holds the ordered step templates. Construct it with Load and share
// it by reference; it is safe for concurrent readers and never mutated.
type Catalog struct {
	steps []Template
}

// Load reads the catalog source at path. A missing or malformed source
// silently degrades to the generated fallback catalog; Load never fails.
func Load(path string) *Catalog {
	templates, err := readSource(path)
	if err != nil {
		templates = fallbackSteps()
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Number < templates[j].Number
	})
	for i := range templates {
		ensureResources(&templates[i])
	}
	return &Catalog{steps: templates}
}

// Steps returns the templates ordered by number ascending. Callers must
// treat the returned slice as read-only.
func (c *Catalog) Steps() []Template {
	return c.steps
}

// Len returns the number of steps in the catalog.
func (c *Catalog) Len() int {
	return len(c.steps)
}

// readSource parses the JSON catalog source, accepting either a bare array
// or a {"steps": [...]} wrapper.
func readSource(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var arr []Template
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr, nil
	}

	var wrapped catalogFile
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Steps != nil {
		return wrapped.Steps, nil
	}
	return nil, fmt.Errorf("steps: %s has unexpected shape", path)
}

// phaseBands maps fallback step ranges to their phase labels.
var phaseBands = []struct {
	last  int
	label string
}{
	{6, "Phase 1: MVP Launch"},
	{15, "Phase 2: Demo & Hooks"},
	{23, "Phase 3: Feedback Loop"},
	{27, "Phase 4: Monetization"},
	{33, "Phase 5: Scale & PMF"},
}

func phaseFor(number int) string {
	for _, b := range phaseBands {
		if number <= b.last {
			return b.label
		}
	}
	return "Phase"
}

// fallbackSteps generates the deterministic placeholder catalog used when no
// source file is available.
func fallbackSteps() []Template {
	templates := make([]Template, 0, CatalogSize)
	for n := 1; n <= CatalogSize; n++ {
		templates = append(templates, Template{
			Number:      n,
			Title:       fmt.Sprintf("Step %d", n),
			Description: "Template not loaded yet. Provide a steps catalog file.",
			Phase:       phaseFor(n),
		})
	}
	return templates
}

// ensureResources guarantees every step has at least one resource so the UI
// never renders an empty step. Steps with neither resources nor external
// links get a synthetic YouTube search link with a deterministic id.
func ensureResources(t *Template) {
	if t.Resources == nil {
		t.Resources = []Resource{}
	}
	if t.ExternalLinks == nil {
		t.ExternalLinks = []Resource{}
	}
	if len(t.Resources) > 0 || len(t.ExternalLinks) > 0 {
		return
	}
	q := url.QueryEscape(t.Title + " app")
	t.Resources = []Resource{
		{
			ID:          fmt.Sprintf("s%d_auto_yt", t.Number),
			Type:        "video",
			Title:       "YouTube: " + t.Title,
			URL:         "https://www.youtube.com/results?search_query=" + q,
			Description: "Quick starting point — replace with your preferred resource.",
		},
	}
}
