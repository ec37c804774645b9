// Package gemini implements table reconstruction and token counting with
// Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/wikidoc"
	"google.golang.org/genai"
)

// DefaultModel is the model used when no other is configured.
const DefaultModel = "gemini-2.5-flash"

const systemInstruction = `You reconstruct tables scraped from a wiki into JSON.
The input is a table flattened to text: one row per paragraph, cells separated by commas.
A cell spanning several rows has been repeated in each of them. A row with fewer cells than its neighbours had merged columns.
A row holding a single cell is usually a header for the rows that follow it.
Return only a JSON array of objects, one per data row, keyed by the column headers. Do not invent values.`

// Ensure Tabulator implements wikidoc.Tabulator at compile time.
var _ wikidoc.Tabulator = (*Tabulator)(nil)

// Tabulator implements wikidoc.Tabulator using Google Gemini.
type Tabulator struct {
	client *genai.Client
	model  string
}

// TabulatorOption configures a Tabulator.
type TabulatorOption func(*Tabulator)

// WithModel sets the Gemini model name.
func WithModel(model string) TabulatorOption {
	return func(t *Tabulator) {
		if model != "" {
			t.model = model
		}
	}
}

// NewTabulator creates a new Tabulator.
func NewTabulator(client *genai.Client, opts ...TabulatorOption) *Tabulator {
	t := &Tabulator{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tabulate asks the model to turn a rasterized table grid into JSON.
// The response is returned as is, without validation.
func (t *Tabulator) Tabulate(ctx context.Context, grid string) (string, error) {
	if strings.TrimSpace(grid) == "" {
		return "", wikidoc.Errorf(wikidoc.EINVALID, "table grid required")
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildUserPrompt(grid)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", wikidoc.Errorf(wikidoc.EINTERNAL, "gemini returned nil result")
	}

	return strings.TrimSpace(result.Text()), nil
}

// BuildConfig returns the GenerateContentConfig for table reconstruction.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// BuildUserPrompt wraps a table grid for the model.
func BuildUserPrompt(grid string) string {
	var sb strings.Builder
	sb.WriteString("<table>\n")
	sb.WriteString(grid)
	sb.WriteString("\n</table>\n\n")
	fmt.Fprintf(&sb, "Rows: %d", strings.Count(grid, "\n\n")+1)
	return sb.String()
}
