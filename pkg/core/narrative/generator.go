// Package narrative produces the written commentary shown beside the charts:
// a model-generated markdown summary of a company's multi-year performance,
// rendered to sanitized HTML.
package narrative

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"findash/pkg/core/extract"
	"findash/pkg/core/utils"
)

const narratorModel = "gemini-2.0-flash"

const narratorSystemPrompt = `You are a financial analyst writing for a
dashboard audience. Write concise markdown commentary: a short overview,
then bullet points on revenue, profitability, liquidity, and leverage
trends. Flag any figure marked as estimated. No tables, no code fences.`

// Generator produces markdown commentary for a dataset via the Gemini SDK.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a generator. Requires GEMINI_API_KEY.
func NewGenerator(ctx context.Context) (*Generator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Generator{client: client, model: narratorModel}, nil
}

// Close releases the underlying client.
func (g *Generator) Close() error {
	return g.client.Close()
}

// Generate writes markdown commentary for the dataset.
func (g *Generator) Generate(ctx context.Context, ds *extract.Dataset) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.7)

	prompt := fmt.Sprintf("%s\n\nTask: %s", narratorSystemPrompt, buildNarrativePrompt(ds))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("narrative generation returned no content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	return utils.CleanMarkdown(sb.String()), nil
}

// buildNarrativePrompt serializes the dataset into a compact year-by-year
// table the model can reason over.
func buildNarrativePrompt(ds *extract.Dataset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the financial performance of %s across %d fiscal year(s).\n\n", ds.CompanyName, len(ds.Years))

	for i, year := range ds.Years {
		fmt.Fprintf(&b, "Year %s: revenue %.1fM, net profit %.1fM, net margin %.1f%%, current ratio %.2f, debt/equity %.2f, ROE %.1f%%",
			year, value(ds.Revenue, i), value(ds.NetProfit, i), value(ds.NetMargin, i),
			value(ds.CurrentRatio, i), value(ds.DebtToEquity, i), value(ds.ROE, i))
		if i < len(ds.EstimatedCashFlow) && ds.EstimatedCashFlow[i] {
			b.WriteString(" (cash flows estimated)")
		}
		b.WriteString("\n")
	}

	if len(ds.QualitativeEvents) > 0 {
		b.WriteString("\nNotable events:\n")
		for _, ev := range ds.QualitativeEvents {
			fmt.Fprintf(&b, "- [%s, %s, %s] %s (%.1fM)\n", ev.Year, ev.Nature, ev.Trend, ev.Description, ev.Amount)
		}
	}

	if len(ds.DuplicateYears) > 0 {
		fmt.Fprintf(&b, "\nCaution: fiscal year(s) %s appear more than once in the source data.\n", strings.Join(ds.DuplicateYears, ", "))
	}

	return b.String()
}

func value(series []float64, i int) float64 {
	if i < len(series) {
		return series[i]
	}
	return 0
}
