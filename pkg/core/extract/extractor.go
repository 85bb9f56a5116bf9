package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"findash/pkg/core/agent"
	"findash/pkg/core/llm"
	"findash/pkg/core/utils"
)

// RoleExtractor is the agent role used for document extraction calls.
const RoleExtractor = "extractor"

const extractorSystemPrompt = `You are a financial data extraction engine.
You read annual report text and reply with exactly one JSON object, no prose,
no markdown fences.`

// Extractor turns raw document text into a structured Document via an LLM
// call. The model's reply is advisory: malformed fields degrade rather than
// fail.
type Extractor struct {
	agents *agent.Manager
}

// NewExtractor creates an extractor on top of an agent manager.
func NewExtractor(agents *agent.Manager) *Extractor {
	return &Extractor{agents: agents}
}

// Extract sends one document's text to the model and decodes the reply. The
// payload may come back single-period (a flat record) or multi-period (a
// dataset with a years array); both are detected here.
func (e *Extractor) Extract(ctx context.Context, fileName string, text string) (*Document, error) {
	prompt := buildPrompt(fileName, text)

	reply, err := e.agents.Generate(ctx, RoleExtractor, prompt, extractorSystemPrompt, llm.Options{JSONMode: true})
	if err != nil {
		return nil, fmt.Errorf("extraction call failed for %s: %w", fileName, err)
	}

	doc, err := DecodePayload(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extraction for %s: %w", fileName, err)
	}
	if doc.Record != nil {
		doc.Record.SourceFile = fileName
	}
	return doc, nil
}

// DecodePayload parses an extractor reply into a Document, repairing the JSON
// when needed. A payload carrying a "years" array is treated as an
// already-merged dataset; anything else decodes as a single-period record.
func DecodePayload(payload string) (*Document, error) {
	var probe map[string]json.RawMessage
	normalized, err := utils.SmartParse(payload, &probe)
	if err != nil {
		return nil, err
	}

	if isMergedShape(probe) {
		var ds Dataset
		if err := json.Unmarshal([]byte(normalized), &ds); err != nil {
			return nil, fmt.Errorf("failed to decode merged dataset: %w", err)
		}
		return &Document{Dataset: &ds}, nil
	}

	var rec RawRecord
	if err := json.Unmarshal([]byte(normalized), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &Document{Record: &rec}, nil
}

// isMergedShape reports whether the payload has a non-empty "years" array.
func isMergedShape(probe map[string]json.RawMessage) bool {
	raw, ok := probe["years"]
	if !ok {
		return false
	}
	var years []interface{}
	if err := json.Unmarshal(raw, &years); err != nil {
		return false
	}
	return len(years) > 0
}

// buildPrompt assembles the extraction instructions around the document text.
func buildPrompt(fileName string, text string) string {
	var b strings.Builder
	b.WriteString("Extract the financial figures from the annual report below.\n")
	b.WriteString("Reply with one JSON object using exactly these keys:\n\n")
	b.WriteString(`  companyName (string), fiscalYear (string),
  revenue, grossProfit, netProfit, grossMargin, netMargin,
  totalLiabilities, shareholderEquity, currentAssets, currentLiabilities,
  currentRatio, debtToEquity, roe,
  operatingCashFlow, investingCashFlow, financingCashFlow, fcf,
  dividends, cashEquivalents (numbers),
  qualitativeEvents (array of {description, amount, year, nature, trend})`)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Monetary figures in raw currency units as printed; do not convert.\n")
	b.WriteString("- Use null for anything the report does not state. Never invent numbers.\n")
	b.WriteString("- nature is \"recurring\" or \"one-time\"; trend is \"positive\" or \"negative\".\n")
	b.WriteString(fmt.Sprintf("\nSource file: %s\n\n--- DOCUMENT ---\n", fileName))
	b.WriteString(text)
	return b.String()
}
