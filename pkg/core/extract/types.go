// Package extract defines the data contracts between the AI extraction
// collaborator and the normalization pipeline: the raw per-document record the
// LLM produces, the cleaned single-period record, and the multi-period
// chart-ready dataset.
package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FieldKind discriminates the shapes an extracted metric can arrive in.
// LLM output is inconsistent: the same metric may come back as a bare number,
// a {value: x} wrapper, a decorated string ("SAR 8,713.7M"), or be missing.
type FieldKind string

const (
	FieldMissing FieldKind = "missing"
	FieldNumber  FieldKind = "number"
	FieldWrapped FieldKind = "wrapped"
	FieldText    FieldKind = "text"
)

// RawField is a single metric as reported by the extractor, tagged by shape.
// The shape is resolved once, at JSON decode time, so downstream coercion is
// exhaustive instead of probing interface{} at every use site.
type RawField struct {
	Kind   FieldKind
	Number float64 // set for FieldNumber and FieldWrapped
	Text   string  // set for FieldText
}

// UnmarshalJSON classifies the incoming value into one of the four kinds.
// A wrapper object without a numeric "value" member degrades to FieldMissing.
func (f *RawField) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = RawField{Kind: FieldMissing}
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if math.IsNaN(num) || math.IsInf(num, 0) {
			*f = RawField{Kind: FieldMissing}
		} else {
			*f = RawField{Kind: FieldNumber, Number: num}
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = RawField{Kind: FieldText, Text: s}
		return nil
	}

	var wrapper struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Value != nil {
		var inner float64
		if err := json.Unmarshal(wrapper.Value, &inner); err == nil && !math.IsNaN(inner) && !math.IsInf(inner, 0) {
			*f = RawField{Kind: FieldWrapped, Number: inner}
			return nil
		}
	}

	// Arrays, booleans, malformed wrappers: all collapse to missing rather
	// than failing the whole record.
	*f = RawField{Kind: FieldMissing}
	return nil
}

// MarshalJSON writes the field back in its simplest faithful form.
func (f RawField) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case FieldNumber, FieldWrapped:
		return json.Marshal(f.Number)
	case FieldText:
		return json.Marshal(f.Text)
	default:
		return []byte("null"), nil
	}
}

// NumberField builds a RawField holding a plain number. Test and fixture helper.
func NumberField(v float64) RawField { return RawField{Kind: FieldNumber, Number: v} }

// TextField builds a RawField holding a decorated string.
func TextField(s string) RawField { return RawField{Kind: FieldText, Text: s} }

// WrappedField builds a RawField holding a {value: x} wrapper.
func WrappedField(v float64) RawField { return RawField{Kind: FieldWrapped, Number: v} }

// Metric keys the extractor is instructed to emit. These are the fixed field
// names of the collaborator contract; anything else in the LLM reply is kept
// in RawRecord.Metrics but ignored by the transformer.
const (
	MetricRevenue            = "revenue"
	MetricGrossProfit        = "grossProfit"
	MetricNetProfit          = "netProfit"
	MetricGrossMargin        = "grossMargin"
	MetricNetMargin          = "netMargin"
	MetricTotalLiabilities   = "totalLiabilities"
	MetricShareholderEquity  = "shareholderEquity"
	MetricCurrentAssets      = "currentAssets"
	MetricCurrentLiabilities = "currentLiabilities"
	MetricCurrentRatio       = "currentRatio"
	MetricDebtToEquity       = "debtToEquity"
	MetricROE                = "roe"
	MetricOperatingCashFlow  = "operatingCashFlow"
	MetricInvestingCashFlow  = "investingCashFlow"
	MetricFinancingCashFlow  = "financingCashFlow"
	MetricFCF                = "fcf"
	MetricDividends          = "dividends"
	MetricCashEquivalents    = "cashEquivalents"
)

// QualitativeEvent is a narrative financial event with a signed monetary
// impact, as extracted from the report text.
type QualitativeEvent struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Year        string  `json:"year"`
	Nature      string  `json:"nature"` // "recurring" or "one-time"
	Category    string  `json:"category,omitempty"`
	Trend       string  `json:"trend"` // "positive" or "negative"
}

// RawRecord is the AI-produced structured guess at one document's financial
// figures. Informational input only: the pipeline never mutates it.
type RawRecord struct {
	CompanyName       string             `json:"companyName"`
	FiscalYear        string             `json:"fiscalYear"`
	Metrics           map[string]RawField `json:"-"`
	QualitativeEvents []QualitativeEvent `json:"qualitativeEvents,omitempty"`

	// SourceFile is filled by the pipeline, not the extractor.
	SourceFile string `json:"-"`
}

// Field returns the named metric, or a missing field when absent.
func (r *RawRecord) Field(name string) RawField {
	if r.Metrics == nil {
		return RawField{Kind: FieldMissing}
	}
	if f, ok := r.Metrics[name]; ok {
		return f
	}
	return RawField{Kind: FieldMissing}
}

// reservedKeys are record-level members that must not land in Metrics.
var reservedKeys = map[string]bool{
	"companyName":       true,
	"fiscalYear":        true,
	"qualitativeEvents": true,
	"years":             true,
}

// UnmarshalJSON splits the flat extractor object into identity fields,
// qualitative events, and the metric map.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	r.Metrics = make(map[string]RawField, len(all))
	for key, raw := range all {
		switch key {
		case "companyName":
			var s *string
			if err := json.Unmarshal(raw, &s); err == nil && s != nil {
				r.CompanyName = *s
			}
		case "fiscalYear":
			// The extractor sometimes emits the year as a number.
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				r.FiscalYear = s
				continue
			}
			var n float64
			if err := json.Unmarshal(raw, &n); err == nil {
				r.FiscalYear = strconv.Itoa(int(n))
			}
		case "qualitativeEvents":
			var events []QualitativeEvent
			if err := json.Unmarshal(raw, &events); err == nil {
				r.QualitativeEvents = events
			}
		default:
			if reservedKeys[key] {
				continue
			}
			var f RawField
			if err := json.Unmarshal(raw, &f); err != nil {
				continue
			}
			r.Metrics[key] = f
		}
	}
	return nil
}

// MarshalJSON flattens the record back into the extractor wire shape.
func (r RawRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Metrics)+3)
	for k, v := range r.Metrics {
		out[k] = v
	}
	out["companyName"] = r.CompanyName
	out["fiscalYear"] = r.FiscalYear
	if len(r.QualitativeEvents) > 0 {
		out["qualitativeEvents"] = r.QualitativeEvents
	}
	return json.Marshal(out)
}

// CashFlowValue is a cash-flow figure that may be a heuristic estimate rather
// than a reported number. Estimated values are substitutes for unavailable
// data and are flagged so consumers never mistake them for ground truth.
type CashFlowValue struct {
	Value     float64 `json:"value"`
	Estimated bool    `json:"estimated,omitempty"`
}

// PeriodRecord is one fiscal year's cleaned, unit-consistent metrics.
// Monetary figures are in millions of currency units; margins and roe are
// percentages; currentRatio and debtToEquity are plain ratios. Every numeric
// field is a finite number (zero when unresolvable), never NaN.
type PeriodRecord struct {
	CompanyName        string  `json:"companyName"`
	FiscalYear         string  `json:"fiscalYear"`
	Revenue            float64 `json:"revenue"`
	GrossProfit        float64 `json:"grossProfit"`
	NetProfit          float64 `json:"netProfit"`
	GrossMargin        float64 `json:"grossMargin"`
	NetMargin          float64 `json:"netMargin"`
	TotalLiabilities   float64 `json:"totalLiabilities"`
	ShareholderEquity  float64 `json:"shareholderEquity"`
	CurrentAssets      float64 `json:"currentAssets"`
	CurrentLiabilities float64 `json:"currentLiabilities"`
	CurrentRatio       float64 `json:"currentRatio"`
	DebtToEquity       float64 `json:"debtToEquity"`
	ROE                float64 `json:"roe"`

	OperatingCashFlow *CashFlowValue `json:"operatingCashFlow,omitempty"`
	InvestingCashFlow *CashFlowValue `json:"investingCashFlow,omitempty"`
	FinancingCashFlow *CashFlowValue `json:"financingCashFlow,omitempty"`
	FCF               *CashFlowValue `json:"fcf,omitempty"`

	Dividends       *float64 `json:"dividends,omitempty"`
	CashEquivalents *float64 `json:"cashEquivalents,omitempty"`

	QualitativeEvents []QualitativeEvent `json:"qualitativeEvents,omitempty"`

	SourceFile string `json:"-"`
}

// SourceRef keeps {year, file} provenance for a merged period.
type SourceRef struct {
	Year string `json:"year"`
	File string `json:"file"`
}

// Dataset is the multi-year, array-aligned form consumed by charts. Every
// metric series has exactly len(Years) entries, aligned index-for-index with
// Years, which is sorted ascending by fiscal year.
type Dataset struct {
	CompanyName string   `json:"companyName"`
	Years       []string `json:"years"`

	Revenue            []float64 `json:"revenue"`
	GrossProfit        []float64 `json:"grossProfit"`
	NetProfit          []float64 `json:"netProfit"`
	GrossMargin        []float64 `json:"grossMargin"`
	NetMargin          []float64 `json:"netMargin"`
	TotalLiabilities   []float64 `json:"totalLiabilities"`
	ShareholderEquity  []float64 `json:"shareholderEquity"`
	CurrentAssets      []float64 `json:"currentAssets"`
	CurrentLiabilities []float64 `json:"currentLiabilities"`
	CurrentRatio       []float64 `json:"currentRatio"`
	DebtToEquity       []float64 `json:"debtToEquity"`
	ROE                []float64 `json:"roe"`
	OperatingCashFlow  []float64 `json:"operatingCashFlow"`
	InvestingCashFlow  []float64 `json:"investingCashFlow"`
	FinancingCashFlow  []float64 `json:"financingCashFlow"`
	FCF                []float64 `json:"fcf"`

	// True for years whose cash-flow figures include heuristic estimates.
	EstimatedCashFlow []bool `json:"estimatedCashFlow,omitempty"`

	Dividends       map[string]float64 `json:"dividends,omitempty"`
	CashEquivalents map[string]float64 `json:"cashEquivalents,omitempty"`

	QualitativeEvents []QualitativeEvent `json:"qualitativeEvents,omitempty"`

	// DuplicateYears surfaces fiscal years that appeared in more than one
	// input record. Duplicates are kept as separate entries; deciding
	// whether they are refilings or user error is the caller's problem.
	DuplicateYears []string `json:"duplicateYears,omitempty"`

	Sources []SourceRef `json:"_sources,omitempty"`
}

// LatestYear returns the last (most recent) fiscal year, or "" when empty.
func (d *Dataset) LatestYear() string {
	if len(d.Years) == 0 {
		return ""
	}
	return d.Years[len(d.Years)-1]
}

// Document is one decoded extractor payload: either a single-period raw
// record or an already-merged dataset (re-uploads of exported data).
type Document struct {
	Record  *RawRecord
	Dataset *Dataset
}

// IsMerged reports whether the payload arrived in multi-period form.
func (d *Document) IsMerged() bool { return d.Dataset != nil }
