package transform

import (
	"findash/pkg/core/extract"
)

// Cash-flow estimate factors applied when the extractor reports nothing.
// Rough empirical multiples of net profit; substitutes for missing data, never
// ground truth, and always flagged Estimated on the way out.
const (
	estOperatingFactor = 1.2
	estInvestingFactor = -0.3
	estFinancingFactor = -0.5
	estFCFFactor       = 0.9
)

// Transformer converts one raw extraction record into one normalized
// single-period record. Stateless; the zero value is ready to use.
type Transformer struct{}

// NewTransformer creates a Transformer.
func NewTransformer() *Transformer { return &Transformer{} }

// Transform cleans a raw record into a period record. It cannot fail: every
// unresolvable field degrades to zero (rendered as "N/A" downstream), derived
// ratios are computed only when the extractor reported nothing usable and the
// divisor is positive, and missing cash flows are filled with flagged
// estimates.
func (t *Transformer) Transform(raw *extract.RawRecord) *extract.PeriodRecord {
	monetary := func(key string) float64 {
		return ToMillions(Coerce(raw.Field(key), 0))
	}

	rec := &extract.PeriodRecord{
		CompanyName:        NormalizeCompanyName(raw.CompanyName),
		FiscalYear:         raw.FiscalYear,
		Revenue:            monetary(extract.MetricRevenue),
		GrossProfit:        monetary(extract.MetricGrossProfit),
		NetProfit:          monetary(extract.MetricNetProfit),
		GrossMargin:        Coerce(raw.Field(extract.MetricGrossMargin), 0),
		NetMargin:          Coerce(raw.Field(extract.MetricNetMargin), 0),
		TotalLiabilities:   monetary(extract.MetricTotalLiabilities),
		ShareholderEquity:  monetary(extract.MetricShareholderEquity),
		CurrentAssets:      monetary(extract.MetricCurrentAssets),
		CurrentLiabilities: monetary(extract.MetricCurrentLiabilities),
		CurrentRatio:       Coerce(raw.Field(extract.MetricCurrentRatio), 0),
		DebtToEquity:       Coerce(raw.Field(extract.MetricDebtToEquity), 0),
		ROE:                Coerce(raw.Field(extract.MetricROE), 0),
		QualitativeEvents:  raw.QualitativeEvents,
		SourceFile:         raw.SourceFile,
	}

	// Derived-ratio fallback. The reported value wins whenever it is truthy;
	// the computed value fills in only against a positive divisor.
	if rec.NetMargin == 0 && rec.Revenue > 0 {
		rec.NetMargin = rec.NetProfit / rec.Revenue * 100
	}
	if rec.CurrentRatio == 0 && rec.CurrentLiabilities > 0 {
		rec.CurrentRatio = rec.CurrentAssets / rec.CurrentLiabilities
	}
	if rec.DebtToEquity == 0 && rec.ShareholderEquity > 0 {
		rec.DebtToEquity = rec.TotalLiabilities / rec.ShareholderEquity
	}
	if rec.ROE == 0 && rec.ShareholderEquity > 0 {
		rec.ROE = rec.NetProfit / rec.ShareholderEquity * 100
	}

	rec.OperatingCashFlow = t.cashFlow(raw, extract.MetricOperatingCashFlow, rec.NetProfit*estOperatingFactor)
	rec.InvestingCashFlow = t.cashFlow(raw, extract.MetricInvestingCashFlow, rec.NetProfit*estInvestingFactor)
	rec.FinancingCashFlow = t.cashFlow(raw, extract.MetricFinancingCashFlow, rec.NetProfit*estFinancingFactor)
	rec.FCF = t.cashFlow(raw, extract.MetricFCF, rec.NetProfit*estFCFFactor)

	if f := raw.Field(extract.MetricDividends); f.Kind != extract.FieldMissing {
		v := ToMillions(Coerce(f, 0))
		rec.Dividends = &v
	}
	if f := raw.Field(extract.MetricCashEquivalents); f.Kind != extract.FieldMissing {
		v := ToMillions(Coerce(f, 0))
		rec.CashEquivalents = &v
	}

	return rec
}

// cashFlow returns the reported figure, or the flagged estimate when the
// extractor reported nothing truthy.
func (t *Transformer) cashFlow(raw *extract.RawRecord, key string, estimate float64) *extract.CashFlowValue {
	if reported := ToMillions(Coerce(raw.Field(key), 0)); reported != 0 {
		return &extract.CashFlowValue{Value: reported}
	}
	return &extract.CashFlowValue{Value: estimate, Estimated: true}
}

// Passthrough handles payloads that are already in merged, multi-period form
// (re-uploads of exported datasets). The data passes through unchanged except
// that the company name is re-canonicalized. Idempotence guard, not a
// transform.
func (t *Transformer) Passthrough(ds *extract.Dataset) *extract.Dataset {
	ds.CompanyName = NormalizeCompanyName(ds.CompanyName)
	return ds
}

// WrapDataset lifts a single period record into a length-1 dataset so that
// single-document uploads and multi-document merges feed charts through the
// same shape.
func WrapDataset(rec *extract.PeriodRecord) *extract.Dataset {
	ds := &extract.Dataset{
		CompanyName:        rec.CompanyName,
		Years:              []string{rec.FiscalYear},
		Revenue:            []float64{rec.Revenue},
		GrossProfit:        []float64{rec.GrossProfit},
		NetProfit:          []float64{rec.NetProfit},
		GrossMargin:        []float64{rec.GrossMargin},
		NetMargin:          []float64{rec.NetMargin},
		TotalLiabilities:   []float64{rec.TotalLiabilities},
		ShareholderEquity:  []float64{rec.ShareholderEquity},
		CurrentAssets:      []float64{rec.CurrentAssets},
		CurrentLiabilities: []float64{rec.CurrentLiabilities},
		CurrentRatio:       []float64{rec.CurrentRatio},
		DebtToEquity:       []float64{rec.DebtToEquity},
		ROE:                []float64{rec.ROE},
		OperatingCashFlow:  []float64{cashFlowValue(rec.OperatingCashFlow)},
		InvestingCashFlow:  []float64{cashFlowValue(rec.InvestingCashFlow)},
		FinancingCashFlow:  []float64{cashFlowValue(rec.FinancingCashFlow)},
		FCF:                []float64{cashFlowValue(rec.FCF)},
		EstimatedCashFlow:  []bool{cashFlowEstimated(rec)},
		QualitativeEvents:  rec.QualitativeEvents,
	}
	if rec.Dividends != nil {
		ds.Dividends = map[string]float64{rec.FiscalYear: *rec.Dividends}
	}
	if rec.CashEquivalents != nil {
		ds.CashEquivalents = map[string]float64{rec.FiscalYear: *rec.CashEquivalents}
	}
	if rec.SourceFile != "" {
		ds.Sources = []extract.SourceRef{{Year: rec.FiscalYear, File: rec.SourceFile}}
	}
	return ds
}

func cashFlowValue(v *extract.CashFlowValue) float64 {
	if v == nil {
		return 0
	}
	return v.Value
}

func cashFlowEstimated(rec *extract.PeriodRecord) bool {
	for _, v := range []*extract.CashFlowValue{rec.OperatingCashFlow, rec.InvestingCashFlow, rec.FinancingCashFlow, rec.FCF} {
		if v != nil && v.Estimated {
			return true
		}
	}
	return false
}
