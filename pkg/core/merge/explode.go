package merge

import (
	"findash/pkg/core/extract"
)

// Explode expands a merged dataset back into per-year period records so an
// already-merged payload can participate in a larger batch merge. Qualitative
// events are attached to the record of their own year; events with no
// matching year ride on the latest record.
func Explode(ds *extract.Dataset) []*extract.PeriodRecord {
	n := len(ds.Years)
	if n == 0 {
		return nil
	}

	records := make([]*extract.PeriodRecord, 0, n)
	for i, year := range ds.Years {
		rec := &extract.PeriodRecord{
			CompanyName:        ds.CompanyName,
			FiscalYear:         year,
			Revenue:            at(ds.Revenue, i),
			GrossProfit:        at(ds.GrossProfit, i),
			NetProfit:          at(ds.NetProfit, i),
			GrossMargin:        at(ds.GrossMargin, i),
			NetMargin:          at(ds.NetMargin, i),
			TotalLiabilities:   at(ds.TotalLiabilities, i),
			ShareholderEquity:  at(ds.ShareholderEquity, i),
			CurrentAssets:      at(ds.CurrentAssets, i),
			CurrentLiabilities: at(ds.CurrentLiabilities, i),
			CurrentRatio:       at(ds.CurrentRatio, i),
			DebtToEquity:       at(ds.DebtToEquity, i),
			ROE:                at(ds.ROE, i),
		}

		estimated := i < len(ds.EstimatedCashFlow) && ds.EstimatedCashFlow[i]
		rec.OperatingCashFlow = &extract.CashFlowValue{Value: at(ds.OperatingCashFlow, i), Estimated: estimated}
		rec.InvestingCashFlow = &extract.CashFlowValue{Value: at(ds.InvestingCashFlow, i), Estimated: estimated}
		rec.FinancingCashFlow = &extract.CashFlowValue{Value: at(ds.FinancingCashFlow, i), Estimated: estimated}
		rec.FCF = &extract.CashFlowValue{Value: at(ds.FCF, i), Estimated: estimated}

		if v, ok := ds.Dividends[year]; ok {
			d := v
			rec.Dividends = &d
		}
		if v, ok := ds.CashEquivalents[year]; ok {
			c := v
			rec.CashEquivalents = &c
		}

		if src := sourceFor(ds.Sources, year); src != "" {
			rec.SourceFile = src
		}

		records = append(records, rec)
	}

	latest := records[len(records)-1]
	byYear := make(map[string]*extract.PeriodRecord, n)
	for _, rec := range records {
		byYear[rec.FiscalYear] = rec
	}
	for _, ev := range ds.QualitativeEvents {
		target, ok := byYear[ev.Year]
		if !ok {
			target = latest
		}
		target.QualitativeEvents = append(target.QualitativeEvents, ev)
	}

	return records
}

func at(series []float64, i int) float64 {
	if i < len(series) {
		return series[i]
	}
	return 0
}

func sourceFor(sources []extract.SourceRef, year string) string {
	for _, s := range sources {
		if s.Year == year {
			return s.File
		}
	}
	return ""
}
