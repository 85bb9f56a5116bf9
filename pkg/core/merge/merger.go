// Package merge combines cleaned single-period records into one chart-ready
// multi-year dataset.
package merge

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"findash/pkg/core/extract"
)

// ErrNoRecords is returned when a merge is attempted on an empty input set.
var ErrNoRecords = errors.New("merge: no records to merge")

// Merge combines the given period records into a single dataset sorted
// ascending by fiscal year. The canonical company name is taken from the
// chronologically last record. Duplicate fiscal years are kept as separate
// entries and surfaced in DuplicateYears.
func Merge(records []*extract.PeriodRecord) (*extract.Dataset, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	sorted := make([]*extract.PeriodRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return yearKey(sorted[i].FiscalYear) < yearKey(sorted[j].FiscalYear)
	})

	n := len(sorted)
	ds := &extract.Dataset{
		CompanyName:        sorted[n-1].CompanyName,
		Years:              make([]string, 0, n),
		Revenue:            make([]float64, 0, n),
		GrossProfit:        make([]float64, 0, n),
		NetProfit:          make([]float64, 0, n),
		GrossMargin:        make([]float64, 0, n),
		NetMargin:          make([]float64, 0, n),
		TotalLiabilities:   make([]float64, 0, n),
		ShareholderEquity:  make([]float64, 0, n),
		CurrentAssets:      make([]float64, 0, n),
		CurrentLiabilities: make([]float64, 0, n),
		CurrentRatio:       make([]float64, 0, n),
		DebtToEquity:       make([]float64, 0, n),
		ROE:                make([]float64, 0, n),
		OperatingCashFlow:  make([]float64, 0, n),
		InvestingCashFlow:  make([]float64, 0, n),
		FinancingCashFlow:  make([]float64, 0, n),
		FCF:                make([]float64, 0, n),
		EstimatedCashFlow:  make([]bool, 0, n),
	}

	seen := make(map[string]int, n)
	for _, rec := range sorted {
		ds.Years = append(ds.Years, rec.FiscalYear)
		ds.Revenue = append(ds.Revenue, rec.Revenue)
		ds.GrossProfit = append(ds.GrossProfit, rec.GrossProfit)
		ds.NetProfit = append(ds.NetProfit, rec.NetProfit)
		ds.GrossMargin = append(ds.GrossMargin, rec.GrossMargin)
		ds.NetMargin = append(ds.NetMargin, rec.NetMargin)
		ds.TotalLiabilities = append(ds.TotalLiabilities, rec.TotalLiabilities)
		ds.ShareholderEquity = append(ds.ShareholderEquity, rec.ShareholderEquity)
		ds.CurrentAssets = append(ds.CurrentAssets, rec.CurrentAssets)
		ds.CurrentLiabilities = append(ds.CurrentLiabilities, rec.CurrentLiabilities)
		ds.CurrentRatio = append(ds.CurrentRatio, rec.CurrentRatio)
		ds.DebtToEquity = append(ds.DebtToEquity, rec.DebtToEquity)
		ds.ROE = append(ds.ROE, rec.ROE)

		estimated := false
		ds.OperatingCashFlow = append(ds.OperatingCashFlow, cashFlow(rec.OperatingCashFlow, &estimated))
		ds.InvestingCashFlow = append(ds.InvestingCashFlow, cashFlow(rec.InvestingCashFlow, &estimated))
		ds.FinancingCashFlow = append(ds.FinancingCashFlow, cashFlow(rec.FinancingCashFlow, &estimated))
		ds.FCF = append(ds.FCF, cashFlow(rec.FCF, &estimated))
		ds.EstimatedCashFlow = append(ds.EstimatedCashFlow, estimated)

		if rec.Dividends != nil {
			if ds.Dividends == nil {
				ds.Dividends = make(map[string]float64)
			}
			ds.Dividends[rec.FiscalYear] = *rec.Dividends
		}
		if rec.CashEquivalents != nil {
			if ds.CashEquivalents == nil {
				ds.CashEquivalents = make(map[string]float64)
			}
			ds.CashEquivalents[rec.FiscalYear] = *rec.CashEquivalents
		}

		ds.QualitativeEvents = append(ds.QualitativeEvents, rec.QualitativeEvents...)

		if rec.SourceFile != "" {
			ds.Sources = append(ds.Sources, extract.SourceRef{Year: rec.FiscalYear, File: rec.SourceFile})
		}

		seen[rec.FiscalYear]++
		if seen[rec.FiscalYear] == 2 {
			ds.DuplicateYears = append(ds.DuplicateYears, rec.FiscalYear)
		}
	}

	// Most recent events first.
	sort.SliceStable(ds.QualitativeEvents, func(i, j int) bool {
		return yearKey(ds.QualitativeEvents[i].Year) > yearKey(ds.QualitativeEvents[j].Year)
	})

	return ds, nil
}

// yearKey parses the leading integer of a fiscal-year label for ordering, so
// decorated labels like "2024E" still sort by year. Labels with no leading
// digits sort first rather than failing the merge.
func yearKey(year string) int {
	s := strings.TrimSpace(year)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func cashFlow(v *extract.CashFlowValue, estimated *bool) float64 {
	if v == nil {
		return 0
	}
	if v.Estimated {
		*estimated = true
	}
	return v.Value
}
