package transform

import (
	"math"
	"testing"

	"findash/pkg/core/extract"
)

func makeRawRecord(metrics map[string]extract.RawField) *extract.RawRecord {
	return &extract.RawRecord{
		CompanyName: "AL NAHDI MEDICAL COMPANY",
		FiscalYear:  "2024",
		Metrics:     metrics,
		SourceFile:  "nahdi_2024.txt",
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTransformDerivedRatios(t *testing.T) {
	raw := makeRawRecord(map[string]extract.RawField{
		extract.MetricRevenue:            extract.NumberField(8713.7),
		extract.MetricNetProfit:          extract.NumberField(871.4),
		extract.MetricTotalLiabilities:   extract.NumberField(3000),
		extract.MetricShareholderEquity:  extract.NumberField(4000),
		extract.MetricCurrentAssets:      extract.NumberField(2500),
		extract.MetricCurrentLiabilities: extract.NumberField(2000),
	})

	rec := NewTransformer().Transform(raw)

	if !almostEqual(rec.NetMargin, 871.4/8713.7*100) {
		t.Errorf("netMargin: expected %v, got %v", 871.4/8713.7*100, rec.NetMargin)
	}
	if !almostEqual(rec.CurrentRatio, 1.25) {
		t.Errorf("currentRatio: expected 1.25, got %v", rec.CurrentRatio)
	}
	if !almostEqual(rec.DebtToEquity, 0.75) {
		t.Errorf("debtToEquity: expected 0.75, got %v", rec.DebtToEquity)
	}
	if !almostEqual(rec.ROE, 871.4/4000*100) {
		t.Errorf("roe: expected %v, got %v", 871.4/4000*100, rec.ROE)
	}
}

func TestTransformNetMarginFallbackScenario(t *testing.T) {
	raw := makeRawRecord(map[string]extract.RawField{
		extract.MetricRevenue:   extract.NumberField(8616.2),
		extract.MetricNetProfit: extract.NumberField(887.8),
	})

	rec := NewTransformer().Transform(raw)

	if math.Abs(rec.NetMargin-10.30) > 0.1 {
		t.Errorf("netMargin: expected ~10.30, got %v", rec.NetMargin)
	}
}

func TestTransformWrappedFieldsScenario(t *testing.T) {
	raw := makeRawRecord(map[string]extract.RawField{
		extract.MetricRevenue:           extract.WrappedField(8713.7),
		extract.MetricNetProfit:         extract.WrappedField(892.6),
		extract.MetricShareholderEquity: extract.WrappedField(2462.8),
	})

	rec := NewTransformer().Transform(raw)

	if rec.CompanyName != "Nahdi Medical Company" {
		t.Errorf("companyName: got %q", rec.CompanyName)
	}
	if math.Abs(rec.ROE-36.24) > 0.1 {
		t.Errorf("roe: expected ~36.24, got %v", rec.ROE)
	}
}

func TestTransformReportedRatioWins(t *testing.T) {
	raw := makeRawRecord(map[string]extract.RawField{
		extract.MetricRevenue:   extract.NumberField(1000),
		extract.MetricNetProfit: extract.NumberField(100),
		extract.MetricNetMargin: extract.NumberField(12.5),
	})

	rec := NewTransformer().Transform(raw)

	if rec.NetMargin != 12.5 {
		t.Errorf("reported netMargin should win: expected 12.5, got %v", rec.NetMargin)
	}
}

func TestTransformNoRatioWithoutPositiveDivisor(t *testing.T) {
	raw := makeRawRecord(map[string]extract.RawField{
		extract.MetricNetProfit:         extract.NumberField(100),
		extract.MetricTotalLiabilities:  extract.NumberField(500),
		extract.MetricShareholderEquity: extract.NumberField(0),
	})

	rec := NewTransformer().Transform(raw)

	if rec.DebtToEquity != 0 {
		t.Errorf("debtToEquity with zero equity: expected 0, got %v", rec.DebtToEquity)
	}
	if rec.ROE != 0 {
		t.Errorf("roe with zero equity: expected 0, got %v", rec.ROE)
	}
	if rec.NetMargin != 0 {
		t.Errorf("netMargin with zero revenue: expected 0, got %v", rec.NetMargin)
	}
}

func TestTransformCashFlowEstimates(t *testing.T) {
	raw := makeRawRecord(map[string]extract.RawField{
		extract.MetricNetProfit: extract.NumberField(100),
	})

	rec := NewTransformer().Transform(raw)

	cases := []struct {
		name string
		got  *extract.CashFlowValue
		want float64
	}{
		{"operating", rec.OperatingCashFlow, 120},
		{"investing", rec.InvestingCashFlow, -30},
		{"financing", rec.FinancingCashFlow, -50},
		{"fcf", rec.FCF, 90},
	}
	for _, c := range cases {
		if c.got == nil {
			t.Fatalf("%s cash flow is nil", c.name)
		}
		if !almostEqual(c.got.Value, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got.Value)
		}
		if !c.got.Estimated {
			t.Errorf("%s: estimate not flagged", c.name)
		}
	}
}

func TestTransformReportedCashFlowNotFlagged(t *testing.T) {
	raw := makeRawRecord(map[string]extract.RawField{
		extract.MetricNetProfit:         extract.NumberField(100),
		extract.MetricOperatingCashFlow: extract.NumberField(140),
	})

	rec := NewTransformer().Transform(raw)

	if rec.OperatingCashFlow.Value != 140 {
		t.Errorf("expected reported 140, got %v", rec.OperatingCashFlow.Value)
	}
	if rec.OperatingCashFlow.Estimated {
		t.Error("reported cash flow must not be flagged estimated")
	}
	if !rec.FCF.Estimated {
		t.Error("missing fcf should still be estimated")
	}
}

func TestTransformUnitNormalization(t *testing.T) {
	raw := makeRawRecord(map[string]extract.RawField{
		extract.MetricRevenue:   extract.NumberField(8713700000),
		extract.MetricNetProfit: extract.TextField("SAR 871,400,000"),
	})

	rec := NewTransformer().Transform(raw)

	if !almostEqual(rec.Revenue, 8713.7) {
		t.Errorf("revenue: expected 8713.7, got %v", rec.Revenue)
	}
	if !almostEqual(rec.NetProfit, 871.4) {
		t.Errorf("netProfit: expected 871.4, got %v", rec.NetProfit)
	}
}

func TestTransformOptionalFields(t *testing.T) {
	withDividends := makeRawRecord(map[string]extract.RawField{
		extract.MetricDividends: extract.NumberField(250),
	})
	rec := NewTransformer().Transform(withDividends)
	if rec.Dividends == nil || *rec.Dividends != 250 {
		t.Errorf("expected dividends 250, got %v", rec.Dividends)
	}
	if rec.CashEquivalents != nil {
		t.Error("cashEquivalents should stay nil when absent")
	}
}

func TestTransformNormalizesName(t *testing.T) {
	rec := NewTransformer().Transform(makeRawRecord(nil))
	if rec.CompanyName != "Nahdi Medical Company" {
		t.Errorf("expected 'Nahdi Medical Company', got %q", rec.CompanyName)
	}
}

func TestWrapDataset(t *testing.T) {
	raw := makeRawRecord(map[string]extract.RawField{
		extract.MetricRevenue:   extract.NumberField(1000),
		extract.MetricNetProfit: extract.NumberField(100),
	})
	rec := NewTransformer().Transform(raw)
	ds := WrapDataset(rec)

	if len(ds.Years) != 1 || ds.Years[0] != "2024" {
		t.Fatalf("expected single year 2024, got %v", ds.Years)
	}
	if len(ds.Revenue) != 1 || ds.Revenue[0] != 1000 {
		t.Errorf("expected revenue [1000], got %v", ds.Revenue)
	}
	if len(ds.EstimatedCashFlow) != 1 || !ds.EstimatedCashFlow[0] {
		t.Errorf("expected estimated cash flow flag, got %v", ds.EstimatedCashFlow)
	}
	if len(ds.Sources) != 1 || ds.Sources[0].File != "nahdi_2024.txt" {
		t.Errorf("expected provenance for nahdi_2024.txt, got %v", ds.Sources)
	}
}

func TestPassthroughRenormalizesName(t *testing.T) {
	ds := &extract.Dataset{
		CompanyName: "AL NAHDI MEDICAL COMPANY",
		Years:       []string{"2023", "2024"},
	}
	out := NewTransformer().Passthrough(ds)
	if out.CompanyName != "Nahdi Medical Company" {
		t.Errorf("expected normalized name, got %q", out.CompanyName)
	}
	if len(out.Years) != 2 {
		t.Errorf("years must pass through unchanged, got %v", out.Years)
	}
}
