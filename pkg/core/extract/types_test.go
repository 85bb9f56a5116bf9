package extract

import (
	"encoding/json"
	"testing"
)

func TestRawFieldUnmarshalShapes(t *testing.T) {
	cases := []struct {
		in   string
		kind FieldKind
	}{
		{`8713.7`, FieldNumber},
		{`"SAR 8,713.7M"`, FieldText},
		{`{"value": 542.1}`, FieldWrapped},
		{`null`, FieldMissing},
		{`true`, FieldMissing},
		{`[1, 2]`, FieldMissing},
		{`{"amount": 5}`, FieldMissing},
	}
	for _, c := range cases {
		var f RawField
		if err := json.Unmarshal([]byte(c.in), &f); err != nil {
			t.Fatalf("unmarshal %s: %v", c.in, err)
		}
		if f.Kind != c.kind {
			t.Errorf("%s: expected kind %s, got %s", c.in, c.kind, f.Kind)
		}
	}
}

func TestRawFieldWrappedValue(t *testing.T) {
	var f RawField
	if err := json.Unmarshal([]byte(`{"value": 542.1}`), &f); err != nil {
		t.Fatal(err)
	}
	if f.Number != 542.1 {
		t.Errorf("expected 542.1, got %v", f.Number)
	}
}

func TestRawRecordUnmarshal(t *testing.T) {
	payload := `{
		"companyName": "AL NAHDI MEDICAL COMPANY",
		"fiscalYear": 2024,
		"revenue": 8713.7,
		"netProfit": {"value": 871.4},
		"grossMargin": "38.2%",
		"qualitativeEvents": [
			{"description": "segment launch", "amount": 50, "year": "2024", "nature": "recurring", "trend": "positive"}
		]
	}`

	var rec RawRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if rec.CompanyName != "AL NAHDI MEDICAL COMPANY" {
		t.Errorf("companyName: got %q", rec.CompanyName)
	}
	// Numeric fiscal years are stringified.
	if rec.FiscalYear != "2024" {
		t.Errorf("fiscalYear: expected \"2024\", got %q", rec.FiscalYear)
	}
	if f := rec.Field(MetricRevenue); f.Kind != FieldNumber || f.Number != 8713.7 {
		t.Errorf("revenue: %+v", f)
	}
	if f := rec.Field(MetricNetProfit); f.Kind != FieldWrapped || f.Number != 871.4 {
		t.Errorf("netProfit: %+v", f)
	}
	if f := rec.Field(MetricGrossMargin); f.Kind != FieldText || f.Text != "38.2%" {
		t.Errorf("grossMargin: %+v", f)
	}
	if f := rec.Field(MetricROE); f.Kind != FieldMissing {
		t.Errorf("roe should be missing, got %+v", f)
	}
	if len(rec.QualitativeEvents) != 1 {
		t.Errorf("events: %+v", rec.QualitativeEvents)
	}
}

func TestDecodePayloadSinglePeriod(t *testing.T) {
	doc, err := DecodePayload(`{"companyName": "X", "fiscalYear": "2024", "revenue": 1000}`)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if doc.IsMerged() {
		t.Error("flat record must not decode as merged")
	}
	if doc.Record.FiscalYear != "2024" {
		t.Errorf("fiscalYear: %q", doc.Record.FiscalYear)
	}
}

func TestDecodePayloadMerged(t *testing.T) {
	doc, err := DecodePayload(`{
		"companyName": "Nahdi Medical Company",
		"years": ["2022", "2023"],
		"revenue": [2000, 3000]
	}`)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !doc.IsMerged() {
		t.Fatal("payload with years array must decode as merged")
	}
	if len(doc.Dataset.Years) != 2 || doc.Dataset.Revenue[1] != 3000 {
		t.Errorf("dataset: %+v", doc.Dataset)
	}
}

func TestDecodePayloadRepairsMalformedJSON(t *testing.T) {
	// Trailing comma plus markdown fence, the usual model output defects.
	payload := "```json\n{\"companyName\": \"X\", \"fiscalYear\": \"2024\", \"revenue\": 1000,}\n```"
	doc, err := DecodePayload(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if f := doc.Record.Field(MetricRevenue); f.Number != 1000 {
		t.Errorf("revenue after repair: %+v", f)
	}
}

func TestDatasetLatestYear(t *testing.T) {
	ds := &Dataset{Years: []string{"2022", "2023"}}
	if got := ds.LatestYear(); got != "2023" {
		t.Errorf("expected 2023, got %s", got)
	}
	if got := (&Dataset{}).LatestYear(); got != "" {
		t.Errorf("expected empty, got %s", got)
	}
}
