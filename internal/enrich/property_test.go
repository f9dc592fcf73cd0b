package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
)

type stubProvider struct {
	name string
	data *PropertyData
	err  error
}

func (p stubProvider) Name() string { return p.name }
func (p stubProvider) Lookup(context.Context, PropertyQuery) (*PropertyData, error) {
	return p.data, p.err
}

func TestPropertyChainFirstHitWins(t *testing.T) {
	svc := NewPropertyService(slog.Default(),
		stubProvider{name: "a", err: fmt.Errorf("unavailable")},
		stubProvider{name: "b", data: &PropertyData{Found: true, YearBuilt: 1978, Source: "b"}},
		stubProvider{name: "c", data: &PropertyData{Found: true, YearBuilt: 2001, Source: "c"}},
	)

	got := svc.Lookup(context.Background(), PropertyQuery{Address: "1 Main St"})
	if !got.Found || got.Source != "b" {
		t.Errorf("expected provider b result, got %+v", got)
	}
	if got.YearBuilt != 1978 {
		t.Errorf("expected year 1978, got %d", got.YearBuilt)
	}
}

func TestPropertyChainExhaustedFallsBackToManualEntry(t *testing.T) {
	svc := NewPropertyService(slog.Default(),
		stubProvider{name: "a", err: fmt.Errorf("down")},
		stubProvider{name: "b", data: &PropertyData{ManualEntry: true}},
	)

	got := svc.Lookup(context.Background(), PropertyQuery{Address: "1 Main St"})
	if got.Found {
		t.Error("expected miss")
	}
	if !got.ManualEntry {
		t.Error("expected manual entry response")
	}
	if got.Address != "1 Main St" {
		t.Errorf("manual entry should echo the address, got %q", got.Address)
	}
}

func TestPropertyChainNoProviders(t *testing.T) {
	svc := NewPropertyService(slog.Default())
	got := svc.Lookup(context.Background(), PropertyQuery{Address: "1 Main St"})
	if !got.ManualEntry {
		t.Error("expected manual entry with no providers configured")
	}
}

func TestComplianceForKnownState(t *testing.T) {
	got := ComplianceFor("CA")
	if got.ManualEntry {
		t.Error("CA should have a curated requirement set")
	}
	if len(got.Requirements) <= len(baselineRequirements) {
		t.Errorf("expected state-specific requirements beyond the baseline, got %d", len(got.Requirements))
	}
}

func TestComplianceForUnknownState(t *testing.T) {
	got := ComplianceFor("ZZ")
	if !got.ManualEntry {
		t.Error("unknown state should flag manual entry")
	}
	if len(got.Requirements) != len(baselineRequirements) {
		t.Errorf("unknown state should get the baseline only, got %d", len(got.Requirements))
	}
}
