package workflow

import (
	"testing"

	"github.com/grovetrack/importflow/internal/models"
)

func TestIsArrival(t *testing.T) {
	for _, s := range ArrivalStates {
		if !IsArrival(s) {
			t.Errorf("IsArrival(%s) = false, want true", s)
		}
	}

	for _, s := range []models.ShipmentStatus{
		models.StatusPlanning,
		models.StatusUnloading,
		models.StatusStored,
	} {
		if IsArrival(s) {
			t.Errorf("IsArrival(%s) = true, want false", s)
		}
	}
}

func TestIsAmendTarget(t *testing.T) {
	tests := []struct {
		status models.ShipmentStatus
		want   bool
	}{
		{models.StatusPlanning, true},
		{models.StatusInTransit, true},
		{models.StatusArrivedPTA, true},
		{models.StatusArrivedKLM, true},
		{models.StatusArrivedOffsite, true},
		// The guarded chain must not be forgeable forwards
		{models.StatusUnloading, false},
		{models.StatusInspectionPassed, false},
		{models.StatusReceived, false},
		{models.StatusStored, false},
		{models.StatusRejected, false},
	}

	for _, tt := range tests {
		if got := IsAmendTarget(tt.status); got != tt.want {
			t.Errorf("IsAmendTarget(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRejectableFrom(t *testing.T) {
	if RejectableFrom(models.StatusStored) {
		t.Error("stored shipments must not be rejectable")
	}
	if RejectableFrom(models.StatusRejected) {
		t.Error("rejected shipments must not be rejectable again")
	}
	if !RejectableFrom(models.StatusInspectionFailed) {
		t.Error("inspection_failed must be rejectable")
	}
	if !RejectableFrom(models.StatusPlanning) {
		t.Error("planning must be rejectable (escape hatch)")
	}
}

func TestStartInspectionSources(t *testing.T) {
	sources := StartInspectionSources()
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0] != models.StatusInspectionPending || sources[1] != models.StatusInspectionFailed {
		t.Errorf("unexpected sources: %v", sources)
	}
}
