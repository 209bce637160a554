package workflow

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"testing"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/grovetrack/importflow/internal/database"
	"github.com/grovetrack/importflow/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPort = 5599

var testDB *database.DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	dataDir, err := os.MkdirTemp("", "importflow-pg-test")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}

	epg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(testPort).
		DataPath(dataDir).
		Database("importflow_test"))
	if err := epg.Start(); err != nil {
		log.Fatalf("failed to start embedded postgres: %v", err)
	}

	dsn := fmt.Sprintf("host=localhost port=%d user=postgres password=postgres dbname=importflow_test sslmode=disable", testPort)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = epg.Stop()
		log.Fatalf("failed to connect to test database: %v", err)
	}

	testDB = &database.DB{DB: gdb}
	if err := testDB.AutoMigrate(&models.Shipment{}, &models.ShipmentArchive{}); err != nil {
		_ = epg.Stop()
		log.Fatalf("failed to migrate test schema: %v", err)
	}

	code := m.Run()

	_ = epg.Stop()
	_ = os.RemoveAll(dataDir)
	os.Exit(code)
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	if testDB == nil {
		t.Skip("database tests skipped in -short mode")
	}
	return NewEngine(testDB, nil, nil)
}

var orderSeq atomic.Int64

func createShipment(t *testing.T, status models.ShipmentStatus) *models.Shipment {
	t.Helper()
	s := &models.Shipment{
		Supplier:     "Acme Trading Co",
		OrderRef:     fmt.Sprintf("PO-TEST-%04d", orderSeq.Add(1)),
		ProductName:  "Widgets",
		Quantity:     100,
		WeekNumber:   32,
		LatestStatus: status,
	}
	if err := testDB.Create(s).Error; err != nil {
		t.Fatalf("failed to create test shipment: %v", err)
	}
	return s
}

func TestFullChainToStored(t *testing.T) {
	e := testEngine(t)
	s := createShipment(t, models.StatusArrivedPTA)

	steps := []struct {
		name string
		run  func() (*models.Shipment, error)
		want models.ShipmentStatus
	}{
		{"startUnloading", func() (*models.Shipment, error) { return e.StartUnloading(s.ID) }, models.StatusUnloading},
		{"completeUnloading", func() (*models.Shipment, error) { return e.CompleteUnloading(s.ID) }, models.StatusInspectionPending},
		{"startInspection", func() (*models.Shipment, error) { return e.StartInspection(s.ID, "thandi") }, models.StatusInspecting},
		{"completeInspection", func() (*models.Shipment, error) { return e.CompleteInspection(s.ID, true, "all good", "") }, models.StatusInspectionPassed},
		{"startReceiving", func() (*models.Shipment, error) { return e.StartReceiving(s.ID, "jacob") }, models.StatusReceiving},
		{"completeReceiving", func() (*models.Shipment, error) {
			return e.CompleteReceiving(s.ID, 100, "", "", nil)
		}, models.StatusReceived},
		{"markAsStored", func() (*models.Shipment, error) { return e.MarkAsStored(s.ID) }, models.StatusStored},
	}

	for _, step := range steps {
		got, err := step.run()
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if got.LatestStatus != step.want {
			t.Fatalf("%s: status = %s, want %s", step.name, got.LatestStatus, step.want)
		}
	}

	var final models.Shipment
	if err := testDB.First(&final, "id = ?", s.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if final.UnloadingStartDate == nil || final.UnloadingCompletedDate == nil {
		t.Error("unloading dates not stamped")
	}
	if final.InspectedBy != "thandi" || final.InspectionStatus != models.InspectionPassed {
		t.Errorf("inspection fields: inspectedBy=%q status=%q", final.InspectedBy, final.InspectionStatus)
	}
	if final.ReceivingStatus != models.ReceivingCompleted {
		t.Errorf("receivingStatus = %q, want completed", final.ReceivingStatus)
	}
}

func TestSkippingAStateFails(t *testing.T) {
	e := testEngine(t)
	s := createShipment(t, models.StatusUnloading)

	// completeReceiving while still unloading must fail and leave the row alone
	_, err := e.CompleteReceiving(s.ID, 100, "", "", nil)
	if !IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	var ite *InvalidTransitionError
	errors.As(err, &ite)
	if ite.Actual != models.StatusUnloading {
		t.Errorf("error actual = %s, want unloading", ite.Actual)
	}

	var reloaded models.Shipment
	if err := testDB.First(&reloaded, "id = ?", s.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.LatestStatus != models.StatusUnloading || reloaded.ReceivingStatus != "" {
		t.Errorf("record modified by failed transition: status=%s receivingStatus=%q",
			reloaded.LatestStatus, reloaded.ReceivingStatus)
	}
}

func TestTransitionIsNotIdempotent(t *testing.T) {
	e := testEngine(t)
	s := createShipment(t, models.StatusArrivedKLM)

	if _, err := e.StartUnloading(s.ID); err != nil {
		t.Fatalf("first startUnloading: %v", err)
	}
	_, err := e.StartUnloading(s.ID)
	if !IsInvalidTransition(err) {
		t.Fatalf("second startUnloading: expected InvalidTransitionError, got %v", err)
	}
}

func TestNotFoundIsDistinctFromWrongState(t *testing.T) {
	e := testEngine(t)

	_, err := e.StartUnloading("00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
	if IsInvalidTransition(err) {
		t.Error("not-found must not classify as invalid transition")
	}
}

func TestCompleteReceivingOutcomes(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name          string
		receivedQty   int
		discrepancies []models.Discrepancy
		wantReceiving string
		wantStatus    models.ShipmentStatus
	}{
		{"clean receipt", 100, nil, models.ReceivingCompleted, models.StatusReceived},
		{"over receipt counts as completed", 120, nil, models.ReceivingCompleted, models.StatusReceived},
		{"short quantity", 80, nil, models.ReceivingPartial, models.StatusReceiving},
		{"discrepancy", 100, []models.Discrepancy{{Type: "damage", Description: "crushed carton", Quantity: 4}}, models.ReceivingDiscrepancy, models.StatusReceiving},
		// Discrepancy check has priority even when the quantity is also short
		{"discrepancy beats short quantity", 80, []models.Discrepancy{{Type: "shortage", Description: "2 cartons missing"}}, models.ReceivingDiscrepancy, models.StatusReceiving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createShipment(t, models.StatusReceiving)
			got, err := e.CompleteReceiving(s.ID, tt.receivedQty, "counted at bay 3", "jacob", tt.discrepancies)
			if err != nil {
				t.Fatalf("completeReceiving: %v", err)
			}
			if got.ReceivingStatus != tt.wantReceiving {
				t.Errorf("receivingStatus = %q, want %q", got.ReceivingStatus, tt.wantReceiving)
			}
			if got.LatestStatus != tt.wantStatus {
				t.Errorf("latestStatus = %s, want %s", got.LatestStatus, tt.wantStatus)
			}
			if got.ReceivedQuantity == nil || *got.ReceivedQuantity != tt.receivedQty {
				t.Errorf("receivedQuantity not recorded: %v", got.ReceivedQuantity)
			}
		})
	}
}

func TestCompleteReceivingCanBeRepeatedAfterReview(t *testing.T) {
	e := testEngine(t)
	s := createShipment(t, models.StatusReceiving)

	// First count comes in short; shipment stays in receiving
	got, err := e.CompleteReceiving(s.ID, 60, "", "", nil)
	if err != nil {
		t.Fatalf("first completeReceiving: %v", err)
	}
	if got.ReceivingStatus != models.ReceivingPartial {
		t.Fatalf("receivingStatus = %q, want partial", got.ReceivingStatus)
	}

	// Recount finds the rest; second call completes the receipt
	got, err = e.CompleteReceiving(s.ID, 100, "recounted", "", nil)
	if err != nil {
		t.Fatalf("second completeReceiving: %v", err)
	}
	if got.ReceivingStatus != models.ReceivingCompleted || got.LatestStatus != models.StatusReceived {
		t.Errorf("after recount: receivingStatus=%q latestStatus=%s", got.ReceivingStatus, got.LatestStatus)
	}
}

func TestReInspectionAfterFailure(t *testing.T) {
	e := testEngine(t)
	s := createShipment(t, models.StatusInspecting)

	got, err := e.CompleteInspection(s.ID, false, "rust on 12 units", "thandi")
	if err != nil {
		t.Fatalf("completeInspection: %v", err)
	}
	if got.LatestStatus != models.StatusInspectionFailed || got.InspectionStatus != models.InspectionFailed {
		t.Fatalf("failed inspection: latestStatus=%s inspectionStatus=%q", got.LatestStatus, got.InspectionStatus)
	}

	// Re-inspect from the failed branch
	got, err = e.StartInspection(s.ID, "pieter")
	if err != nil {
		t.Fatalf("re-inspection: %v", err)
	}
	if got.LatestStatus != models.StatusInspecting || got.InspectedBy != "pieter" {
		t.Errorf("re-inspection: latestStatus=%s inspectedBy=%q", got.LatestStatus, got.InspectedBy)
	}
}

func TestRejectShipment(t *testing.T) {
	e := testEngine(t)
	s := createShipment(t, models.StatusInspectionFailed)

	got, err := e.RejectShipment(s.ID, "failed re-inspection twice", "manager", false)
	if err != nil {
		t.Fatalf("rejectShipment: %v", err)
	}
	if got.LatestStatus != models.StatusRejected {
		t.Errorf("latestStatus = %s, want rejected", got.LatestStatus)
	}
	if got.RejectionReason == "" || got.RejectionDate == nil || got.RejectedBy != "manager" {
		t.Errorf("rejection fields incomplete: %+v", got)
	}

	// Terminal: cannot reject again
	if _, err := e.RejectShipment(s.ID, "again", "manager", false); !IsInvalidTransition(err) {
		t.Errorf("second reject: expected InvalidTransitionError, got %v", err)
	}
}

func TestAmendStatus(t *testing.T) {
	e := testEngine(t)
	s := createShipment(t, models.StatusInspectionPending)

	got, err := e.AmendStatus(s.ID, models.StatusInTransit)
	if err != nil {
		t.Fatalf("amendStatus: %v", err)
	}
	if got.LatestStatus != models.StatusInTransit {
		t.Errorf("latestStatus = %s, want in_transit", got.LatestStatus)
	}

	// Forward targets are refused
	if _, err := e.AmendStatus(s.ID, models.StatusReceived); err == nil {
		t.Error("amend to a workflow state must fail")
	}
}

func TestConcurrentTransitionExactlyOneWins(t *testing.T) {
	e := testEngine(t)
	s := createShipment(t, models.StatusArrivedPTA)

	const attempts = 8
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, err := e.StartUnloading(s.ID)
			errs <- err
		}()
	}

	var wins, losses int
	for i := 0; i < attempts; i++ {
		if err := <-errs; err == nil {
			wins++
		} else if IsInvalidTransition(err) {
			losses++
		} else {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1 (losses=%d)", wins, losses)
	}
}
