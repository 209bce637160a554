package main

import (
	"fmt"
	"log"

	"github.com/grovetrack/importflow/internal/config"
	"github.com/grovetrack/importflow/internal/costing"
	"github.com/grovetrack/importflow/internal/database"
	"github.com/grovetrack/importflow/internal/models"
	"github.com/grovetrack/importflow/internal/utils"
)

func main() {
	fmt.Println("🌱 importflow Demo Data Seeder")

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	// Run migrations first
	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.Shipment{},
		&models.ShipmentArchive{},
		&models.ImportCostEstimate{},
		&models.SupplierDocument{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	// Check if data already exists
	var shipmentCount int64
	db.Model(&models.Shipment{}).Count(&shipmentCount)
	if shipmentCount > 0 {
		fmt.Printf("⚠️  Database already has %d shipments. Clear it first? (y/N): ", shipmentCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE supplier_documents CASCADE")
		db.Exec("TRUNCATE TABLE import_cost_estimates CASCADE")
		db.Exec("TRUNCATE TABLE shipment_archives CASCADE")
		db.Exec("TRUNCATE TABLE shipments CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println("📦 Creating demo data...")

	// 1. Users
	fmt.Println("👤 Creating users...")
	adminHash, _ := utils.HashPassword("admin123")
	supplierHash, _ := utils.HashPassword("supplier123")
	users := []models.UserAuth{
		{Username: "admin", Email: "admin@importflow.local", Password: adminHash, Name: "Admin", Role: models.RoleAdmin},
		{Username: "acme", Email: "portal@acmetrading.example", Password: supplierHash, Name: "Acme Portal", Role: models.RoleSupplier, Supplier: "Acme Trading Co"},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create user %s: %v", users[i].Username, err)
		}
	}

	// 2. Shipments across the lifecycle
	fmt.Println("🚢 Creating shipments...")
	shipments := []models.Shipment{
		{Supplier: "Acme Trading Co", OrderRef: "PO-2025-0001", ProductName: "Stainless fasteners", Quantity: 5000, WeekNumber: 34, LatestStatus: models.StatusPlanning},
		{Supplier: "Acme Trading Co", OrderRef: "PO-2025-0002", ProductName: "Bearing housings", Quantity: 1200, WeekNumber: 34, LatestStatus: models.StatusInTransit},
		{Supplier: "Eastline Exports", OrderRef: "PO-2025-0003", ProductName: "Gasket sets", Quantity: 800, WeekNumber: 35, LatestStatus: models.StatusArrivedPTA},
		{Supplier: "Eastline Exports", OrderRef: "PO-2025-0004", ProductName: "Hydraulic seals", Quantity: 400, WeekNumber: 35, LatestStatus: models.StatusInspectionPending},
	}
	for i := range shipments {
		if err := db.Create(&shipments[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create shipment %s: %v", shipments[i].OrderRef, err)
		}
	}

	// 3. A cost estimate for the arrived shipment
	fmt.Println("💰 Creating cost estimate...")
	sched, _ := costing.ResolveSchedule(costing.ScheduleAgency)
	est := models.ImportCostEstimate{
		ShipmentID:         &shipments[2].ID,
		Supplier:           shipments[2].Supplier,
		RoeOrigin:          18.25,
		OriginChargeUsd:    2400,
		CartageZar:         3100,
		PortHandlingZar:    1850,
		DocumentationZar:   450,
		CustomsValueZar:    86000,
		CustomsDutiesZar:   4300,
		CustomsVatZar:      12900,
		TotalGrossWeightKg: 2150,
		FeeSchedule:        sched.Code,
	}
	costing.CalculateAllTotals(&est, sched)
	if err := db.Create(&est).Error; err != nil {
		log.Fatalf("❌ Failed to create cost estimate: %v", err)
	}

	fmt.Println("✅ Demo data created")
	fmt.Printf("   admin login:    admin@importflow.local / admin123\n")
	fmt.Printf("   supplier login: portal@acmetrading.example / supplier123\n")
}
