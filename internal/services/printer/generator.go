package printer

import (
	"bytes"
	"fmt"

	"github.com/grovetrack/importflow/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// ShipmentLabelPDF creates an A6 put-away label for a shipment: a QR code
// encoding the order reference plus the key receiving details.
func ShipmentLabelPDF(s *models.Shipment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(8, 8, 8)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// QR content: scannable shipment reference
	qrContent := fmt.Sprintf("IMPORTFLOW/%s", s.OrderRef)
	qrPng, err := qrcode.Encode(qrContent, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}

	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	reader := bytes.NewReader(qrPng)
	_ = pdf.RegisterImageOptionsReader("qr", imgOptions, reader)

	// A6 is 105x148mm; QR centered in the upper half
	qrSize := 60.0
	pdf.ImageOptions("qr", (105-qrSize)/2, 12, qrSize, qrSize, false, imgOptions, 0, "")

	pdf.SetXY(8, 78)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(89, 8, s.OrderRef, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	rows := [][2]string{
		{"Supplier", s.Supplier},
		{"Product", s.ProductName},
		{"Quantity", fmt.Sprintf("%d", s.Quantity)},
		{"Week", fmt.Sprintf("%d", s.WeekNumber)},
		{"Status", string(s.LatestStatus)},
	}
	for _, row := range rows {
		pdf.SetX(8)
		pdf.CellFormat(28, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(61, 6, row[1], "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CostEstimatePDF renders the full landed-cost breakdown of an estimate
func CostEstimatePDF(est *models.ImportCostEstimate) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(180, 10, "Import Cost Estimate", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(180, 6, fmt.Sprintf("Estimate %s  -  Supplier: %s", est.ID, est.Supplier), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(180, 8, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
	}
	line := func(label string, amount float64) {
		pdf.CellFormat(120, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("R %.2f", amount), "", 1, "R", false, 0, "")
	}

	section("Origin Charges")
	line(fmt.Sprintf("USD %.2f @ %.4f", est.OriginChargeUsd, est.RoeOrigin), est.OriginChargeUsd*est.RoeOrigin)
	if est.OriginChargeEur != 0 {
		line(fmt.Sprintf("EUR %.2f @ %.4f", est.OriginChargeEur, est.RoeEur), est.OriginChargeEur*est.RoeEur)
	}
	line("Origin subtotal (ZAR)", est.OriginChargeZar)
	pdf.Ln(2)

	section("Local Charges")
	line("Cartage", est.CartageZar)
	line("Port handling", est.PortHandlingZar)
	line("Documentation", est.DocumentationZar)
	line("Container deposit", est.ContainerDepositZar)
	line("Facility fee", est.FacilityFeeZar)
	line("Local subtotal", est.LocalChargesSubtotalZar)
	pdf.Ln(2)

	section("Destination Charges")
	line("Transport to warehouse", est.TransportToWarehouseZar)
	line("Offloading", est.OffloadingZar)
	line("Storage", est.StorageZar)
	line("Destination subtotal", est.DestinationChargesSubtotalZar)
	pdf.Ln(2)

	section("Customs")
	if est.CustomsDutyNotApplicable {
		line("Duties (not applicable)", 0)
	} else {
		line("Duties", est.CustomsDutiesZar)
	}
	line("VAT", est.CustomsVatZar)
	line("Declaration fee", est.CustomsDeclarationZar)
	line(fmt.Sprintf("Clearing fee (%s)", est.FeeSchedule), est.AgencyFeeZar)
	line("Customs subtotal", est.CustomsSubtotalZar)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	line("Total shipping cost", est.TotalShippingCostZar)
	line("Total in-warehouse cost", est.TotalInWarehouseCostZar)
	pdf.Ln(2)
	line(fmt.Sprintf("Cost per kg (%.1f kg)", est.TotalGrossWeightKg), est.CostPerKgZar)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
