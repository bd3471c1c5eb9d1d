package sales

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const scheduleSheet = "Schedule"

// ScheduleWorkbook renders a sale's installment schedule as an xlsx
// workbook, one row per installment plus a totals row.
func ScheduleWorkbook(sale *Sale) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", scheduleSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	headers := []string{"#", "Due date", "Amount (" + sale.Currency + ")", "Paid", "Paid at"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(scheduleSheet, cell, h)
		f.SetCellStyle(scheduleSheet, cell, cell, headerStyle)
	}
	f.SetPanes(scheduleSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	total := 0.0
	paid := 0.0
	for i, inst := range sale.Installments {
		row := i + 2
		f.SetCellValue(scheduleSheet, fmt.Sprintf("A%d", row), inst.Sequence)
		f.SetCellValue(scheduleSheet, fmt.Sprintf("B%d", row), inst.DueDate.Format("2006-01-02"))
		f.SetCellValue(scheduleSheet, fmt.Sprintf("C%d", row), inst.Amount)
		if inst.Paid() {
			f.SetCellValue(scheduleSheet, fmt.Sprintf("D%d", row), "Yes")
			f.SetCellValue(scheduleSheet, fmt.Sprintf("E%d", row), inst.PaidAt.Format("2006-01-02"))
		} else {
			f.SetCellValue(scheduleSheet, fmt.Sprintf("D%d", row), "No")
		}
		total += inst.Amount
		paid += inst.PaidAmount
	}

	totalsRow := len(sale.Installments) + 2
	f.SetCellValue(scheduleSheet, fmt.Sprintf("B%d", totalsRow), "Total")
	f.SetCellValue(scheduleSheet, fmt.Sprintf("C%d", totalsRow), total)
	f.SetCellValue(scheduleSheet, fmt.Sprintf("D%d", totalsRow), fmt.Sprintf("%.2f paid", paid))

	f.SetColWidth(scheduleSheet, "B", "E", 16)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ReceiptPDF renders an A4 receipt for a recorded payment.
func ReceiptPDF(sale *Sale, payment *Payment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Payment Receipt", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, fmt.Sprintf("Issued: %s", time.Now().Format("2006-01-02")), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	lines := []struct {
		label string
		value string
	}{
		{"Receipt no.", payment.ID.String()},
		{"Sale", sale.ID.String()},
		{"Buyer", sale.BuyerName},
		{"Amount", fmt.Sprintf("%s %.2f", sale.Currency, payment.Amount)},
		{"Reference", payment.Reference},
		{"Received", payment.ReceivedAt.Format("2006-01-02")},
	}
	for _, line := range lines {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 7, line.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, line.value, "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	outstanding := 0.0
	for _, inst := range sale.Installments {
		if !inst.Paid() {
			outstanding += inst.Amount - inst.PaidAmount
		}
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 7, "Outstanding:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s %.2f", sale.Currency, outstanding), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
