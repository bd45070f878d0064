package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"hospital-admin-dashboard/internal/appointments"
)

// SheetName is the worksheet holding the exported rows.
const SheetName = "Appointments"

var headers = []any{
	"ID", "Serial", "Status", "Date", "Patient", "Mobile", "Doctor",
	"Age", "Blood group", "Fee", "Payment", "Reason",
}

// WriteAppointments writes page as an .xlsx workbook: one row per
// appointment followed by the summary counts.
func WriteAppointments(w io.Writer, page appointments.Page, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeHeader(f); err != nil {
		return err
	}

	for i, row := range page.Appointments {
		values := []any{
			row.ID,
			row.SerialNumber,
			string(row.DisplayStatus),
			"",
			row.PatientName,
			row.MobileNumber,
			row.DoctorName,
			"",
			appointments.DecodeBloodGroup(row.BloodGroup),
			"",
			row.PaymentMethod,
			row.Reason,
		}
		if d := appointments.EffectiveDate(row.Appointment, loc); !d.IsZero() {
			values[3] = d.In(loc).Format(appointments.DateLayout)
		}
		if row.Age != nil {
			values[7] = *row.Age
		}
		if row.ConsultationFee != nil {
			values[9] = *row.ConsultationFee
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	summaryRow := len(page.Appointments) + 3
	summary := []struct {
		label string
		value int
	}{
		{"Total", page.Summary.Total},
		{"Complete", page.Summary.Complete},
		{"Pending", page.Summary.Pending},
		{"Cancelled", page.Summary.Cancelled},
	}
	for i, s := range summary {
		cell, err := excelize.CoordinatesToCellName(1, summaryRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &[]any{s.label, s.value}); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	return f.Write(w)
}

func writeHeader(f *excelize.File) error {
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0EBF5"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 16); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	// Keep the header visible while scrolling.
	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
