package export

import (
	"errors"
	"fmt"
	"time"

	"marafon/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Foydalanuvchilar"
	dateLayout  = "2006-01-02 15:04"
	defaultName = "Sheet1"
)

// ErrNoRows is returned when there is nothing to export.
var ErrNoRows = errors.New("no rows to export")

var headers = []string{
	"user_id", "phone", "full_name", "age", "region", "height", "weight",
	"registration_date", "is_subscribed", "course_type", "amount", "status", "submission_date",
}

// XLSXExporter renders export rows as a single-sheet workbook.
type XLSXExporter struct {
	location *time.Location
}

func NewXLSXExporter(location *time.Location) *XLSXExporter {
	if location == nil {
		location = time.UTC
	}
	return &XLSXExporter{location: location}
}

// FileName returns the document name for an export made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("users_export_%s.xlsx", t.Format("20060102_150405"))
}

func (e *XLSXExporter) Export(rows []models.ExportRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultName, SheetName); err != nil {
		return nil, fmt.Errorf("error renaming sheet: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", lastCell, style)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := e.rowValues(r)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 14)
	_ = f.SetColWidth(SheetName, "B", "C", 22)
	_ = f.SetColWidth(SheetName, "H", "H", 18)
	_ = f.SetColWidth(SheetName, "M", "M", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *XLSXExporter) rowValues(r models.ExportRow) []interface{} {
	values := []interface{}{
		r.UserID, r.Phone, r.FullName, r.Age, r.Region, r.Height, r.Weight,
		r.RegisteredAt.In(e.location).Format(dateLayout), r.IsSubscribed,
		r.CourseKey, "", r.Status, "",
	}
	if r.Amount != nil {
		values[10] = *r.Amount
	}
	if r.SubmittedAt != nil {
		values[12] = r.SubmittedAt.In(e.location).Format(dateLayout)
	}
	return values
}
