package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

// Service produces XLSX bytes for one record or a batch of them.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BatchRow is one report in a batch workbook. Err is set when the report
// produced no record.
type BatchRow struct {
	Source string
	Record *entity.SummaryRecord
	Err    string
}

// ReportXLSX returns a single-sheet workbook with one field per row.
func (s *Service) ReportXLSX(rec *entity.SummaryRecord) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Summary"
	if err := useSheet(f, sheet); err != nil {
		return nil, err
	}
	setHeader(f, sheet, []string{"Field", "Value"})

	row := 2
	write := func(field, value string) {
		if value == "" {
			return
		}
		a, _ := excelize.CoordinatesToCellName(1, row)
		b, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, a, field)
		_ = f.SetCellValue(sheet, b, value)
		row++
	}

	p := rec.PatientInfo
	write("Name", entity.Deref(p.Name))
	write("Age", entity.Deref(p.Age))
	write("Gender", entity.Deref(p.Gender))
	write("MRN", entity.Deref(p.MRN))
	write("DOB", entity.Deref(p.DOB))
	write("Chief Complaint", entity.Deref(rec.ChiefComplaint))
	write("Summary", entity.Deref(rec.Narrative))
	for _, k := range rec.VitalSigns.Keys() {
		v, _ := rec.VitalSigns.Get(k)
		write(k, v)
	}
	writeList := func(field string, items []string) {
		for _, it := range items {
			write(field, it)
		}
	}
	writeList("Critical Flag", rec.CriticalFlags)
	writeList("Diagnosis", rec.Diagnoses)
	writeList("Medication", rec.Medications)
	writeList("Lab Result", rec.LabResults)
	writeList("Allergy", rec.Allergies)
	writeList("Procedure", rec.Procedures)
	writeList("Recommendation", rec.Recommendations)

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "rows", row-2, "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

var batchHeaders = []string{
	"Source",
	"Name",
	"Age",
	"Gender",
	"MRN",
	"Chief Complaint",
	"Diagnoses",
	"Medications",
	"Vital Signs",
	"Lab Results",
	"Critical Flags",
	"Summary",
	"Error",
}

// BatchXLSX returns a workbook with one row per report.
func (s *Service) BatchXLSX(rows []BatchRow) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Reports"
	if err := useSheet(f, sheet); err != nil {
		return nil, err
	}
	setHeader(f, sheet, batchHeaders)

	for i, r := range rows {
		row := i + 2
		write := func(col int, v string) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, truncate(v, 2000))
		}
		write(1, r.Source)
		if r.Record == nil {
			write(13, r.Err)
			continue
		}
		rec := r.Record
		write(2, entity.Deref(rec.PatientInfo.Name))
		write(3, entity.Deref(rec.PatientInfo.Age))
		write(4, entity.Deref(rec.PatientInfo.Gender))
		write(5, entity.Deref(rec.PatientInfo.MRN))
		write(6, entity.Deref(rec.ChiefComplaint))
		write(7, strings.Join(rec.Diagnoses, "; "))
		write(8, strings.Join(rec.Medications, "; "))
		write(9, vitalsLine(rec.VitalSigns))
		write(10, strings.Join(rec.LabResults, "; "))
		write(11, strings.Join(rec.CriticalFlags, "; "))
		write(12, entity.Deref(rec.Narrative))
		write(13, r.Err)
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "E", 14)
	_ = f.SetColWidth(sheet, "F", "L", 40)
	_ = f.SetColWidth(sheet, "M", "M", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.batch.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func useSheet(f *excelize.File, sheet string) error {
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	return nil
}

func setHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, style)
}

func vitalsLine(v entity.VitalSigns) string {
	parts := make([]string, 0, v.Len())
	for _, k := range v.Keys() {
		val, _ := v.Get(k)
		parts = append(parts, k+": "+val)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
