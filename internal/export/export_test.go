package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

func sampleRecord() *entity.SummaryRecord {
	rec := entity.NewSummaryRecord()
	rec.PatientInfo.Name = entity.StrPtr("Jane Doe")
	rec.PatientInfo.Age = entity.StrPtr("30")
	rec.ChiefComplaint = entity.StrPtr("Shortness of breath")
	rec.VitalSigns.Set("O2 Sat", "85%")
	rec.VitalSigns.Set("HR", "118")
	rec.Medications = []string{"Aspirin 81mg"}
	rec.Diagnoses = []string{"Pneumonia", "COPD exacerbation"}
	rec.CriticalFlags = []string{"Low oxygen saturation (O2 Sat 85%)"}
	return rec
}

func TestFormatText(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	out := FormatText(sampleRecord(), at)

	order := []string{
		"MEDICAL REPORT SUMMARY",
		"PATIENT INFORMATION",
		"Name: Jane Doe",
		"Age: 30",
		"CRITICAL FLAGS",
		"! Low oxygen saturation (O2 Sat 85%)",
		"CHIEF COMPLAINT",
		"Shortness of breath",
		"DIAGNOSES",
		"1. Pneumonia",
		"2. COPD exacerbation",
		"VITAL SIGNS",
		"O2 Sat: 85%",
		"HR: 118",
		"MEDICATIONS",
		"1. Aspirin 81mg",
		"Generated on: 2024-03-01 09:30:00",
	}
	pos := 0
	for _, want := range order {
		i := strings.Index(out[pos:], want)
		if i < 0 {
			t.Fatalf("missing or out of order %q in:\n%s", want, out)
		}
		pos += i + len(want)
	}
	for _, absent := range []string{"Gender:", "LABORATORY RESULTS", "ALLERGIES", "\nSUMMARY\n"} {
		if strings.Contains(out, absent) {
			t.Errorf("unexpected %q in:\n%s", absent, out)
		}
	}
}

func TestFormatTextCapsMedications(t *testing.T) {
	rec := entity.NewSummaryRecord()
	for i := 1; i <= 12; i++ {
		rec.Medications = append(rec.Medications, fmt.Sprintf("Drug%d", i))
	}
	out := FormatText(rec, time.Now())
	if !strings.Contains(out, "10. Drug10") || strings.Contains(out, "11. Drug11") {
		t.Errorf("medication cap not applied:\n%s", out)
	}
	if !strings.Contains(out, "(+2 more)") {
		t.Errorf("missing overflow note:\n%s", out)
	}
}

func newTestService() *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestReportXLSX(t *testing.T) {
	data, err := newTestService().ReportXLSX(sampleRecord())
	if err != nil {
		t.Fatalf("ReportXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) < 2 || rows[0][0] != "Field" || rows[1][0] != "Name" || rows[1][1] != "Jane Doe" {
		t.Fatalf("rows = %q", rows)
	}
	got := map[string]bool{}
	for _, r := range rows[1:] {
		got[r[0]+"="+r[1]] = true
	}
	for _, want := range []string{"O2 Sat=85%", "Medication=Aspirin 81mg", "Diagnosis=COPD exacerbation"} {
		if !got[want] {
			t.Errorf("missing row %q", want)
		}
	}
}

func TestBatchXLSX(t *testing.T) {
	data, err := newTestService().BatchXLSX([]BatchRow{
		{Source: "a.txt", Record: sampleRecord()},
		{Source: "b.txt", Err: "empty medical report"},
	})
	if err != nil {
		t.Fatalf("BatchXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Reports")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1][0] != "a.txt" || rows[1][1] != "Jane Doe" || rows[1][8] != "O2 Sat: 85%, HR: 118" {
		t.Errorf("row 1 = %q", rows[1])
	}
	if rows[2][0] != "b.txt" || rows[2][len(rows[2])-1] != "empty medical report" {
		t.Errorf("row 2 = %q", rows[2])
	}
}
