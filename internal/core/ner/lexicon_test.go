package ner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func defaultLexiconT(t *testing.T) *Lexicon {
	t.Helper()
	lx, err := LoadLexicon("", quiet())
	if err != nil {
		t.Fatalf("load embedded lexicon: %v", err)
	}
	return lx
}

func find(ents []entity.Entity, typ string) []string {
	var out []string
	for _, e := range ents {
		if e.Type == typ {
			out = append(out, e.Text)
		}
	}
	return out
}

func TestRecognizeLongestMatchAndExtensions(t *testing.T) {
	text := "67 year old male with acute myocardial infarction and type 2 diabetes mellitus. " +
		"Given Aspirin 325 mg and heparin. Hemoglobin: 12.5 g/dL, glucose was checked. MRN: AB12345"
	ents, err := defaultLexiconT(t).RecognizeEntities(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}

	dx := find(ents, constants.EntityDiagnosis)
	if len(dx) != 2 || dx[0] != "acute myocardial infarction" || dx[1] != "type 2 diabetes mellitus" {
		t.Errorf("diagnoses = %q", dx)
	}
	meds := find(ents, constants.EntityMedication)
	if len(meds) != 2 || meds[0] != "Aspirin 325 mg" || meds[1] != "heparin" {
		t.Errorf("medications = %q", meds)
	}
	labs := find(ents, constants.EntityLab)
	if len(labs) != 1 || labs[0] != "Hemoglobin: 12.5 g/dL" {
		t.Errorf("labs = %q", labs)
	}
	if got := find(ents, constants.EntityAge); len(got) != 1 || got[0] != "67" {
		t.Errorf("age = %q", got)
	}
	if got := find(ents, constants.EntityGender); len(got) != 1 || got[0] != "male" {
		t.Errorf("gender = %q", got)
	}
	if got := find(ents, constants.EntityMRN); len(got) != 1 || got[0] != "AB12345" {
		t.Errorf("mrn = %q", got)
	}

	for _, e := range ents {
		if text[e.Span.Start:e.Span.End] != e.Text {
			t.Errorf("span %+v does not cover %q", e.Span, e.Text)
		}
	}
}

func TestRecognizeWholeWordsOnly(t *testing.T) {
	ents, err := defaultLexiconT(t).RecognizeEntities(context.Background(), "Utilization review; stroked the cat; insulinoma")
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 0 {
		t.Errorf("unexpected entities %+v", ents)
	}
}

func TestRecognizeKeepsBareTerm(t *testing.T) {
	ents, err := defaultLexiconT(t).RecognizeEntities(context.Background(), "Takes aspirin 81mg daily.")
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 1 || ents[0].Text != "aspirin 81mg" || ents[0].Term != "aspirin" {
		t.Errorf("entities = %+v", ents)
	}
}

func TestLoadLexiconFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lex.json")
	if err := os.WriteFile(path, []byte(`{"diagnosis":["Widget Syndrome"]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	lx, err := LoadLexicon(path, quiet())
	if err != nil {
		t.Fatal(err)
	}
	ents, _ := lx.RecognizeEntities(context.Background(), "Known widget  syndrome.")
	if got := find(ents, constants.EntityDiagnosis); len(got) != 1 || got[0] != "widget  syndrome" {
		t.Errorf("diagnoses = %q", got)
	}
}

func TestNewLexiconRejectsUnknownType(t *testing.T) {
	if _, err := NewLexicon(map[string][]string{"person": {"x"}}, quiet()); err == nil {
		t.Error("expected error")
	}
	if _, err := NewLexicon(map[string][]string{}, quiet()); err == nil {
		t.Error("expected error for empty lexicon")
	}
}

func TestRecognizeHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := defaultLexiconT(t).RecognizeEntities(ctx, "pneumonia"); err == nil {
		t.Error("expected context error")
	}
}
