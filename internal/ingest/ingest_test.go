package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/formlens/formlens/internal/analysis"
	"github.com/formlens/formlens/internal/session"
	"github.com/formlens/formlens/internal/summarize"
	"github.com/formlens/formlens/internal/survey"
)

// okGenerator answers every summary request with the same short text.
type okGenerator struct{}

func (okGenerator) Generate(ctx context.Context, req summarize.ChatRequest) (*summarize.ChatResponse, error) {
	return &summarize.ChatResponse{
		Choices: []summarize.Choice{{Message: summarize.Message{Content: "A factual description. It covers the split."}}},
	}, nil
}

// failingGenerator rejects every request.
type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, req summarize.ChatRequest) (*summarize.ChatResponse, error) {
	return nil, errors.New("backend down")
}

func surveyCSV() []byte {
	lines := []string{"Timestamp,Major,Year"}
	majors := []string{"CS", "Math"}
	years := []string{"Senior", "Junior", "Senior"}
	for i := 0; i < 12; i++ {
		lines = append(lines, "2024-05-01,"+majors[i%2]+","+years[i%3])
	}
	return []byte(strings.Join(lines, "\n"))
}

func newTestPipeline(t *testing.T, gen summarize.Generator) (*Pipeline, *session.Registry) {
	t.Helper()
	reg, err := session.NewRegistry(session.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	s := summarize.NewSummarizer(gen, summarize.Options{Model: "m"})
	c := analysis.NewHeuristicClassifier(analysis.DefaultThresholds())
	return NewPipeline(c, s, reg), reg
}

func TestRunCommitsCompleteSession(t *testing.T) {
	p, reg := newTestPipeline(t, okGenerator{})

	sess, warnings, err := p.Run(context.Background(), "survey.csv", surveyCSV(), Options{Title: "Spring survey"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if warnings.EmptyClassification != nil || warnings.DefectRows != 0 || len(warnings.SummaryFailures) != 0 {
		t.Fatalf("warnings = %+v", warnings)
	}
	if sess.Title != "Spring survey" || sess.SourceName != "survey.csv" {
		t.Fatalf("session = %+v", sess)
	}
	if sess.ParticipationCount != 12 {
		t.Fatalf("participation = %d, want 12", sess.ParticipationCount)
	}
	if sess.IsPublic {
		t.Fatalf("fresh session must be private")
	}
	if len(sess.Columns) != 2 {
		t.Fatalf("columns = %d, want 2 (timestamp dropped)", len(sess.Columns))
	}
	for _, c := range sess.Columns {
		if !c.IsVisualizable {
			t.Fatalf("column %q not visualizable", c.Label)
		}
		if sess.ColumnDescriptions[c.ID] == "" {
			t.Fatalf("column %q has no description", c.Label)
		}
	}
	if _, ok := sess.CorrelationData["Major x Year"]; !ok {
		t.Fatalf("missing cross-tabulation, got %v", sess.CorrelationData)
	}
	if err := sess.Validate(); err != nil {
		t.Fatalf("committed session invalid: %v", err)
	}

	if got, err := reg.Get(sess.ID, true); err != nil || got.Title != "Spring survey" {
		t.Fatalf("session not in registry: %+v, %v", got, err)
	}
	if raw, err := reg.Artifact(sess.ID, true); err != nil || len(raw) == 0 {
		t.Fatalf("source artifact not stored: %v", err)
	}
}

func TestRunDegradesFailedSummaries(t *testing.T) {
	p, _ := newTestPipeline(t, failingGenerator{})

	sess, warnings, err := p.Run(context.Background(), "survey.csv", surveyCSV(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(warnings.SummaryFailures) != 2 {
		t.Fatalf("failures = %d, want one per visualizable column", len(warnings.SummaryFailures))
	}
	for _, c := range sess.Columns {
		if sess.ColumnDescriptions[c.ID] != summarize.Fallback {
			t.Fatalf("column %q = %q, want fallback", c.Label, sess.ColumnDescriptions[c.ID])
		}
	}
	// A degraded session is still complete and committed.
	if err := sess.Validate(); err != nil {
		t.Fatalf("degraded session invalid: %v", err)
	}
}

func TestRunDefaultsTitleToSourceName(t *testing.T) {
	p, _ := newTestPipeline(t, okGenerator{})

	sess, _, err := p.Run(context.Background(), "uploads/q2.csv", surveyCSV(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sess.Title != "uploads/q2.csv" {
		t.Fatalf("title = %q, want source name", sess.Title)
	}
}

func TestRunReportsDefectsAndEmptyClassification(t *testing.T) {
	p, _ := newTestPipeline(t, okGenerator{})

	// One malformed row; the single surviving column has no variation.
	csv := "Rating\nbad\"row\nsame\nsame\nsame\n"
	sess, warnings, err := p.Run(context.Background(), "flat.csv", []byte(csv), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if warnings.DefectRows != 1 {
		t.Fatalf("defects = %d, want 1", warnings.DefectRows)
	}
	if warnings.EmptyClassification == nil {
		t.Fatalf("expected empty-classification warning")
	}
	if warnings.EmptyClassification.Source != "flat.csv" {
		t.Fatalf("warning source = %q", warnings.EmptyClassification.Source)
	}
	if len(sess.ColumnDescriptions) != 0 {
		t.Fatalf("descriptions requested with zero charts: %v", sess.ColumnDescriptions)
	}
	if sess.DefectCount != 1 {
		t.Fatalf("defect count = %d, want 1", sess.DefectCount)
	}
}

func TestRunNeverCommitsOnInterruption(t *testing.T) {
	store := session.NewMemoryStore()
	reg, err := session.NewRegistry(store, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	s := summarize.NewSummarizer(hangingGenerator{}, summarize.Options{Model: "m"})
	c := analysis.NewHeuristicClassifier(analysis.DefaultThresholds())
	p := NewPipeline(c, s, reg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := p.Run(ctx, "survey.csv", surveyCSV(), Options{}); err == nil {
		t.Fatalf("expected interruption error")
	}

	if persisted, _ := store.Load(); len(persisted) != 0 {
		t.Fatalf("partial session persisted: %d", len(persisted))
	}
	if got := reg.List(true); len(got) != 0 {
		t.Fatalf("partial session cached: %d", len(got))
	}
}

type hangingGenerator struct{}

func (hangingGenerator) Generate(ctx context.Context, req summarize.ChatRequest) (*summarize.ChatResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRunRejectsMalformedSource(t *testing.T) {
	p, _ := newTestPipeline(t, okGenerator{})

	var perr *survey.ParseError
	if _, _, err := p.Run(context.Background(), "empty.csv", nil, Options{}); !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *survey.ParseError", err)
	}
}
