package summarize

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/formlens/formlens/internal/analysis"
)

// stubGenerator returns canned text keyed by the column label found in
// the user prompt.
type stubGenerator struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   int
}

func (s *stubGenerator) Generate(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	label := labelFromPrompt(req)
	if err, ok := s.errs[label]; ok {
		return nil, err
	}
	text, ok := s.replies[label]
	if !ok {
		text = "A plain description. Another sentence."
	}
	return &ChatResponse{Choices: []Choice{{Message: Message{Content: text}}}}, nil
}

func labelFromPrompt(req ChatRequest) string {
	for _, m := range req.Messages {
		if m.Role != "user" {
			continue
		}
		for _, line := range strings.Split(m.Content, "\n") {
			if rest, ok := strings.CutPrefix(line, "Column: "); ok {
				return rest
			}
		}
	}
	return ""
}

// blockingGenerator never answers until its context expires.
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func distributions(labels ...string) []analysis.Distribution {
	out := make([]analysis.Distribution, len(labels))
	for i, l := range labels {
		out[i] = analysis.Distribution{
			ColumnID:   "col-" + l,
			Label:      l,
			TotalValid: 10,
			Entries:    []analysis.DistributionEntry{{Name: "a", Count: 10, Percentage: 100}},
		}
	}
	return out
}

func TestDescribeColumnsAllSucceed(t *testing.T) {
	gen := &stubGenerator{replies: map[string]string{
		"Major": "Most respondents chose CS. Math was second.",
		"Year":  "Seniors dominate the sample. Juniors follow.",
	}}
	s := NewSummarizer(gen, Options{Model: "m"})

	got, fails, err := s.DescribeColumns(context.Background(), distributions("Major", "Year"))
	if err != nil {
		t.Fatalf("DescribeColumns: %v", err)
	}
	if len(fails) != 0 {
		t.Fatalf("failures = %v", fails)
	}
	if got["col-Major"] != "Most respondents chose CS. Math was second." {
		t.Fatalf("Major summary = %q", got["col-Major"])
	}
	if got["col-Year"] != "Seniors dominate the sample. Juniors follow." {
		t.Fatalf("Year summary = %q", got["col-Year"])
	}
}

func TestDescribeColumnsTimeoutDegradesOneColumn(t *testing.T) {
	gen := &stubGenerator{errs: map[string]error{
		"C": context.DeadlineExceeded,
	}}
	s := NewSummarizer(gen, Options{Model: "m", CallTimeout: 50 * time.Millisecond})

	got, fails, err := s.DescribeColumns(context.Background(), distributions("A", "B", "C", "D", "E"))
	if err != nil {
		t.Fatalf("DescribeColumns: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("summaries = %d, want one per column", len(got))
	}
	if got["col-C"] != Fallback {
		t.Fatalf("failed column = %q, want fallback", got["col-C"])
	}
	for _, id := range []string{"col-A", "col-B", "col-D", "col-E"} {
		if got[id] == Fallback {
			t.Fatalf("column %s degraded, only C should fail", id)
		}
	}
	if len(fails) != 1 || fails[0].Label != "C" || fails[0].Reason != "timeout" {
		t.Fatalf("failures = %v", fails)
	}
}

func TestDescribeColumnsSchemaMismatchFallsBack(t *testing.T) {
	gen := &stubGenerator{replies: map[string]string{"A": "   "}}
	s := NewSummarizer(gen, Options{Model: "m"})

	got, fails, err := s.DescribeColumns(context.Background(), distributions("A"))
	if err != nil {
		t.Fatalf("DescribeColumns: %v", err)
	}
	if got["col-A"] != Fallback {
		t.Fatalf("summary = %q, want fallback", got["col-A"])
	}
	if len(fails) != 1 || fails[0].Reason != "schema mismatch" {
		t.Fatalf("failures = %v", fails)
	}
}

func TestDescribeColumnsRejectsPrescriptiveOutput(t *testing.T) {
	gen := &stubGenerator{replies: map[string]string{
		"A": "You should focus recruiting on CS majors.",
	}}
	s := NewSummarizer(gen, Options{Model: "m"})

	got, fails, err := s.DescribeColumns(context.Background(), distributions("A"))
	if err != nil {
		t.Fatalf("DescribeColumns: %v", err)
	}
	if got["col-A"] != Fallback {
		t.Fatalf("prescriptive output stored: %q", got["col-A"])
	}
	if len(fails) != 1 || fails[0].Reason != "contract violation" {
		t.Fatalf("failures = %v", fails)
	}
}

func TestDescribeColumnsTruncatesToThreeSentences(t *testing.T) {
	gen := &stubGenerator{replies: map[string]string{
		"A": "One. Two. Three. Four. Five.",
	}}
	s := NewSummarizer(gen, Options{Model: "m"})

	got, _, err := s.DescribeColumns(context.Background(), distributions("A"))
	if err != nil {
		t.Fatalf("DescribeColumns: %v", err)
	}
	if got["col-A"] != "One. Two. Three." {
		t.Fatalf("summary = %q, want three sentences", got["col-A"])
	}
}

func TestDescribeColumnsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSummarizer(blockingGenerator{}, Options{Model: "m", CallTimeout: time.Second})

	got, _, err := s.DescribeColumns(ctx, distributions("A", "B"))
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if got != nil {
		t.Fatalf("partial result returned on cancellation: %v", got)
	}
}

func TestNewSummarizerClampsTemperature(t *testing.T) {
	var captured ChatRequest
	gen := &captureGenerator{req: &captured}
	s := NewSummarizer(gen, Options{Model: "m", Temperature: 1.5})

	if _, _, err := s.DescribeColumns(context.Background(), distributions("A")); err != nil {
		t.Fatalf("DescribeColumns: %v", err)
	}
	if captured.Temperature != 0.1 {
		t.Fatalf("temperature = %v, want clamped to 0.1", captured.Temperature)
	}
}

type captureGenerator struct{ req *ChatRequest }

func (c *captureGenerator) Generate(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	*c.req = req
	return &ChatResponse{Choices: []Choice{{Message: Message{Content: "A description. More detail."}}}}, nil
}
