package summarize

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/formlens/formlens/internal/analysis"
)

// Fallback is the clearly-marked stand-in stored for a column whose
// summary could not be generated.
const Fallback = "Summary unavailable."

// maxTemperature caps generation randomness so repeated runs over the
// same distribution keep stable phrasing.
const maxTemperature = 0.3

// Generator is the minimal surface the summarizer needs from a text
// backend. *Client satisfies it; tests inject stubs.
type Generator interface {
	Generate(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Options tunes the summarizer. Zero values fall back to defaults.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// CallTimeout bounds each per-column request.
	CallTimeout time.Duration
}

// Summarizer produces one short descriptive string per visualizable
// column. It owns the contract with the text service: descriptive-only
// output, bounded length, deterministic-leaning generation, and a
// per-column fallback instead of a failed ingestion.
type Summarizer struct {
	gen         Generator
	model       string
	temperature float64
	maxTokens   int
	callTimeout time.Duration
}

func NewSummarizer(gen Generator, opts Options) *Summarizer {
	temp := opts.Temperature
	if temp <= 0 || temp > maxTemperature {
		temp = 0.1
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 200
	}
	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Summarizer{
		gen:         gen,
		model:       opts.Model,
		temperature: temp,
		maxTokens:   maxTokens,
		callTimeout: callTimeout,
	}
}

// DescribeColumns requests one summary per distribution concurrently and
// joins on all of them. The returned map always carries an entry for
// every input column: failed columns degrade to Fallback and the cause
// is reported in failures. The only returned error is cancellation of
// ctx, in which case no partial result should be used.
func (s *Summarizer) DescribeColumns(ctx context.Context, dists []analysis.Distribution) (map[string]string, []*SummarizationError, error) {
	texts := make([]string, len(dists))
	fails := make([]*SummarizationError, len(dists))

	g, gctx := errgroup.WithContext(ctx)
	for i := range dists {
		i := i
		g.Go(func() error {
			text, err := s.describeOne(gctx, dists[i])
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				texts[i] = Fallback
				fails[i] = asSummarizationError(dists[i].Label, err)
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make(map[string]string, len(dists))
	var failures []*SummarizationError
	for i, d := range dists {
		out[d.ColumnID] = texts[i]
		if fails[i] != nil {
			failures = append(failures, fails[i])
		}
	}
	return out, failures, nil
}

func (s *Summarizer) describeOne(ctx context.Context, d analysis.Distribution) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	resp, err := s.gen.Generate(callCtx, ChatRequest{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(d)},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return "", err
	}
	text, err := decodeSummary(resp)
	if err != nil {
		return "", err
	}
	return enforceContract(text)
}

const systemPrompt = "You summarize survey response distributions. " +
	"Write 2-3 neutral, factual sentences describing the breakdown. " +
	"Use only the counts and percentages provided. " +
	"Do not address the reader, give advice, or make predictions."

func buildPrompt(d analysis.Distribution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Column: %s\n", d.Label)
	fmt.Fprintf(&b, "Valid responses: %d\n", d.TotalValid)
	b.WriteString("Distribution:\n")
	for _, e := range d.Entries {
		fmt.Fprintf(&b, "- %s: %d (%.1f%%)\n", e.Name, e.Count, e.Percentage)
	}
	return b.String()
}

// decodeSummary validates the response shape strictly: a missing choice
// or empty content is a schema failure, never a silently-empty summary.
func decodeSummary(resp *ChatResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("response content is empty")
	}
	return text, nil
}

var (
	prescriptivePattern = regexp.MustCompile(`(?i)\b(you|your|should|recommend(s|ed)?|advise|suggest(s|ed)?|consider|predict(s|ed)?|will likely)\b`)
	sentenceEnd         = regexp.MustCompile(`[.!?]\s+`)
)

// enforceContract keeps the service honest at the boundary: output must
// stay descriptive and within 2-3 sentences. Prescriptive or
// second-person phrasing is rejected so the column degrades to the
// fallback rather than storing advice.
func enforceContract(text string) (string, error) {
	text = strings.Join(strings.Fields(text), " ")
	if prescriptivePattern.MatchString(text) {
		return "", fmt.Errorf("output is not descriptive-only")
	}
	ends := sentenceEnd.FindAllStringIndex(text, -1)
	if len(ends) >= 3 {
		text = strings.TrimSpace(text[:ends[2][0]+1])
	}
	return text, nil
}

func asSummarizationError(label string, err error) *SummarizationError {
	reason := "request failed"
	var auth *AuthError
	var quota *QuotaExceededError
	var rate *RateLimitError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	case errors.As(err, &auth):
		reason = "authentication failed"
	case errors.As(err, &quota):
		reason = "quota exceeded"
	case errors.As(err, &rate):
		reason = "rate limited"
	case strings.Contains(err.Error(), "no choices"), strings.Contains(err.Error(), "content is empty"):
		reason = "schema mismatch"
	case strings.Contains(err.Error(), "not descriptive-only"):
		reason = "contract violation"
	}
	return &SummarizationError{Label: label, Reason: reason, Err: err}
}
