package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/formlens/formlens/internal/analysis"
	"github.com/formlens/formlens/internal/session"
	"github.com/formlens/formlens/internal/summarize"
	"github.com/formlens/formlens/internal/survey"
)

// Options controls one ingestion run.
type Options struct {
	Title       string
	Description string
	// CorrelationCap bounds how many visualizable columns feed the
	// cross-tabulation builder.
	CorrelationCap int
}

// EmptyClassification reports that no column qualified for charting.
// It is a warning, not an abort: the session still commits, with zero
// charts and no descriptions.
type EmptyClassification struct {
	Source string
}

func (e *EmptyClassification) Error() string {
	return fmt.Sprintf("no visualizable columns in %s", e.Source)
}

// Warnings collects the non-fatal conditions of a run. Each degrades
// the session instead of aborting it.
type Warnings struct {
	// EmptyClassification is set when no column qualified for charting.
	EmptyClassification *EmptyClassification
	// DefectRows counts malformed source rows skipped at parse time.
	DefectRows int
	// SummaryFailures lists columns whose description degraded to the
	// fallback text.
	SummaryFailures []*summarize.SummarizationError
}

// Pipeline runs the full ingestion: parse, classify, distribute,
// cross-tabulate, summarize, assemble, commit. A session is committed
// only as a complete unit; a partially summarized session is never
// observable through the registry.
type Pipeline struct {
	classifier analysis.Classifier
	summarizer *summarize.Summarizer
	registry   *session.Registry
}

func NewPipeline(classifier analysis.Classifier, summarizer *summarize.Summarizer, registry *session.Registry) *Pipeline {
	return &Pipeline{classifier: classifier, summarizer: summarizer, registry: registry}
}

// Run ingests one CSV source. Parse and persistence failures abort and
// are returned verbatim; classification and summarization shortfalls
// are reported through Warnings.
func (p *Pipeline) Run(ctx context.Context, sourceName string, raw []byte, opts Options) (*session.Session, *Warnings, error) {
	table, err := survey.ParseBytes(raw)
	if err != nil {
		return nil, nil, err
	}
	warnings := &Warnings{DefectRows: table.Defects}

	cols, responses := survey.Columnize(table)
	cols = p.classifier.Classify(cols, responses)

	var dists []analysis.Distribution
	for _, c := range cols {
		if c.IsVisualizable {
			dists = append(dists, analysis.Distribute(responses, c))
		}
	}
	if len(dists) == 0 {
		warnings.EmptyClassification = &EmptyClassification{Source: sourceName}
	}

	corr := analysis.Correlate(responses, cols, opts.CorrelationCap)

	descriptions := map[string]string{}
	if len(dists) > 0 {
		var failures []*summarize.SummarizationError
		descriptions, failures, err = p.summarizer.DescribeColumns(ctx, dists)
		if err != nil {
			return nil, nil, fmt.Errorf("summarization interrupted: %w", err)
		}
		warnings.SummaryFailures = failures
	}

	title := opts.Title
	if title == "" {
		title = sourceName
	}
	sess := session.Session{
		ID:                 uuid.NewString(),
		Title:              title,
		Description:        opts.Description,
		SourceName:         sourceName,
		ParticipationCount: len(responses),
		Columns:            cols,
		Responses:          responses,
		ColumnDescriptions: descriptions,
		CorrelationData:    corr,
		DefectCount:        table.Defects,
	}
	if err := p.registry.Commit(sess, raw); err != nil {
		return nil, nil, err
	}
	committed, err := p.registry.Get(sess.ID, true)
	if err != nil {
		return nil, nil, err
	}
	return committed, warnings, nil
}
