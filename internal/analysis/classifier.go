package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/formlens/formlens/internal/survey"
)

// Thresholds tunes the eligibility heuristic. The defaults match the
// behavior the rest of the pipeline is tested against, but every knob is
// exposed through configuration because the cutoffs are judgment calls,
// not ground truth.
type Thresholds struct {
	// MaxUniqueRatio flags identifier-like columns: above this ratio of
	// unique to valid values (with more than RatioMinValid values seen)
	// the column is considered an identifier, not a category.
	MaxUniqueRatio float64
	// RatioMinValid is the minimum number of valid values before the
	// unique-ratio rule applies; tiny columns are too noisy to judge.
	RatioMinValid int
	// MaxAverageLength flags free-text columns.
	MaxAverageLength float64
	// MaxCategories caps how many distinct values still chart legibly.
	MaxCategories int
	// EmailSample is how many leading values the email check inspects.
	EmailSample int
}

// DefaultThresholds returns the stock heuristic cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxUniqueRatio:   0.8,
		RatioMinValid:    5,
		MaxAverageLength: 100,
		MaxCategories:    50,
		EmailSample:      20,
	}
}

// Classifier decides per-column kind and chart eligibility. It is an
// interface so a stricter, type-aware strategy can replace the heuristic
// without touching the rest of the pipeline.
type Classifier interface {
	Classify(cols []survey.Column, responses []survey.Response) []survey.Column
}

// HeuristicClassifier implements the stock rules: a column is
// visualizable unless it has no variation, looks like an identifier,
// free text, or email addresses, or has too many categories to chart.
type HeuristicClassifier struct {
	t Thresholds
}

func NewHeuristicClassifier(t Thresholds) *HeuristicClassifier {
	if t.MaxUniqueRatio <= 0 {
		t = DefaultThresholds()
	}
	return &HeuristicClassifier{t: t}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Classify returns a copy of cols with Kind and IsVisualizable set from
// the column's non-empty values. It never removes columns.
func (c *HeuristicClassifier) Classify(cols []survey.Column, responses []survey.Response) []survey.Column {
	out := make([]survey.Column, len(cols))
	for i, col := range cols {
		out[i] = col
		stats := collectStats(col.ID, responses, c.t.EmailSample)
		if stats.totalValid > 0 && stats.numericCount == stats.totalValid {
			out[i].Kind = survey.KindNumeric
		} else {
			out[i].Kind = survey.KindCategorical
		}
		out[i].IsVisualizable = c.eligible(stats)
	}
	return out
}

func (c *HeuristicClassifier) eligible(s columnStats) bool {
	if s.totalValid <= 1 {
		return false
	}
	if s.uniqueCount <= 1 {
		return false
	}
	ratio := float64(s.uniqueCount) / float64(s.totalValid)
	if ratio > c.t.MaxUniqueRatio && s.totalValid > c.t.RatioMinValid {
		return false
	}
	if s.averageLength > c.t.MaxAverageLength {
		return false
	}
	if s.sampled > 0 && s.emailLike*2 > s.sampled {
		return false
	}
	if s.uniqueCount >= c.t.MaxCategories {
		return false
	}
	return true
}

type columnStats struct {
	totalValid    int
	uniqueCount   int
	averageLength float64
	numericCount  int
	sampled       int
	emailLike     int
}

func collectStats(colID string, responses []survey.Response, sampleSize int) columnStats {
	var s columnStats
	seen := make(map[string]struct{})
	totalLen := 0
	for _, resp := range responses {
		v := strings.TrimSpace(resp[colID])
		if v == "" {
			continue
		}
		s.totalValid++
		totalLen += len(v)
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			s.numericCount++
		}
		if s.sampled < sampleSize {
			s.sampled++
			if emailPattern.MatchString(v) {
				s.emailLike++
			}
		}
	}
	s.uniqueCount = len(seen)
	if s.totalValid > 0 {
		s.averageLength = float64(totalLen) / float64(s.totalValid)
	}
	return s
}
