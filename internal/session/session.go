package session

import (
	"fmt"
	"time"

	"github.com/formlens/formlens/internal/analysis"
	"github.com/formlens/formlens/internal/survey"
)

// Session is one ingested dataset with its derived analysis artifacts
// and visibility state. It is created whole at the end of a successful
// ingestion and mutated only through Registry.Update.
type Session struct {
	ID                 string                  `json:"id"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	SourceName         string                  `json:"source_name"`
	ParticipationCount int                     `json:"participation_count"`
	LastUpdated        time.Time               `json:"last_updated"`
	IsPublic           bool                    `json:"is_public"`
	Columns            []survey.Column         `json:"columns"`
	Responses          []survey.Response       `json:"responses"`
	ColumnDescriptions map[string]string       `json:"column_descriptions"`
	CorrelationData    analysis.CorrelationMap `json:"correlation_data"`
	// DefectCount is the number of malformed source rows skipped at
	// parse time, kept for ingestion-quality audits.
	DefectCount int `json:"defect_count,omitempty"`
}

// Validate checks the structural invariants a committed session must
// hold. A session failing these must never reach the store.
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session has no id")
	}
	if s.ParticipationCount != len(s.Responses) {
		return fmt.Errorf("participation count %d does not match %d responses", s.ParticipationCount, len(s.Responses))
	}
	known := make(map[string]survey.Column, len(s.Columns))
	for _, c := range s.Columns {
		known[c.ID] = c
	}
	for id := range s.ColumnDescriptions {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("description references unknown column %s", id)
		}
	}
	for _, c := range s.Columns {
		if c.IsVisualizable {
			if _, ok := s.ColumnDescriptions[c.ID]; !ok {
				return fmt.Errorf("column %q is missing its description; session is not fully summarized", c.Label)
			}
		}
	}
	return nil
}

// Patch is a partial administrative mutation: the visibility toggle
// and/or per-column visualizability overrides. Nil fields are left
// untouched.
type Patch struct {
	IsPublic *bool
	// ColumnVisibility overrides IsVisualizable per column id.
	ColumnVisibility map[string]bool
}
