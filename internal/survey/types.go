package survey

import (
	"crypto/sha256"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ColumnKind distinguishes value shape for downstream rendering.
type ColumnKind string

const (
	KindCategorical ColumnKind = "categorical"
	KindNumeric     ColumnKind = "numeric"
)

// Column is one survey question. The ID is a synthetic identifier
// derived from the source content and column position, so re-parsing
// the same file yields the same ids while different files never share
// them. It is never derived from the header text alone.
type Column struct {
	ID             string     `json:"id"`
	Label          string     `json:"label"`
	Kind           ColumnKind `json:"kind"`
	IsVisualizable bool       `json:"is_visualizable"`
}

// Response maps column ids to the raw answer text for one respondent.
// Absent and empty values are equivalent.
type Response map[string]string

// Columnize converts a parsed table into Columns and ordered Responses.
// Headers containing "timestamp" (case-insensitive) carry no survey data
// and are dropped outright; every other header yields a Column, whether
// or not it later qualifies for visualization. Response order follows
// source row order; ids and ordering are stable across re-parses of the
// same source.
func Columnize(t *Table) ([]Column, []Response) {
	digest := contentDigest(t)
	keep := make([]int, 0, len(t.Headers))
	cols := make([]Column, 0, len(t.Headers))
	for i, h := range t.Headers {
		if strings.Contains(strings.ToLower(h), "timestamp") {
			continue
		}
		keep = append(keep, i)
		cols = append(cols, Column{
			ID:    columnID(digest, i),
			Label: h,
			Kind:  KindCategorical,
		})
	}

	responses := make([]Response, 0, len(t.Rows))
	for _, row := range t.Rows {
		resp := make(Response, len(cols))
		for ci, ri := range keep {
			if ri < len(row) {
				resp[cols[ci].ID] = row[ri]
			}
		}
		responses = append(responses, resp)
	}
	return cols, responses
}

// columnNamespace scopes the name-based column ids to this application.
var columnNamespace = uuid.MustParse("2fd1c4a8-6b3e-5f07-9d42-8c15e0b7a963")

// contentDigest fingerprints the parsed table. Cell values are length
// delimited so shifted boundaries cannot collide.
func contentDigest(t *Table) []byte {
	h := sha256.New()
	writeCell := func(v string) {
		h.Write([]byte(strconv.Itoa(len(v))))
		h.Write([]byte(":"))
		h.Write([]byte(v))
	}
	for _, hd := range t.Headers {
		writeCell(hd)
	}
	for _, row := range t.Rows {
		h.Write([]byte("|"))
		for _, v := range row {
			writeCell(v)
		}
	}
	return h.Sum(nil)
}

// columnID derives a stable id from the table fingerprint and the
// column's position in the source header.
func columnID(digest []byte, index int) string {
	name := make([]byte, 0, len(digest)+8)
	name = append(name, digest...)
	name = strconv.AppendInt(name, int64(index), 10)
	return uuid.NewSHA1(columnNamespace, name).String()
}
