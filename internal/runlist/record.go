// Package runlist tracks every concurrently executing graph instance: the
// run registry, its per-instance records, and the text save format.
package runlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hollowpine/StorylineEngine/internal/cutscene"
)

// Record is the per-instance descriptor the registry keeps for each running
// graph: skip-queue membership, pause/resume indices, and the serialized
// parameter snapshot. It is the unit of save-game persistence. At most one
// record exists per live graph instance.
type Record struct {
	Graph         *cutscene.Graph
	StartIndex    int
	InSkipQueue   bool
	ResumeIndices []int
	ParamSnapshot string
	LinkedGraph   string
	IsRunning     bool
}

// necessary reports whether the record still carries state worth keeping.
// Records that are neither running nor queued nor holding resume data are
// garbage-collected on each settle pass.
func (r *Record) necessary() bool {
	return r.IsRunning || r.InSkipQueue || len(r.ResumeIndices) > 0
}

// Serialize renders the record as one colon-delimited save tuple:
//
//	ID:resumeIndices:startIndex:inSkipQueue:isRunning:linkedGraph:paramData
//
// resumeIndices are "]"-delimited. ID is the graph's numeric identity for
// scene-resident graphs or its asset name for asset-sourced ones.
func (r *Record) Serialize() string {
	return strings.Join([]string{
		r.Graph.Key(),
		joinIndices(r.ResumeIndices),
		strconv.Itoa(r.StartIndex),
		flag(r.InSkipQueue),
		flag(r.IsRunning),
		r.LinkedGraph,
		r.ParamSnapshot,
	}, ":")
}

// SavedRecord is a parsed save tuple, not yet bound to a live graph.
type SavedRecord struct {
	ID            string
	NumericID     int
	IsNumeric     bool
	ResumeIndices []int
	StartIndex    int
	InSkipQueue   bool
	IsRunning     bool
	LinkedGraph   string
	ParamData     string
}

// ParseRecord parses one save tuple. Numeric IDs identify scene-resident
// graphs, anything else names an asset; integer parse disambiguates.
func ParseRecord(s string) (*SavedRecord, error) {
	parts := strings.SplitN(s, ":", 7)
	if len(parts) != 7 {
		return nil, fmt.Errorf("expected 7 fields, got %d", len(parts))
	}

	rec := &SavedRecord{
		ID:          parts[0],
		LinkedGraph: parts[5],
		ParamData:   parts[6],
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("empty graph id")
	}
	if n, err := strconv.Atoi(rec.ID); err == nil {
		rec.NumericID = n
		rec.IsNumeric = true
	}

	indices, err := splitIndices(parts[1])
	if err != nil {
		return nil, fmt.Errorf("bad resume indices: %w", err)
	}
	rec.ResumeIndices = indices

	rec.StartIndex, err = strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("bad start index: %s", parts[2])
	}

	rec.InSkipQueue, err = parseFlag(parts[3])
	if err != nil {
		return nil, err
	}
	rec.IsRunning, err = parseFlag(parts[4])
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func joinIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, n := range indices {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "]")
}

func splitIndices(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "]")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad index: %s", p)
		}
		out = append(out, n)
	}
	return out, nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseFlag(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("bad flag: %s", s)
}
