package store

import (
	"encoding/json"
	"math"
	"slices"
	"time"

	"github.com/mkarlsen/rivalmap/pkg/errors"
	"github.com/mkarlsen/rivalmap/pkg/graph"
)

// ContestRow is one raw scheduled contest: the programs that met and
// when. Ingestion turns rows into weighted edges; the importance
// arithmetic lives here, outside the layout core, which only ever sees
// finished weights.
type ContestRow struct {
	Contest  string    `json:"contest"`
	Category string    `json:"category,omitempty"`
	Date     time.Time `json:"date"`
	Programs []string  `json:"programs"`
}

// ProgramRow is one raw program entry.
type ProgramRow struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// ingestFile is the accepted raw input document.
type ingestFile struct {
	Programs []ProgramRow `json:"programs"`
	Contests []ContestRow `json:"contests"`
}

// halfLife controls recency decay of a contest's contribution: a
// contest this old counts half as much as one held today.
const halfLife = 2 * 365 * 24 * time.Hour

// BuildUniverse converts raw contest rows into a weighted edge
// universe. Every pair of programs meeting in a contest gains a share
// of that contest's importance; the edge weight is the inverse of the
// accumulated score, so more (and more recent) shared contests mean a
// lower weight, i.e. a closer connection.
//
// Contests of different categories accumulate in separate buckets so
// scores never pool across categories. Edges are emitted in sorted
// bucket-key order, so the output bytes (and, when a pair met in more
// than one category, the edge surviving the universe dedup) are the
// same on every run over the same rows.
func BuildUniverse(programs []ProgramRow, contests []ContestRow, now time.Time) *graph.Universe {
	type bucket struct {
		score    float64
		category string
		contests []string
	}
	buckets := make(map[string]*bucket)

	for _, row := range contests {
		share := contestShare(row.Date, now)
		for i := 0; i < len(row.Programs); i++ {
			for j := i + 1; j < len(row.Programs); j++ {
				a, b := row.Programs[i], row.Programs[j]
				if a == "" || b == "" || a == b {
					continue
				}
				key := graph.EdgeKey(a, b) + "\x00" + row.Category
				bk := buckets[key]
				if bk == nil {
					bk = &bucket{category: row.Category}
					buckets[key] = bk
				}
				bk.score += share
				bk.contests = append(bk.contests, row.Contest)
			}
		}
	}

	nodes := make([]graph.Node, 0, len(programs))
	for _, p := range programs {
		nodes = append(nodes, graph.Node{ID: p.ID, Label: p.Label})
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	edges := make([]graph.Edge, 0, len(buckets))
	for _, key := range keys {
		bk := buckets[key]
		pairKey := key[:len(key)-len(bk.category)-1]
		a, b, ok := graph.SplitEdgeKey(pairKey)
		if !ok {
			continue
		}
		edges = append(edges, graph.Edge{
			A:        a,
			B:        b,
			Weight:   1 / bk.score,
			Category: bk.category,
			Contests: bk.contests,
		})
	}

	return graph.NewUniverse(nodes, edges)
}

// contestShare is the importance contribution of a single contest:
// exponential decay in its age with the configured half-life. Future
// dates (scheduled contests) count as today.
func contestShare(date, now time.Time) float64 {
	age := now.Sub(date)
	if age < 0 {
		age = 0
	}
	return math.Exp2(-float64(age) / float64(halfLife))
}

// ParseIngestFile decodes a raw ingest document.
func ParseIngestFile(data []byte) ([]ProgramRow, []ContestRow, error) {
	var doc ingestFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode ingest file")
	}
	if len(doc.Contests) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidDataset, "ingest file has no contests")
	}
	return doc.Programs, doc.Contests, nil
}
