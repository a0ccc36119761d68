// Package floors groups scenes by floor and computes per-floor statistics.
package floors

import (
	"slices"

	"github.com/matzehuels/panotour/pkg/graph"
	"github.com/matzehuels/panotour/pkg/tour"
)

// Stats are the counts for one floor or for the whole tour.
// AverageOutDegree is navigation hotspots per scene; Share is the fraction
// of all scenes on the floor.
type Stats struct {
	SceneCount       int     `json:"sceneCount" yaml:"sceneCount"`
	HotspotCount     int     `json:"hotspotCount" yaml:"hotspotCount"`
	LinkCount        int     `json:"linkCount" yaml:"linkCount"`
	AverageOutDegree float64 `json:"averageOutDegree" yaml:"averageOutDegree"`
	Share            float64 `json:"share" yaml:"share"`
}

// Row is the statistics of a single floor.
type Row struct {
	Floor tour.Floor `json:"floor" yaml:"floor"`

	Stats `yaml:",inline"`
}

// Summary is the per-floor breakdown plus a total row.
type Summary struct {
	Floors []Row `json:"floors" yaml:"floors"`
	Total  Stats `json:"total" yaml:"total"`
}

// Aggregate groups the scenes of g by effective floor. Rows are sorted by
// floor number ascending, with unassigned scenes last.
func Aggregate(g *graph.Graph) Summary {
	byFloor := make(map[tour.Floor]*Stats)
	var total Stats

	for _, s := range g.Scenes() {
		f := g.EffectiveFloor(s)
		st, ok := byFloor[f]
		if !ok {
			st = &Stats{}
			byFloor[f] = st
		}
		links := g.OutDegree(s.ID)
		for _, x := range []*Stats{st, &total} {
			x.SceneCount++
			x.HotspotCount += len(s.Hotspots)
			x.LinkCount += links
		}
	}

	rows := make([]Row, 0, len(byFloor))
	for f, st := range byFloor {
		finish(st, total.SceneCount)
		rows = append(rows, Row{Floor: f, Stats: *st})
	}
	slices.SortFunc(rows, func(a, b Row) int {
		switch {
		case a.Floor.Less(b.Floor):
			return -1
		case b.Floor.Less(a.Floor):
			return 1
		}
		return 0
	})
	finish(&total, total.SceneCount)

	return Summary{Floors: rows, Total: total}
}

func finish(st *Stats, scenes int) {
	if st.SceneCount == 0 {
		return
	}
	st.AverageOutDegree = float64(st.LinkCount) / float64(st.SceneCount)
	st.Share = float64(st.SceneCount) / float64(scenes)
}

// Floor returns the row for f.
func (s Summary) Floor(f tour.Floor) (Row, bool) {
	for _, r := range s.Floors {
		if r.Floor == f {
			return r, true
		}
	}
	return Row{}, false
}
