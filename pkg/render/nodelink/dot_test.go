package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/panotour/pkg/graph"
	"github.com/matzehuels/panotour/pkg/tour"
)

func testView() graph.View {
	return graph.View{
		Nodes: []graph.ViewNode{
			{ID: "lobby", Floor: tour.FloorOf(0), Title: "Main Lobby"},
			{ID: "hall", Floor: tour.FloorOf(1)},
			{ID: "roof"},
		},
		Edges: []graph.ViewEdge{
			{From: "lobby", To: "hall"},
			{From: "hall", To: "lobby"},
			{From: "hall", To: "ghost"},
			{From: "roof", To: "ghost"},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testView(), Options{Start: "lobby"})

	for _, want := range []string{
		"digraph G {",
		`"lobby" [label="lobby", penwidth=3, fillcolor=lightyellow];`,
		`"hall" [label="hall"];`,
		`"lobby" -> "hall";`,
		`"hall" -> "ghost" [style=dashed, color=red];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if n := strings.Count(dot, `"ghost" [label=`); n != 1 {
		t.Errorf("placeholder for ghost declared %d times, want 1", n)
	}
	if strings.Contains(dot, "subgraph") {
		t.Error("DOT should not contain clusters without GroupFloors")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testView(), Options{Detailed: true})
	if !strings.Contains(dot, `label="lobby\nMain Lobby"`) {
		t.Errorf("detailed label missing title:\n%s", dot)
	}
}

func TestToDOT_GroupFloors(t *testing.T) {
	dot := ToDOT(testView(), Options{GroupFloors: true})

	first := strings.Index(dot, `label="Floor 0"`)
	second := strings.Index(dot, `label="Floor 1"`)
	last := strings.Index(dot, `label="Unspecified floor"`)
	if first < 0 || second < 0 || last < 0 {
		t.Fatalf("missing floor clusters:\n%s", dot)
	}
	if !(first < second && second < last) {
		t.Errorf("clusters out of order: %d, %d, %d", first, second, last)
	}
	if strings.Count(dot, "subgraph cluster_") != 3 {
		t.Errorf("want 3 clusters:\n%s", dot)
	}
}

func TestParsePositions(t *testing.T) {
	laidOut := []byte(`digraph G {
	graph [bb="0,0,300,120", nodesep=0.3];
	node [label="\N", shape=box];
	lobby	[height=0.5, label=lobby, pos="27,90", width=0.75];
	"main hall"	[height=0.5, label="main hall", pos="150.5,\
18", width=1.2];
	"say \"hi\""	[pos="-4,2.5e1"];
	lobby -> "main hall"	[pos="e,140,36 40,72 60,50"];
	küche	[label=küche, pos="80,40"];
	3.5	[pos="1,2"];
	unplaced	[label=unplaced];
}
`)

	got := ParsePositions(laidOut)

	want := map[string]Position{
		"lobby":     {27, 90},
		"main hall": {150.5, 18},
		`say "hi"`:  {-4, 25},
		"küche":     {80, 40},
		"3.5":       {1, 2},
	}
	if len(got) != len(want) {
		t.Fatalf("ParsePositions() = %v, want %v", got, want)
	}
	for id, p := range want {
		if got[id] != p {
			t.Errorf("position[%q] = %v, want %v", id, got[id], p)
		}
	}
}

func TestApplyPositions(t *testing.T) {
	v := testView()
	out := ApplyPositions(v, map[string]Position{"hall": {1, 2}})

	if v.Nodes[1].X != nil {
		t.Error("ApplyPositions modified its input")
	}
	hall := out.Nodes[1]
	if hall.X == nil || *hall.X != 1 || *hall.Y != 2 {
		t.Errorf("hall position = %v,%v", hall.X, hall.Y)
	}
	if out.Nodes[0].X != nil {
		t.Error("lobby should have no position")
	}
	if len(out.Edges) != len(v.Edges) {
		t.Errorf("edges = %d, want %d", len(out.Edges), len(v.Edges))
	}
}
