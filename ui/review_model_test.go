package ui

import (
	"testing"

	"github.com/lepinkainen/videodup/match"
)

func TestNewReviewModel(t *testing.T) {
	groups := []match.MatchGroup{
		{Reference: "a.mp4", Duplicates: []string{"b.mp4"}, Distances: []float64{0.05}},
		{Reference: "c.mp4", Duplicates: []string{"d.mp4", "e.mp4"}, Distances: []float64{0.01, 0.12}},
	}

	model := NewReviewModel(groups)

	if len(model.groups) != 2 {
		t.Errorf("Expected 2 groups, got %d", len(model.groups))
	}

	if model.currentGroup != 0 {
		t.Errorf("Expected currentGroup to be 0, got %d", model.currentGroup)
	}

	if model.currentFile != 0 {
		t.Errorf("Expected currentFile to be 0, got %d", model.currentFile)
	}
}

func TestNewReviewModelEmptyInput(t *testing.T) {
	model := NewReviewModel(nil)

	if len(model.groups) != 0 {
		t.Errorf("Expected 0 groups for empty input, got %d", len(model.groups))
	}
}

func TestReviewGroupStructure(t *testing.T) {
	groups := []match.MatchGroup{
		{Reference: "a.mp4", Duplicates: []string{"b.mp4", "c.mp4"}, Distances: []float64{0.02, 0.08}},
	}

	model := NewReviewModel(groups)

	if len(model.groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(model.groups))
	}

	group := model.groups[0]
	if len(group.Files) != 3 {
		t.Fatalf("Expected 3 files (reference + 2 duplicates), got %d", len(group.Files))
	}

	if group.Files[0] != "a.mp4" {
		t.Errorf("Expected reference first, got '%s'", group.Files[0])
	}

	if group.Distances[0] != 0 {
		t.Errorf("Expected reference distance 0, got %v", group.Distances[0])
	}

	if group.Distances[2] != 0.08 {
		t.Errorf("Expected last duplicate distance 0.08, got %v", group.Distances[2])
	}

	if len(group.Selected) != 3 {
		t.Errorf("Expected 3 selection states, got %d", len(group.Selected))
	}

	// Ensure no files are selected by default
	for i, selected := range group.Selected {
		if selected {
			t.Errorf("Expected file %d to be unselected by default", i)
		}
	}
}
