package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from  Status
		to    Status
		valid bool
	}{
		{StatusPending, StatusPending, true},
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCompleted, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusPending, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCompleted, true},
		{StatusPending, "closed", false},
		{"", StatusPending, false},
	}

	for _, tt := range cases {
		if got := CanTransition(tt.from, tt.to); got != tt.valid {
			t.Fatalf("CanTransition(%q, %q)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestStatusRank(t *testing.T) {
	if StatusPending.Rank() >= StatusProcessing.Rank() || StatusProcessing.Rank() >= StatusCompleted.Rank() {
		t.Fatal("expected pending < processing < completed")
	}
	if Status("archived").Rank() != -1 {
		t.Fatal("expected unknown status to rank -1")
	}
	if !StatusCompleted.Terminal() || StatusProcessing.Terminal() {
		t.Fatal("expected only completed to be terminal")
	}
}

func TestAreaValid(t *testing.T) {
	if !AreaA.Valid() || !AreaB.Valid() {
		t.Fatal("expected both zones to be valid")
	}
	if Area("C区").Valid() || Area("").Valid() {
		t.Fatal("expected unknown zones to be invalid")
	}
}

func TestListItemOmitsContent(t *testing.T) {
	c := Complaint{ID: "1", Title: "Noise", Content: "loud music", ProcessingNotes: "called"}
	item := c.ListItem()
	if item.ID != "1" || item.Title != "Noise" {
		t.Fatalf("unexpected projection %+v", item)
	}
}
