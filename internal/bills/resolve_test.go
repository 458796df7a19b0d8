package bills

import (
	"testing"

	"github.com/mmynk/billminder/internal/models"
)

func TestResolve(t *testing.T) {
	paid := day(-1)
	all := []models.Bill{
		pending("1", "Netflix", day(3)),
		pending("2", "Netflix Premium", day(4)),
		pending("3", "Car Insurance", day(5)),
		pending("4", "Home Insurance", day(6)),
		{ID: "5", Name: "Gym", DueDate: day(1), Status: models.StatusPaid, LastPaidDate: &paid},
		{ID: "6", Name: "Parking", DueDate: day(-4), Status: models.StatusOverdue},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"single substring", "premium", []string{"2"}},
		{"exact beats substrings", "NETFLIX", []string{"1"}},
		{"several substrings", "insurance", []string{"3", "4"}},
		{"paid bills are skipped", "gym", nil},
		{"overdue bills match", "park", []string{"6"}},
		{"empty query", "   ", nil},
		{"no match", "mortgage", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(all, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %d matches", tt.want, len(got))
			}
			for i, b := range got {
				if b.ID != tt.want[i] {
					t.Errorf("match %d: expected %s, got %s", i, tt.want[i], b.ID)
				}
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	all := []models.Bill{
		pending("1", "Rent", day(1)),
		pending("2", "Rant", day(2)),
		pending("3", "Electricity", day(3)),
	}

	got := Suggest(all, "rnt", 5)
	if len(got) != 2 || got[0] != "Rant" || got[1] != "Rent" {
		t.Errorf("expected [Rant Rent], got %v", got)
	}
	if got := Suggest(all, "rnt", 1); len(got) != 1 {
		t.Errorf("expected limit to apply, got %v", got)
	}
	if got := Suggest(all, "water", 3); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
}
