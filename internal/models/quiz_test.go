package models

import (
	"testing"

	"gorm.io/datatypes"
)

func TestQuizQuestion_PointValue(t *testing.T) {
	override := 5
	zero := 0

	tests := []struct {
		name string
		link QuizQuestion
		want int
	}{
		{
			name: "override wins",
			link: QuizQuestion{Points: &override, Question: Question{Points: 2}},
			want: 5,
		},
		{
			name: "falls back to question points",
			link: QuizQuestion{Question: Question{Points: 3}},
			want: 3,
		},
		{
			name: "zero override ignored",
			link: QuizQuestion{Points: &zero, Question: Question{Points: 3}},
			want: 3,
		},
		{
			name: "defaults to one",
			link: QuizQuestion{},
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.link.PointValue(); got != tt.want {
				t.Errorf("PointValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQuestion_OptionList(t *testing.T) {
	t.Run("decodes options", func(t *testing.T) {
		q := Question{Options: datatypes.JSON(`["a","b","c"]`)}
		opts := q.OptionList()
		if len(opts) != 3 || opts[0] != "a" {
			t.Errorf("unexpected options: %v", opts)
		}
	})

	t.Run("empty column", func(t *testing.T) {
		q := Question{}
		if opts := q.OptionList(); opts != nil {
			t.Errorf("expected nil, got %v", opts)
		}
	})

	t.Run("malformed column", func(t *testing.T) {
		q := Question{Options: datatypes.JSON(`{not json]`)}
		if opts := q.OptionList(); opts != nil {
			t.Errorf("expected nil for malformed data, got %v", opts)
		}
	})
}
