package services

import (
	"testing"
	"time"

	"github.com/MaX-NeO/atom-q-10/internal/models"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{name: "lowercases", answer: "Paris", want: "paris"},
		{name: "trims whitespace", answer: "  42 \t", want: "42"},
		{name: "trims and lowercases", answer: "  TRUE\n", want: "true"},
		{name: "preserves inner spaces", answer: "New  York", want: "new  york"},
		{name: "empty", answer: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAnswer(tt.answer); got != tt.want {
				t.Errorf("NormalizeAnswer(%q) = %q, want %q", tt.answer, got, tt.want)
			}
		})
	}
}

func TestGradeAnswer(t *testing.T) {
	pointsOverride := 5

	tests := []struct {
		name        string
		link        *models.QuizQuestion
		userAnswer  string
		wantCorrect bool
		wantPoints  int
	}{
		{
			name: "exact match",
			link: &models.QuizQuestion{
				Question: models.Question{CorrectAnswer: "Paris", Points: 2},
			},
			userAnswer:  "Paris",
			wantCorrect: true,
			wantPoints:  2,
		},
		{
			name: "case and whitespace insensitive",
			link: &models.QuizQuestion{
				Question: models.Question{CorrectAnswer: "Paris", Points: 2},
			},
			userAnswer:  "  paris ",
			wantCorrect: true,
			wantPoints:  2,
		},
		{
			name: "wrong answer earns nothing",
			link: &models.QuizQuestion{
				Question: models.Question{CorrectAnswer: "Paris", Points: 2},
			},
			userAnswer:  "London",
			wantCorrect: false,
			wantPoints:  0,
		},
		{
			name: "link override wins over question points",
			link: &models.QuizQuestion{
				Points:   &pointsOverride,
				Question: models.Question{CorrectAnswer: "true", Points: 2},
			},
			userAnswer:  "TRUE",
			wantCorrect: true,
			wantPoints:  5,
		},
		{
			name: "defaults to one point",
			link: &models.QuizQuestion{
				Question: models.Question{CorrectAnswer: "4"},
			},
			userAnswer:  "4",
			wantCorrect: true,
			wantPoints:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, points := GradeAnswer(tt.link, tt.userAnswer)
			if correct != tt.wantCorrect || points != tt.wantPoints {
				t.Errorf("GradeAnswer() = (%v, %d), want (%v, %d)", correct, points, tt.wantCorrect, tt.wantPoints)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name  string
		score int
		total int
		want  int
	}{
		{name: "zero total", score: 5, total: 0, want: 0},
		{name: "negative total", score: 5, total: -1, want: 0},
		{name: "full score", score: 10, total: 10, want: 100},
		{name: "rounds up", score: 2, total: 3, want: 67},
		{name: "rounds down", score: 1, total: 3, want: 33},
		{name: "two of five", score: 2, total: 5, want: 40},
		{name: "zero score", score: 0, total: 7, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentage(tt.score, tt.total); got != tt.want {
				t.Errorf("Percentage(%d, %d) = %d, want %d", tt.score, tt.total, got, tt.want)
			}
		})
	}
}

func submittedAttempt(id, userID string, score, totalPoints int, submittedAt time.Time) *models.QuizAttempt {
	return &models.QuizAttempt{
		ID:          id,
		UserID:      userID,
		Status:      models.AttemptSubmitted,
		Score:       score,
		TotalPoints: totalPoints,
		SubmittedAt: &submittedAt,
		User:        models.User{ID: userID, Name: "User " + userID},
	}
}

func TestRankLeaderboard(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("best attempt per user", func(t *testing.T) {
		attempts := []*models.QuizAttempt{
			submittedAttempt("a1", "u1", 3, 10, base),
			submittedAttempt("a2", "u1", 7, 10, base.Add(time.Hour)),
			submittedAttempt("a3", "u2", 5, 10, base.Add(30*time.Minute)),
		}

		entries := RankLeaderboard(attempts)
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].AttemptID != "a2" || entries[0].Rank != 1 {
			t.Errorf("expected u1's best attempt a2 at rank 1, got %s at rank %d", entries[0].AttemptID, entries[0].Rank)
		}
		if entries[1].AttemptID != "a3" || entries[1].Rank != 2 {
			t.Errorf("expected a3 at rank 2, got %s at rank %d", entries[1].AttemptID, entries[1].Rank)
		}
		if entries[0].Percentage != 70 {
			t.Errorf("expected 70%%, got %d", entries[0].Percentage)
		}
	})

	t.Run("ties broken by earlier submission", func(t *testing.T) {
		attempts := []*models.QuizAttempt{
			submittedAttempt("a1", "u1", 8, 10, base.Add(time.Hour)),
			submittedAttempt("a2", "u2", 8, 10, base),
		}

		entries := RankLeaderboard(attempts)
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].AttemptID != "a2" {
			t.Errorf("expected earlier submission a2 first, got %s", entries[0].AttemptID)
		}
	})

	t.Run("ignores in-progress attempts", func(t *testing.T) {
		attempts := []*models.QuizAttempt{
			{ID: "a1", UserID: "u1", Status: models.AttemptInProgress},
			submittedAttempt("a2", "u2", 4, 10, base),
		}

		entries := RankLeaderboard(attempts)
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0].AttemptID != "a2" {
			t.Errorf("expected a2, got %s", entries[0].AttemptID)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		entries := RankLeaderboard(nil)
		if len(entries) != 0 {
			t.Fatalf("expected no entries, got %d", len(entries))
		}
	})
}

func TestBuildResultMatrix(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	links := []*models.QuizQuestion{
		{QuestionID: "q1", Order: 1, Question: models.Question{ID: "q1", Title: "First", CorrectAnswer: "a", Points: 2}},
		{QuestionID: "q2", Order: 2, Question: models.Question{ID: "q2", Title: "Second", CorrectAnswer: "b", Points: 3}},
	}

	first := submittedAttempt("a1", "u1", 5, 5, base)
	first.Answers = []models.QuizAnswer{
		{QuestionID: "q1", UserAnswer: "a", IsCorrect: true, PointsEarned: 2},
		{QuestionID: "q2", UserAnswer: "b", IsCorrect: true, PointsEarned: 3},
	}

	// u2 never answered q2; the cell must read unanswered.
	second := submittedAttempt("a2", "u2", 2, 5, base.Add(time.Minute))
	second.Answers = []models.QuizAnswer{
		{QuestionID: "q1", UserAnswer: "a", IsCorrect: true, PointsEarned: 2},
	}

	matrix := BuildResultMatrix("quiz-1", links, []*models.QuizAttempt{first, second})

	if len(matrix.Questions) != 2 {
		t.Fatalf("expected 2 question columns, got %d", len(matrix.Questions))
	}
	if len(matrix.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(matrix.Rows))
	}

	t.Run("columns follow quiz order", func(t *testing.T) {
		if matrix.Questions[0].QuestionID != "q1" || matrix.Questions[1].QuestionID != "q2" {
			t.Errorf("unexpected column order: %s, %s", matrix.Questions[0].QuestionID, matrix.Questions[1].QuestionID)
		}
	})

	t.Run("cells carry the stored answer", func(t *testing.T) {
		cell := matrix.Rows[0].Cells[0]
		if cell.UserAnswer == nil || *cell.UserAnswer != "a" {
			t.Errorf("expected answer text %q in cell, got %+v", "a", cell)
		}
	})

	t.Run("unanswered cell marked and uncounted", func(t *testing.T) {
		cell := matrix.Rows[1].Cells[1]
		if cell.Answered || cell.IsCorrect || cell.PointsEarned != 0 || cell.UserAnswer != nil {
			t.Errorf("expected empty cell, got %+v", cell)
		}
		// q2 was answered once (correctly); the unanswered cell joins neither count.
		if matrix.Questions[1].CorrectCount != 1 || matrix.Questions[1].IncorrectCount != 0 {
			t.Errorf("q2 counts = %d/%d, want 1/0", matrix.Questions[1].CorrectCount, matrix.Questions[1].IncorrectCount)
		}
	})

	t.Run("success rates over answered attempts", func(t *testing.T) {
		if matrix.Questions[0].SuccessRate != 100 {
			t.Errorf("q1 success rate = %d, want 100", matrix.Questions[0].SuccessRate)
		}
		if matrix.Questions[1].SuccessRate != 100 {
			t.Errorf("q2 success rate = %d, want 100", matrix.Questions[1].SuccessRate)
		}
	})

	t.Run("row percentages", func(t *testing.T) {
		if matrix.Rows[0].Percentage != 100 {
			t.Errorf("u1 percentage = %d, want 100", matrix.Rows[0].Percentage)
		}
		if matrix.Rows[1].Percentage != 40 {
			t.Errorf("u2 percentage = %d, want 40", matrix.Rows[1].Percentage)
		}
	})

	t.Run("one row per attempt including retakes", func(t *testing.T) {
		retake := submittedAttempt("a3", "u2", 3, 5, base.Add(2*time.Minute))
		retake.Answers = []models.QuizAnswer{
			{QuestionID: "q1", IsCorrect: false, PointsEarned: 0},
			{QuestionID: "q2", IsCorrect: true, PointsEarned: 3},
		}

		m := BuildResultMatrix("quiz-1", links, []*models.QuizAttempt{first, second, retake})
		if len(m.Rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(m.Rows))
		}
		if m.Rows[2].AttemptID != "a3" {
			t.Errorf("expected third row a3, got %s", m.Rows[2].AttemptID)
		}
		// q1: correct, correct, incorrect across the three answered attempts.
		if m.Questions[0].SuccessRate != 67 {
			t.Errorf("q1 success rate = %d, want 67", m.Questions[0].SuccessRate)
		}
		if m.Questions[0].CorrectCount+m.Questions[0].IncorrectCount != 3 {
			t.Errorf("q1 counts must cover answered attempts, got %d/%d",
				m.Questions[0].CorrectCount, m.Questions[0].IncorrectCount)
		}
	})
}
