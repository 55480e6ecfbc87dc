package services

import (
	"math"
	"sort"
	"strings"

	"github.com/MaX-NeO/atom-q-10/internal/models"
)

// NormalizeAnswer canonicalizes answer text for comparison: surrounding
// whitespace is stripped and case is folded.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// AnswersMatch compares a taker's answer against the canonical one.
func AnswersMatch(userAnswer, correctAnswer string) bool {
	return NormalizeAnswer(userAnswer) == NormalizeAnswer(correctAnswer)
}

// GradeAnswer evaluates a single answer against a quiz question link and
// returns correctness and points earned.
func GradeAnswer(link *models.QuizQuestion, userAnswer string) (bool, int) {
	if AnswersMatch(userAnswer, link.Question.CorrectAnswer) {
		return true, link.PointValue()
	}
	return false, 0
}

// Percentage converts earned points to a rounded whole percentage. A zero
// total yields zero rather than dividing.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(total)))
}

// RankLeaderboard reduces submitted attempts to one entry per user (their
// best attempt) and ranks them. Ordering is score descending with earlier
// submission winning ties; rank is dense from 1.
func RankLeaderboard(attempts []*models.QuizAttempt) []*LeaderboardEntry {
	best := make(map[string]*models.QuizAttempt)
	for _, attempt := range attempts {
		if attempt.Status != models.AttemptSubmitted || attempt.SubmittedAt == nil {
			continue
		}
		current, ok := best[attempt.UserID]
		if !ok || betterAttempt(attempt, current) {
			best[attempt.UserID] = attempt
		}
	}

	ranked := make([]*models.QuizAttempt, 0, len(best))
	for _, attempt := range best {
		ranked = append(ranked, attempt)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].SubmittedAt.Before(*ranked[j].SubmittedAt)
	})

	entries := make([]*LeaderboardEntry, len(ranked))
	for i, attempt := range ranked {
		entries[i] = &LeaderboardEntry{
			Rank:        i + 1,
			User:        userSummary(&attempt.User),
			AttemptID:   attempt.ID,
			Score:       attempt.Score,
			TotalPoints: attempt.TotalPoints,
			Percentage:  Percentage(attempt.Score, attempt.TotalPoints),
			TimeTaken:   attempt.TimeTaken,
			SubmittedAt: *attempt.SubmittedAt,
		}
	}
	return entries
}

func betterAttempt(candidate, current *models.QuizAttempt) bool {
	if candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	return candidate.SubmittedAt.Before(*current.SubmittedAt)
}

// BuildResultMatrix crosses every submitted attempt with the quiz's questions
// in display order: one row per attempt, one cell per question. Unanswered
// questions are marked explicitly and stay out of the per-question counts, so
// CorrectCount+IncorrectCount equals the number of attempts that answered.
func BuildResultMatrix(quizID string, links []*models.QuizQuestion, attempts []*models.QuizAttempt) *ResultMatrix {
	matrix := &ResultMatrix{
		QuizID:    quizID,
		Questions: make([]*ResultMatrixQuestion, len(links)),
		Rows:      []*ResultMatrixRow{},
	}

	for i, link := range links {
		matrix.Questions[i] = &ResultMatrixQuestion{
			QuestionID: link.QuestionID,
			Title:      link.Question.Title,
			Order:      link.Order,
			Points:     link.PointValue(),
		}
	}

	for _, attempt := range attempts {
		if attempt.Status != models.AttemptSubmitted || attempt.SubmittedAt == nil {
			continue
		}

		answers := make(map[string]*models.QuizAnswer, len(attempt.Answers))
		for i := range attempt.Answers {
			answers[attempt.Answers[i].QuestionID] = &attempt.Answers[i]
		}

		row := &ResultMatrixRow{
			User:       userSummary(&attempt.User),
			AttemptID:  attempt.ID,
			Score:      attempt.Score,
			Percentage: Percentage(attempt.Score, attempt.TotalPoints),
			Cells:      make([]ResultMatrixCell, len(links)),
		}

		for i, link := range links {
			cell := ResultMatrixCell{QuestionID: link.QuestionID}
			if answer, ok := answers[link.QuestionID]; ok {
				cell.Answered = true
				cell.UserAnswer = &answer.UserAnswer
				cell.IsCorrect = answer.IsCorrect
				cell.PointsEarned = answer.PointsEarned

				if cell.IsCorrect {
					matrix.Questions[i].CorrectCount++
				} else {
					matrix.Questions[i].IncorrectCount++
				}
			}
			row.Cells[i] = cell
		}

		matrix.Rows = append(matrix.Rows, row)
	}

	for _, question := range matrix.Questions {
		question.SuccessRate = Percentage(question.CorrectCount, question.CorrectCount+question.IncorrectCount)
	}

	return matrix
}

func userSummary(user *models.User) models.UserSummary {
	if user == nil {
		return models.UserSummary{}
	}
	return models.UserSummary{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
}
