package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
)

// ===== RESPONSE BUILDING =====

func (s *attemptService) buildAttemptResponse(ctx context.Context, attempt *models.QuizAttempt, quiz *models.Quiz) (*AttemptResponse, error) {
	answered := make(map[string]*models.QuizAnswer, len(attempt.Answers))
	for i := range attempt.Answers {
		answered[attempt.Answers[i].QuestionID] = &attempt.Answers[i]
	}

	questions := make([]QuestionForAttempt, len(quiz.QuizQuestions))
	for i := range quiz.QuizQuestions {
		link := &quiz.QuizQuestions[i]
		q := QuestionForAttempt{
			ID:      link.QuestionID,
			Type:    link.Question.Type,
			Title:   link.Question.Title,
			Content: link.Question.Content,
			Options: link.Question.OptionList(),
			Points:  link.PointValue(),
			Order:   link.Order,
		}
		if answer, ok := answered[link.QuestionID]; ok {
			q.Answered = true
			q.Answer = &answer.UserAnswer
		}
		questions[i] = q
	}

	resp := &AttemptResponse{
		QuizAttempt: attempt,
		Percentage:  Percentage(attempt.Score, attempt.TotalPoints),
		CanSubmit:   attempt.Status == models.AttemptInProgress,
		Questions:   questions,
	}

	if remaining := s.timeRemaining(attempt, quiz); remaining != nil {
		resp.TimeRemaining = remaining
	}

	return resp, nil
}

func (s *attemptService) buildResultResponse(ctx context.Context, attempt *models.QuizAttempt, links []*models.QuizQuestion) (*AttemptResultResponse, error) {
	answers, err := s.repo.Answer().GetByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	byQuestion := make(map[string]*models.QuizAnswer, len(answers))
	for _, answer := range answers {
		byQuestion[answer.QuestionID] = answer
	}

	entries := make([]AnswerResultEntry, len(links))
	for i, link := range links {
		entry := AnswerResultEntry{
			QuestionID:    link.QuestionID,
			QuestionTitle: link.Question.Title,
			Type:          link.Question.Type,
			Order:         link.Order,
			CorrectAnswer: link.Question.CorrectAnswer,
			Explanation:   link.Question.Explanation,
			Points:        link.PointValue(),
		}
		if answer, ok := byQuestion[link.QuestionID]; ok {
			entry.UserAnswer = &answer.UserAnswer
			entry.IsCorrect = answer.IsCorrect
			entry.PointsEarned = answer.PointsEarned
		}
		entries[i] = entry
	}

	return &AttemptResultResponse{
		QuizAttempt: attempt,
		Percentage:  Percentage(attempt.Score, attempt.TotalPoints),
		Answers:     entries,
	}, nil
}

// ===== SUBMISSION HELPERS =====

// applySubmittedAnswers upserts the answers carried in the submit request.
// Unknown question IDs are rejected rather than silently dropped.
func (s *attemptService) applySubmittedAnswers(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt, links []*models.QuizQuestion, submitted map[string]string) error {
	if len(submitted) == 0 {
		return nil
	}

	linkByQuestion := make(map[string]*models.QuizQuestion, len(links))
	for _, link := range links {
		linkByQuestion[link.QuestionID] = link
	}

	for questionID, answerText := range submitted {
		// Blank entries are dropped, matching RecordAnswer.
		if answerText == "" {
			continue
		}
		link, ok := linkByQuestion[questionID]
		if !ok {
			return NewValidationError("answers", "question is not part of the quiz", questionID)
		}

		isCorrect, pointsEarned := GradeAnswer(link, answerText)

		existing, err := s.repo.Answer().GetByAttemptAndQuestion(ctx, tx, attempt.ID, questionID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to get existing answer: %w", err)
		}

		if existing != nil && err == nil {
			existing.UserAnswer = answerText
			existing.IsCorrect = isCorrect
			existing.PointsEarned = pointsEarned
			if err := s.repo.Answer().Update(ctx, tx, existing); err != nil {
				return fmt.Errorf("failed to update answer: %w", err)
			}
			continue
		}

		answer := &models.QuizAnswer{
			AttemptID:    attempt.ID,
			QuestionID:   questionID,
			UserAnswer:   answerText,
			IsCorrect:    isCorrect,
			PointsEarned: pointsEarned,
		}
		if err := s.repo.Answer().Create(ctx, tx, answer); err != nil {
			return fmt.Errorf("failed to create answer: %w", err)
		}
	}

	return nil
}

// regradeAnswers re-evaluates recorded answers against the current question
// set and returns the final score plus the answers whose grade changed.
// Answers for questions no longer in the quiz score nothing.
func (s *attemptService) regradeAnswers(links []*models.QuizQuestion, answers []*models.QuizAnswer) (int, []*models.QuizAnswer) {
	linkByQuestion := make(map[string]*models.QuizQuestion, len(links))
	for _, link := range links {
		linkByQuestion[link.QuestionID] = link
	}

	score := 0
	var changed []*models.QuizAnswer
	for _, answer := range answers {
		link, ok := linkByQuestion[answer.QuestionID]

		isCorrect, pointsEarned := false, 0
		if ok {
			isCorrect, pointsEarned = GradeAnswer(link, answer.UserAnswer)
		}

		if answer.IsCorrect != isCorrect || answer.PointsEarned != pointsEarned {
			answer.IsCorrect = isCorrect
			answer.PointsEarned = pointsEarned
			changed = append(changed, answer)
		}
		score += pointsEarned
	}

	return score, changed
}

func totalPoints(links []*models.QuizQuestion) int {
	total := 0
	for _, link := range links {
		total += link.PointValue()
	}
	return total
}

// ===== TIMING =====

func (s *attemptService) timeRemaining(attempt *models.QuizAttempt, quiz *models.Quiz) *int {
	if quiz.TimeLimit == nil {
		return nil
	}
	deadline := attempt.StartedAt.Add(time.Duration(*quiz.TimeLimit) * time.Minute)
	remaining := int(time.Until(deadline).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

func (s *attemptService) isExpired(attempt *models.QuizAttempt, quiz *models.Quiz) bool {
	if quiz.TimeLimit == nil {
		return false
	}
	deadline := attempt.StartedAt.Add(time.Duration(*quiz.TimeLimit) * time.Minute)
	return time.Now().After(deadline)
}

func (s *attemptService) resolveTimeTaken(attempt *models.QuizAttempt, reported *int, now time.Time) int {
	if reported != nil && *reported >= 0 {
		return *reported
	}
	elapsed := int(now.Sub(attempt.StartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed
}

// ===== EVENTS =====

// publishEvent delivers best-effort; a broker outage never fails the
// operation that produced the event.
func (s *attemptService) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}

// ===== START POLICY =====

// canStartAttempt reports whether the user may open a new attempt: the quiz
// must be active and the submitted-attempt limit not yet reached.
func canStartAttempt(ctx context.Context, repo repositories.Repository, quiz *models.Quiz, userID string) (bool, error) {
	if quiz.Status != models.QuizActive {
		return false, nil
	}
	if quiz.MaxAttempts == nil {
		return true, nil
	}
	count, err := repo.Attempt().CountSubmitted(ctx, nil, quiz.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count < *quiz.MaxAttempts, nil
}
