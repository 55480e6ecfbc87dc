package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/MaX-NeO/atom-q-10/internal/events"
	"github.com/MaX-NeO/atom-q-10/internal/models"
	"github.com/MaX-NeO/atom-q-10/internal/repositories"
	"github.com/MaX-NeO/atom-q-10/internal/validator"
)

// mockRepository backs services with in-memory state for tests.
type mockRepository struct {
	quizzes   map[string]*models.Quiz
	questions map[string]*models.Question
	links     map[string][]*models.QuizQuestion
	attempts  map[string]*models.QuizAttempt
	answers   map[string][]*models.QuizAnswer // keyed by attempt ID
	users     map[string]*models.User

	submittedCount int
	finalizeResult bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		quizzes:        map[string]*models.Quiz{},
		questions:      map[string]*models.Question{},
		links:          map[string][]*models.QuizQuestion{},
		attempts:       map[string]*models.QuizAttempt{},
		answers:        map[string][]*models.QuizAnswer{},
		users:          map[string]*models.User{},
		finalizeResult: true,
	}
}

func (m *mockRepository) Quiz() repositories.QuizRepository                 { return &mockQuizRepo{m} }
func (m *mockRepository) Question() repositories.QuestionRepository         { return &mockQuestionRepo{m} }
func (m *mockRepository) QuizQuestion() repositories.QuizQuestionRepository { return &mockLinkRepo{m} }
func (m *mockRepository) Attempt() repositories.AttemptRepository           { return &mockAttemptRepo{m} }
func (m *mockRepository) Answer() repositories.AnswerRepository             { return &mockAnswerRepo{m} }
func (m *mockRepository) User() repositories.UserRepository                 { return &mockUserRepo{m} }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

type mockQuizRepo struct{ m *mockRepository }

func (r *mockQuizRepo) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error { return nil }
func (r *mockQuizRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	if quiz, ok := r.m.quizzes[id]; ok {
		return quiz, nil
	}
	return nil, repositories.ErrNotFound
}
func (r *mockQuizRepo) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	quiz, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	quiz.QuizQuestions = nil
	for _, link := range r.m.links[id] {
		quiz.QuizQuestions = append(quiz.QuizQuestions, *link)
	}
	return quiz, nil
}
func (r *mockQuizRepo) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error { return nil }
func (r *mockQuizRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error         { return nil }
func (r *mockQuizRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	return nil, 0, nil
}
func (r *mockQuizRepo) GetStats(ctx context.Context, tx *gorm.DB, quizID string) (*repositories.QuizStats, error) {
	return nil, repositories.ErrNotFound
}

type mockQuestionRepo struct{ m *mockRepository }

func (r *mockQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if question.ID == "" {
		question.ID = "question-new"
	}
	r.m.questions[question.ID] = question
	return nil
}
func (r *mockQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	if question, ok := r.m.questions[id]; ok {
		return question, nil
	}
	return nil, repositories.ErrNotFound
}
func (r *mockQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error) {
	var out []*models.Question
	for _, id := range ids {
		if question, ok := r.m.questions[id]; ok {
			out = append(out, question)
		}
	}
	return out, nil
}
func (r *mockQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return nil
}
func (r *mockQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	delete(r.m.questions, id)
	return nil
}
func (r *mockQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return nil, 0, nil
}

type mockLinkRepo struct{ m *mockRepository }

func (r *mockLinkRepo) Add(ctx context.Context, tx *gorm.DB, link *models.QuizQuestion) error {
	return nil
}
func (r *mockLinkRepo) Remove(ctx context.Context, tx *gorm.DB, quizID, questionID string) error {
	return nil
}
func (r *mockLinkRepo) Update(ctx context.Context, tx *gorm.DB, link *models.QuizQuestion) error {
	return nil
}
func (r *mockLinkRepo) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]*models.QuizQuestion, error) {
	return r.m.links[quizID], nil
}
func (r *mockLinkRepo) GetByQuizAndQuestion(ctx context.Context, tx *gorm.DB, quizID, questionID string) (*models.QuizQuestion, error) {
	for _, link := range r.m.links[quizID] {
		if link.QuestionID == questionID {
			return link, nil
		}
	}
	return nil, repositories.ErrNotFound
}
func (r *mockLinkRepo) Reorder(ctx context.Context, tx *gorm.DB, quizID string, orders []repositories.QuestionOrder) error {
	return nil
}

type mockAttemptRepo struct{ m *mockRepository }

func (r *mockAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	if attempt.ID == "" {
		attempt.ID = "attempt-new"
	}
	r.m.attempts[attempt.ID] = attempt
	return nil
}
func (r *mockAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error) {
	if attempt, ok := r.m.attempts[id]; ok {
		return attempt, nil
	}
	return nil, repositories.ErrNotFound
}
func (r *mockAttemptRepo) Update(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	return nil
}
func (r *mockAttemptRepo) GetActiveAttempt(ctx context.Context, tx *gorm.DB, quizID, userID string) (*models.QuizAttempt, error) {
	for _, attempt := range r.m.attempts {
		if attempt.QuizID == quizID && attempt.UserID == userID && attempt.Status == models.AttemptInProgress {
			return attempt, nil
		}
	}
	return nil, repositories.ErrNotFound
}
func (r *mockAttemptRepo) GetLatestSubmitted(ctx context.Context, tx *gorm.DB, quizID, userID string) (*models.QuizAttempt, error) {
	var latest *models.QuizAttempt
	for _, attempt := range r.m.attempts {
		if attempt.QuizID != quizID || attempt.UserID != userID || attempt.Status != models.AttemptSubmitted {
			continue
		}
		if latest == nil || attempt.SubmittedAt.After(*latest.SubmittedAt) {
			latest = attempt
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	return latest, nil
}
func (r *mockAttemptRepo) GetByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID, userID string) ([]*models.QuizAttempt, error) {
	var out []*models.QuizAttempt
	for _, attempt := range r.m.attempts {
		if attempt.QuizID == quizID && attempt.UserID == userID {
			out = append(out, attempt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}
func (r *mockAttemptRepo) GetSubmittedByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]*models.QuizAttempt, error) {
	return nil, nil
}
func (r *mockAttemptRepo) CountSubmitted(ctx context.Context, tx *gorm.DB, quizID, userID string) (int, error) {
	return r.m.submittedCount, nil
}
func (r *mockAttemptRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	return nil, 0, nil
}
func (r *mockAttemptRepo) FinalizeSubmission(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) (bool, error) {
	if !r.m.finalizeResult {
		return false, nil
	}
	r.m.attempts[attempt.ID] = attempt
	return true, nil
}

type mockAnswerRepo struct{ m *mockRepository }

func (r *mockAnswerRepo) Create(ctx context.Context, tx *gorm.DB, answer *models.QuizAnswer) error {
	r.m.answers[answer.AttemptID] = append(r.m.answers[answer.AttemptID], answer)
	return nil
}
func (r *mockAnswerRepo) Update(ctx context.Context, tx *gorm.DB, answer *models.QuizAnswer) error {
	return nil
}
func (r *mockAnswerRepo) UpdateBatch(ctx context.Context, tx *gorm.DB, answers []*models.QuizAnswer) error {
	return nil
}
func (r *mockAnswerRepo) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID string) ([]*models.QuizAnswer, error) {
	return r.m.answers[attemptID], nil
}
func (r *mockAnswerRepo) GetByAttemptAndQuestion(ctx context.Context, tx *gorm.DB, attemptID, questionID string) (*models.QuizAnswer, error) {
	for _, answer := range r.m.answers[attemptID] {
		if answer.QuestionID == questionID {
			return answer, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := r.m.users[id]; ok {
		return user, nil
	}
	return nil, repositories.ErrNotFound
}
func (r *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (r *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	return nil, 0, nil
}
func (r *mockUserRepo) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	return nil, nil
}

func newTestAttemptService(repo repositories.Repository) (AttemptService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewAttemptService(repo, nil, logger, validator.New(), publisher), publisher
}

func TestNewAttemptService(t *testing.T) {
	service, _ := newTestAttemptService(newMockRepository())
	if service == nil {
		t.Fatal("expected service instance")
	}
}

func TestAttemptService_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("quiz not found", func(t *testing.T) {
		service, _ := newTestAttemptService(newMockRepository())
		_, err := service.Start(ctx, &StartAttemptRequest{QuizID: "missing"}, "u1")
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("draft quiz refuses attempts", func(t *testing.T) {
		repo := newMockRepository()
		repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizDraft}

		service, _ := newTestAttemptService(repo)
		_, err := service.Start(ctx, &StartAttemptRequest{QuizID: "quiz-1"}, "u1")
		if !errors.Is(err, ErrQuizNotActive) {
			t.Errorf("expected ErrQuizNotActive, got %v", err)
		}
	})

	t.Run("attempt limit reached", func(t *testing.T) {
		limit := 2
		repo := newMockRepository()
		repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizActive, MaxAttempts: &limit}
		repo.submittedCount = 2

		service, _ := newTestAttemptService(repo)
		_, err := service.Start(ctx, &StartAttemptRequest{QuizID: "quiz-1"}, "u1")
		if !errors.Is(err, ErrAttemptLimitReached) {
			t.Errorf("expected ErrAttemptLimitReached, got %v", err)
		}
	})

	t.Run("starts and publishes event", func(t *testing.T) {
		repo := newMockRepository()
		repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizActive}

		service, publisher := newTestAttemptService(repo)
		resp, err := service.Start(ctx, &StartAttemptRequest{QuizID: "quiz-1"}, "u1")
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if resp.Status != models.AttemptInProgress {
			t.Errorf("expected IN_PROGRESS attempt, got %s", resp.Status)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventAttemptStarted {
			t.Errorf("expected one attempt.started event, got %+v", published)
		}
	})

	t.Run("resumes active attempt", func(t *testing.T) {
		repo := newMockRepository()
		repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizActive}
		repo.attempts["a1"] = &models.QuizAttempt{
			ID: "a1", QuizID: "quiz-1", UserID: "u1",
			Status: models.AttemptInProgress, StartedAt: time.Now(),
		}

		service, publisher := newTestAttemptService(repo)
		resp, err := service.Start(ctx, &StartAttemptRequest{QuizID: "quiz-1"}, "u1")
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if resp.ID != "a1" {
			t.Errorf("expected resumed attempt a1, got %s", resp.ID)
		}
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("resuming must not publish a started event")
		}
	})
}

func TestAttemptService_RecordAnswer(t *testing.T) {
	ctx := context.Background()

	setup := func() *mockRepository {
		repo := newMockRepository()
		repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizActive}
		repo.links["quiz-1"] = []*models.QuizQuestion{
			{QuizID: "quiz-1", QuestionID: "q1", Order: 1, Question: models.Question{ID: "q1", CorrectAnswer: "Paris", Points: 3}},
		}
		repo.attempts["a1"] = &models.QuizAttempt{
			ID: "a1", QuizID: "quiz-1", UserID: "u1",
			Status: models.AttemptInProgress, StartedAt: time.Now(),
		}
		return repo
	}

	t.Run("grades and stores answer", func(t *testing.T) {
		repo := setup()
		service, _ := newTestAttemptService(repo)

		err := service.RecordAnswer(ctx, "a1", &RecordAnswerRequest{QuestionID: "q1", Answer: " PARIS "}, "u1")
		if err != nil {
			t.Fatalf("RecordAnswer failed: %v", err)
		}

		answers := repo.answers["a1"]
		if len(answers) != 1 {
			t.Fatalf("expected 1 stored answer, got %d", len(answers))
		}
		if !answers[0].IsCorrect || answers[0].PointsEarned != 3 {
			t.Errorf("expected correct answer worth 3 points, got %+v", answers[0])
		}
	})

	t.Run("rejects other users", func(t *testing.T) {
		service, _ := newTestAttemptService(setup())
		err := service.RecordAnswer(ctx, "a1", &RecordAnswerRequest{QuestionID: "q1", Answer: "x"}, "intruder")
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("rejects submitted attempts", func(t *testing.T) {
		repo := setup()
		repo.attempts["a1"].Status = models.AttemptSubmitted

		service, _ := newTestAttemptService(repo)
		err := service.RecordAnswer(ctx, "a1", &RecordAnswerRequest{QuestionID: "q1", Answer: "x"}, "u1")
		if !errors.Is(err, ErrAttemptNotActive) {
			t.Errorf("expected ErrAttemptNotActive, got %v", err)
		}
	})

	t.Run("rejects questions outside the quiz", func(t *testing.T) {
		service, _ := newTestAttemptService(setup())
		err := service.RecordAnswer(ctx, "a1", &RecordAnswerRequest{QuestionID: "other", Answer: "x"}, "u1")
		if !errors.Is(err, ErrQuestionNotFound) {
			t.Errorf("expected ErrQuestionNotFound, got %v", err)
		}
	})
}

func TestAttemptService_Submit(t *testing.T) {
	ctx := context.Background()

	setup := func() *mockRepository {
		repo := newMockRepository()
		repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizActive}
		repo.links["quiz-1"] = []*models.QuizQuestion{
			{QuizID: "quiz-1", QuestionID: "q1", Order: 1, Question: models.Question{ID: "q1", CorrectAnswer: "Paris", Points: 2}},
			{QuizID: "quiz-1", QuestionID: "q2", Order: 2, Question: models.Question{ID: "q2", CorrectAnswer: "4", Points: 3}},
		}
		repo.attempts["a1"] = &models.QuizAttempt{
			ID: "a1", QuizID: "quiz-1", UserID: "u1",
			Status: models.AttemptInProgress, StartedAt: time.Now().Add(-time.Minute),
		}
		return repo
	}

	t.Run("grades submitted answers", func(t *testing.T) {
		repo := setup()
		service, publisher := newTestAttemptService(repo)

		result, err := service.Submit(ctx, &SubmitAttemptRequest{
			AttemptID: "a1",
			Answers:   map[string]string{"q1": "paris", "q2": "5"},
		}, "u1")
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		if result.Score != 2 || result.TotalPoints != 5 {
			t.Errorf("expected score 2/5, got %d/%d", result.Score, result.TotalPoints)
		}
		if result.Percentage != 40 {
			t.Errorf("expected 40%%, got %d", result.Percentage)
		}
		if result.Status != models.AttemptSubmitted {
			t.Errorf("expected SUBMITTED, got %s", result.Status)
		}
		if len(result.Answers) != 2 {
			t.Errorf("expected 2 answer entries, got %d", len(result.Answers))
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventAttemptSubmitted {
			t.Errorf("expected one attempt.submitted event, got %+v", published)
		}
	})

	t.Run("already submitted", func(t *testing.T) {
		repo := setup()
		repo.attempts["a1"].Status = models.AttemptSubmitted

		service, _ := newTestAttemptService(repo)
		_, err := service.Submit(ctx, &SubmitAttemptRequest{AttemptID: "a1"}, "u1")
		if !errors.Is(err, ErrAttemptAlreadySubmitted) {
			t.Errorf("expected ErrAttemptAlreadySubmitted, got %v", err)
		}
	})

	t.Run("lost finalize race", func(t *testing.T) {
		repo := setup()
		repo.finalizeResult = false

		service, _ := newTestAttemptService(repo)
		_, err := service.Submit(ctx, &SubmitAttemptRequest{AttemptID: "a1"}, "u1")
		if !errors.Is(err, ErrAttemptAlreadySubmitted) {
			t.Errorf("expected ErrAttemptAlreadySubmitted, got %v", err)
		}
	})

	t.Run("rejects unknown answer keys", func(t *testing.T) {
		service, _ := newTestAttemptService(setup())
		_, err := service.Submit(ctx, &SubmitAttemptRequest{
			AttemptID: "a1",
			Answers:   map[string]string{"bogus": "x"},
		}, "u1")
		if err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("rejects other users", func(t *testing.T) {
		service, _ := newTestAttemptService(setup())
		_, err := service.Submit(ctx, &SubmitAttemptRequest{AttemptID: "a1"}, "intruder")
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})
}

func TestAttemptService_CanStart(t *testing.T) {
	ctx := context.Background()
	limit := 1

	repo := newMockRepository()
	repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizActive, MaxAttempts: &limit}
	service, _ := newTestAttemptService(repo)

	ok, err := service.CanStart(ctx, "quiz-1", "u1")
	if err != nil || !ok {
		t.Errorf("expected CanStart true, got (%v, %v)", ok, err)
	}

	repo.submittedCount = 1
	ok, err = service.CanStart(ctx, "quiz-1", "u1")
	if err != nil || ok {
		t.Errorf("expected CanStart false at limit, got (%v, %v)", ok, err)
	}
}

func TestAttemptService_GetHistory(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("unknown quiz", func(t *testing.T) {
		service, _ := newTestAttemptService(newMockRepository())
		_, err := service.GetHistory(ctx, "missing", "u1")
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("splits active attempt and tracks best score", func(t *testing.T) {
		limit := 3
		repo := newMockRepository()
		repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizActive, MaxAttempts: &limit}

		first := submittedAttempt("a1", "u1", 3, 5, base.Add(10*time.Minute))
		first.QuizID = "quiz-1"
		first.StartedAt = base
		second := submittedAttempt("a2", "u1", 4, 5, base.Add(30*time.Minute))
		second.QuizID = "quiz-1"
		second.StartedAt = base.Add(20 * time.Minute)
		repo.attempts["a1"] = first
		repo.attempts["a2"] = second
		repo.attempts["a3"] = &models.QuizAttempt{
			ID: "a3", QuizID: "quiz-1", UserID: "u1",
			Status: models.AttemptInProgress, StartedAt: base.Add(time.Hour),
		}
		repo.submittedCount = 2

		service, _ := newTestAttemptService(repo)
		history, err := service.GetHistory(ctx, "quiz-1", "u1")
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}

		if len(history.Attempts) != 2 || history.AttemptCount != 2 {
			t.Fatalf("expected 2 submitted attempts, got %d (count %d)", len(history.Attempts), history.AttemptCount)
		}
		if history.Attempts[0].ID != "a2" {
			t.Errorf("expected newest attempt first, got %s", history.Attempts[0].ID)
		}
		if history.ActiveAttempt == nil || history.ActiveAttempt.ID != "a3" {
			t.Errorf("expected active attempt a3, got %+v", history.ActiveAttempt)
		}
		if history.BestScore == nil || *history.BestScore != 4 {
			t.Errorf("expected best score 4, got %v", history.BestScore)
		}
		// An open attempt blocks starting another, even under the limit.
		if history.CanTake {
			t.Error("expected CanTake false while an attempt is open")
		}
	})

	t.Run("can take again under the limit", func(t *testing.T) {
		limit := 2
		repo := newMockRepository()
		repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizActive, MaxAttempts: &limit}

		attempt := submittedAttempt("a1", "u1", 5, 5, base)
		attempt.QuizID = "quiz-1"
		repo.attempts["a1"] = attempt
		repo.submittedCount = 1

		service, _ := newTestAttemptService(repo)
		history, err := service.GetHistory(ctx, "quiz-1", "u1")
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if !history.CanTake {
			t.Error("expected CanTake true under the attempt limit")
		}
	})
}

func TestAttemptService_GetLatestResult(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("no submitted attempt", func(t *testing.T) {
		service, _ := newTestAttemptService(newMockRepository())
		_, err := service.GetLatestResult(ctx, "quiz-1", "u1")
		if !errors.Is(err, ErrAttemptNotFound) {
			t.Errorf("expected ErrAttemptNotFound, got %v", err)
		}
	})

	t.Run("returns the most recent submission", func(t *testing.T) {
		repo := newMockRepository()
		repo.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", Status: models.QuizActive}
		repo.links["quiz-1"] = []*models.QuizQuestion{
			{QuizID: "quiz-1", QuestionID: "q1", Order: 1, Question: models.Question{
				ID: "q1", Title: "Capital of France", CorrectAnswer: "paris", Points: 2,
			}},
		}

		miss := submittedAttempt("a1", "u1", 0, 2, base)
		miss.QuizID = "quiz-1"
		hit := submittedAttempt("a2", "u1", 2, 2, base.Add(time.Hour))
		hit.QuizID = "quiz-1"
		repo.attempts["a1"] = miss
		repo.attempts["a2"] = hit
		repo.answers["a2"] = []*models.QuizAnswer{
			{AttemptID: "a2", QuestionID: "q1", UserAnswer: "paris", IsCorrect: true, PointsEarned: 2},
		}

		service, _ := newTestAttemptService(repo)
		result, err := service.GetLatestResult(ctx, "quiz-1", "u1")
		if err != nil {
			t.Fatalf("GetLatestResult failed: %v", err)
		}

		if result.ID != "a2" {
			t.Errorf("expected latest attempt a2, got %s", result.ID)
		}
		if result.Percentage != 100 {
			t.Errorf("expected 100%%, got %d", result.Percentage)
		}
		if len(result.Answers) != 1 || result.Answers[0].UserAnswer == nil || *result.Answers[0].UserAnswer != "paris" {
			t.Errorf("expected recorded answer in result, got %+v", result.Answers)
		}
	})
}
