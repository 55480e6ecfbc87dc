package validator

import (
	"testing"
)

type startRequest struct {
	QuizID    string `json:"quiz_id" validate:"required"`
	TimeTaken *int   `json:"time_taken" validate:"omitempty,min=0"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	t.Run("valid struct", func(t *testing.T) {
		if errs := v.Validate(&startRequest{QuizID: "quiz-1"}); errs != nil {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		errs := v.Validate(&startRequest{})
		if errs == nil || !errs.HasErrors() {
			t.Fatal("expected validation errors")
		}
		// Field names come from json tags, not Go identifiers.
		if errs[0].Field != "quiz_id" {
			t.Errorf("expected field quiz_id, got %s", errs[0].Field)
		}
	})

	t.Run("min violation", func(t *testing.T) {
		negative := -1
		errs := v.Validate(&startRequest{QuizID: "quiz-1", TimeTaken: &negative})
		if errs == nil {
			t.Fatal("expected validation errors")
		}
		if errs[0].Field != "time_taken" {
			t.Errorf("expected field time_taken, got %s", errs[0].Field)
		}
	})
}

func TestValidator_Var(t *testing.T) {
	v := New()

	if err := v.Var("user@example.com", "email"); err != nil {
		t.Errorf("expected valid email, got %v", err)
	}
	if err := v.Var("not-an-email", "email"); err == nil {
		t.Error("expected email validation to fail")
	}
}
