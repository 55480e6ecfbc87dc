package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	payload := AttemptSubmittedPayload{
		AttemptID:   "a1",
		QuizID:      "quiz-1",
		UserID:      "u1",
		Score:       4,
		TotalPoints: 5,
		Percentage:  80,
	}
	if err := publisher.Publish(ctx, EventAttemptSubmitted, payload); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	events := publisher.GetPublishedEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.Type != EventAttemptSubmitted {
		t.Errorf("expected type %s, got %s", EventAttemptSubmitted, event.Type)
	}
	if event.ID == "" || event.OccurredAt.IsZero() {
		t.Error("expected envelope ID and timestamp to be set")
	}
	if got, ok := event.Payload.(AttemptSubmittedPayload); !ok || got.AttemptID != "a1" {
		t.Errorf("unexpected payload: %+v", event.Payload)
	}

	publisher.Reset()
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("expected no events after reset")
	}
}
