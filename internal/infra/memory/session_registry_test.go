package memory

import (
	"context"
	"testing"
	"time"

	"buzzer-game-service/internal/app"
	"buzzer-game-service/internal/domain"
)

func TestSessionRegistryLifecycle(t *testing.T) {
	registry := NewSessionRegistry()
	session := testSession(t, registry)

	got, ok := registry.Get(session.ID())
	if !ok || got.ID() != session.ID() {
		t.Fatalf("expected session present")
	}

	registry.Remove(session.ID())
	if _, ok := registry.Get(session.ID()); ok {
		t.Fatalf("expected session removed")
	}
}

func testSession(t *testing.T, registry app.SessionRegistry) *app.Session {
	t.Helper()
	quizRepo := NewQuizRepository(NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{ID: "q1", Text: "open question", Type: domain.QuestionOpen},
			},
		},
	}), time.Minute)
	service := app.NewGameService(registry, quizRepo)
	sessionID, _, err := service.CreateSession(context.Background(), "quiz-1", "host-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	session, ok := registry.Get(sessionID)
	if !ok {
		t.Fatalf("expected created session in registry")
	}
	return session
}
