package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"buzzer-game-service/internal/app"
	"buzzer-game-service/internal/domain"
	"buzzer-game-service/internal/infra/memory"
)

func TestSessionRegistrySetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	registry := NewSessionRegistry(client, time.Minute)

	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": sampleQuiz(),
	}), time.Minute)
	service := app.NewGameService(registry, quizRepo)

	sessionID, _, err := service.CreateSession(context.Background(), "quiz-1", "host-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !mr.Exists("game:session:" + sessionID) {
		t.Fatalf("expected redis liveness key to be set")
	}

	registry.Remove(sessionID)
	if mr.Exists("game:session:" + sessionID) {
		t.Fatalf("expected redis liveness key to be removed")
	}
}
