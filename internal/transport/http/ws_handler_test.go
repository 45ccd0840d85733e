package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"buzzer-game-service/internal/app"
	"buzzer-game-service/internal/domain"
	"buzzer-game-service/internal/infra/memory"
)

func TestWebSocketBuzzAndAnswerFlow(t *testing.T) {
	registry := memory.NewSessionRegistry()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	service := app.NewGameService(registry, quizRepo)

	sessionID, _, err := service.CreateSession(context.Background(), "quiz-1", "host-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	wsHandler := NewWSHandler(service)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	join := map[string]any{
		"type": "join_session",
		"payload": map[string]any{
			"sessionId": sessionID,
			"playerId":  "alice",
		},
	}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readUntil(conn, t, "joined_session")

	// Host starts the game; the room hears about it.
	if err := service.StartSession(context.Background(), sessionID, "host-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	readUntil(conn, t, "game_started")

	if err := conn.WriteJSON(map[string]any{"type": "buzz"}); err != nil {
		t.Fatalf("write buzz: %v", err)
	}
	// The direct result and the room broadcast arrive in either order.
	got := readSet(conn, t, "buzz_result", "player_buzzed")
	if accepted, _ := got["buzz_result"]["accepted"].(bool); !accepted {
		t.Fatalf("expected accepted buzz, got %v", got["buzz_result"])
	}

	answer := map[string]any{
		"type":    "submit_answer",
		"payload": map[string]any{"answer": "b"},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	got = readSet(conn, t, "answer_result", "answer_graded", "question_advanced")
	if correct, _ := got["answer_result"]["correct"].(bool); !correct {
		t.Fatalf("expected correct answer, got %v", got["answer_result"])
	}
	if total, _ := got["answer_result"]["totalScore"].(float64); total != 10 {
		t.Fatalf("expected total 10, got %v", got["answer_result"])
	}
}

func TestWebSocketJoinUnknownSession(t *testing.T) {
	registry := memory.NewSessionRegistry()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	service := app.NewGameService(registry, quizRepo)

	wsHandler := NewWSHandler(service)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	join := map[string]any{
		"type": "join_session",
		"payload": map[string]any{
			"sessionId": "no-such-session",
			"playerId":  "alice",
		},
	}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("write join: %v", err)
	}
	payload := readUntil(conn, t, "error")
	if payload["message"] == "" {
		t.Fatalf("expected error message, got %v", payload)
	}
}

// readUntil reads frames until one of the wanted type arrives, skipping
// unrelated room broadcasts along the way.
func readUntil(conn *websocket.Conn, t *testing.T, want string) map[string]any {
	t.Helper()
	return readSet(conn, t, want)[want]
}

// readSet reads frames until every wanted type has been seen once;
// direct responses and room broadcasts interleave in arbitrary order.
func readSet(conn *websocket.Conn, t *testing.T, wanted ...string) map[string]map[string]any {
	t.Helper()
	pending := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		pending[w] = true
	}
	seen := make(map[string]map[string]any, len(wanted))
	for i := 0; i < 10 && len(pending) > 0; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if pending[msg.Type] {
			delete(pending, msg.Type)
			seen[msg.Type] = msg.Payload
		}
	}
	if len(pending) > 0 {
		t.Fatalf("did not receive %v", pending)
	}
	return seen
}

func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Warmup",
			Scoring: domain.Scoring{
				CorrectPoints:   10,
				WrongPoints:     5,
				TimePerQuestion: 30,
			},
			Questions: []domain.Question{
				{
					ID:   "q1",
					Text: "What is 2 + 2?",
					Type: domain.QuestionMultipleChoice,
					Options: map[string]string{
						"a": "3",
						"b": "4",
						"c": "5",
					},
					CorrectAnswer: "b",
				},
				{
					ID:   "q2",
					Text: "Name any prime number.",
					Type: domain.QuestionOpen,
				},
			},
		},
	}
}
