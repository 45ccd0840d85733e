package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buzzer-game-service/internal/app"
	"buzzer-game-service/internal/domain"
	"buzzer-game-service/internal/infra/memory"
)

func TestAdminSessionLifecycle(t *testing.T) {
	registry := memory.NewSessionRegistry()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	service := app.NewGameService(registry, quizRepo)

	mux := http.NewServeMux()
	NewAdminHandler(service).Register(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	var created createSessionResponse
	postJSON(t, server.URL+"/api/sessions", map[string]string{
		"quizId": "quiz-1",
		"hostId": "host-1",
	}, http.StatusCreated, &created)
	if created.SessionID == "" || len(created.SessionCode) != 8 {
		t.Fatalf("unexpected create response: %+v", created)
	}

	postJSON(t, server.URL+"/api/sessions/"+created.SessionID+"/start", map[string]string{
		"hostId": "host-1",
	}, http.StatusOK, nil)

	var snap domain.SessionSnapshot
	resp, err := http.Get(server.URL + "/api/sessions/" + created.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Status != domain.StatusActive || snap.QuestionIndex != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// Non-host actions are forbidden.
	postJSON(t, server.URL+"/api/sessions/"+created.SessionID+"/end", map[string]string{
		"hostId": "intruder",
	}, http.StatusForbidden, nil)

	postJSON(t, server.URL+"/api/sessions/"+created.SessionID+"/end", map[string]string{
		"hostId": "host-1",
	}, http.StatusOK, nil)

	// Grading with nothing pending is a declined transition.
	postJSON(t, server.URL+"/api/sessions/"+created.SessionID+"/grade", map[string]any{
		"hostId":  "host-1",
		"correct": true,
	}, http.StatusConflict, nil)
}

func TestAdminCreateSessionUnknownQuiz(t *testing.T) {
	registry := memory.NewSessionRegistry()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	service := app.NewGameService(registry, quizRepo)

	mux := http.NewServeMux()
	NewAdminHandler(service).Register(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	postJSON(t, server.URL+"/api/sessions", map[string]string{
		"quizId": "quiz-404",
		"hostId": "host-1",
	}, http.StatusNotFound, nil)
}

func postJSON(t *testing.T, url string, body any, wantStatus int, out any) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("post %s: expected %d, got %d", url, wantStatus, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}
