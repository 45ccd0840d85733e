package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"buzzer-game-service/internal/app"
	"buzzer-game-service/internal/domain"
)

// AdminHandler exposes the host's actions over plain HTTP. Authentication
// is handled upstream; the host id arrives in the request body.
type AdminHandler struct {
	service *app.GameService
}

func NewAdminHandler(service *app.GameService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Register mounts the admin routes on a mux.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.getSession)
	mux.HandleFunc("POST /api/sessions/{id}/start", h.startSession)
	mux.HandleFunc("POST /api/sessions/{id}/advance", h.advanceQuestion)
	mux.HandleFunc("POST /api/sessions/{id}/grade", h.gradeAnswer)
	mux.HandleFunc("POST /api/sessions/{id}/end", h.endSession)
}

type createSessionRequest struct {
	QuizID string `json:"quizId"`
	HostID string `json:"hostId"`
}

type createSessionResponse struct {
	SessionID   string `json:"sessionId"`
	SessionCode string `json:"sessionCode"`
}

type hostRequest struct {
	HostID string `json:"hostId"`
}

type gradeRequest struct {
	HostID  string `json:"hostId"`
	Correct bool   `json:"correct"`
}

func (h *AdminHandler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" || req.HostID == "" {
		writeError(w, http.StatusBadRequest, "quizId and hostId required")
		return
	}
	sessionID, code, err := h.service.CreateSession(r.Context(), req.QuizID, req.HostID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: sessionID, SessionCode: code})
}

func (h *AdminHandler) getSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *AdminHandler) startSession(w http.ResponseWriter, r *http.Request) {
	var req hostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HostID == "" {
		writeError(w, http.StatusBadRequest, "hostId required")
		return
	}
	if err := h.service.StartSession(r.Context(), r.PathValue("id"), req.HostID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"started": true})
}

func (h *AdminHandler) advanceQuestion(w http.ResponseWriter, r *http.Request) {
	var req hostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HostID == "" {
		writeError(w, http.StatusBadRequest, "hostId required")
		return
	}
	if err := h.service.AdvanceQuestion(r.PathValue("id"), req.HostID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"advanced": true})
}

func (h *AdminHandler) gradeAnswer(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HostID == "" {
		writeError(w, http.StatusBadRequest, "hostId required")
		return
	}
	result, err := h.service.GradeAnswer(r.PathValue("id"), req.HostID, req.Correct)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResult{
		QuestionID: result.QuestionID,
		Answer:     result.Answer,
		Correct:    result.Correct,
		Awarded:    result.Awarded,
		TotalScore: result.TotalScore,
	})
}

func (h *AdminHandler) endSession(w http.ResponseWriter, r *http.Request) {
	var req hostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HostID == "" {
		writeError(w, http.StatusBadRequest, "hostId required")
		return
	}
	if err := h.service.EndSession(r.PathValue("id"), req.HostID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ended": true})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotHost):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrQuizEmpty), errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
