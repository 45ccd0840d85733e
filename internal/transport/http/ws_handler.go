package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"buzzer-game-service/internal/app"
)

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type buzzResult struct {
	Accepted bool `json:"accepted"`
}

type answerResult struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	Pending    bool   `json:"pending"`
	Correct    bool   `json:"correct"`
	Awarded    int    `json:"awarded"`
	TotalScore int    `json:"totalScore"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// game session use cases. The first inbound message must be join_session;
// buzz and submit_answer follow on the same connection. Connection
// identity is minted here and stays opaque to the core.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	connID := uuid.NewString()

	var join inboundMessage
	if err := conn.ReadJSON(&join); err != nil {
		return
	}
	var joinReq joinPayload
	if join.Type != "join_session" || json.Unmarshal(join.Payload, &joinReq) != nil ||
		joinReq.SessionID == "" || joinReq.PlayerID == "" {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "expected join_session with sessionId and playerId"}})
		return
	}

	if err := h.service.JoinSession(connID, joinReq.SessionID, joinReq.PlayerID); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.LeaveSession(connID)

	updates, cancel, err := h.service.Subscribe(joinReq.SessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Str("conn_id", connID).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case event, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: string(event.Type), Payload: event}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	if snap, err := h.service.Snapshot(joinReq.SessionID); err == nil {
		send <- outboundMessage[any]{Type: "joined_session", Payload: snap}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "buzz":
			accepted, err := h.service.Buzz(joinReq.SessionID, joinReq.PlayerID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "buzz_result", Payload: buzzResult{Accepted: accepted}}
		case "submit_answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			result, err := h.service.SubmitAnswer(joinReq.SessionID, joinReq.PlayerID, payload.Answer)
			if err != nil {
				// Declined transitions are a gameplay outcome, not a fault.
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "answer_result", Payload: answerResult{
				QuestionID: result.QuestionID,
				Answer:     result.Answer,
				Pending:    result.Pending,
				Correct:    result.Correct,
				Awarded:    result.Awarded,
				TotalScore: result.TotalScore,
			}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
