package domain

import "time"

// EventType names the events fanned out to a session's room.
type EventType string

const (
	EventJoined           EventType = "joined_session"
	EventPlayerLeft       EventType = "player_left"
	EventGameStarted      EventType = "game_started"
	EventPlayerBuzzed     EventType = "player_buzzed"
	EventAnswerSubmitted  EventType = "answer_submitted"
	EventAnswerGraded     EventType = "answer_graded"
	EventTimeUp           EventType = "time_up"
	EventQuestionAdvanced EventType = "question_advanced"
	EventGameEnded        EventType = "game_ended"
)

// Event is a room broadcast. Fields beyond Type and SessionID are
// populated per event type; zero values are omitted on the wire.
type Event struct {
	Type          EventType     `json:"type"`
	SessionID     string        `json:"sessionId"`
	PlayerID      string        `json:"playerId,omitempty"`
	QuestionIndex int           `json:"questionIndex"`
	Answer        string        `json:"answer,omitempty"`
	Correct       *bool         `json:"correct,omitempty"`
	Awarded       int           `json:"awarded,omitempty"`
	Scores        []PlayerScore `json:"scores,omitempty"`
	At            time.Time     `json:"at"`
}
