package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live session exists for an id.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizEmpty rejects opening a session over a quiz with no questions.
	ErrQuizEmpty = errors.New("quiz has no questions")
	// ErrPlayerNotFound is returned when a player acts before joining the room.
	ErrPlayerNotFound = errors.New("player not in session")
	// ErrNotHost rejects admin-only transitions from non-host callers.
	ErrNotHost = errors.New("caller is not the session host")
	// ErrInvalidTransition declines a transition the state machine does not
	// allow from its current state. Never fatal to the session.
	ErrInvalidTransition = errors.New("invalid session transition")
)
