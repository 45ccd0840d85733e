package domain

import "time"

// Defaults applied when a quiz's scoring config leaves a field zero,
// matching the original game's schema defaults.
const (
	DefaultCorrectPoints   = 10
	DefaultWrongPoints     = 5
	DefaultTimePerQuestion = 30 * time.Second
)

// QuestionType distinguishes auto-graded multiple-choice questions from
// open questions that the host grades manually.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "mcq"
	QuestionOpen           QuestionType = "open"
)

// Scoring holds the per-quiz scoring configuration.
type Scoring struct {
	CorrectPoints   int `json:"correctPoints"`
	WrongPoints     int `json:"wrongPoints"`
	TimePerQuestion int `json:"timePerQuestion"` // seconds
}

// CorrectDelta returns the points awarded for a correct answer.
func (s Scoring) CorrectDelta() int {
	if s.CorrectPoints > 0 {
		return s.CorrectPoints
	}
	return DefaultCorrectPoints
}

// WrongDelta returns the (negative) points applied for a wrong answer.
func (s Scoring) WrongDelta() int {
	if s.WrongPoints > 0 {
		return -s.WrongPoints
	}
	return -DefaultWrongPoints
}

// QuestionDuration returns the countdown length for a question.
func (s Scoring) QuestionDuration() time.Duration {
	if s.TimePerQuestion > 0 {
		return time.Duration(s.TimePerQuestion) * time.Second
	}
	return DefaultTimePerQuestion
}

// Question models a single quiz question. Options is present only for
// multiple-choice questions and maps option key to display text.
// CorrectAnswer is an option key for multiple-choice questions; for open
// questions it may be empty, meaning the host grades by hand.
type Question struct {
	ID            string            `json:"id"`
	Text          string            `json:"text"`
	Type          QuestionType      `json:"type"`
	Options       map[string]string `json:"options,omitempty"`
	CorrectAnswer string            `json:"correctAnswer,omitempty"`
}

// Quiz is the read-only quiz content a session is played against.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Scoring   Scoring    `json:"scoring"`
	Questions []Question `json:"questions"`
}

// SessionStatus is monotonic: waiting -> active -> ended, never back.
type SessionStatus string

const (
	StatusWaiting SessionStatus = "waiting"
	StatusActive  SessionStatus = "active"
	StatusEnded   SessionStatus = "ended"
)

// BuzzLock is the single-winner claim on answering the current question.
type BuzzLock struct {
	PlayerID string    `json:"playerId"`
	At       time.Time `json:"at"`
}

// PendingAnswer is an open-question submission awaiting host grading.
type PendingAnswer struct {
	PlayerID    string    `json:"playerId"`
	Answer      string    `json:"answer"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// PlayerScore is a scoreboard entry.
type PlayerScore struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

// SessionSnapshot is a read-only view of a live session, safe to hand
// out across the mutation boundary.
type SessionSnapshot struct {
	ID            string         `json:"id"`
	Code          string         `json:"code"`
	HostID        string         `json:"hostId"`
	QuizID        string         `json:"quizId"`
	Status        SessionStatus  `json:"status"`
	QuestionIndex int            `json:"questionIndex"`
	QuestionCount int            `json:"questionCount"`
	Players       []string       `json:"players"`
	Scores        []PlayerScore  `json:"scores"`
	Buzz          *BuzzLock      `json:"buzz,omitempty"`
	Pending       *PendingAnswer `json:"pending,omitempty"`
}
