package app

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"buzzer-game-service/internal/domain"
)

// GradeResult reports the outcome of grading an answer.
type GradeResult struct {
	PlayerID   string
	QuestionID string
	Answer     string
	Correct    bool
	Awarded    int
	TotalScore int
	// Pending is true for open-question submissions awaiting host grading;
	// no points have been applied yet.
	Pending bool
}

// scoreHook receives score deltas as grading applies them. Invoked on its
// own goroutine so persistence never blocks gameplay.
type scoreHook func(playerID, questionID string, correct bool, delta int, at time.Time)

// endHook receives the final scoreboard when a session ends.
type endHook func(finalScores []domain.PlayerScore)

// Session is the live state of one game: room membership, buzz lock,
// question timer, and per-player scores. Every mutation goes through the
// session mutex, so concurrent buzzes, submissions, host actions, and
// timer expiries are processed as if sequential. Timer expiry re-enters
// through the same lock tagged with the question index it was armed for,
// and stale tags are discarded.
type Session struct {
	id     string
	code   string
	hostID string
	quiz   domain.Quiz
	clock  clockwork.Clock
	grace  time.Duration

	onScore scoreHook
	onEnd   endHook

	mu            sync.Mutex
	status        domain.SessionStatus
	questionIndex int
	players       map[string]string // connection id -> player id
	scores        map[string]int
	buzz          *domain.BuzzLock
	pending       *domain.PendingAnswer
	expired       bool // current question timed out, buzzing frozen
	deadline      time.Time
	timerIndex    int // question index the live timer was armed for
	timerCancel   chan struct{}
	subscribers   map[chan domain.Event]struct{}
}

func newSession(id, code, hostID string, quiz domain.Quiz, clock clockwork.Clock, grace time.Duration) *Session {
	return &Session{
		id:          id,
		code:        code,
		hostID:      hostID,
		quiz:        quiz,
		clock:       clock,
		grace:       grace,
		status:      domain.StatusWaiting,
		timerIndex:  -1,
		players:     make(map[string]string),
		scores:      make(map[string]int),
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Code returns the short join code shown to players.
func (s *Session) Code() string { return s.code }

// Join adds a connection to the room. Rejoining with the same connection
// id replaces the prior membership. Joining an ended session is declined.
func (s *Session) Join(connID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusEnded {
		return domain.ErrInvalidTransition
	}
	s.players[connID] = playerID
	if _, ok := s.scores[playerID]; !ok {
		s.scores[playerID] = 0
	}
	s.broadcastLocked(domain.Event{
		Type:     domain.EventJoined,
		PlayerID: playerID,
		Scores:   s.scoreboardLocked(),
	})
	return nil
}

// Leave drops a connection from the room. A departing player does not
// release a held buzz lock or pending answer for the current question;
// forfeiting must not unlock the buzzer for everyone else.
func (s *Session) Leave(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playerID, ok := s.players[connID]
	if !ok {
		return
	}
	delete(s.players, connID)
	s.broadcastLocked(domain.Event{
		Type:     domain.EventPlayerLeft,
		PlayerID: playerID,
	})
}

// Start moves the session from waiting to active, opens question 0, and
// arms the countdown.
func (s *Session) Start(callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if callerID != s.hostID {
		return domain.ErrNotHost
	}
	if s.status != domain.StatusWaiting {
		return domain.ErrInvalidTransition
	}
	s.status = domain.StatusActive
	s.questionIndex = 0
	s.buzz = nil
	s.pending = nil
	s.startTimerLocked()
	s.broadcastLocked(domain.Event{Type: domain.EventGameStarted})
	return nil
}

// TryBuzz arbitrates a buzz attempt. Exactly one attempt per question can
// win; everything after the first, and anything outside an open timed
// question, gets accepted=false with no state change and no broadcast.
func (s *Session) TryBuzz(playerID string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive {
		return false
	}
	if s.timerIndex != s.questionIndex || s.expired || !at.Before(s.deadline) {
		return false
	}
	if s.buzz != nil {
		return false
	}
	if !s.playerConnectedLocked(playerID) {
		return false
	}
	s.buzz = &domain.BuzzLock{PlayerID: playerID, At: at}
	s.broadcastLocked(domain.Event{
		Type:     domain.EventPlayerBuzzed,
		PlayerID: playerID,
	})
	return true
}

// SubmitAnswer records an answer for the current question.
//
// Multiple-choice answers require the submitter to hold the buzz lock and
// are graded automatically, which immediately advances the question. Open
// answers may come from any connected player without buzzing (the
// original game's asymmetry, kept on purpose); they park as a pending
// answer until the host grades them.
func (s *Session) SubmitAnswer(playerID, answer string) (GradeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive {
		return GradeResult{}, domain.ErrInvalidTransition
	}
	if !s.playerConnectedLocked(playerID) {
		return GradeResult{}, domain.ErrPlayerNotFound
	}
	question := s.quiz.Questions[s.questionIndex]

	if question.Type == domain.QuestionMultipleChoice {
		if s.buzz == nil || s.buzz.PlayerID != playerID {
			return GradeResult{}, domain.ErrInvalidTransition
		}
		correct := answer != "" && answer == question.CorrectAnswer
		s.broadcastLocked(domain.Event{
			Type:     domain.EventAnswerSubmitted,
			PlayerID: playerID,
			Answer:   answer,
		})
		result := s.applyGradeLocked(playerID, question, answer, correct)
		s.advanceLocked()
		return result, nil
	}

	// Open question: input is frozen once the timer has expired, and the
	// first submission wins the host's attention until graded.
	if s.expired {
		return GradeResult{}, domain.ErrInvalidTransition
	}
	if s.pending != nil {
		return GradeResult{}, domain.ErrInvalidTransition
	}
	s.pending = &domain.PendingAnswer{
		PlayerID:    playerID,
		Answer:      answer,
		SubmittedAt: s.clock.Now(),
	}
	s.broadcastLocked(domain.Event{
		Type:     domain.EventAnswerSubmitted,
		PlayerID: playerID,
		Answer:   answer,
	})
	return GradeResult{
		PlayerID:   playerID,
		QuestionID: question.ID,
		Answer:     answer,
		Pending:    true,
	}, nil
}

// Grade applies the host's verdict to the pending open answer, then
// advances to the next question.
func (s *Session) Grade(callerID string, correct bool) (GradeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if callerID != s.hostID {
		return GradeResult{}, domain.ErrNotHost
	}
	if s.status != domain.StatusActive || s.pending == nil {
		return GradeResult{}, domain.ErrInvalidTransition
	}
	question := s.quiz.Questions[s.questionIndex]
	result := s.applyGradeLocked(s.pending.PlayerID, question, s.pending.Answer, correct)
	s.advanceLocked()
	return result, nil
}

// Advance is the host's manual skip to the next question.
func (s *Session) Advance(callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if callerID != s.hostID {
		return domain.ErrNotHost
	}
	if s.status != domain.StatusActive {
		return domain.ErrInvalidTransition
	}
	s.advanceLocked()
	return nil
}

// End terminates the session immediately. The session stays readable but
// accepts no further gameplay transitions.
func (s *Session) End(callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if callerID != s.hostID {
		return domain.ErrNotHost
	}
	if s.status == domain.StatusEnded {
		return domain.ErrInvalidTransition
	}
	s.endLocked()
	return nil
}

// Subscribe registers a room listener. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Snapshot returns a read-only copy of the session state.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]string, 0, len(s.players))
	for _, playerID := range s.players {
		players = append(players, playerID)
	}
	sort.Strings(players)

	snap := domain.SessionSnapshot{
		ID:            s.id,
		Code:          s.code,
		HostID:        s.hostID,
		QuizID:        s.quiz.ID,
		Status:        s.status,
		QuestionIndex: s.questionIndex,
		QuestionCount: len(s.quiz.Questions),
		Players:       players,
		Scores:        s.scoreboardLocked(),
	}
	if s.buzz != nil {
		buzz := *s.buzz
		snap.Buzz = &buzz
	}
	if s.pending != nil {
		pending := *s.pending
		snap.Pending = &pending
	}
	return snap
}

// IsEmpty reports whether the room has no connections left.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players) == 0
}

func (s *Session) playerConnectedLocked(playerID string) bool {
	for _, id := range s.players {
		if id == playerID {
			return true
		}
	}
	return false
}

func (s *Session) applyGradeLocked(playerID string, question domain.Question, answer string, correct bool) GradeResult {
	delta := s.quiz.Scoring.WrongDelta()
	if correct {
		delta = s.quiz.Scoring.CorrectDelta()
	}
	s.scores[playerID] += delta
	verdict := correct
	s.broadcastLocked(domain.Event{
		Type:     domain.EventAnswerGraded,
		PlayerID: playerID,
		Answer:   answer,
		Correct:  &verdict,
		Awarded:  delta,
		Scores:   s.scoreboardLocked(),
	})
	if s.onScore != nil {
		go s.onScore(playerID, question.ID, correct, delta, s.clock.Now())
	}
	return GradeResult{
		PlayerID:   playerID,
		QuestionID: question.ID,
		Answer:     answer,
		Correct:    correct,
		Awarded:    delta,
		TotalScore: s.scores[playerID],
	}
}

// advanceLocked clears the buzz lock and pending answer, then either
// opens the next question or ends the game after the last one.
func (s *Session) advanceLocked() {
	s.buzz = nil
	s.pending = nil
	s.expired = false
	s.questionIndex++
	if s.questionIndex >= len(s.quiz.Questions) {
		s.endLocked()
		return
	}
	s.startTimerLocked()
	s.broadcastLocked(domain.Event{Type: domain.EventQuestionAdvanced})
}

func (s *Session) endLocked() {
	s.stopTimerLocked()
	s.status = domain.StatusEnded
	final := s.scoreboardLocked()
	s.broadcastLocked(domain.Event{
		Type:   domain.EventGameEnded,
		Scores: final,
	})
	if s.onEnd != nil {
		go s.onEnd(final)
	}
}

func (s *Session) scoreboardLocked() []domain.PlayerScore {
	entries := make([]domain.PlayerScore, 0, len(s.scores))
	for playerID, score := range s.scores {
		entries = append(entries, domain.PlayerScore{PlayerID: playerID, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	return entries
}

func (s *Session) broadcastLocked(event domain.Event) {
	event.SessionID = s.id
	event.QuestionIndex = s.questionIndex
	event.At = s.clock.Now()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest update so a slow client never blocks the room.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
