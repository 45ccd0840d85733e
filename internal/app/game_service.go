package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"buzzer-game-service/internal/domain"
)

// SessionRegistry is the authoritative in-memory table of live sessions
// (in-memory or Redis-marked, depending on deployment).
type SessionRegistry interface {
	Add(session *Session)
	Get(sessionID string) (*Session, bool)
	Remove(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// GameStore is the persistence gateway for session rows, score deltas,
// and the buzz log. All writes are best-effort relative to gameplay.
type GameStore interface {
	CreateSessionRecord(ctx context.Context, sessionID, quizID, hostID, code string) error
	MarkSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error
	RecordScoreDelta(ctx context.Context, playerID string, delta int) error
	LogBuzz(ctx context.Context, sessionID, playerID, questionID string, at time.Time, correct bool, points int) error
}

// GameService wires the session coordination core together: registry,
// rooms, quiz content, and write-behind persistence. A nil store runs the
// game purely in memory.
type GameService struct {
	registry SessionRegistry
	rooms    *RoomManager
	quizzes  QuizRepository
	store    GameStore
	clock    clockwork.Clock
	grace    time.Duration
}

// Option tweaks GameService construction.
type Option func(*GameService)

// WithClock injects the clock used for all session timers.
func WithClock(clock clockwork.Clock) Option {
	return func(g *GameService) { g.clock = clock }
}

// WithGraceDelay sets the pause between time-up and the automatic advance.
func WithGraceDelay(d time.Duration) Option {
	return func(g *GameService) { g.grace = d }
}

// WithGameStore attaches the persistence gateway.
func WithGameStore(store GameStore) Option {
	return func(g *GameService) { g.store = store }
}

const defaultGraceDelay = 3 * time.Second

func NewGameService(registry SessionRegistry, quizzes QuizRepository, opts ...Option) *GameService {
	g := &GameService{
		registry: registry,
		rooms:    NewRoomManager(),
		quizzes:  quizzes,
		clock:    clockwork.NewRealClock(),
		grace:    defaultGraceDelay,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreateSession opens a new game session over a quiz. Fails with
// ErrQuizEmpty when the quiz has no questions.
func (g *GameService) CreateSession(ctx context.Context, quizID, hostID string) (sessionID, code string, err error) {
	quiz, err := g.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", "", err
	}
	if len(quiz.Questions) == 0 {
		return "", "", domain.ErrQuizEmpty
	}

	sessionID = uuid.NewString()
	code = newJoinCode()
	session := newSession(sessionID, code, hostID, quiz, g.clock, g.grace)
	session.onScore = g.scoreHookFor(sessionID)
	session.onEnd = g.endHookFor(sessionID)
	g.registry.Add(session)

	if g.store != nil {
		if err := g.store.CreateSessionRecord(ctx, sessionID, quizID, hostID, code); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("persist session record failed")
		}
	}
	log.Info().Str("session_id", sessionID).Str("quiz_id", quizID).
		Str("host_id", hostID).Msg("session created")
	return sessionID, code, nil
}

// StartSession begins gameplay on question 0.
func (g *GameService) StartSession(ctx context.Context, sessionID, hostID string) error {
	session, ok := g.registry.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if err := session.Start(hostID); err != nil {
		return err
	}
	g.markStatus(ctx, sessionID, domain.StatusActive)
	return nil
}

// JoinSession attaches a connection to a session's room.
func (g *GameService) JoinSession(connID, sessionID, playerID string) error {
	session, ok := g.registry.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if err := session.Join(connID, playerID); err != nil {
		return err
	}
	g.rooms.Track(connID, sessionID, playerID)
	return nil
}

// LeaveSession detaches a connection from whichever room it was in.
// No-op for unknown connections.
func (g *GameService) LeaveSession(connID string) {
	sessionID, _, ok := g.rooms.Forget(connID)
	if !ok {
		return
	}
	if session, ok := g.registry.Get(sessionID); ok {
		session.Leave(connID)
	}
}

// Buzz attempts to take the buzz lock for the current question.
func (g *GameService) Buzz(sessionID, playerID string) (accepted bool, err error) {
	session, ok := g.registry.Get(sessionID)
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	return session.TryBuzz(playerID, g.clock.Now()), nil
}

// SubmitAnswer routes an answer into the session state machine.
func (g *GameService) SubmitAnswer(sessionID, playerID, answer string) (GradeResult, error) {
	session, ok := g.registry.Get(sessionID)
	if !ok {
		return GradeResult{}, domain.ErrSessionNotFound
	}
	return session.SubmitAnswer(playerID, answer)
}

// GradeAnswer applies the host's verdict to the pending open answer.
func (g *GameService) GradeAnswer(sessionID, hostID string, correct bool) (GradeResult, error) {
	session, ok := g.registry.Get(sessionID)
	if !ok {
		return GradeResult{}, domain.ErrSessionNotFound
	}
	return session.Grade(hostID, correct)
}

// AdvanceQuestion is the host's manual skip.
func (g *GameService) AdvanceQuestion(sessionID, hostID string) error {
	session, ok := g.registry.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.Advance(hostID)
}

// EndSession terminates gameplay. The session stays in the registry for
// read access until removed.
func (g *GameService) EndSession(sessionID, hostID string) error {
	session, ok := g.registry.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.End(hostID)
}

// RemoveSession evicts a session from the registry.
func (g *GameService) RemoveSession(sessionID string) {
	g.registry.Remove(sessionID)
}

// Subscribe returns a channel of room events for a session. The caller
// must invoke the returned cancel function to avoid leaks.
func (g *GameService) Subscribe(sessionID string) (<-chan domain.Event, func(), error) {
	session, ok := g.registry.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Snapshot returns a read-only view of a session.
func (g *GameService) Snapshot(sessionID string) (domain.SessionSnapshot, error) {
	session, ok := g.registry.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// scoreHookFor builds the write-behind hook that persists score deltas
// and the buzz log. Runs off the session lock; failures are logged and
// gameplay continues.
func (g *GameService) scoreHookFor(sessionID string) scoreHook {
	if g.store == nil {
		return nil
	}
	return func(playerID, questionID string, correct bool, delta int, at time.Time) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.store.RecordScoreDelta(ctx, playerID, delta); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).
				Str("player_id", playerID).Msg("persist score delta failed")
		}
		if err := g.store.LogBuzz(ctx, sessionID, playerID, questionID, at, correct, delta); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).
				Str("player_id", playerID).Msg("persist buzz log failed")
		}
	}
}

func (g *GameService) endHookFor(sessionID string) endHook {
	return func(finalScores []domain.PlayerScore) {
		log.Info().Str("session_id", sessionID).Int("players", len(finalScores)).
			Msg("session ended")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		g.markStatus(ctx, sessionID, domain.StatusEnded)
	}
}

func (g *GameService) markStatus(ctx context.Context, sessionID string, status domain.SessionStatus) {
	if g.store == nil {
		return
	}
	if err := g.store.MarkSessionStatus(ctx, sessionID, status); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).
			Str("status", string(status)).Msg("persist session status failed")
	}
}

// newJoinCode mints the short uppercase code players type to find a game.
func newJoinCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return strings.ToUpper(uuid.NewString()[:8])
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
