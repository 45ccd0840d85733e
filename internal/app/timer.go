package app

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"buzzer-game-service/internal/domain"
)

// The question timer is a scheduled event, not an independent writer: its
// expiry re-enters the session through the mutex carrying the question
// index it was armed for, and bails out if the session has moved on. That
// tag check is the stale-timer guard; cancellation alone is not race-free
// once the callback goroutine is in flight.

// startTimerLocked arms the countdown for the current question, replacing
// any previous timer.
func (s *Session) startTimerLocked() {
	s.stopTimerLocked()

	index := s.questionIndex
	duration := s.quiz.Scoring.QuestionDuration()
	s.timerIndex = index
	s.deadline = s.clock.Now().Add(duration)
	s.expired = false

	cancel := make(chan struct{})
	s.timerCancel = cancel
	go s.runTimer(index, s.clock.NewTimer(duration), cancel)
}

func (s *Session) stopTimerLocked() {
	if s.timerCancel != nil {
		close(s.timerCancel)
		s.timerCancel = nil
	}
	s.timerIndex = -1
}

// runTimer waits out the question countdown and, unless cancelled, fires
// time-up followed by an automatic advance after the grace delay.
func (s *Session) runTimer(index int, timer clockwork.Timer, cancel <-chan struct{}) {
	select {
	case <-timer.Chan():
	case <-cancel:
		stopAndDrainTimer(timer)
		return
	}

	if !s.markTimeUp(index) {
		return
	}

	grace := s.clock.NewTimer(s.grace)
	select {
	case <-grace.Chan():
	case <-cancel:
		stopAndDrainTimer(grace)
		return
	}
	s.autoAdvance(index)
}

// markTimeUp freezes buzzing for the question the timer was armed for.
// Returns false when the tag is stale or the session is no longer active.
func (s *Session) markTimeUp(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive || s.questionIndex != index || s.timerIndex != index {
		log.Debug().Str("session_id", s.id).Int("timer_index", index).
			Int("current_index", s.questionIndex).Msg("discarding stale question timer")
		return false
	}
	s.expired = true
	s.broadcastLocked(domain.Event{Type: domain.EventTimeUp})
	return true
}

// autoAdvance moves to the next question after the grace delay, unless a
// host action already advanced or ended the session.
func (s *Session) autoAdvance(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive || s.questionIndex != index {
		return
	}
	s.advanceLocked()
}

// stopAndDrainTimer stops a timer and drains its channel so the waiting
// goroutine never leaks, per the time.Timer.Stop contract.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
