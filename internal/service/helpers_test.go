package service

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/coachly/liveclass/internal/repository"
	"github.com/coachly/liveclass/internal/token"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubIssuer struct {
	mu     sync.Mutex
	fail   bool
	issued int
}

func (s *stubIssuer) Issue(identity, roomName string, canPublish bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", fmt.Errorf("%w: provider unreachable", token.ErrIssueFailed)
	}
	s.issued++
	return fmt.Sprintf("token-%s-publish=%t", identity, canPublish), nil
}

type captureEvents struct {
	mu     sync.Mutex
	events []domain.Event
}

func (c *captureEvents) Publish(event domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureEvents) countByType(typ domain.EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, event := range c.events {
		if event.Type == typ {
			n++
		}
	}
	return n
}

type fixture struct {
	sessions  *SessionService
	admission *AdmissionService
	issuer    *stubIssuer
	events    *captureEvents
	clock     *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixture() *fixture {
	issuer := &stubIssuer{}
	events := &captureEvents{}
	clock := &fakeClock{now: time.Now().UTC()}

	sessions := NewSessionService(
		repository.NewInMemorySessionRepository(),
		issuer, events, discardLogger(),
		2*time.Hour, 10, 100,
	)
	sessions.now = clock.Now

	admission := NewAdmissionService(
		sessions,
		repository.NewInMemoryJoinRequestRepository(),
		issuer, events, discardLogger(),
	)

	return &fixture{
		sessions:  sessions,
		admission: admission,
		issuer:    issuer,
		events:    events,
		clock:     clock,
	}
}
