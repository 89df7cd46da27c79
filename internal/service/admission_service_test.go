package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/coachly/liveclass/internal/repository"
	"github.com/coachly/liveclass/internal/token"
	"github.com/google/uuid"
)

func startSession(t *testing.T, f *fixture, owner uuid.UUID, capacity int) *domain.Session {
	t.Helper()
	session, _, err := f.sessions.StartSession(context.Background(), owner, capacity)
	if err != nil {
		t.Fatalf("start session failed: %v", err)
	}
	return session
}

func TestRequestJoinSanitizesName(t *testing.T) {
	f := newFixture()
	session := startSession(t, f, uuid.New(), 5)

	request, err := f.admission.RequestJoin(context.Background(), session.ID, "  Alice   Brown ")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if request.DisplayName != "Alice Brown" {
		t.Fatalf("expected sanitized name, got %q", request.DisplayName)
	}
	if request.Status != domain.JoinRequestStatusPending {
		t.Fatalf("expected pending, got %s", request.Status)
	}
	if got := f.events.countByType(domain.EventRequestCreated); got != 1 {
		t.Fatalf("expected 1 request_created event, got %d", got)
	}
}

func TestRequestJoinRejectsEmptyName(t *testing.T) {
	f := newFixture()
	session := startSession(t, f, uuid.New(), 5)

	if _, err := f.admission.RequestJoin(context.Background(), session.ID, "   "); !errors.Is(err, domain.ErrDisplayNameEmpty) {
		t.Fatalf("expected ErrDisplayNameEmpty, got %v", err)
	}
}

func TestRequestJoinAfterExpiry(t *testing.T) {
	f := newFixture()
	session := startSession(t, f, uuid.New(), 5)

	f.clock.Advance(3 * time.Hour)

	if _, err := f.admission.RequestJoin(context.Background(), session.ID, "Alice"); !errors.Is(err, ErrSessionNotLive) {
		t.Fatalf("expected ErrSessionNotLive, got %v", err)
	}
}

func TestCapacityOneScenario(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	session := startSession(t, f, owner, 1)
	ctx := context.Background()

	reqA, err := f.admission.RequestJoin(ctx, session.ID, "Alice")
	if err != nil {
		t.Fatalf("join A failed: %v", err)
	}
	reqB, err := f.admission.RequestJoin(ctx, session.ID, "Bob")
	if err != nil {
		t.Fatalf("join B failed: %v", err)
	}

	approved, err := f.admission.Approve(ctx, session.ID, reqA.ID, owner)
	if err != nil {
		t.Fatalf("approve A failed: %v", err)
	}
	if approved.Status != domain.JoinRequestStatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if approved.Credential == "" {
		t.Fatal("expected credential on approved request")
	}

	if _, err := f.admission.Approve(ctx, session.ID, reqB.ID, owner); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	rejected, err := f.admission.Reject(ctx, session.ID, reqB.ID, owner)
	if err != nil {
		t.Fatalf("reject B failed: %v", err)
	}
	if rejected.Status != domain.JoinRequestStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if rejected.Credential != "" {
		t.Fatal("rejected request must not carry a credential")
	}
}

func TestConcurrentApprovalsRespectCapacity(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	const capacity = 3
	const contenders = 8
	session := startSession(t, f, owner, capacity)
	ctx := context.Background()

	ids := make([]uuid.UUID, contenders)
	for i := range ids {
		request, err := f.admission.RequestJoin(ctx, session.ID, "Student")
		if err != nil {
			t.Fatalf("join %d failed: %v", i, err)
		}
		ids[i] = request.ID
	}

	var wg sync.WaitGroup
	results := make([]error, contenders)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.admission.Approve(ctx, session.ID, ids[i], owner)
		}(i)
	}
	wg.Wait()

	succeeded, capacityExceeded := 0, 0
	for i, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrCapacityExceeded):
			capacityExceeded++
		default:
			t.Fatalf("approve %d failed unexpectedly: %v", i, err)
		}
	}
	if succeeded != capacity {
		t.Fatalf("expected exactly %d approvals, got %d", capacity, succeeded)
	}
	if capacityExceeded != contenders-capacity {
		t.Fatalf("expected %d capacity errors, got %d", contenders-capacity, capacityExceeded)
	}

	count, err := f.admission.ApprovedCount(ctx, session.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != capacity {
		t.Fatalf("approved count %d exceeds capacity %d", count, capacity)
	}
}

func TestDoubleResolutionFails(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	session := startSession(t, f, owner, 5)
	ctx := context.Background()

	request, err := f.admission.RequestJoin(ctx, session.ID, "Alice")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.admission.Approve(ctx, session.ID, request.ID, owner); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if _, err := f.admission.Approve(ctx, session.ID, request.ID, owner); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved on re-approve, got %v", err)
	}
	if _, err := f.admission.Reject(ctx, session.ID, request.ID, owner); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved on reject-after-approve, got %v", err)
	}

	current, err := f.admission.GetRequestStatus(ctx, session.ID, request.ID)
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if current.Status != domain.JoinRequestStatusApproved {
		t.Fatalf("state changed by failed resolution: %s", current.Status)
	}
}

func TestApproveForbiddenForNonOwner(t *testing.T) {
	f := newFixture()
	session := startSession(t, f, uuid.New(), 5)
	ctx := context.Background()

	request, err := f.admission.RequestJoin(ctx, session.ID, "Alice")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}

	if _, err := f.admission.Approve(ctx, session.ID, request.ID, uuid.New()); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := f.admission.ListRequests(ctx, session.ID, uuid.New()); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on list, got %v", err)
	}
}

func TestApproveUnknownRequest(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	session := startSession(t, f, owner, 5)

	if _, err := f.admission.Approve(context.Background(), session.ID, uuid.New(), owner); !errors.Is(err, repository.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestApproveIssuerFailureKeepsRequestPending(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	session := startSession(t, f, owner, 5)
	ctx := context.Background()

	request, err := f.admission.RequestJoin(ctx, session.ID, "Alice")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}

	f.issuer.fail = true
	if _, err := f.admission.Approve(ctx, session.ID, request.ID, owner); !errors.Is(err, token.ErrIssueFailed) {
		t.Fatalf("expected ErrIssueFailed, got %v", err)
	}

	current, err := f.admission.GetRequestStatus(ctx, session.ID, request.ID)
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if current.Status != domain.JoinRequestStatusPending {
		t.Fatalf("expected request to stay pending, got %s", current.Status)
	}

	// Retry succeeds once the provider recovers.
	f.issuer.fail = false
	if _, err := f.admission.Approve(ctx, session.ID, request.ID, owner); err != nil {
		t.Fatalf("retry approve failed: %v", err)
	}
}

func TestListRequestsOrderedByCreation(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	session := startSession(t, f, owner, 5)
	ctx := context.Background()

	names := []string{"Alice", "Bob", "Carol"}
	for _, name := range names {
		if _, err := f.admission.RequestJoin(ctx, session.ID, name); err != nil {
			t.Fatalf("join %s failed: %v", name, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	requests, err := f.admission.ListRequests(ctx, session.ID, owner)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(requests) != len(names) {
		t.Fatalf("expected %d requests, got %d", len(names), len(requests))
	}
	for i, request := range requests {
		if request.DisplayName != names[i] {
			t.Fatalf("expected %s at position %d, got %s", names[i], i, request.DisplayName)
		}
	}
}

func TestGetRequestStatusIsAnonymous(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	session := startSession(t, f, owner, 5)
	ctx := context.Background()

	request, err := f.admission.RequestJoin(ctx, session.ID, "Alice")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.admission.Approve(ctx, session.ID, request.ID, owner); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	current, err := f.admission.GetRequestStatus(ctx, session.ID, request.ID)
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if current.Credential == "" {
		t.Fatal("expected credential on approved request status")
	}

	// A request cannot be read through another session's id.
	if _, err := f.admission.GetRequestStatus(ctx, uuid.New(), request.ID); !errors.Is(err, repository.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}
