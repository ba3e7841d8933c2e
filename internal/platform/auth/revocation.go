package auth

import (
	"context"
	"sync"
	"time"
)

// RevocationStore records logged-out tokens by JTI until they would have
// expired anyway. It also holds per-subject cut-offs: every token of a
// subject issued at or before the cut-off is rejected.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeSubject rejects the subject's tokens issued at or before `at`.
	// The cut-off is forgotten after `until`, once those tokens have expired.
	RevokeSubject(ctx context.Context, subject string, at, until time.Time) error
	// SubjectRevokedAt returns the subject's cut-off, or the zero time.
	SubjectRevokedAt(ctx context.Context, subject string) (time.Time, error)
}

type subjectCutoff struct {
	at    time.Time
	until time.Time
}

// MemoryRevocationStore is the single-instance RevocationStore. Expired
// entries are swept every cleanupInterval.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries  map[string]time.Time
	subjects map[string]subjectCutoff
	done    chan struct{}
	now     func() time.Time
}

const cleanupInterval = 5 * time.Minute

// NewMemoryRevocationStore starts the cleanup goroutine; call Close to stop it.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	s := &MemoryRevocationStore{
		entries:  make(map[string]time.Time),
		subjects: make(map[string]subjectCutoff),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go s.cleanupLoop()
	return s
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = expiresAt
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[jti]
	return ok, nil
}

func (s *MemoryRevocationStore) RevokeSubject(_ context.Context, subject string, at, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subject] = subjectCutoff{at: at, until: until}
	return nil
}

func (s *MemoryRevocationStore) SubjectRevokedAt(_ context.Context, subject string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subjects[subject].at, nil
}

// Count returns the number of tracked revocations.
func (s *MemoryRevocationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (s *MemoryRevocationStore) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *MemoryRevocationStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemoryRevocationStore) cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for jti, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, jti)
		}
	}
	for subject, cut := range s.subjects {
		if now.After(cut.until) {
			delete(s.subjects, subject)
		}
	}
}
