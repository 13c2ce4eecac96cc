package usecase

import (
	"context"
	"sync"
	"time"

	"campuschat/internal/domain/entity"
	"campuschat/internal/domain/service"
	"campuschat/pkg/errors"
)

type fakeBlockRepo struct {
	mu      sync.Mutex
	users   map[string][]entity.BlockedUser // by token
	fail    bool
	calls   int
	blocked []string
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{users: make(map[string][]entity.BlockedUser)}
}

func (f *fakeBlockRepo) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeBlockRepo) ListBlocked(ctx context.Context, token string) ([]entity.BlockedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, errors.Upstream("Marketplace API unavailable", 0, nil)
	}
	return append([]entity.BlockedUser(nil), f.users[token]...), nil
}

func (f *fakeBlockRepo) Block(ctx context.Context, token, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.Upstream("Marketplace API unavailable", 0, nil)
	}
	f.users[token] = append(f.users[token], entity.BlockedUser{UserID: userID})
	f.blocked = append(f.blocked, userID)
	return nil
}

func (f *fakeBlockRepo) Unblock(ctx context.Context, token, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []entity.BlockedUser
	for _, u := range f.users[token] {
		if u.UserID != userID {
			kept = append(kept, u)
		}
	}
	f.users[token] = kept
	return nil
}

func (f *fakeBlockRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []service.MessageNotification
	err  error
}

func (f *fakeNotifier) NotifyMessage(ctx context.Context, token string, n service.MessageNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return f.err
}

func (f *fakeNotifier) notifications() []service.MessageNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.MessageNotification(nil), f.sent...)
}

type fakeProfileRepo struct {
	profile *entity.Profile
	err     error
}

func (f *fakeProfileRepo) GetMyProfile(ctx context.Context, token string) (*entity.Profile, error) {
	return f.profile, f.err
}

type fakeReportRepo struct {
	created []*entity.Report
	err     error
}

func (f *fakeReportRepo) Create(ctx context.Context, token string, report *entity.Report) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, report)
	return nil
}

// tickingClock advances one second on every reading.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
