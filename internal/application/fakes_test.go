package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	repo "github.com/oksasatya/ebook-storefront/internal/domain/repository"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakePurchases struct {
	set   entity.EntitlementSet
	err   error
	calls int
}

func (f *fakePurchases) Purchases(_ context.Context, _ string) (entity.EntitlementSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

type fakeVerifier struct {
	grant *repo.DownloadGrant
	err   error
	calls int
	last  [2]string
}

func (f *fakeVerifier) VerifyDownload(_ context.Context, productID, userID string) (*repo.DownloadGrant, error) {
	f.calls++
	f.last = [2]string{productID, userID}
	if f.err != nil {
		return nil, f.err
	}
	return f.grant, nil
}

type memCache struct {
	mu      sync.Mutex
	sets    map[string]entity.EntitlementSet
	loadErr error
	saveErr error
	loads   int
}

func newMemCache() *memCache { return &memCache{sets: map[string]entity.EntitlementSet{}} }

func (c *memCache) Load(_ context.Context, userID string) (entity.EntitlementSet, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	if c.loadErr != nil {
		return entity.NewEntitlementSet(), false, c.loadErr
	}
	s, ok := c.sets[userID]
	if !ok {
		return entity.NewEntitlementSet(), false, nil
	}
	return s, true, nil
}

func (c *memCache) Save(_ context.Context, userID string, set entity.EntitlementSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.sets[userID] = set
	return nil
}

func (c *memCache) Clear(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sets, userID)
	return nil
}

type fakeSigner struct {
	object string
	ttl    time.Duration
	err    error
}

func (f *fakeSigner) SignedURL(_ context.Context, object string, ttl time.Duration) (string, time.Time, error) {
	f.object, f.ttl = object, ttl
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "https://signed.test/" + object, time.Date(2026, 1, 1, 0, 15, 0, 0, time.UTC), nil
}

type fakeAudit struct {
	rows []entity.DownloadAudit
	err  error
}

func (f *fakeAudit) Insert(_ context.Context, a *entity.DownloadAudit) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, *a)
	return nil
}

func (f *fakeAudit) ListByUser(_ context.Context, userID string, _ int) ([]entity.DownloadAudit, error) {
	out := []entity.DownloadAudit{}
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	calls int
	err   error
	loc   entity.DownloadLocation
}

func (f *fakeNotifier) NotifyDownload(_ context.Context, _ entity.User, _ entity.Product, loc entity.DownloadLocation, _ RequestMeta) error {
	f.calls++
	f.loc = loc
	return f.err
}

type fakePublisher struct {
	jobs []any
	err  error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.jobs = append(f.jobs, body)
	return f.err
}

type fakeSearcher struct {
	res []entity.Product
	err error
}

func (f fakeSearcher) Search(context.Context, string, int) ([]entity.Product, error) {
	return f.res, f.err
}

var errBoom = errors.New("boom")
