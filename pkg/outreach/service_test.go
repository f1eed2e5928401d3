package outreach

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/briar/pkg/database"
	"github.com/Ramsey-B/briar/pkg/kafka"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/redis"
)

func testLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

type fakeMatcher struct {
	result *models.MatchResult
	err    error
}

func (f *fakeMatcher) Match(ctx context.Context, demand *models.Demand) (*models.MatchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeDemandStore struct {
	demand  *models.Demand
	err     error
	touched []string
}

func (f *fakeDemandStore) GetByID(ctx context.Context, id string) (*models.Demand, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.demand, nil
}

func (f *fakeDemandStore) TouchLastContacted(ctx context.Context, id string) error {
	f.touched = append(f.touched, id)
	return nil
}

type fakeOutboundStore struct {
	created  []*models.OutboundMessage
	statuses map[string]models.OutboundMessageStatus
}

func newFakeOutboundStore() *fakeOutboundStore {
	return &fakeOutboundStore{statuses: make(map[string]models.OutboundMessageStatus)}
}

func (f *fakeOutboundStore) Create(ctx context.Context, message *models.OutboundMessage) error {
	f.created = append(f.created, message)
	return nil
}

func (f *fakeOutboundStore) UpdateStatus(ctx context.Context, id string, status models.OutboundMessageStatus) error {
	f.statuses[id] = status
	return nil
}

type fakeNotifier struct {
	events []*kafka.OutboundMessageEvent
	err    error
}

func (f *fakeNotifier) PublishOutboundMessage(ctx context.Context, event *kafka.OutboundMessageEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeLimiter struct {
	allowed bool
	err     error
	calls   int
	gotKey  string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*redis.RateLimitResult, error) {
	f.calls++
	f.gotKey = key
	if f.err != nil {
		return nil, f.err
	}
	return &redis.RateLimitResult{Allowed: f.allowed}, nil
}

type fakeTxStarter struct {
	commits   int
	rollbacks int
}

func (f *fakeTxStarter) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error) {
	return ctx, &fakeTx{starter: f}, nil
}

type fakeTx struct {
	starter *fakeTxStarter
	closed  bool
}

func (f *fakeTx) IsOpen() bool { return !f.closed }

func (f *fakeTx) Commit(ctx context.Context) error {
	f.closed = true
	f.starter.commits++
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if !f.closed {
		f.closed = true
		f.starter.rollbacks++
	}
	return nil
}

func (f *fakeTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, nil
}

func (f *fakeTx) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

func (f *fakeTx) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

func testDemand() *models.Demand {
	return &models.Demand{
		ID:          "d1",
		ClientName:  "Ali",
		ClientPhone: "+923001234567",
		Budget:      10000000,
	}
}

func testMatchResult() *models.MatchResult {
	matches := []models.ScoredProperty{
		{Property: models.Property{ID: "p1", Title: "First", Location: "DHA", Price: 10000000, Size: "5 Marla"}, Score: 100},
		{Property: models.Property{ID: "p2", Title: "Second", Location: "DHA", Price: 11000000, Size: "5 Marla"}, Score: 80},
		{Property: models.Property{ID: "p3", Title: "Third", Location: "DHA", Price: 12000000, Size: "5 Marla"}, Score: 60},
	}
	return &models.MatchResult{DemandID: "d1", Matches: matches, Total: len(matches)}
}

func newTestService(matcher Matcher, demands DemandStore, store OutboundStore, notifier Notifier, limiter RateLimiter, cfg Config) *Service {
	return NewService(testLogger(), &fakeTxStarter{}, matcher, demands, store, notifier, limiter, cfg)
}

func TestService_SendMatches(t *testing.T) {
	t.Run("sends selected listings in rank order", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		store := newFakeOutboundStore()
		notifier := &fakeNotifier{}
		svc := newTestService(&fakeMatcher{result: testMatchResult()}, demands, store, notifier, nil, Config{})

		record, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"p3", "p1"}, // request order must not matter
		})
		require.NoError(t, err)

		assert.Equal(t, models.OutboundMessageStatusSent, record.Status)
		assert.Equal(t, []string{"p1", "p3"}, record.PropertyIDs.Data)

		require.Len(t, notifier.events, 1)
		assert.Equal(t, record.ID, notifier.events[0].MessageID)
		assert.Equal(t, "+923001234567", notifier.events[0].ClientPhone)
		assert.Equal(t, []string{"p1", "p3"}, notifier.events[0].PropertyIDs)
		assert.Less(t, indexOf(t, notifier.events[0].Message, "First"), indexOf(t, notifier.events[0].Message, "Third"))

		assert.Equal(t, models.OutboundMessageStatusSent, store.statuses[record.ID])
		assert.Equal(t, []string{"d1"}, demands.touched)
	})

	t.Run("empty selection is rejected before anything is sent", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		store := newFakeOutboundStore()
		notifier := &fakeNotifier{}
		svc := newTestService(&fakeMatcher{result: testMatchResult()}, demands, store, notifier, nil, Config{})

		_, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{DemandID: "d1"})
		require.Error(t, err)

		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
		assert.Contains(t, err.Error(), "select at least one property")
		assert.Empty(t, notifier.events)
		assert.Empty(t, store.created)
		assert.Empty(t, demands.touched)
	})

	t.Run("stale listing ids are dropped from the selection", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		store := newFakeOutboundStore()
		notifier := &fakeNotifier{}
		svc := newTestService(&fakeMatcher{result: testMatchResult()}, demands, store, notifier, nil, Config{})

		record, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"p2", "sold-long-ago"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"p2"}, record.PropertyIDs.Data)
	})

	t.Run("selection of only stale ids is treated as empty", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		svc := newTestService(&fakeMatcher{result: testMatchResult()}, demands, newFakeOutboundStore(), &fakeNotifier{}, nil, Config{})

		_, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"nope"},
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("notify failure surfaces and marks the record failed", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		store := newFakeOutboundStore()
		notifier := &fakeNotifier{err: errors.New("broker unreachable")}
		svc := newTestService(&fakeMatcher{result: testMatchResult()}, demands, store, notifier, nil, Config{})

		_, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"p1"},
		})
		require.Error(t, err)

		var notifyErr *models.NotifyError
		require.ErrorAs(t, err, &notifyErr)

		require.Len(t, store.created, 1)
		assert.Equal(t, models.OutboundMessageStatusFailed, store.statuses[store.created[0].ID])
		assert.Empty(t, demands.touched)
	})

	t.Run("match failure propagates", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		svc := newTestService(&fakeMatcher{err: &models.RetrievalError{Cause: errors.New("db down")}}, demands, newFakeOutboundStore(), &fakeNotifier{}, nil, Config{})

		_, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"p1"},
		})
		require.Error(t, err)

		var retrievalErr *models.RetrievalError
		assert.ErrorAs(t, err, &retrievalErr)
	})

	t.Run("audit record is committed in one transaction", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		store := newFakeOutboundStore()
		starter := &fakeTxStarter{}
		svc := NewService(testLogger(), starter, &fakeMatcher{result: testMatchResult()}, demands, store, &fakeNotifier{}, nil, Config{})

		_, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"p1"},
		})
		require.NoError(t, err)

		assert.Equal(t, 1, starter.commits)
		assert.Zero(t, starter.rollbacks)
	})

	t.Run("notify failure still commits the failed record", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		store := newFakeOutboundStore()
		starter := &fakeTxStarter{}
		notifier := &fakeNotifier{err: errors.New("broker unreachable")}
		svc := NewService(testLogger(), starter, &fakeMatcher{result: testMatchResult()}, demands, store, notifier, nil, Config{})

		_, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"p1"},
		})
		require.Error(t, err)

		assert.Equal(t, 1, starter.commits)
		assert.Zero(t, starter.rollbacks)
	})

	t.Run("rate limit rejects with 429", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		store := newFakeOutboundStore()
		notifier := &fakeNotifier{}
		limiter := &fakeLimiter{allowed: false}
		svc := newTestService(&fakeMatcher{result: testMatchResult()}, demands, store, notifier, limiter, Config{
			RateLimitEnabled: true,
			RateLimitSends:   3,
			RateLimitWindow:  5 * time.Minute,
		})

		_, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"p1"},
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusTooManyRequests, httperror.GetStatusCode(err))
		assert.Equal(t, "923001234567", limiter.gotKey)
		assert.Empty(t, notifier.events)
		assert.Empty(t, store.created)
	})

	t.Run("broken limiter does not block outreach", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		limiter := &fakeLimiter{err: errors.New("redis down")}
		svc := newTestService(&fakeMatcher{result: testMatchResult()}, demands, newFakeOutboundStore(), &fakeNotifier{}, limiter, Config{
			RateLimitEnabled: true,
			RateLimitSends:   3,
			RateLimitWindow:  5 * time.Minute,
		})

		record, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"p1"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.OutboundMessageStatusSent, record.Status)
		assert.Equal(t, 1, limiter.calls)
	})

	t.Run("disabled rate limit skips the limiter", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		limiter := &fakeLimiter{allowed: false}
		svc := newTestService(&fakeMatcher{result: testMatchResult()}, demands, newFakeOutboundStore(), &fakeNotifier{}, limiter, Config{RateLimitEnabled: false})

		_, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"p1"},
		})
		require.NoError(t, err)
		assert.Zero(t, limiter.calls)
	})

	t.Run("nil notifier still records the send", func(t *testing.T) {
		demands := &fakeDemandStore{demand: testDemand()}
		store := newFakeOutboundStore()
		svc := newTestService(&fakeMatcher{result: testMatchResult()}, demands, store, nil, nil, Config{})

		record, err := svc.SendMatches(context.Background(), models.SendMatchesRequest{
			DemandID:    "d1",
			PropertyIDs: []string{"p1"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.OutboundMessageStatusSent, record.Status)
		require.Len(t, store.created, 1)
	})
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "expected %q in message", needle)
	return idx
}
