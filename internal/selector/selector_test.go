package selector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"questa-search/internal/domain"
	"questa-search/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name      domain.Source
	health    func(ctx context.Context) error
	searchErr error
	getErr    error
	calls     atomic.Int32
}

func (f *fakeSource) Health(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health(ctx)
}

func (f *fakeSource) Search(_ context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	f.calls.Add(1)
	if f.searchErr != nil {
		return domain.SearchResult{}, f.searchErr
	}
	return domain.SearchResult{Questions: []*domain.Question{{ID: string(f.name)}}, Source: f.name}, nil
}

func (f *fakeSource) ListBySubject(ctx context.Context, subject domain.Subject, req domain.SearchRequest) (domain.SearchResult, error) {
	req.Filter.Subjects = []domain.Subject{subject}
	return f.Search(ctx, req)
}

func (f *fakeSource) Suggestions(context.Context, string, int) ([]string, error) {
	f.calls.Add(1)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return []string{string(f.name)}, nil
}

func (f *fakeSource) GetQuestion(_ context.Context, id string) (*domain.Question, error) {
	f.calls.Add(1)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &domain.Question{ID: id, Topic: string(f.name)}, nil
}

var anyRequest = search.Normalize(search.RawQuery{})

func TestSelector_RemoteHealthy(t *testing.T) {
	remote := &fakeSource{name: domain.SourceRemote}
	local := &fakeSource{name: domain.SourceLocal}
	s := New(remote, local, Options{FallbackEnabled: true})

	res, err := s.Search(context.Background(), anyRequest)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRemote, res.Source)
	assert.Zero(t, local.calls.Load())
}

func TestSelector_HealthTimeoutFallsBackWithoutError(t *testing.T) {
	remote := &fakeSource{
		name: domain.SourceRemote,
		health: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	local := &fakeSource{name: domain.SourceLocal}
	s := New(remote, local, Options{FallbackEnabled: true, HealthTimeout: 20 * time.Millisecond})

	start := time.Now()
	res, err := s.Search(context.Background(), anyRequest)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, res.Source)
	assert.Zero(t, remote.calls.Load())
	assert.Less(t, time.Since(start), time.Second)

	// Nothing is remembered: the next call checks health again.
	remote.health = nil
	res, err = s.Search(context.Background(), anyRequest)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRemote, res.Source)
}

func TestSelector_RemoteErrorRetriesLocalOnce(t *testing.T) {
	remote := &fakeSource{name: domain.SourceRemote, searchErr: domain.NewRemoteUnavailableError(errors.New("502"))}
	local := &fakeSource{name: domain.SourceLocal}
	s := New(remote, local, Options{FallbackEnabled: true})
	ctx := context.Background()

	res, err := s.ListBySubject(ctx, domain.SubjectMath, anyRequest)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, res.Source)
	assert.Equal(t, int32(1), remote.calls.Load())
	assert.Equal(t, int32(1), local.calls.Load())

	sugg, err := s.Suggestions(ctx, "co", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{string(domain.SourceLocal)}, sugg)
}

func TestSelector_LocalErrorSurfaces(t *testing.T) {
	remote := &fakeSource{name: domain.SourceRemote, health: func(context.Context) error { return errors.New("down") }}
	local := &fakeSource{name: domain.SourceLocal, searchErr: errors.New("store closed")}
	s := New(remote, local, Options{FallbackEnabled: true})

	_, err := s.Search(context.Background(), anyRequest)
	assert.EqualError(t, err, "store closed")
}

func TestSelector_FallbackDisabled(t *testing.T) {
	remoteErr := domain.NewRemoteUnavailableError(errors.New("connection refused"))
	remote := &fakeSource{
		name:      domain.SourceRemote,
		health:    func(context.Context) error { t.Fatal("health must not be checked"); return nil },
		searchErr: remoteErr,
	}
	local := &fakeSource{name: domain.SourceLocal}
	s := New(remote, local, Options{FallbackEnabled: false})

	_, err := s.Search(context.Background(), anyRequest)
	assert.ErrorIs(t, err, remoteErr)
	assert.Zero(t, local.calls.Load())
}

func TestSelector_NotFoundIsNotAFailure(t *testing.T) {
	remote := &fakeSource{name: domain.SourceRemote, getErr: domain.NewQuestionNotFoundError("q1")}
	local := &fakeSource{name: domain.SourceLocal}
	s := New(remote, local, Options{FallbackEnabled: true})

	_, err := s.GetQuestion(context.Background(), "q1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, local.calls.Load())
}

func TestSelector_GetQuestionFallback(t *testing.T) {
	remote := &fakeSource{name: domain.SourceRemote, getErr: errors.New("timeout")}
	local := &fakeSource{name: domain.SourceLocal}
	s := New(remote, local, Options{FallbackEnabled: true})

	q, err := s.GetQuestion(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, string(domain.SourceLocal), q.Topic)
}

func TestSelector_CanceledContextDoesNotFallBack(t *testing.T) {
	remote := &fakeSource{name: domain.SourceRemote, health: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	local := &fakeSource{name: domain.SourceLocal}
	s := New(remote, local, Options{FallbackEnabled: true, HealthTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Search(ctx, anyRequest)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, local.calls.Load())
}

// pagedSource serves ids 0..total-1 and blocks each fetch until release is closed.
type pagedSource struct {
	total   int
	release chan struct{}
	calls   atomic.Int32
}

func (p *pagedSource) Search(_ context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	p.calls.Add(1)
	if p.release != nil {
		<-p.release
	}
	all := make([]*domain.Question, p.total)
	for i := range all {
		all[i] = &domain.Question{Difficulty: i}
	}
	page, more := search.Paginate(all, req.Limit, req.Offset)
	return domain.SearchResult{Questions: page, HasMore: more, Source: domain.SourceRemote}, nil
}

func TestPager_LoadsUntilExhausted(t *testing.T) {
	src := &pagedSource{total: 5}
	req := search.Normalize(search.RawQuery{Limit: "2"})
	p := NewPager(src, req)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := p.Next(ctx)
		require.NoError(t, err)
	}
	assert.Len(t, p.Items(), 5)
	assert.False(t, p.HasMore())

	res, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Questions)
	assert.Equal(t, int32(3), src.calls.Load())

	p.Reset(req)
	assert.Empty(t, p.Items())
	assert.True(t, p.HasMore())
	res, err = p.Next(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Questions, 2)
}

func TestPager_ConcurrentNextSharesFetch(t *testing.T) {
	src := &pagedSource{total: 10, release: make(chan struct{})}
	p := NewPager(src, search.Normalize(search.RawQuery{Limit: "3"}))

	var wg sync.WaitGroup
	results := make([]domain.SearchResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Next(context.Background())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Len(t, p.Items(), 3)
	for _, res := range results {
		assert.Len(t, res.Questions, 3)
	}
}

func TestPager_StaleOffsetDoesNotDuplicate(t *testing.T) {
	src := &pagedSource{total: 10}
	req := search.Normalize(search.RawQuery{Limit: "3"})
	p := NewPager(src, req)
	ctx := context.Background()

	// A second caller read offset 0 before the first fetch landed.
	staleReq, staleGen := req, 0

	_, err := p.Next(ctx)
	require.NoError(t, err)
	require.Len(t, p.Items(), 3)

	res, err := p.fetch(ctx, staleReq, staleGen)
	require.NoError(t, err)
	assert.Len(t, res.Questions, 3)
	assert.Len(t, p.Items(), 3)

	res, err = p.Next(ctx)
	require.NoError(t, err)
	require.Len(t, res.Questions, 3)
	assert.Equal(t, 3, res.Questions[0].Difficulty)
	assert.Len(t, p.Items(), 6)
}

func TestPager_CanceledCallerLeavesSharedFetch(t *testing.T) {
	src := &pagedSource{total: 10, release: make(chan struct{})}
	p := NewPager(src, search.Normalize(search.RawQuery{Limit: "3"}))

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Next(first)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan domain.SearchResult, 1)
	go func() {
		res, err := p.Next(context.Background())
		assert.NoError(t, err)
		second <- res
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.release)
	res := <-second
	assert.Len(t, res.Questions, 3)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Len(t, p.Items(), 3)
}
