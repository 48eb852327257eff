package selector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"questa-search/internal/domain"

	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds a shared page fetch once it no longer follows
// the context of the caller that started it.
const DefaultFetchTimeout = 30 * time.Second

// Searcher is anything that returns one page of results.
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error)
}

// Pager accumulates pages of one search for "load more" style callers.
// Overlapping Next calls for the same page share a single fetch.
type Pager struct {
	searcher     Searcher
	group        singleflight.Group
	fetchTimeout time.Duration

	mu      sync.Mutex
	req     domain.SearchRequest
	gen     int
	items   []*domain.Question
	hasMore bool
	source  domain.Source
}

func NewPager(s Searcher, req domain.SearchRequest) *Pager {
	return &Pager{searcher: s, req: req, hasMore: true, fetchTimeout: DefaultFetchTimeout}
}

// Reset discards loaded items and starts req again from its offset.
func (p *Pager) Reset(req domain.SearchRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req = req
	p.gen++
	p.items = nil
	p.hasMore = true
	p.source = ""
}

// Next fetches the page after the loaded items. It returns an empty page once
// the search is exhausted. A caller whose ctx ends stops waiting, while the
// fetch goes on for the others sharing it.
func (p *Pager) Next(ctx context.Context) (domain.SearchResult, error) {
	p.mu.Lock()
	if !p.hasMore {
		src := p.source
		p.mu.Unlock()
		return domain.SearchResult{Questions: []*domain.Question{}, Source: src}, nil
	}
	req := p.req
	req.Offset += len(p.items)
	gen := p.gen
	p.mu.Unlock()

	return p.fetch(ctx, req, gen)
}

// fetch loads the page at req.Offset for generation gen. The page is appended
// only when it still continues the loaded items, so a caller that read the
// offset before an earlier fetch finished cannot add the same page twice.
func (p *Pager) fetch(ctx context.Context, req domain.SearchRequest, gen int) (domain.SearchResult, error) {
	key := fmt.Sprintf("%d:%d", gen, req.Offset)
	ch := p.group.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.fetchTimeout)
		defer cancel()
		res, err := p.searcher.Search(fctx, req)
		if err != nil {
			return domain.SearchResult{}, err
		}
		p.mu.Lock()
		if p.gen == gen && len(p.items) == req.Offset-p.req.Offset {
			p.items = append(p.items, res.Questions...)
			p.hasMore = res.HasMore
			p.source = res.Source
		}
		p.mu.Unlock()
		return res, nil
	})

	select {
	case <-ctx.Done():
		return domain.SearchResult{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return domain.SearchResult{}, r.Err
		}
		return r.Val.(domain.SearchResult), nil
	}
}

// Items returns a copy of everything loaded so far.
func (p *Pager) Items() []*domain.Question {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*domain.Question, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}
