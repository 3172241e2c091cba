package client

import (
	"context"
	"sync"

	"github.com/Matheus-Salgado02/cinelist/models"
)

// PageFetcher loads one page of a catalog listing.
type PageFetcher func(ctx context.Context, page int) (*models.MoviePage, error)

// Pager accumulates a catalog listing forward-only. At most one load runs at a
// time and it never asks for a page past total_pages.
type Pager struct {
	fetch PageFetcher

	mu         sync.Mutex
	page       int
	totalPages int
	loading    bool
	gen        uint64
	items      []models.MovieSummary
	seen       map[models.MovieID]struct{}
}

func NewPager(fetch PageFetcher) *Pager {
	return &Pager{fetch: fetch, seen: map[models.MovieID]struct{}{}}
}

// HasMore reports whether another page exists. Before the first load it is
// true.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMoreLocked()
}

func (p *Pager) hasMoreLocked() bool {
	return p.page == 0 || p.page < p.totalPages
}

func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Pager) Items() []models.MovieSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.MovieSummary(nil), p.items...)
}

// LoadMore fetches the next page. It returns false without fetching while a
// load is running or when the listing is exhausted. A failed load leaves the
// position unchanged so it can be retried.
func (p *Pager) LoadMore(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.loading || !p.hasMoreLocked() {
		p.mu.Unlock()
		return false, nil
	}
	p.loading = true
	next, gen := p.page+1, p.gen
	p.mu.Unlock()

	res, err := p.fetch(ctx, next)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return false, nil
	}
	p.loading = false
	if err != nil {
		return false, err
	}
	p.page = next
	p.totalPages = res.TotalPages
	for _, m := range res.Results {
		if _, dup := p.seen[m.ID]; dup {
			continue
		}
		p.seen[m.ID] = struct{}{}
		p.items = append(p.items, m)
	}
	return true, nil
}

// Reset starts the listing over, e.g. after the genre filter changes. A load
// still in flight is discarded when it returns.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.loading = false
	p.page, p.totalPages = 0, 0
	p.items = nil
	p.seen = map[models.MovieID]struct{}{}
}
