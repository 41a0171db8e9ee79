package extract

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/notion-insights/internal/db"
	"github.com/jonathan/notion-insights/internal/notion"
)

type fakeProvider struct {
	pages   []*notion.Page
	errs    map[int]error // keyed by call number
	calls   int
	fetches int
	cursors []string
}

func (p *fakeProvider) FetchPage(_ context.Context, cursor string, _ int) (*notion.Page, error) {
	p.cursors = append(p.cursors, cursor)
	call := p.calls
	p.calls++
	if err, ok := p.errs[call]; ok {
		return nil, err
	}
	page := p.pages[p.fetches]
	p.fetches++
	return page, nil
}

type fakeStore struct {
	existing map[string]bool
	stored   []string
	recorded []string
	failOn   string
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: map[string]bool{}}
}

func (s *fakeStore) UpsertDocument(_ context.Context, doc *db.SourceDocument) (bool, error) {
	if doc.ID == s.failOn {
		return false, fmt.Errorf("disk full")
	}
	created := !s.existing[doc.ID]
	s.existing[doc.ID] = true
	s.stored = append(s.stored, doc.ID)
	return created, nil
}

func (s *fakeStore) EnsureRecord(_ context.Context, documentID string) error {
	s.recorded = append(s.recorded, documentID)
	return nil
}

func doc(id string) notion.Document {
	return notion.Document{
		ID:             id,
		Title:          "Title " + id,
		CreatedTime:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		LastEditedTime: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestRun_WalksAllPages(t *testing.T) {
	provider := &fakeProvider{pages: []*notion.Page{
		{Documents: []notion.Document{doc("a"), doc("b")}, HasMore: true, NextCursor: "c2"},
		{Documents: []notion.Document{doc("c")}, HasMore: false},
	}}
	store := newFakeStore()

	result, err := NewCoordinator(provider, store, nil, 100).Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, []string{"", "c2"}, provider.cursors)
	assert.Equal(t, []string{"a", "b", "c"}, store.recorded)
}

func TestRun_CountsUpdatesSeparately(t *testing.T) {
	provider := &fakeProvider{pages: []*notion.Page{
		{Documents: []notion.Document{doc("a"), doc("b")}},
	}}
	store := newFakeStore()
	store.existing["a"] = true

	result, err := NewCoordinator(provider, store, nil, 100).Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
}

func TestRun_HonorsLimit(t *testing.T) {
	provider := &fakeProvider{pages: []*notion.Page{
		{Documents: []notion.Document{doc("a"), doc("b"), doc("c")}, HasMore: true, NextCursor: "c2"},
	}}
	store := newFakeStore()

	result, err := NewCoordinator(provider, store, nil, 100).Run(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Len(t, provider.cursors, 1, "must not fetch past the limit")
}

func TestRun_PageErrorKeepsPriorCommits(t *testing.T) {
	provider := &fakeProvider{
		pages: []*notion.Page{
			{Documents: []notion.Document{doc("a")}, HasMore: true, NextCursor: "c2"},
		},
		errs: map[int]error{1: fmt.Errorf("upstream gone")},
	}
	store := newFakeStore()

	result, err := NewCoordinator(provider, store, nil, 100).Run(context.Background(), 0)
	require.Error(t, err)

	assert.Equal(t, 1, result.Created, "documents before the failure stay committed")
	assert.Equal(t, []string{"a"}, store.stored)
}

func TestRun_StoreErrorAborts(t *testing.T) {
	provider := &fakeProvider{pages: []*notion.Page{
		{Documents: []notion.Document{doc("a"), doc("b")}},
	}}
	store := newFakeStore()
	store.failOn = "b"

	result, err := NewCoordinator(provider, store, nil, 100).Run(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, 1, result.Created)
}

func TestRun_RateLimitWaitsAndRetries(t *testing.T) {
	provider := &fakeProvider{
		pages: []*notion.Page{
			{Documents: []notion.Document{doc("a")}},
		},
		errs: map[int]error{0: &notion.RateLimitError{RetryAfter: time.Millisecond}},
	}
	store := newFakeStore()

	result, err := NewCoordinator(provider, store, nil, 100).Run(context.Background(), 0)
	require.NoError(t, err, "a 429 must not fail the run")

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{"", ""}, provider.cursors, "the rate-limited page is retried at the same cursor")
	assert.Equal(t, 1, result.Pages)
}

func TestRun_RateLimitWaitHonorsCancellation(t *testing.T) {
	provider := &fakeProvider{
		errs: map[int]error{0: &notion.RateLimitError{RetryAfter: time.Minute}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCoordinator(provider, newFakeStore(), nil, 100).Run(ctx, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingLimiter struct{ waits int }

func (l *countingLimiter) Wait(context.Context) error {
	l.waits++
	return nil
}

func TestRun_WaitsBeforeEachFetch(t *testing.T) {
	provider := &fakeProvider{pages: []*notion.Page{
		{Documents: []notion.Document{doc("a")}, HasMore: true, NextCursor: "c2"},
		{Documents: nil, HasMore: false},
	}}
	limiter := &countingLimiter{}

	_, err := NewCoordinator(provider, newFakeStore(), limiter, 100).Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, limiter.waits)
}
