// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/briefly/internal/core/book"
	"github.com/taibuivan/briefly/internal/core/summary"
	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/pkg/pointer"
)

const (
	bookID  = "0190a3c4-0000-7000-8000-00000000b001"
	adminID = "0190a3c4-0000-7000-8000-00000000ad01"
)

// # Fakes

type memoryRepository struct {
	mu        sync.Mutex
	requests  map[string]*Request
	summaries map[string]*summary.Summary
	sequence  int
	failNext  error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{requests: map[string]*Request{}, summaries: map[string]*summary.Summary{}}
}

func (repository *memoryRepository) Create(_ context.Context, r *Request) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.sequence++
	r.CreatedAt = time.Unix(int64(repository.sequence), 0)
	copied := *r
	repository.requests[r.ID] = &copied
	return nil
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*Request, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	r, ok := repository.requests[id]
	if !ok {
		return nil, apperr.NotFound("Generation request")
	}
	copied := *r
	return &copied, nil
}

func (repository *memoryRepository) List(_ context.Context, status Status, limit, offset int) ([]*Request, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	matched := []*Request{}
	for _, r := range repository.requests {
		if status == "" || r.Status == status {
			copied := *r
			matched = append(matched, &copied)
		}
	}
	return matched, len(matched), nil
}

func (repository *memoryRepository) ClaimPending(_ context.Context, bookID string) (*Request, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var pending []*Request
	for _, r := range repository.requests {
		if r.Status == StatusPending && (bookID == "" || r.BookID == bookID) {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })

	pending[0].Status = StatusProcessing
	copied := *pending[0]
	return &copied, nil
}

func (repository *memoryRepository) Complete(ctx context.Context, requestID string, result *summary.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.failNext != nil {
		err := repository.failNext
		repository.failNext = nil
		return err
	}
	r := repository.requests[requestID]
	if r.Status != StatusProcessing {
		return apperr.Conflict("Generation request is not processing")
	}
	repository.summaries[result.ID] = result
	r.Status = StatusCompleted
	r.ResultSummaryID = &result.ID
	return nil
}

func (repository *memoryRepository) Fail(ctx context.Context, requestID, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repository.mu.Lock()
	defer repository.mu.Unlock()

	r := repository.requests[requestID]
	if r.Status != StatusProcessing {
		return apperr.Conflict("Generation request is not processing")
	}
	r.Status = StatusFailed
	r.ErrorMessage = &message
	return nil
}

type fakeBooks map[string]*book.Book

func (books fakeBooks) FindByID(_ context.Context, id string) (*book.Book, error) {
	if b, ok := books[id]; ok {
		return b, nil
	}
	return nil, apperr.NotFound("Book")
}

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
	during  func()
}

func (generator *fakeGenerator) GenerateText(ctx context.Context, _, prompt string) (string, error) {
	generator.prompts = append(generator.prompts, prompt)
	if generator.during != nil {
		generator.during()
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	return generator.text, generator.err
}

type staticSource struct {
	text string
	err  error
}

func (source staticSource) Resolve(context.Context, *Request) (string, error) {
	return source.text, source.err
}

type outcomeCounter struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (counter *outcomeCounter) RecordGeneration(status string, _ time.Duration) {
	counter.mu.Lock()
	defer counter.mu.Unlock()
	counter.outcomes[status]++
}

type processorFixture struct {
	repo      *memoryRepository
	generator *fakeGenerator
	outcomes  *outcomeCounter
	processor *Processor
}

func newProcessorFixture(source SourceResolver) *processorFixture {
	fixture := &processorFixture{
		repo:      newMemoryRepository(),
		generator: &fakeGenerator{text: "Intro.\n1. Habits compound.\n2. Systems beat goals.\n3. Identity first."},
		outcomes:  &outcomeCounter{outcomes: map[string]int{}},
	}
	books := fakeBooks{bookID: {ID: bookID, Title: "Atomic Habits", AuthorName: pointer.To("James Clear")}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fixture.processor = NewProcessor(fixture.repo, books, fixture.generator, source, fixture.outcomes, logger)
	return fixture
}

func (fixture *processorFixture) pending(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, fixture.repo.Create(context.Background(), &Request{
		ID:          id,
		BookID:      bookID,
		RequestedBy: adminID,
		Status:      StatusPending,
		Settings:    Settings{ReadingTime: pointer.To(12)},
	}))
}

// # Tests

/*
TestSplitInsights covers the numbered-section splitter.
*/
func TestSplitInsights(t *testing.T) {
	var many strings.Builder
	for index := 1; index <= 9; index++ {
		fmt.Fprintf(&many, "%d. Point %d\n", index, index)
	}

	tests := []struct {
		name     string
		text     string
		contents []string
	}{
		{"empty", "   ", nil},
		{"no_markers", "Just one paragraph.", []string{"Just one paragraph."}},
		{"preamble_dropped", "Overview\n1. First\n2. Second", []string{"First", "Second"}},
		{"indented_markers", "  1. First\n   2.  Second", []string{"First", "Second"}},
		{"capped", many.String(), []string{"Point 1", "Point 2", "Point 3", "Point 4", "Point 5", "Point 6", "Point 7"}},
		{"inline_numbers_ignored", "Read 2. chapters\nthen 3. more", []string{"Read 2. chapters\nthen 3. more"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insights := splitInsights(tt.text)
			require.Len(t, insights, len(tt.contents))
			for index, insight := range insights {
				assert.Equal(t, tt.contents[index], insight.Content)
				assert.Equal(t, fmt.Sprintf("Insight %d", index+1), insight.Title)
				assert.Equal(t, index, insight.OrderIndex)
			}
		})
	}
}

/*
TestBuildPrompt_QuotesBoundedExcerpt keeps the prompt excerpt within the limit.
*/
func TestBuildPrompt_QuotesBoundedExcerpt(t *testing.T) {
	target := &book.Book{Title: "Deep Work"}
	prompt := buildPrompt(target, 20, "friendly", strings.Repeat("x", promptSourceLimit+500))

	assert.Contains(t, prompt, `"Deep Work" by an unknown author`)
	assert.Contains(t, prompt, "Target reading time: 20 minutes")
	assert.Contains(t, prompt, "friendly tone")
	assert.Contains(t, prompt, strings.Repeat("x", promptSourceLimit)+"...")
	assert.NotContains(t, prompt, strings.Repeat("x", promptSourceLimit+1))
}

/*
TestProcessor_Completes writes an unpublished premium draft.
*/
func TestProcessor_Completes(t *testing.T) {
	fixture := newProcessorFixture(staticSource{text: "<p>Chapter one</p>"})
	fixture.pending(t, "req-1")

	request, err := fixture.processor.ProcessBook(context.Background(), bookID)
	require.NoError(t, err)
	require.NotNil(t, request)
	assert.Equal(t, StatusCompleted, request.Status)

	stored, err := fixture.repo.FindByID(context.Background(), "req-1")
	require.NoError(t, err)
	require.NotNil(t, stored.ResultSummaryID)

	draft := fixture.repo.summaries[*stored.ResultSummaryID]
	require.NotNil(t, draft)
	assert.Equal(t, "Summary of Atomic Habits", draft.Title)
	assert.True(t, draft.IsPremium)
	assert.False(t, draft.IsPublished)
	assert.Equal(t, 12, draft.ReadingTime)
	assert.Equal(t, adminID, pointer.Val(draft.CreatedBy))
	require.Len(t, draft.Insights, 3)
	assert.Equal(t, "Habits compound.", draft.Insights[0].Content)

	require.Len(t, fixture.generator.prompts, 1)
	assert.Contains(t, fixture.generator.prompts[0], "Book text excerpt: Chapter one...")
	assert.Equal(t, 1, fixture.outcomes.outcomes[string(StatusCompleted)])
}

/*
TestProcessor_Failures records the reason and leaves no summary behind.
*/
func TestProcessor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*processorFixture)
		source  SourceResolver
		message string
	}{
		{
			name:    "generator_error",
			prepare: func(f *processorFixture) { f.generator.err = errors.New("quota exceeded") },
			source:  staticSource{},
			message: "The ai service is temporarily unavailable",
		},
		{
			name:    "empty_completion",
			prepare: func(f *processorFixture) { f.generator.text = "  " },
			source:  staticSource{},
			message: "ai: provider returned no text",
		},
		{
			name:    "source_error",
			prepare: func(*processorFixture) {},
			source:  staticSource{err: errSourceTooLarge},
			message: errSourceTooLarge.Error(),
		},
		{
			name:    "complete_error",
			prepare: func(f *processorFixture) { f.repo.failNext = errors.New("insert_key_insights: boom") },
			source:  staticSource{},
			message: "insert_key_insights: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newProcessorFixture(tt.source)
			tt.prepare(fixture)
			fixture.pending(t, "req-1")

			request, err := fixture.processor.ProcessNext(context.Background())
			require.NoError(t, err)
			assert.Equal(t, StatusFailed, request.Status)

			stored, err := fixture.repo.FindByID(context.Background(), "req-1")
			require.NoError(t, err)
			assert.Equal(t, StatusFailed, stored.Status)
			assert.Equal(t, tt.message, pointer.Val(stored.ErrorMessage))
			assert.Nil(t, stored.ResultSummaryID)
			assert.Empty(t, fixture.repo.summaries)
			assert.Equal(t, 1, fixture.outcomes.outcomes[string(StatusFailed)])
		})
	}
}

/*
TestProcessor_ShutdownMidGeneration records the failure even though the run
context was cancelled, so the request never stays processing.
*/
func TestProcessor_ShutdownMidGeneration(t *testing.T) {
	fixture := newProcessorFixture(staticSource{text: "Chapter one"})
	fixture.pending(t, "req-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fixture.generator.during = cancel

	request, err := fixture.processor.ProcessNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, request.Status)

	stored, err := fixture.repo.FindByID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.NotEmpty(t, pointer.Val(stored.ErrorMessage))
	assert.Empty(t, fixture.repo.summaries)
}

/*
TestProcessor_OldestFirst claims in creation order and stops when drained.
*/
func TestProcessor_OldestFirst(t *testing.T) {
	fixture := newProcessorFixture(staticSource{})
	fixture.pending(t, "req-old")
	fixture.pending(t, "req-new")

	first, err := fixture.processor.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "req-old", first.ID)

	second, err := fixture.processor.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "req-new", second.ID)

	none, err := fixture.processor.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.Nil(t, none)
}

/*
TestProcessor_TerminalUntouched never reprocesses a finished request.
*/
func TestProcessor_TerminalUntouched(t *testing.T) {
	fixture := newProcessorFixture(staticSource{})
	fixture.pending(t, "req-1")

	_, err := fixture.processor.ProcessNext(context.Background())
	require.NoError(t, err)

	again, err := fixture.processor.ProcessBook(context.Background(), bookID)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Len(t, fixture.repo.summaries, 1)
}

/*
TestProcessor_NoGenerator fails instead of leaving the request processing.
*/
func TestProcessor_NoGenerator(t *testing.T) {
	repo := newMemoryRepository()
	processor := NewProcessor(repo, fakeBooks{}, nil, staticSource{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, repo.Create(context.Background(), &Request{ID: "req-1", BookID: bookID, Status: StatusPending}))

	request, err := processor.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, request.Status)
}
