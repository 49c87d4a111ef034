// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package summary_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/briefly/internal/core/summary"
	"github.com/taibuivan/briefly/internal/entitlement"
	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/ctxutil"
	"github.com/taibuivan/briefly/internal/platform/sec"
)

// # Fakes

const (
	freeID    = "01900000-0000-7000-8000-0000000000a1"
	premiumID = "01900000-0000-7000-8000-0000000000a2"
	draftID   = "01900000-0000-7000-8000-0000000000a3"
	bookID    = "01900000-0000-7000-8000-0000000000b1"
)

type memoryRepository struct {
	mu        sync.Mutex
	summaries map[string]*summary.Summary
	filters   []summary.SearchFilter
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{summaries: map[string]*summary.Summary{
		freeID:    {ID: freeID, BookID: bookID, Title: "Free", TextContent: "Open to all.", ReadingTime: 10, IsPublished: true, Version: 1},
		premiumID: {ID: premiumID, BookID: bookID, Title: "Premium", TextContent: strings.Repeat("<p>Deep work.</p>", 40), ReadingTime: 15, IsPremium: true, IsPublished: true, Version: 1},
		draftID:   {ID: draftID, BookID: bookID, Title: "Draft", TextContent: "Not yet.", ReadingTime: 5, IsPremium: true, Version: 1},
	}}
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*summary.Summary, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	found, ok := repository.summaries[id]
	if !ok {
		return nil, apperr.NotFound("Summary")
	}
	copied := *found
	return &copied, nil
}

func (repository *memoryRepository) ListForBook(_ context.Context, id string, includeDrafts bool) ([]*summary.Summary, error) {
	var result []*summary.Summary
	for _, s := range repository.summaries {
		if s.BookID == id && (s.IsPublished || includeDrafts) {
			copied := *s
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (repository *memoryRepository) Search(_ context.Context, filter summary.SearchFilter, _, _ int) ([]*summary.Summary, int, error) {
	repository.filters = append(repository.filters, filter)

	var result []*summary.Summary
	for _, s := range repository.summaries {
		if s.IsPublished && (!filter.ExcludePremium || !s.IsPremium) {
			copied := *s
			result = append(result, &copied)
		}
	}
	return result, len(result), nil
}

func (repository *memoryRepository) Create(_ context.Context, s *summary.Summary) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	s.Version = 1
	repository.summaries[s.ID] = s
	return nil
}

func (repository *memoryRepository) Update(_ context.Context, s *summary.Summary) error {
	s.Version++
	copied := *s
	repository.summaries[s.ID] = &copied
	return nil
}

func (repository *memoryRepository) SetPublished(_ context.Context, id string, published bool) error {
	found, ok := repository.summaries[id]
	if !ok {
		return apperr.NotFound("Summary")
	}
	found.IsPublished = published
	return nil
}

func (repository *memoryRepository) SetAudio(_ context.Context, id, audioURL string, duration int) error {
	repository.summaries[id].AudioURL = &audioURL
	repository.summaries[id].AudioDuration = &duration
	return nil
}

func (repository *memoryRepository) Delete(_ context.Context, id string) error {
	delete(repository.summaries, id)
	return nil
}

type fixedStatus map[string]bool

func (status fixedStatus) HasActiveSubscription(_ context.Context, userID string) (bool, error) {
	return status[userID], nil
}

type failingNarrator struct{}

func (failingNarrator) Synthesize(context.Context, string) ([]byte, error) {
	return nil, errors.New("quota exceeded")
}

type countingRecorder struct {
	steps []string
}

func (recorder *countingRecorder) RecordBestEffortFailure(step string) {
	recorder.steps = append(recorder.steps, step)
}

var (
	subscriber = &sec.AuthClaims{UserID: "subscriber", Role: string(sec.RoleMember)}
	member     = &sec.AuthClaims{UserID: "member", Role: string(sec.RoleMember)}
	admin      = &sec.AuthClaims{UserID: "admin", Role: string(sec.RoleAdmin)}
)

func newService(repo *memoryRepository, deps summary.Dependencies) *summary.Service {
	status := fixedStatus{"subscriber": true}
	deps.Gate = entitlement.NewEvaluator(status, nil)
	deps.Status = status
	return summary.NewService(repo, deps, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Reading

/*
TestRead_Entitlement walks the decision table through the service.
*/
func TestRead_Entitlement(t *testing.T) {
	service := newService(newMemoryRepository(), summary.Dependencies{})
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  *sec.AuthClaims
		id      string
		code    string
		preview bool
	}{
		{"free_anonymous", nil, freeID, "", false},
		{"premium_anonymous", nil, premiumID, apperr.CodeLoginRequired, false},
		{"premium_member", member, premiumID, apperr.CodeSubscriptionRequired, true},
		{"premium_subscriber", subscriber, premiumID, "", false},
		{"draft_subscriber", subscriber, draftID, apperr.CodeNotFound, false},
		{"draft_admin", admin, draftID, "", false},
		{"premium_admin_unsubscribed", admin, premiumID, apperr.CodeSubscriptionRequired, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, preview, err := service.Read(ctx, tt.caller, tt.id)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.id, found.ID)
				return
			}
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
			assert.Nil(t, found)
			assert.Equal(t, tt.preview, preview != nil)
		})
	}
}

/*
TestRead_PreviewIsPlainAndShort ensures the teaser never leaks the full body.
*/
func TestRead_PreviewIsPlainAndShort(t *testing.T) {
	service := newService(newMemoryRepository(), summary.Dependencies{})

	_, preview, err := service.Read(context.Background(), member, premiumID)
	require.Error(t, err)
	require.NotNil(t, preview)

	assert.Equal(t, "Premium", preview.Title)
	assert.Equal(t, 15, preview.ReadingTime)
	assert.Len(t, []rune(preview.Preview), 280)
	assert.NotContains(t, preview.Preview, "<p>")
}

/*
TestSearch_PremiumVisibility resolves the premium exclusion from the caller.
*/
func TestSearch_PremiumVisibility(t *testing.T) {
	repo := newMemoryRepository()
	service := newService(repo, summary.Dependencies{})
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  *sec.AuthClaims
		include bool
		exclude bool
		total   int
	}{
		{"anonymous_opt_out", nil, false, true, 1},
		{"member_opt_out", member, false, true, 1},
		{"subscriber_opt_out", subscriber, false, false, 2},
		{"admin_opt_out", admin, false, true, 1},
		{"anonymous_default", nil, true, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, total, err := service.Search(ctx, tt.caller, summary.SearchFilter{IncludePremium: tt.include}, 20, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.exclude, repo.filters[len(repo.filters)-1].ExcludePremium)
			for _, result := range results {
				assert.LessOrEqual(t, len([]rune(result.TextContent)), 280)
			}
		})
	}

	zero := 0
	_, _, err := service.Search(ctx, nil, summary.SearchFilter{ReadingTimeMax: &zero}, 20, 0)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

// # Administration

/*
TestCreateSummary sanitises the body and keeps insight order.
*/
func TestCreateSummary(t *testing.T) {
	repo := newMemoryRepository()
	service := newService(repo, summary.Dependencies{})

	created, err := service.CreateSummary(context.Background(), admin, summary.CreateInput{
		BookID:      bookID,
		Title:       "  Atomic Habits  ",
		TextContent: `<p>Small steps.</p><script>alert(1)</script>`,
		Insights: []summary.InsightInput{
			{Title: "Identity", Content: "Become the person."},
			{Title: "Systems", Content: "Fall to your systems."},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Atomic Habits", created.Title)
	assert.Equal(t, "<p>Small steps.</p>", created.TextContent)
	assert.False(t, created.IsPublished)
	assert.True(t, created.IsPremium)
	assert.Equal(t, 15, created.ReadingTime)
	require.Len(t, created.Insights, 2)
	assert.Equal(t, 1, created.Insights[1].OrderIndex)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, "admin", *created.CreatedBy)

	_, err = service.CreateSummary(context.Background(), admin, summary.CreateInput{
		BookID:      bookID,
		Title:       "Scripts only",
		TextContent: `<script>alert(1)</script>`,
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestUpdateSummary_BumpsVersion verifies partial updates and the version counter.
*/
func TestUpdateSummary_BumpsVersion(t *testing.T) {
	service := newService(newMemoryRepository(), summary.Dependencies{})

	minutes := 12
	updated, err := service.UpdateSummary(context.Background(), freeID, summary.UpdateInput{ReadingTime: &minutes})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, 12, updated.ReadingTime)
	assert.Equal(t, "Free", updated.Title)

	blank := "   "
	_, err = service.UpdateSummary(context.Background(), freeID, summary.UpdateInput{Title: &blank})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestNarrate_FailureIsAWarning keeps the summary usable when narration fails.
*/
func TestNarrate_FailureIsAWarning(t *testing.T) {
	tests := []struct {
		name string
		deps summary.Dependencies
	}{
		{"not_configured", summary.Dependencies{}},
		{"synthesis_failed", summary.Dependencies{Narrator: failingNarrator{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepository()
			recorder := &countingRecorder{}
			tt.deps.Metrics = recorder
			service := newService(repo, tt.deps)

			result, err := service.Narrate(context.Background(), freeID)
			require.NoError(t, err)
			assert.Equal(t, freeID, result.Summary.ID)
			assert.True(t, result.Warnings.Has(apperr.WarnNarrationFailed))
			assert.Nil(t, repo.summaries[freeID].AudioURL)
			assert.Equal(t, []string{"narration"}, recorder.steps)
		})
	}
}

// # HTTP

/*
TestHandler_SubscriptionRequiredCarriesPreview checks the 402 body shape.
*/
func TestHandler_SubscriptionRequiredCarriesPreview(t *testing.T) {
	service := newService(newMemoryRepository(), summary.Dependencies{})

	router := chi.NewRouter()
	router.Mount("/summaries", summary.NewHandler(service).Routes())

	request := httptest.NewRequest(http.MethodGet, "/summaries/"+premiumID, nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), member))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusPaymentRequired, recorder.Code)

	var body struct {
		Code    string          `json:"code"`
		Preview summary.Preview `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeSubscriptionRequired, body.Code)
	assert.Equal(t, "Premium", body.Preview.Title)
	assert.NotEmpty(t, body.Preview.Preview)
}
