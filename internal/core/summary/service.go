// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package summary

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/taibuivan/briefly/internal/entitlement"
	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/constants"
	"github.com/taibuivan/briefly/internal/platform/sanitize"
	"github.com/taibuivan/briefly/internal/platform/sec"
	"github.com/taibuivan/briefly/internal/platform/speech"
	"github.com/taibuivan/briefly/internal/platform/storage"
	"github.com/taibuivan/briefly/internal/platform/validate"
	"github.com/taibuivan/briefly/pkg/uuid"
)

// Gate decides whether a caller may read a summary.
type Gate interface {
	Evaluate(context context.Context, caller *sec.AuthClaims, item entitlement.Item) (entitlement.Decision, error)
}

// FailureRecorder counts best-effort steps that failed.
type FailureRecorder interface {
	RecordBestEffortFailure(step string)
}

type noopRecorder struct{}

func (noopRecorder) RecordBestEffortFailure(string) {}

var errNarrationDisabled = errors.New("summary: narration is not configured")

// Dependencies groups the collaborators of the summary [Service].
// Narrator and Objects may be nil; narration then reports a warning.
type Dependencies struct {
	Gate      Gate
	Status    entitlement.StatusReader
	Sanitizer *sanitize.Sanitizer
	Narrator  speech.Synthesizer
	Objects   storage.ObjectStore
	Metrics   FailureRecorder
}

// Service implements reading, search and administration of summaries.
type Service struct {
	repo      Repository
	gate      Gate
	status    entitlement.StatusReader
	sanitizer *sanitize.Sanitizer
	narrator  speech.Synthesizer
	objects   storage.ObjectStore
	metrics   FailureRecorder
	logger    *slog.Logger
}

// NewService constructs a summary [Service].
func NewService(repo Repository, deps Dependencies, logger *slog.Logger) *Service {
	if deps.Metrics == nil {
		deps.Metrics = noopRecorder{}
	}
	if deps.Sanitizer == nil {
		deps.Sanitizer = sanitize.New()
	}
	return &Service{
		repo:      repo,
		gate:      deps.Gate,
		status:    deps.Status,
		sanitizer: deps.Sanitizer,
		narrator:  deps.Narrator,
		objects:   deps.Objects,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// # Reading

/*
Read returns a summary the caller is entitled to.

Description: The entitlement gate runs on the loaded row. A subscription
denial also returns the public preview so the client can render a teaser.

Parameters:
  - context: context.Context
  - caller: *sec.AuthClaims (nil for anonymous callers)
  - id: string

Returns:
  - *Summary: The full summary with ordered insights on ALLOW
  - *Preview: Set only together with SUBSCRIPTION_REQUIRED
  - error: NotFound, LOGIN_REQUIRED, SUBSCRIPTION_REQUIRED or storage failures
*/
func (service *Service) Read(context context.Context, caller *sec.AuthClaims, id string) (*Summary, *Preview, error) {
	summary, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, nil, err
	}

	decision, err := service.gate.Evaluate(context, caller, entitlement.Item{
		Published: summary.IsPublished,
		Premium:   summary.IsPremium,
	})
	if err != nil {
		return nil, nil, err
	}

	switch decision {
	case entitlement.Allow:
		return summary, nil, nil
	case entitlement.DenySubscription:
		return nil, service.preview(summary), decision.Err()
	default:
		return nil, nil, decision.Err()
	}
}

// ListForBook returns the published summaries of a book; admins also see drafts.
func (service *Service) ListForBook(context context.Context, caller *sec.AuthClaims, bookID string) ([]*Summary, error) {
	summaries, err := service.repo.ListForBook(context, bookID, caller.IsAdmin())
	if err != nil {
		return nil, err
	}
	for _, summary := range summaries {
		service.redact(summary)
	}
	return summaries, nil
}

/*
Search runs the advanced search.

Description: Premium rows are hidden when the client did not ask for them and
the caller holds no active subscription. Bodies of listed premium rows are cut
to the preview length; full text is only served by [Service.Read].
*/
func (service *Service) Search(context context.Context, caller *sec.AuthClaims, filter SearchFilter, limit, offset int) ([]*Summary, int, error) {
	if filter.ReadingTimeMax != nil {
		if err := (&validate.Validator{}).Range(FieldReadingTimeMax, *filter.ReadingTimeMax, 1, maxReadingTime).Err(); err != nil {
			return nil, 0, err
		}
	}

	if !filter.IncludePremium {
		subscribed, err := service.subscribed(context, caller)
		if err != nil {
			return nil, 0, err
		}
		filter.ExcludePremium = !subscribed
	}

	summaries, total, err := service.repo.Search(context, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, summary := range summaries {
		service.redact(summary)
	}
	return summaries, total, nil
}

func (service *Service) subscribed(context context.Context, caller *sec.AuthClaims) (bool, error) {
	if caller == nil || service.status == nil {
		return false, nil
	}
	return service.status.HasActiveSubscription(context, caller.UserID)
}

// redact trims list bodies to the preview length.
func (service *Service) redact(summary *Summary) {
	summary.TextContent = previewText(service.sanitizer.Plain(summary.TextContent))
}

func (service *Service) preview(summary *Summary) *Preview {
	return &Preview{
		ID:          summary.ID,
		Title:       summary.Title,
		Subtitle:    summary.Subtitle,
		ReadingTime: summary.ReadingTime,
		Preview:     previewText(service.sanitizer.Plain(summary.TextContent)),
	}
}

// previewText returns the first PreviewLength characters of text.
func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= constants.PreviewLength {
		return text
	}
	return string(runes[:constants.PreviewLength])
}

// # Administration

/*
CreateSummary stores a new unpublished summary with its insights.

Description: The body is sanitised before validation so that markup-only
input is rejected as empty.

Returns:
  - *Summary: The stored summary, joined with its book
  - error: ValidationError, or storage failures
*/
func (service *Service) CreateSummary(context context.Context, caller *sec.AuthClaims, input CreateInput) (*Summary, error) {
	input.BookID = strings.ToLower(strings.TrimSpace(input.BookID))
	input.Title = strings.TrimSpace(input.Title)
	input.TextContent = service.sanitizer.Body(input.TextContent)

	readingTime := defaultReadingTime
	if input.ReadingTime != nil {
		readingTime = *input.ReadingTime
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldBookID, input.BookID).UUID(FieldBookID, input.BookID).
		Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, maxTitleLength).
		Required(FieldTextContent, input.TextContent).
		Range(FieldReadingTime, readingTime, 1, maxReadingTime).
		Custom(FieldInsights, len(input.Insights) > maxInsights, "At most 20 key insights")
	for _, insight := range input.Insights {
		validator.Custom(FieldInsights, strings.TrimSpace(insight.Title) == "" || strings.TrimSpace(insight.Content) == "",
			"Every key insight needs a title and content")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{
		ID:          uuid.New(),
		BookID:      input.BookID,
		Title:       input.Title,
		Subtitle:    input.Subtitle,
		TextContent: input.TextContent,
		ReadingTime: readingTime,
		IsPremium:   input.IsPremium == nil || *input.IsPremium,
		IsPublished: false,
		Insights:    make([]*Insight, 0, len(input.Insights)),
	}
	if caller != nil {
		summary.CreatedBy = &caller.UserID
	}
	for index, insight := range input.Insights {
		summary.Insights = append(summary.Insights, &Insight{
			Title:      service.sanitizer.Plain(insight.Title),
			Content:    service.sanitizer.Plain(insight.Content),
			OrderIndex: index,
		})
	}

	if err := service.repo.Create(context, summary); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "summary_created",
		slog.String("summary_id", summary.ID),
		slog.String("book_id", summary.BookID),
		slog.Int("insights", len(summary.Insights)),
	)
	return service.repo.FindByID(context, summary.ID)
}

// UpdateSummary applies a validated partial update and bumps the version.
func (service *Service) UpdateSummary(context context.Context, id string, input UpdateInput) (*Summary, error) {
	validator := &validate.Validator{}
	if input.Title != nil {
		*input.Title = strings.TrimSpace(*input.Title)
		validator.Required(FieldTitle, *input.Title).MaxLen(FieldTitle, *input.Title, maxTitleLength)
	}
	if input.TextContent != nil {
		*input.TextContent = service.sanitizer.Body(*input.TextContent)
		validator.Required(FieldTextContent, *input.TextContent)
	}
	if input.ReadingTime != nil {
		validator.Range(FieldReadingTime, *input.ReadingTime, 1, maxReadingTime)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	summary, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		summary.Title = *input.Title
	}
	if input.Subtitle != nil {
		summary.Subtitle = input.Subtitle
	}
	if input.TextContent != nil {
		summary.TextContent = *input.TextContent
	}
	if input.ReadingTime != nil {
		summary.ReadingTime = *input.ReadingTime
	}
	if input.IsPremium != nil {
		summary.IsPremium = *input.IsPremium
	}

	if err := service.repo.Update(context, summary); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "summary_updated",
		slog.String("summary_id", id),
		slog.Int("version", summary.Version),
	)
	return summary, nil
}

// SetPublished publishes or withdraws a summary.
func (service *Service) SetPublished(context context.Context, id string, published bool) (*Summary, error) {
	if err := service.repo.SetPublished(context, id, published); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "summary_publication_changed",
		slog.String("summary_id", id),
		slog.Bool("published", published),
	)
	return service.repo.FindByID(context, id)
}

func (service *Service) DeleteSummary(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}
	service.logger.InfoContext(context, "summary_deleted", slog.String("summary_id", id))
	return nil
}

// # Narration

/*
Narrate synthesises the summary body, uploads the MP3 and records its duration.

Description: Narration is best-effort. Any failure leaves the summary as it
was and is returned as a NARRATION_FAILED warning next to it.

Returns:
  - *NarrationResult: The summary (narrated or not) and warnings
  - error: Only when the summary itself cannot be loaded
*/
func (service *Service) Narrate(context context.Context, id string) (*NarrationResult, error) {
	summary, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	result := &NarrationResult{Summary: summary, Warnings: apperr.Warnings{}}

	audioURL, duration, err := service.narrate(context, summary)
	if err != nil {
		service.logger.WarnContext(context, "narration_failed",
			slog.String("summary_id", id),
			slog.Any("error", err),
		)
		service.metrics.RecordBestEffortFailure("narration")
		result.Warnings.Add(apperr.WarnNarrationFailed, "The audio narration could not be produced")
		return result, nil
	}

	seconds := int(math.Ceil(duration.Seconds()))
	if err := service.repo.SetAudio(context, id, audioURL, seconds); err != nil {
		return nil, err
	}
	summary.AudioURL = &audioURL
	summary.AudioDuration = &seconds

	service.logger.InfoContext(context, "summary_narrated",
		slog.String("summary_id", id),
		slog.Int("duration_seconds", seconds),
	)
	return result, nil
}

func (service *Service) narrate(context context.Context, summary *Summary) (string, time.Duration, error) {
	if service.narrator == nil || service.objects == nil {
		return "", 0, errNarrationDisabled
	}

	text := service.sanitizer.Plain(summary.Title + ".\n" + summary.TextContent)
	audio, err := service.narrator.Synthesize(context, text)
	if err != nil {
		return "", 0, err
	}

	duration, err := speech.Duration(bytes.NewReader(audio))
	if err != nil {
		return "", 0, err
	}

	objectPath := storage.ObjectKey(audioFolder+"/"+summary.ID, "narration.mp3", "audio/mpeg")
	audioURL, err := service.objects.Upload(context, objectPath, bytes.NewReader(audio), int64(len(audio)), "audio/mpeg")
	if err != nil {
		return "", 0, err
	}
	return audioURL, duration, nil
}
