// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taibuivan/briefly/internal/core/book"
	"github.com/taibuivan/briefly/internal/core/summary"
	"github.com/taibuivan/briefly/internal/platform/ai"
	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/sanitize"
	"github.com/taibuivan/briefly/pkg/pointer"
	"github.com/taibuivan/briefly/pkg/uuid"
)

// BookReader loads the book a request refers to.
type BookReader interface {
	FindByID(context context.Context, id string) (*book.Book, error)
}

// OutcomeRecorder observes finished requests.
type OutcomeRecorder interface {
	RecordGeneration(status string, duration time.Duration)
}

type noopOutcomes struct{}

func (noopOutcomes) RecordGeneration(string, time.Duration) {}

// failRecordTimeout bounds the failure write, which outlives worker shutdown.
const failRecordTimeout = 5 * time.Second

const systemPrompt = "You are an expert book summarizer who creates concise, valuable summaries that capture the essence of books."

// insightMarker matches a numbered section such as "3. " at the start of a line.
var insightMarker = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)

// Processor claims pending requests and turns them into draft summaries.
type Processor struct {
	repo      Repository
	books     BookReader
	generator ai.TextGenerator
	sources   SourceResolver
	sanitizer *sanitize.Sanitizer
	metrics   OutcomeRecorder
	logger    *slog.Logger
}

// NewProcessor wires a [Processor]. A nil generator fails every request with
// UPSTREAM_UNAVAILABLE instead of leaving it pending.
func NewProcessor(repo Repository, books BookReader, generator ai.TextGenerator, sources SourceResolver, metrics OutcomeRecorder, logger *slog.Logger) *Processor {
	if metrics == nil {
		metrics = noopOutcomes{}
	}
	return &Processor{
		repo:      repo,
		books:     books,
		generator: generator,
		sources:   sources,
		sanitizer: sanitize.New(),
		metrics:   metrics,
		logger:    logger,
	}
}

/*
ProcessBook claims the oldest pending request of bookID and runs it.

Parameters:
  - context: context.Context
  - bookID: string (empty claims the oldest pending request of any book)

Returns:
  - *Request: The request in its final state, or nil when nothing was pending
  - error: Only claim failures; generation failures are recorded on the request
*/
func (processor *Processor) ProcessBook(context context.Context, bookID string) (*Request, error) {
	request, err := processor.repo.ClaimPending(context, bookID)
	if err != nil || request == nil {
		return nil, err
	}

	processor.run(context, request)
	return request, nil
}

// ProcessNext runs the oldest pending request of any book.
func (processor *Processor) ProcessNext(context context.Context) (*Request, error) {
	return processor.ProcessBook(context, "")
}

func (processor *Processor) run(context context.Context, request *Request) {
	startTime := time.Now()
	logger := processor.logger.With(
		slog.String("request_id", request.ID),
		slog.String("book_id", request.BookID),
	)
	logger.InfoContext(context, "generation_started")

	draft, err := processor.draft(context, request)
	if err == nil {
		err = processor.repo.Complete(context, request.ID, draft)
	}

	if err != nil {
		message := failureMessage(err)

		// A cancelled run must still leave the request failed, or it stays
		// processing where no worker will claim it again.
		recordContext, cancel := detached(context, failRecordTimeout)
		failErr := processor.repo.Fail(recordContext, request.ID, message)
		cancel()
		if failErr != nil {
			logger.ErrorContext(context, "generation_fail_record_failed", slog.Any("error", failErr))
		}

		request.Status = StatusFailed
		request.ErrorMessage = &message
		processor.metrics.RecordGeneration(string(StatusFailed), time.Since(startTime))
		logger.WarnContext(context, "generation_failed", slog.Any("error", err))
		return
	}

	request.Status = StatusCompleted
	request.ResultSummaryID = &draft.ID
	request.ErrorMessage = nil
	processor.metrics.RecordGeneration(string(StatusCompleted), time.Since(startTime))
	logger.InfoContext(context, "generation_completed",
		slog.String("summary_id", draft.ID),
		slog.Int("insights", len(draft.Insights)),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)
}

// draft produces the unpublished premium summary for request.
func (processor *Processor) draft(context context.Context, request *Request) (*summary.Summary, error) {
	if processor.generator == nil {
		return nil, apperr.UpstreamUnavailable("ai", errors.New("text generator is not configured"))
	}

	// ── 1. Book and source ────────────────────────────────────────────────
	target, err := processor.books.FindByID(context, request.BookID)
	if err != nil {
		return nil, err
	}

	source, err := processor.sources.Resolve(context, request)
	if err != nil {
		return nil, err
	}
	excerpt := processor.sanitizer.Plain(source)
	if excerpt == "" {
		excerpt = processor.sanitizer.Plain(pointer.Val(target.Description))
	}

	// ── 2. Completion ─────────────────────────────────────────────────────
	readingTime := pointer.Fallback(request.Settings.ReadingTime, defaultReadingTime)
	prompt := buildPrompt(target, readingTime, request.Settings.Tone, excerpt)

	completion, err := processor.generator.GenerateText(context, systemPrompt, prompt)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("ai", err)
	}

	body := processor.sanitizer.Body(completion)
	if body == "" {
		return nil, ai.ErrEmptyCompletion
	}

	// ── 3. Assemble ───────────────────────────────────────────────────────
	insights := splitInsights(processor.sanitizer.Plain(completion))
	if len(insights) == 0 {
		return nil, ai.ErrEmptyCompletion
	}

	return &summary.Summary{
		ID:          uuid.New(),
		BookID:      target.ID,
		Title:       "Summary of " + target.Title,
		TextContent: body,
		ReadingTime: readingTime,
		IsPremium:   true,
		IsPublished: false,
		CreatedBy:   pointer.To(request.RequestedBy),
		Insights:    insights,
	}, nil
}

// buildPrompt asks for a structured summary quoting at most promptSourceLimit
// characters of the source.
func buildPrompt(target *book.Book, readingTime int, tone, excerpt string) string {
	author := pointer.Fallback(target.AuthorName, "an unknown author")

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Create a comprehensive summary of the book %q by %s.\n\n", target.Title, author)
	prompt.WriteString("The summary should include:\n")
	prompt.WriteString("1. Key insights (5-7 main points)\n")
	prompt.WriteString("2. Chapter-by-chapter summary\n")
	prompt.WriteString("3. Practical takeaways\n")
	prompt.WriteString("4. Who should read this book\n\n")
	fmt.Fprintf(&prompt, "Make the summary engaging and actionable. Target reading time: %d minutes.\n", readingTime)
	if tone != "" {
		fmt.Fprintf(&prompt, "Write in a %s tone.\n", tone)
	}
	if excerpt != "" {
		fmt.Fprintf(&prompt, "\nBook text excerpt: %s...\n", truncateRunes(excerpt, promptSourceLimit))
	}
	return prompt.String()
}

/*
splitInsights cuts a completion into numbered key insights.

Description: Each "N. " marker at the start of a line opens a section; text
before the first marker is dropped. At most maxInsights sections are kept and
titled "Insight 1".."Insight N". Text without any marker becomes a single
insight, so non-empty text never yields zero insights.
*/
func splitInsights(text string) []*summary.Insight {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sections []string
	markers := insightMarker.FindAllStringIndex(text, -1)
	for index, marker := range markers {
		end := len(text)
		if index+1 < len(markers) {
			end = markers[index+1][0]
		}
		if section := strings.TrimSpace(text[marker[1]:end]); section != "" {
			sections = append(sections, section)
		}
		if len(sections) == maxInsights {
			break
		}
	}
	if len(sections) == 0 {
		sections = []string{text}
	}

	insights := make([]*summary.Insight, 0, len(sections))
	for index, section := range sections {
		insights = append(insights, &summary.Insight{
			Title:      fmt.Sprintf("Insight %d", index+1),
			Content:    section,
			OrderIndex: index,
		})
	}
	return insights
}

func detached(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}

func failureMessage(err error) string {
	message := err.Error()
	if appErr := apperr.As(err); appErr != nil {
		message = appErr.Message
	}
	return truncateRunes(message, maxErrorMessage)
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}
