// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/briefly/internal/core/author"
	"github.com/taibuivan/briefly/internal/core/book"
	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/ctxutil"
	"github.com/taibuivan/briefly/internal/platform/sec"
)

// # Fakes

type memoryBooks struct {
	mu       sync.Mutex
	books    map[string]*book.Book
	links    map[string][]string
	linkErr  error
	onCreate func()
}

func newMemoryBooks() *memoryBooks {
	return &memoryBooks{books: map[string]*book.Book{}, links: map[string][]string{}}
}

func (repository *memoryBooks) List(context.Context, book.Filter, int, int) ([]*book.Book, int, error) {
	return nil, 0, nil
}

func (repository *memoryBooks) FindByID(_ context.Context, id string) (*book.Book, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	found, ok := repository.books[id]
	if !ok {
		return nil, apperr.NotFound("Book")
	}
	copied := *found
	return &copied, nil
}

func (repository *memoryBooks) Create(_ context.Context, b *book.Book, categoryIDs []string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.onCreate != nil {
		repository.onCreate()
	}
	if len(categoryIDs) > 0 && repository.linkErr != nil {
		return apperr.CategoryLinkFailed(repository.linkErr)
	}
	repository.books[b.ID] = b
	repository.links[b.ID] = categoryIDs
	return nil
}

func (repository *memoryBooks) Update(_ context.Context, b *book.Book, categoryIDs *[]string) error {
	repository.books[b.ID] = b
	if categoryIDs != nil {
		repository.links[b.ID] = *categoryIDs
	}
	return nil
}

func (repository *memoryBooks) Delete(_ context.Context, id string) error {
	delete(repository.books, id)
	return nil
}

type memoryAuthors struct {
	authors []*author.Author
}

func (repository *memoryAuthors) List(context.Context, author.Filter, int, int) ([]*author.Author, int, error) {
	return repository.authors, len(repository.authors), nil
}

func (repository *memoryAuthors) FindByID(_ context.Context, id string) (*author.Author, error) {
	for _, a := range repository.authors {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperr.NotFound("Author")
}

func (repository *memoryAuthors) FindByName(_ context.Context, name string) (*author.Author, error) {
	for _, a := range repository.authors {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return nil, apperr.NotFound("Author")
}

func (repository *memoryAuthors) Create(_ context.Context, a *author.Author) error {
	repository.authors = append(repository.authors, a)
	return nil
}

func (repository *memoryAuthors) Update(context.Context, *author.Author) error { return nil }

type fakeObjects struct {
	err       error
	deleteErr error
	uploads   []string
	deletes   []string
}

func (objects *fakeObjects) Upload(_ context.Context, objectPath string, _ io.Reader, _ int64, _ string) (string, error) {
	if objects.err != nil {
		return "", objects.err
	}
	objects.uploads = append(objects.uploads, objectPath)
	return "https://cdn.briefly.app/" + objectPath, nil
}

func (objects *fakeObjects) Delete(ctx context.Context, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objects.deletes = append(objects.deletes, objectPath)
	return objects.deleteErr
}

type countingRecorder struct {
	steps []string
}

func (recorder *countingRecorder) RecordBestEffortFailure(step string) {
	recorder.steps = append(recorder.steps, step)
}

type fixture struct {
	books    *memoryBooks
	authors  *memoryAuthors
	objects  *fakeObjects
	recorder *countingRecorder
	service  *book.Service
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		books:    newMemoryBooks(),
		authors:  &memoryAuthors{},
		objects:  &fakeObjects{},
		recorder: &countingRecorder{},
	}
	f.service = book.NewService(f.books, author.NewService(f.authors, logger), f.objects, f.recorder, logger)
	return f
}

func pngCover() *book.Cover {
	return &book.Cover{Filename: "cover.png", ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")}
}

func ptr[T any](value T) *T { return &value }

// # Tests

/*
TestCreateBook_AuthorCaseInsensitive verifies two books naming the same author
with different casing share one author row.
*/
func TestCreateBook_AuthorCaseInsensitive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.service.CreateBook(ctx, book.CreateInput{Title: "Deep Work", AuthorName: ptr("cal newport")}, nil)
	require.NoError(t, err)

	second, err := f.service.CreateBook(ctx, book.CreateInput{Title: "Digital Minimalism", AuthorName: ptr("Cal Newport")}, nil)
	require.NoError(t, err)

	require.NotNil(t, first.Book.AuthorID)
	require.NotNil(t, second.Book.AuthorID)
	assert.Equal(t, *first.Book.AuthorID, *second.Book.AuthorID)
	assert.Len(t, f.authors.authors, 1)
}

/*
TestCreateBook_CoverUploadFailure verifies a failing upload degrades to a warning.
*/
func TestCreateBook_CoverUploadFailure(t *testing.T) {
	f := newFixture()
	f.objects.err = errors.New("bucket offline")

	result, err := f.service.CreateBook(context.Background(), book.CreateInput{Title: "Atomic Habits"}, pngCover())
	require.NoError(t, err)

	require.NotNil(t, result.Book)
	assert.Nil(t, result.Book.CoverImageURL)
	assert.True(t, result.Warnings.Has(apperr.WarnCoverUploadFailed))
	assert.Equal(t, []string{"cover_upload"}, f.recorder.steps)
}

/*
TestCreateBook_CoverUploaded verifies a successful upload sets the cover reference.
*/
func TestCreateBook_CoverUploaded(t *testing.T) {
	f := newFixture()

	result, err := f.service.CreateBook(context.Background(), book.CreateInput{Title: "Atomic Habits"}, pngCover())
	require.NoError(t, err)

	require.NotNil(t, result.Book.CoverImageURL)
	assert.Contains(t, *result.Book.CoverImageURL, "covers/"+result.Book.ID+"/")
	assert.Empty(t, result.Warnings)
	assert.Empty(t, f.recorder.steps)
	assert.Empty(t, f.objects.deletes)
}

/*
TestCreateBook_DiscardsCoverOnFailure removes the uploaded cover when the book
is never stored, even if the request was cancelled meanwhile.
*/
func TestCreateBook_DiscardsCoverOnFailure(t *testing.T) {
	f := newFixture()
	f.books.linkErr = errors.New("foreign key violation")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.books.onCreate = cancel

	_, err := f.service.CreateBook(ctx, book.CreateInput{
		Title:       "Deep Work",
		CategoryIDs: []string{"0190a000-0000-7000-8000-000000000001"},
	}, pngCover())

	assert.True(t, apperr.HasCode(err, apperr.CodeCategoryLinkFailed))
	require.Len(t, f.objects.uploads, 1)
	assert.Equal(t, f.objects.uploads, f.objects.deletes)
	assert.Empty(t, f.books.books)
}

/*
TestCreateBook_CategoryLinkFailed verifies link failures surface distinctly and
leave no book behind.
*/
func TestCreateBook_CategoryLinkFailed(t *testing.T) {
	f := newFixture()
	f.books.linkErr = errors.New("foreign key violation")

	_, err := f.service.CreateBook(context.Background(), book.CreateInput{
		Title:       "Thinking, Fast and Slow",
		CategoryIDs: []string{"0190a000-0000-7000-8000-000000000001"},
	}, nil)

	assert.True(t, apperr.HasCode(err, apperr.CodeCategoryLinkFailed))
	assert.Empty(t, f.books.books)
}

/*
TestCreateBook_Defaults covers language, published year and category de-duplication.
*/
func TestCreateBook_Defaults(t *testing.T) {
	f := newFixture()
	id := "0190A000-0000-7000-8000-000000000001"

	result, err := f.service.CreateBook(context.Background(), book.CreateInput{
		Title:       "  Range  ",
		CategoryIDs: []string{id, strings.ToLower(id), ""},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Range", result.Book.Title)
	assert.Equal(t, "en", result.Book.Language)
	require.NotNil(t, result.Book.PublishedYear)
	assert.Equal(t, []string{strings.ToLower(id)}, f.books.links[result.Book.ID])
}

/*
TestCreateBook_Validation rejects empty titles and non-image covers.
*/
func TestCreateBook_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateBook(context.Background(), book.CreateInput{
		PageCount: ptr(0),
	}, &book.Cover{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hi")})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)

	fields := make([]string, 0, len(appErr.Details))
	for _, detail := range appErr.Details {
		fields = append(fields, detail.Field)
	}
	assert.ElementsMatch(t, []string{book.FieldTitle, book.FieldPageCount, book.FieldCover}, fields)
}

/*
TestHandler_CreateMultipart drives the admin endpoint with a cover part whose
upload fails and expects 201 with a warning.
*/
func TestHandler_CreateMultipart(t *testing.T) {
	f := newFixture()
	f.objects.err = errors.New("bucket offline")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("title", "Deep Work"))
	require.NoError(t, form.WriteField("author_name", "Cal Newport"))
	require.NoError(t, form.WriteField("published_year", "2016"))

	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="cover"; filename="cover.png"`)
	partHeader.Set("Content-Type", "image/png")
	part, err := form.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	request := httptest.NewRequest(http.MethodPost, "/", &body)
	request.Header.Set("Content-Type", form.FormDataContentType())
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "admin-1", Role: string(sec.RoleAdmin)}))

	recorder := httptest.NewRecorder()
	book.NewHandler(f.service, nil).Routes().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var envelope struct {
		Data book.CreateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "Deep Work", envelope.Data.Book.Title)
	assert.Equal(t, 2016, *envelope.Data.Book.PublishedYear)
	assert.True(t, envelope.Data.Warnings.Has(apperr.WarnCoverUploadFailed))
}

/*
TestHandler_CreateRequiresAdmin verifies members cannot mutate the catalogue.
*/
func TestHandler_CreateRequiresAdmin(t *testing.T) {
	f := newFixture()

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"X"}`))
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "u", Role: string(sec.RoleMember)}))

	recorder := httptest.NewRecorder()
	book.NewHandler(f.service, nil).Routes().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

/*
TestHandler_CreateRejectsUnknownFields verifies typos in the payload are reported.
*/
func TestHandler_CreateRejectsUnknownFields(t *testing.T) {
	f := newFixture()

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"X","authr":"typo"}`))
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "admin-1", Role: string(sec.RoleAdmin)}))

	recorder := httptest.NewRecorder()
	book.NewHandler(f.service, nil).Routes().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "authr")
}
