package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/bookshelf/internal/client/client"
	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/common"
)

// MaxUploadSize caps book files read into memory for upload.
const MaxUploadSize = 50 << 20

// LibraryService covers the catalogue: browsing, uploading, rating and
// asking questions about books.
type LibraryService interface {
	ListBooks(ctx context.Context, p models.ListBooksParams) (*models.BookPage, error)
	GetBook(ctx context.Context, id string) (*models.Book, error)
	UploadBook(ctx context.Context, meta models.NewBook, fileName string, r io.Reader) (*models.Book, error)
	RateBook(ctx context.Context, id string, score int) (*models.Book, error)
	AskAboutBook(ctx context.Context, id, question string) (*models.Answer, error)
}

type libraryService struct {
	api API
}

func NewLibraryService(api API) LibraryService {
	return &libraryService{api: api}
}

func bookPath(id string, rest ...string) string {
	p := "/books/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (s *libraryService) ListBooks(ctx context.Context, p models.ListBooksParams) (*models.BookPage, error) {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}

	var page models.BookPage
	if err := s.api.Get(ctx, "/books", q, &page); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return &page, nil
}

func (s *libraryService) GetBook(ctx context.Context, id string) (*models.Book, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: book id is required", common.ErrorValidation)
	}
	var b models.Book
	if err := s.api.Get(ctx, bookPath(id), nil, &b); err != nil {
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return &b, nil
}

// UploadBook reads the whole file so the request can be replayed after a
// token refresh.
func (s *libraryService) UploadBook(ctx context.Context, meta models.NewBook, fileName string, r io.Reader) (*models.Book, error) {
	if strings.TrimSpace(meta.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{{"title", meta.Title}, {"author", meta.Author}, {"description", meta.Description}}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("upload book: %w", err)
		}
	}

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("upload book: %w", err)
	}
	n, err := io.Copy(part, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}
	if n > MaxUploadSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", common.ErrorValidation, fileName, MaxUploadSize)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload book: %w", err)
	}

	req := client.NewRequest(http.MethodPost, "/books")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Body = buf.Bytes()

	var b models.Book
	if err := s.api.DoJSON(ctx, req, &b); err != nil {
		return nil, fmt.Errorf("upload book: %w", err)
	}
	return &b, nil
}

func (s *libraryService) RateBook(ctx context.Context, id string, score int) (*models.Book, error) {
	rating := models.Rating{BookID: id, Score: score}
	if err := rating.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	var b models.Book
	if err := s.api.Post(ctx, bookPath(id, "ratings"), rating, &b); err != nil {
		return nil, fmt.Errorf("rate book %s: %w", id, err)
	}
	return &b, nil
}

func (s *libraryService) AskAboutBook(ctx context.Context, id, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", common.ErrorValidation)
	}

	var a models.Answer
	in := map[string]string{"question": question}
	if err := s.api.Post(ctx, bookPath(id, "chat"), in, &a); err != nil {
		return nil, fmt.Errorf("ask about book %s: %w", id, err)
	}
	return &a, nil
}
