package devserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/google/uuid"
)

type bookRecord struct {
	book    models.Book
	content []byte
	ratings map[string]int
}

type catalogue struct {
	mu    sync.RWMutex
	books map[string]*bookRecord
}

func newCatalogue() *catalogue {
	return &catalogue{books: map[string]*bookRecord{}}
}

func (c *catalogue) add(meta models.NewBook, fileName string, content []byte, uploadedBy string, now time.Time) models.Book {
	rec := &bookRecord{
		book: models.Book{
			ID:          uuid.NewString(),
			Title:       meta.Title,
			Author:      meta.Author,
			Description: meta.Description,
			FileName:    fileName,
			UploadedBy:  uploadedBy,
			CreatedAt:   now.UTC(),
		},
		content: content,
		ratings: map[string]int{},
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.books[rec.book.ID] = rec
	return rec.book
}

func (c *catalogue) get(id string) (models.Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.books[id]
	if !ok {
		return models.Book{}, common.ErrorNotFound
	}
	return rec.book, nil
}

// list returns books matching search, oldest first.
func (c *catalogue) list(search string, page, limit int) models.BookPage {
	search = strings.ToLower(strings.TrimSpace(search))

	c.mu.RLock()
	matched := make([]models.Book, 0, len(c.books))
	for _, rec := range c.books {
		b := rec.book
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Author), search) {
			continue
		}
		matched = append(matched, b)
	}
	c.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].Title < matched[j].Title
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	out := models.BookPage{Items: []models.Book{}, Page: page, Limit: limit, Total: len(matched)}
	start := (page - 1) * limit
	if start >= len(matched) {
		return out
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	out.Items = matched[start:end]
	return out
}

// rate stores userID's score, replacing an earlier one, and returns the book
// with updated aggregates.
func (c *catalogue) rate(id, userID string, score int) (models.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.books[id]
	if !ok {
		return models.Book{}, common.ErrorNotFound
	}
	rec.ratings[userID] = score

	sum := 0
	for _, s := range rec.ratings {
		sum += s
	}
	rec.book.RatingCount = len(rec.ratings)
	rec.book.RatingAvg = float64(sum) / float64(len(rec.ratings))
	return rec.book, nil
}

// answer is a canned reply; the dev server has no model behind it.
func (c *catalogue) answer(id, question string) (models.Answer, error) {
	b, err := c.get(id)
	if err != nil {
		return models.Answer{}, err
	}

	var sb strings.Builder
	sb.WriteString("\"" + b.Title + "\"")
	if b.Author != "" {
		sb.WriteString(" by " + b.Author)
	}
	if b.Description != "" {
		sb.WriteString(": " + b.Description)
	}
	sb.WriteString(". You asked: " + question)
	return models.Answer{Answer: sb.String()}, nil
}
