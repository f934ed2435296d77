package models

import (
	"errors"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

var ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

// Book is a library item as listed by GET /books.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	RatingAvg   float64   `json:"rating_avg"`
	RatingCount int       `json:"rating_count"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BookPage is one page of a book listing.
type BookPage struct {
	Items []Book `json:"items"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
}

// ListBooksParams filters and paginates GET /books. Zero values are omitted.
type ListBooksParams struct {
	Search string
	Page   int
	Limit  int
}

// NewBook carries the metadata sent along with an uploaded book file.
type NewBook struct {
	Title       string
	Author      string
	Description string
}

// Rating is a user's score for a book.
type Rating struct {
	BookID string `json:"book_id"`
	Score  int    `json:"rating"`
}

// Validate checks the score range before the request leaves the client.
func (r Rating) Validate() error {
	if r.Score < MinRating || r.Score > MaxRating {
		return ErrRatingOutOfRange
	}
	return nil
}

// Answer is the assistant's reply to a question about a book.
type Answer struct {
	Answer string `json:"answer"`
}
