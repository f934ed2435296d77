package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/filex"
)

const pageSize = 20

func (a *App) Books(ctx context.Context, search string) error {
	page, err := a.libraryService.ListBooks(ctx, models.ListBooksParams{Search: search, Page: 1, Limit: pageSize})
	if err != nil {
		a.report(err)
		return err
	}

	if len(page.Items) == 0 {
		fmt.Fprintln(a.out, "No books found")
		return nil
	}
	for _, b := range page.Items {
		fmt.Fprintln(a.out, formatBookLine(b))
	}
	if page.Total > len(page.Items) {
		fmt.Fprintf(a.out, "(%d of %d shown)\n", len(page.Items), page.Total)
	}
	return nil
}

func (a *App) Book(ctx context.Context, id string) error {
	b, err := a.libraryService.GetBook(ctx, id)
	if err != nil {
		a.report(err)
		return err
	}

	fmt.Fprintln(a.out, formatBookLine(*b))
	if b.Description != "" {
		fmt.Fprintln(a.out, b.Description)
	}
	if b.FileName != "" {
		fmt.Fprintf(a.out, "file: %s\n", b.FileName)
	}
	fmt.Fprintf(a.out, "added: %s\n", b.CreatedAt.Format("2006-01-02"))
	return nil
}

// Upload prompts for the book metadata and sends the file at path.
func (a *App) Upload(ctx context.Context, path string) error {
	f, name, _, err := filex.OpenRegular(path)
	if err != nil {
		a.report(err)
		return err
	}
	defer f.Close()

	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	author, err := getSimpleText(a.reader, "Enter author", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}

	meta := models.NewBook{Title: title, Author: author, Description: description}
	b, err := a.libraryService.UploadBook(ctx, meta, name, f)
	if err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %q, id=%s\n", b.Title, b.ID)
	return nil
}

func (a *App) Rate(ctx context.Context, id, score string) error {
	n, err := strconv.Atoi(score)
	if err != nil {
		err = fmt.Errorf("score %q is not a number", score)
		a.report(err)
		return err
	}

	b, err := a.libraryService.RateBook(ctx, id, n)
	if err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintf(a.out, "Rated. Average now %.1f from %d ratings\n", b.RatingAvg, b.RatingCount)
	return nil
}

func (a *App) Ask(ctx context.Context, id string) error {
	q, err := getSimpleText(a.reader, "Ask a question about the book", a.out)
	if err != nil {
		return err
	}

	ans, err := a.libraryService.AskAboutBook(ctx, id, q)
	if err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintln(a.out, ans.Answer)
	return nil
}

func formatBookLine(b models.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", b.ID, b.Title)
	if b.Author != "" {
		fmt.Fprintf(&sb, " by %s", b.Author)
	}
	if b.RatingCount > 0 {
		fmt.Fprintf(&sb, " (%.1f★, %d)", b.RatingAvg, b.RatingCount)
	}
	return sb.String()
}
