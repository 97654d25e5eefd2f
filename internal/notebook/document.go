// Package notebook holds the document collection and the controller that
// mutates it.
//
// A [Notebook] owns an ordered list of [Document] values (newest-created
// first), an index from id to document, and the single active selection.
// Every mutation is written through to a [Storage] before the method returns.
package notebook

import (
	"time"
)

// DefaultTitle replaces empty titles.
const DefaultTitle = "Untitled"

// Seed document created when a notebook is opened on an empty collection.
const (
	SeedTitle   = "Welcome"
	SeedContent = "# Welcome\n\nThis is your notebook. Create more notes with \"nb new\". " +
		"Your notes are kept in the notebook directory."
)

// Document is a single note.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// Changes lists the fields an update sets. Nil fields are left untouched.
type Changes struct {
	Title   *string
	Content *string
}

// TitleChange returns Changes that only set the title.
func TitleChange(title string) Changes {
	return Changes{Title: &title}
}

// ContentChange returns Changes that only set the content.
func ContentChange(content string) Changes {
	return Changes{Content: &content}
}

func normalizeTitle(title string) string {
	if title == "" {
		return DefaultTitle
	}

	return title
}
