package domain

import (
	"strings"
	"time"
	"unicode"
)

// Document is a markdown page. Slugs are unique within the project scope
// (global documents share one scope).
type Document struct {
	Archived  bool
	ContentMd string
	CreatedAt time.Time
	ID        string
	ProjectID *string
	Slug      string
	Tags      []string
	Title     string
	UpdatedAt time.Time
	Version   int
}

// CreateDocumentInput holds the fields accepted when creating a document.
// An empty Slug is derived from the title.
type CreateDocumentInput struct {
	ContentMd string
	ProjectID *string
	Slug      string
	Tags      []string
	Title     string
}

// DocumentPatch lists the document fields to change
type DocumentPatch struct {
	Archived  *bool
	ContentMd *string
	Slug      *string
	Tags      *[]string
	Title     *string
}

// DocumentFilter narrows ListDocuments
type DocumentFilter struct {
	IncludeArchived bool
	ProjectID       *string
	Query           string
	Tags            []string
	Page
}

// Slugify turns a title into a lowercase, hyphen separated slug
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen && b.Len() > 0:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "document"
	}
	return slug
}
