package notebook

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter returns the documents whose title or content contains query,
// compared with Unicode case folding. An empty query returns every document.
// Results keep stored order; the collection itself is not touched.
func (n *Notebook) Filter(query string) []Document {
	if query == "" {
		return n.Documents()
	}

	fold := cases.Fold()
	needle := fold.String(query)

	var out []Document

	for _, d := range n.docs {
		if strings.Contains(fold.String(d.Title), needle) || strings.Contains(fold.String(d.Content), needle) {
			out = append(out, *d)
		}
	}

	return out
}
