package notebook

import "strings"

// exportFallbackName is used when a document's title is blank.
const exportFallbackName = "note"

// Export is a file produced from the active document.
type Export struct {
	// Name is "<title>.md".
	Name string
	// Body is the raw markdown content, untransformed.
	Body string
}

// Export returns the active document as a markdown file. Reports false when
// nothing is active.
func (n *Notebook) Export() (Export, bool) {
	d, ok := n.Active()
	if !ok {
		return Export{}, false
	}

	return Export{Name: ExportName(d.Title), Body: d.Content}, true
}

// ExportName returns the file name for a document titled title. Path
// separators are replaced so the result is always a single path element.
func ExportName(title string) string {
	name := strings.NewReplacer("/", "-", "\\", "-").Replace(title)
	if strings.TrimSpace(name) == "" || name == "." || name == ".." {
		name = exportFallbackName
	}

	return name + ".md"
}
