package notebook

import "errors"

// Error variables for notebook operations.
var (
	ErrConfigFileNotFound  = errors.New("config file not found")
	ErrConfigFileRead      = errors.New("cannot read config file")
	ErrConfigInvalid       = errors.New("invalid config file")
	ErrNotebookDirEmpty    = errors.New("notebook-dir cannot be empty")
	ErrUnknownBackend      = errors.New("unknown backend (want file or sqlite)")
	ErrInvalidAutosave     = errors.New("autosave_ms must be positive")
	ErrFlagRequiresArg     = errors.New("flag requires an argument")
	ErrUnknownFlag         = errors.New("unknown flag")
	ErrIDGenerationFailed  = errors.New("no unique id after repeated attempts")
	ErrNoActiveDocument    = errors.New("no active document")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrIDRequired          = errors.New("document ID is required")
	ErrTitleRequired       = errors.New("title is required")
	ErrNoEditorFound       = errors.New("no editor found (set config.editor, $EDITOR, or install vi/nano)")
	ErrEditorFailed        = errors.New("editor failed")
	ErrNotebookLocked      = errors.New("notebook is in use by another nb process")
	ErrInvalidStoredRecord = errors.New("invalid stored document")
	ErrDuplicateID         = errors.New("duplicate document id")
	ErrAmbiguousID         = errors.New("ambiguous document ID prefix")
)
