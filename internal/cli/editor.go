package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/calvinalkan/notebook/internal/notebook"
)

// resolveEditor checks for an available editor using the env map.
// Priority: config.Editor -> $EDITOR -> vi -> nano -> error.
func resolveEditor(cfg notebook.Config, env map[string]string) (string, error) {
	candidates := []string{cfg.Editor, env["EDITOR"], "vi", "nano"}

	for _, editor := range candidates {
		if editor == "" {
			continue
		}

		_, lookErr := exec.LookPath(editor)
		if lookErr == nil {
			return editor, nil
		}
	}

	return "", notebook.ErrNoEditorFound
}

// runEditor runs editor on path attached to the terminal and waits for it.
func runEditor(ctx context.Context, editor, path string) error {
	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return fmt.Errorf("%w: exit code %d", notebook.ErrEditorFailed, exitErr.ExitCode())
		}

		return fmt.Errorf("%w: %w", notebook.ErrEditorFailed, runErr)
	}

	return nil
}
