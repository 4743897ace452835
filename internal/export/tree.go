package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coursehound/coursehound/internal/render"
	"github.com/coursehound/coursehound/pkg/course"
)

const maxFilenameLen = 100

// WriteMarkdownTree lays the course out as a browsable directory:
// one numbered folder per learning path, one markdown file per module,
// and a README index at the root.
func WriteMarkdownTree(dir string, c *course.Course) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating markdown dir: %w", err)
	}

	var index strings.Builder
	fmt.Fprintf(&index, "# %s\n\n", c.Title)
	if c.Description != "" {
		fmt.Fprintf(&index, "%s\n\n", c.Description)
	}

	for pi, lp := range c.LearningPaths {
		pathDir := fmt.Sprintf("%02d_%s", pi+1, SanitizeFilename(lp.Title))
		if err := os.MkdirAll(filepath.Join(dir, pathDir), 0o755); err != nil {
			return fmt.Errorf("creating path dir: %w", err)
		}
		fmt.Fprintf(&index, "## %s\n\n", lp.Title)

		for mi, m := range lp.Modules {
			name := fmt.Sprintf("%02d_%s.md", mi+1, SanitizeFilename(m.Title))
			rel := filepath.Join(pathDir, name)
			md := render.RenderModule(&lp.Modules[mi], lp.Title, mi+1, c.CrawledAt)
			if err := os.WriteFile(filepath.Join(dir, rel), []byte(md), 0o644); err != nil {
				return fmt.Errorf("writing module file: %w", err)
			}
			fmt.Fprintf(&index, "- [%s](%s)\n", m.Title, filepath.ToSlash(rel))
		}
		index.WriteString("\n")
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(index.String()), 0o644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}

// SanitizeFilename makes a title safe as a file name: reserved
// punctuation is dropped, spaces become underscores, and the result is
// capped at 100 characters.
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return -1
		case ' ':
			return '_'
		}
		return r
	}, name)
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		cleaned = "untitled"
	}
	runes := []rune(cleaned)
	if len(runes) > maxFilenameLen {
		cleaned = string(runes[:maxFilenameLen])
	}
	return cleaned
}
