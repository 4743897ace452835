// Package render projects a crawled course tree to markdown.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/coursehound/coursehound/pkg/course"
)

// RenderCourse renders the whole tree as one document: course header,
// then every learning path, module and unit in crawl order.
func RenderCourse(c *course.Course) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", flattenInline(c.Title))
	if c.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", flattenInline(c.Description))
	}
	if c.URL != "" {
		fmt.Fprintf(&b, "Source: %s\n\n", c.URL)
	}

	for _, lp := range c.LearningPaths {
		fmt.Fprintf(&b, "## %s\n\n", flattenInline(lp.Title))
		for i, m := range lp.Modules {
			b.WriteString(RenderModule(&m, lp.Title, i+1, c.CrawledAt))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderModule renders one module with front-matter metadata followed
// by its units.
func RenderModule(m *course.Module, pathTitle string, index int, crawledAt time.Time) string {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", m.Title)
	fmt.Fprintf(&b, "learning_path: %q\n", pathTitle)
	fmt.Fprintf(&b, "module_index: %d\n", index)
	fmt.Fprintf(&b, "url: %s\n", m.URL)
	if m.Duration != "" {
		fmt.Fprintf(&b, "duration: %q\n", m.Duration)
	}
	if !crawledAt.IsZero() {
		fmt.Fprintf(&b, "crawled_at: %s\n", crawledAt.Format(time.RFC3339))
	}
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", flattenInline(m.Title))
	if m.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", flattenInline(m.Description))
	}

	for _, u := range m.Units {
		b.WriteString(renderUnit(&u))
	}
	return b.String()
}

func renderUnit(u *course.Unit) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", flattenInline(u.Title))

	for _, block := range u.Blocks {
		b.WriteString(RenderBlock(&block))
	}
	if u.Assessment != nil {
		b.WriteString(renderAssessment(u.Assessment))
	}
	if u.Exercise != nil {
		b.WriteString(renderExercise(u.Exercise))
	}
	return b.String()
}

// RenderBlock maps one content block to its markdown form, always
// terminated by a blank line.
func RenderBlock(block *course.ContentBlock) string {
	var b strings.Builder
	switch block.Kind {
	case course.BlockHeading:
		// Unit titles already take "##", so in-page headings nest one
		// level deeper, capped at "######".
		level := block.Level + 1
		if level > 6 {
			level = 6
		}
		fmt.Fprintf(&b, "%s %s\n\n", strings.Repeat("#", level), flattenInline(block.Text))

	case course.BlockParagraph:
		fmt.Fprintf(&b, "%s\n\n", flattenInline(block.Text))

	case course.BlockList:
		for i, item := range block.Items {
			if block.Ordered {
				fmt.Fprintf(&b, "%d. %s\n", i+1, flattenInline(item))
			} else {
				fmt.Fprintf(&b, "- %s\n", flattenInline(item))
			}
		}
		b.WriteString("\n")

	case course.BlockTable:
		if len(block.Rows) == 0 {
			break
		}
		writeRow(&b, block.Rows[0])
		sep := make([]string, len(block.Rows[0]))
		for i := range sep {
			sep[i] = "---"
		}
		writeRow(&b, sep)
		for _, row := range block.Rows[1:] {
			writeRow(&b, row)
		}
		b.WriteString("\n")

	case course.BlockCode:
		lang := block.Language
		if lang == "unknown" {
			lang = ""
		}
		fmt.Fprintf(&b, "```%s\n%s\n```\n\n", lang, block.Code)

	case course.BlockImage:
		fmt.Fprintf(&b, "![%s](%s)\n\n", block.Image.Alt, block.Image.URL)

	case course.BlockVideo:
		url := block.Video.WatchURL
		if url == "" {
			url = block.Video.EmbedURL
		}
		fmt.Fprintf(&b, "[Video (%s)](%s)\n\n", block.Video.Provider, url)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(flattenInline(c), "|", "\\|")
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(out, " | "))
}

func renderAssessment(a *course.Assessment) string {
	if len(a.Questions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("### Knowledge check\n\n")
	for i, q := range a.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, flattenInline(q.Text))
		for _, opt := range q.Options {
			marker := " "
			if opt == q.CorrectOption {
				marker = "x"
			}
			fmt.Fprintf(&b, "   - [%s] %s\n", marker, flattenInline(opt))
		}
		if q.CorrectOption == course.AnswerNotFound {
			b.WriteString("   - correct answer not determined\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func renderExercise(e *course.ExerciseDetail) string {
	var b strings.Builder
	if len(e.Requirements) > 0 {
		b.WriteString("### Prerequisites\n\n")
		for _, r := range e.Requirements {
			fmt.Fprintf(&b, "- %s\n", flattenInline(r))
		}
		b.WriteString("\n")
	}
	if len(e.Steps) > 0 {
		b.WriteString("### Steps\n\n")
		for i, s := range e.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, flattenInline(s.Instruction))
			for _, snippet := range s.CodeSnippets {
				fmt.Fprintf(&b, "\n   ```\n   %s\n   ```\n", strings.ReplaceAll(snippet, "\n", "\n   "))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
