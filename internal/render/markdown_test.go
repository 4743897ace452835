package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehound/coursehound/pkg/course"
)

func sampleModule() *course.Module {
	return &course.Module{
		Title:       "Work with blobs",
		URL:         "https://learn.example.com/training/modules/blobs/",
		Description: "Store unstructured data.",
		Duration:    "38 min",
		Units: []course.Unit{
			{
				Title: "Explore tiers",
				Kind:  course.UnitContent,
				Blocks: []course.ContentBlock{
					course.Heading(2, "Access tiers"),
					course.Paragraph("Hot, cool and archive tiers trade cost for latency."),
					course.List(false, []string{"hot", "cool"}),
					course.Table([][]string{{"Tier", "Latency"}, {"hot", "ms"}}),
					course.Code("go", "fmt.Println(\"tiers\")"),
					course.Image(course.ImageRef{URL: "https://a/img.png", Alt: "diagram"}),
					course.Video(course.VideoRef{Provider: course.ProviderHostedStream, EmbedURL: "https://e", WatchURL: "https://w"}),
				},
			},
			{
				Title: "Knowledge check",
				Kind:  course.UnitQuiz,
				Assessment: &course.Assessment{Questions: []course.Question{
					{Text: "Cheapest tier?", Options: []string{"Hot", "Archive"}, CorrectOption: "Archive"},
					{Text: "Unsolved", Options: []string{"A", "B"}, CorrectOption: course.AnswerNotFound},
				}},
			},
		},
	}
}

func TestRenderModule(t *testing.T) {
	md := RenderModule(sampleModule(), "Storage", 1, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, `title: "Work with blobs"`)
	assert.Contains(t, md, `learning_path: "Storage"`)
	assert.Contains(t, md, "module_index: 1")
	assert.Contains(t, md, `duration: "38 min"`)
	assert.Contains(t, md, "crawled_at: 2025-03-01T12:00:00Z")

	assert.Contains(t, md, "## Explore tiers")
	assert.Contains(t, md, "### Access tiers")
	assert.Contains(t, md, "- hot\n- cool")
	assert.Contains(t, md, "| Tier | Latency |")
	assert.Contains(t, md, "| --- | --- |")
	assert.Contains(t, md, "```go\nfmt.Println(\"tiers\")\n```")
	assert.Contains(t, md, "![diagram](https://a/img.png)")
	assert.Contains(t, md, "[Video (hosted-stream)](https://w)")

	assert.Contains(t, md, "- [x] Archive")
	assert.Contains(t, md, "- [ ] Hot")
	assert.Contains(t, md, "correct answer not determined")
}

func TestRenderCourse_PreservesBlockOrder(t *testing.T) {
	mod := sampleModule()
	c := &course.Course{
		Title:         "Store data",
		URL:           "https://learn.example.com/training/courses/store/",
		LearningPaths: []course.LearningPath{{Title: "Storage", Modules: []course.Module{*mod}}},
	}

	md := RenderCourse(c)

	// Rendered order must match the block sequence of the tree.
	positions := []int{
		strings.Index(md, "### Access tiers"),
		strings.Index(md, "Hot, cool and archive"),
		strings.Index(md, "- hot"),
		strings.Index(md, "| Tier |"),
		strings.Index(md, "```go"),
		strings.Index(md, "![diagram]"),
		strings.Index(md, "[Video ("),
	}
	for i, pos := range positions {
		require.GreaterOrEqual(t, pos, 0, "segment %d missing", i)
		if i > 0 {
			assert.Greater(t, pos, positions[i-1], "segment %d out of order", i)
		}
	}
}

func TestRenderBlock_UnknownLanguageOmitted(t *testing.T) {
	b := course.Code("", "plain text snippet")
	assert.True(t, strings.HasPrefix(RenderBlock(&b), "```\n"))
}

func TestRenderBlock_HeadingCapped(t *testing.T) {
	b := course.Heading(6, "Deep")
	assert.True(t, strings.HasPrefix(RenderBlock(&b), "###### Deep"))
}

func TestFlattenInline(t *testing.T) {
	assert.Equal(t, "plain text", flattenInline("plain text"))
	assert.Equal(t, "bold and code", flattenInline("<b>bold</b> and <code>code</code>"))
	assert.Equal(t, "a < b", flattenInline("a &lt; b"))
}

func TestRenderExercise(t *testing.T) {
	mod := &course.Module{
		Title: "Exercise module",
		Units: []course.Unit{{
			Title: "Exercise - create",
			Kind:  course.UnitExercise,
			Exercise: &course.ExerciseDetail{
				Requirements: []string{"A subscription"},
				Steps: []course.ExerciseStep{
					{Instruction: "Create the resource group.", CodeSnippets: []string{"az group create"}},
					{Instruction: "Verify the deployment."},
				},
				Verification: []string{"Verify the deployment."},
			},
		}},
	}

	md := RenderModule(mod, "Storage", 2, time.Time{})
	assert.Contains(t, md, "### Prerequisites")
	assert.Contains(t, md, "- A subscription")
	assert.Contains(t, md, "1. Create the resource group.")
	assert.Contains(t, md, "az group create")
	assert.NotContains(t, md, "crawled_at:")
}
