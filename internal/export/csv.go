package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coursehound/coursehound/pkg/course"
)

// WriteCSVs writes the five tabular projections of a tree into dir:
// modules, units, videos, questions and exercise steps.
func WriteCSVs(dir string, c *course.Course) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating csv dir: %w", err)
	}
	writers := []struct {
		name string
		fn   func(*csv.Writer, *course.Course)
	}{
		{"modules.csv", writeModules},
		{"units.csv", writeUnits},
		{"videos.csv", writeVideos},
		{"questions.csv", writeQuestions},
		{"exercise_steps.csv", writeExerciseSteps},
	}
	for _, w := range writers {
		if err := writeCSVFile(filepath.Join(dir, w.name), c, w.fn); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVFile(path string, c *course.Course, fn func(*csv.Writer, *course.Course)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	fn(w, c)
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeModules(w *csv.Writer, c *course.Course) {
	w.Write([]string{"learning_path", "module_index", "title", "url", "description", "duration", "units"})
	for _, lp := range c.LearningPaths {
		for i, m := range lp.Modules {
			w.Write([]string{
				lp.Title, strconv.Itoa(i + 1), m.Title, m.URL,
				m.Description, m.Duration, strconv.Itoa(len(m.Units)),
			})
		}
	}
}

func writeUnits(w *csv.Writer, c *course.Course) {
	w.Write([]string{"learning_path", "module", "unit_index", "title", "url", "kind", "blocks", "has_assessment", "has_exercise"})
	for _, lp := range c.LearningPaths {
		for _, m := range lp.Modules {
			for i, u := range m.Units {
				w.Write([]string{
					lp.Title, m.Title, strconv.Itoa(i + 1), u.Title, u.URL,
					string(u.Kind), strconv.Itoa(len(u.Blocks)),
					strconv.FormatBool(u.Assessment != nil),
					strconv.FormatBool(u.Exercise != nil),
				})
			}
		}
	}
}

func writeVideos(w *csv.Writer, c *course.Course) {
	w.Write([]string{"learning_path", "module", "unit", "provider", "embed_url", "watch_url", "video_id"})
	forEachBlock(c, func(lp *course.LearningPath, m *course.Module, u *course.Unit, b *course.ContentBlock) {
		if b.Kind != course.BlockVideo {
			return
		}
		w.Write([]string{
			lp.Title, m.Title, u.Title,
			string(b.Video.Provider), b.Video.EmbedURL, b.Video.WatchURL, b.Video.VideoID,
		})
	})
}

func writeQuestions(w *csv.Writer, c *course.Course) {
	w.Write([]string{"learning_path", "module", "unit", "question", "options", "correct_option"})
	for _, lp := range c.LearningPaths {
		for _, m := range lp.Modules {
			for _, u := range m.Units {
				if u.Assessment == nil {
					continue
				}
				for _, q := range u.Assessment.Questions {
					w.Write([]string{
						lp.Title, m.Title, u.Title,
						q.Text, strings.Join(q.Options, "; "), q.CorrectOption,
					})
				}
			}
		}
	}
}

func writeExerciseSteps(w *csv.Writer, c *course.Course) {
	w.Write([]string{"learning_path", "module", "unit", "step_index", "instruction", "code_snippets"})
	for _, lp := range c.LearningPaths {
		for _, m := range lp.Modules {
			for _, u := range m.Units {
				if u.Exercise == nil {
					continue
				}
				for i, s := range u.Exercise.Steps {
					w.Write([]string{
						lp.Title, m.Title, u.Title,
						strconv.Itoa(i + 1), s.Instruction, strings.Join(s.CodeSnippets, "\n"),
					})
				}
			}
		}
	}
}

func forEachBlock(c *course.Course, fn func(*course.LearningPath, *course.Module, *course.Unit, *course.ContentBlock)) {
	for pi := range c.LearningPaths {
		lp := &c.LearningPaths[pi]
		for mi := range lp.Modules {
			m := &lp.Modules[mi]
			for ui := range m.Units {
				u := &m.Units[ui]
				for bi := range u.Blocks {
					fn(lp, m, u, &u.Blocks[bi])
				}
			}
		}
	}
}
