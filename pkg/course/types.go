package course

import (
	"fmt"
	"time"
)

// UnitKind classifies a unit by the role it plays inside a module.
type UnitKind string

const (
	UnitIntroduction UnitKind = "introduction"
	UnitExercise     UnitKind = "exercise"
	UnitQuiz         UnitKind = "quiz"
	UnitSummary      UnitKind = "summary"
	UnitContent      UnitKind = "content"
)

// AnswerNotFound marks a question whose correct option could not be
// discovered (solver exhausted or degraded to a partial result).
const AnswerNotFound = "not-found"

// Course is the root of one crawled catalog tree.
type Course struct {
	URL           string         `json:"url"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	LearningPaths []LearningPath `json:"learning_paths"`
	CrawledAt     time.Time      `json:"crawled_at"`
}

// LearningPath is a named ordered sequence of modules.
type LearningPath struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Modules []Module `json:"modules"`
}

// Module is one learning topic made of ordered units.
type Module struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Units       []Unit `json:"units"`
}

// Unit is the smallest navigable content page within a module.
type Unit struct {
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	Kind       UnitKind        `json:"kind"`
	Blocks     []ContentBlock  `json:"blocks,omitempty"`
	Assessment *Assessment     `json:"assessment,omitempty"`
	Exercise   *ExerciseDetail `json:"exercise,omitempty"`
}

// Assessment is a knowledge-check unit's question set.
type Assessment struct {
	Questions []Question `json:"questions"`
}

// Question is a single multiple-choice question. CorrectOption is
// either an element of Options or AnswerNotFound.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
}

// Validate checks the question's referential integrity: a discovered
// answer must be one of the question's own options.
func (q *Question) Validate() error {
	if q.CorrectOption == AnswerNotFound {
		return nil
	}
	for _, opt := range q.Options {
		if opt == q.CorrectOption {
			return nil
		}
	}
	return fmt.Errorf("correct option %q is not among the question's options", q.CorrectOption)
}

// ExerciseStep is one numbered instruction in a hands-on exercise.
type ExerciseStep struct {
	Instruction  string   `json:"instruction"`
	CodeSnippets []string `json:"code_snippets,omitempty"`
}

// ExerciseDetail captures the structured parts of an exercise unit.
type ExerciseDetail struct {
	Steps        []ExerciseStep `json:"steps"`
	Requirements []string       `json:"requirements,omitempty"`
	Verification []string       `json:"verification,omitempty"`
}

// Stats aggregates counts across a course tree.
type Stats struct {
	LearningPaths   int `json:"learning_paths"`
	Modules         int `json:"modules"`
	Units           int `json:"units"`
	Videos          int `json:"videos"`
	Images          int `json:"images"`
	CodeBlocks      int `json:"code_blocks"`
	QuizzesSolved   int `json:"quizzes_solved"`
	QuizzesPartial  int `json:"quizzes_partial"`
	QuestionsTotal  int `json:"questions_total"`
	AnswersResolved int `json:"answers_resolved"`
}

// CollectStats walks the tree and tallies leaf counts. Used for the
// end-of-run summary and the summary.json written next to snapshots.
func CollectStats(c *Course) Stats {
	var s Stats
	if c == nil {
		return s
	}
	s.LearningPaths = len(c.LearningPaths)
	for _, lp := range c.LearningPaths {
		s.Modules += len(lp.Modules)
		for _, m := range lp.Modules {
			s.Units += len(m.Units)
			for _, u := range m.Units {
				for _, b := range u.Blocks {
					switch b.Kind {
					case BlockVideo:
						s.Videos++
					case BlockImage:
						s.Images++
					case BlockCode:
						s.CodeBlocks++
					}
				}
				if u.Assessment == nil {
					continue
				}
				solved := true
				for _, q := range u.Assessment.Questions {
					s.QuestionsTotal++
					if q.CorrectOption == AnswerNotFound {
						solved = false
					} else {
						s.AnswersResolved++
					}
				}
				if len(u.Assessment.Questions) == 0 {
					continue
				}
				if solved {
					s.QuizzesSolved++
				} else {
					s.QuizzesPartial++
				}
			}
		}
	}
	return s
}
