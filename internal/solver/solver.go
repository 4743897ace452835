// Package solver discovers the correct answers of a knowledge-check
// unit by enumerating option combinations against the page's own
// grader: select, submit, read the score, reload, repeat.
package solver

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursehound/coursehound/internal/browser"
	"github.com/coursehound/coursehound/pkg/course"
	"github.com/coursehound/coursehound/pkg/logging"
)

// State names the solver's phase. Terminal states are StateResolved
// and StateExhausted.
type State string

const (
	StateCollecting State = "collecting"
	StateSearching  State = "searching"
	StateResolved   State = "resolved"
	StateExhausted  State = "exhausted"
)

const (
	containerSelector = "div.quiz-question"
	choiceSelector    = "label.quiz-choice"
	submitSelector    = "button[data-bi-name='module-unit-module-assessment-submit']"
	scoreSelector     = "#module-assessment-result-score"
	checkedSelector   = "input:checked"
)

var titleSelectors = []string{".quiz-question-title p", ".quiz-question-title", "p"}

// startLabels identify the optional button that opens the assessment.
var startLabels = []string{"start", "begin", "check your knowledge"}

// Config tunes the search loop.
type Config struct {
	// MaxAttempts caps submissions before giving up; 0 removes the
	// cap and the product space alone bounds the search.
	MaxAttempts int `json:"max_attempts"`

	// SettleDelay is slept after submits and reloads.
	SettleDelay time.Duration `json:"settle_delay"`

	// StableTimeout bounds the post-reload readiness wait.
	StableTimeout time.Duration `json:"stable_timeout"`
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:   256,
		SettleDelay:   time.Second,
		StableTimeout: 10 * time.Second,
	}
}

// Solver runs the answer search over one page.
type Solver struct {
	cfg    Config
	logger zerolog.Logger
}

func New(cfg Config) *Solver {
	return &Solver{cfg: cfg, logger: logging.GetLogger("solver")}
}

// question is the solver's working state for one question. resolved is
// the pinned option index, -1 while unknown. Pinned questions re-select
// their option on every attempt and the enumeration never varies them.
type question struct {
	text          string
	options       []string
	valueToOption map[string]string
	resolved      int
}

// controls are the live element handles, re-bound after every reload.
type controls struct {
	containers []browser.Element
	choices    [][]browser.Element
}

// Solve discovers correct options for the assessment on the current
// page. It never fails hard: faults degrade to a partial result where
// unresolved questions carry the not-found marker. A page without
// question containers yields an empty assessment.
func (s *Solver) Solve(ctx context.Context, page browser.Page) (*course.Assessment, error) {
	s.clickStart(ctx, page)

	qs, ctrl, err := s.collect(ctx, page)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return &course.Assessment{}, nil
	}

	state := StateSearching
	odo := newOdometer(optionCounts(qs))
	attempts := 0

	for state == StateSearching {
		if ctx.Err() != nil {
			break
		}

		if err := s.selectCombo(ctx, ctrl, qs, odo.current()); err != nil {
			s.logger.Warn().Err(err).Msg("selecting options failed, keeping partial result")
			break
		}
		if err := s.submit(ctx, page); err != nil {
			s.logger.Warn().Err(err).Msg("submit failed, keeping partial result")
			break
		}
		attempts++
		s.sleep(ctx)

		score := s.readScore(ctx, page)
		s.logger.Debug().Int("attempt", attempts).Int("score", score).Msg("assessment submitted")

		if score >= 100 {
			s.readback(ctx, ctrl, qs)
			state = StateResolved
			break
		}
		if s.cfg.MaxAttempts > 0 && attempts >= s.cfg.MaxAttempts {
			s.logger.Warn().Int("attempts", attempts).Msg("attempt ceiling reached")
			state = StateExhausted
			break
		}
		if !odo.advance() {
			state = StateExhausted
			break
		}

		// A wrong submission locks the form; a reload resets it. The
		// old handles are stale afterwards and must be re-bound.
		if err := page.Reload(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("reload failed, keeping partial result")
			break
		}
		_ = page.AwaitStable(ctx, s.cfg.StableTimeout)
		s.sleep(ctx)
		s.clickStart(ctx, page)

		ctrl, err = s.rebind(ctx, page, len(qs))
		if err != nil {
			s.logger.Warn().Err(err).Msg("rebind failed, keeping partial result")
			break
		}
	}

	s.logger.Debug().
		Str("state", string(state)).
		Int("attempts", attempts).
		Int("questions", len(qs)).
		Msg("assessment search finished")

	out := &course.Assessment{}
	for _, q := range qs {
		correct := course.AnswerNotFound
		if q.resolved >= 0 {
			correct = q.options[q.resolved]
		}
		out.Questions = append(out.Questions, course.Question{
			Text:          q.text,
			Options:       q.options,
			CorrectOption: correct,
		})
	}
	return out, nil
}

// clickStart presses the assessment's opening button when one exists.
func (s *Solver) clickStart(ctx context.Context, page browser.Page) {
	buttons, err := page.Query(ctx, "button")
	if err != nil {
		return
	}
	for _, b := range buttons {
		text, err := b.Text(ctx)
		if err != nil {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(text))
		for _, want := range startLabels {
			if strings.HasPrefix(label, want) {
				if err := b.Click(ctx); err == nil {
					s.sleep(ctx)
				}
				return
			}
		}
	}
}

// collect reads question text, options and input values, and binds the
// initial control handles. Single-option questions resolve immediately.
func (s *Solver) collect(ctx context.Context, page browser.Page) ([]question, controls, error) {
	var ctrl controls
	containers, err := page.Query(ctx, containerSelector)
	if err != nil {
		return nil, ctrl, err
	}

	qs := make([]question, 0, len(containers))
	for _, c := range containers {
		q := question{resolved: -1, valueToOption: make(map[string]string)}
		q.text = s.questionTitle(ctx, c)

		choiceEls, err := c.Query(ctx, choiceSelector)
		if err != nil {
			s.logger.Debug().Err(err).Msg("unreadable question container")
			continue
		}
		for _, ch := range choiceEls {
			text, err := ch.Text(ctx)
			if err != nil {
				continue
			}
			option := strings.Join(strings.Fields(text), " ")
			q.options = append(q.options, option)
			if input, err := ch.QueryOne(ctx, "input"); err == nil && input != nil {
				if value, err := input.Attribute(ctx, "value"); err == nil && value != "" {
					q.valueToOption[value] = option
				}
			}
		}
		if len(q.options) == 0 {
			continue
		}
		if len(q.options) == 1 {
			q.resolved = 0
		}
		qs = append(qs, q)
		ctrl.containers = append(ctrl.containers, c)
		ctrl.choices = append(ctrl.choices, choiceEls)
	}
	return qs, ctrl, nil
}

func (s *Solver) questionTitle(ctx context.Context, c browser.Element) string {
	for _, sel := range titleSelectors {
		el, err := c.QueryOne(ctx, sel)
		if err != nil || el == nil {
			continue
		}
		if text, err := el.Text(ctx); err == nil {
			if text = strings.Join(strings.Fields(text), " "); text != "" {
				return text
			}
		}
	}
	return ""
}

// rebind re-queries control handles after a reload. The question count
// must match what was collected or the fresh DOM cannot be trusted.
func (s *Solver) rebind(ctx context.Context, page browser.Page, want int) (controls, error) {
	var ctrl controls
	containers, err := page.Query(ctx, containerSelector)
	if err != nil {
		return ctrl, err
	}
	if len(containers) != want {
		return ctrl, &mismatchError{want: want, got: len(containers)}
	}
	for _, c := range containers {
		choiceEls, err := c.Query(ctx, choiceSelector)
		if err != nil {
			return ctrl, err
		}
		ctrl.containers = append(ctrl.containers, c)
		ctrl.choices = append(ctrl.choices, choiceEls)
	}
	return ctrl, nil
}

var errSubmitNotFound = errors.New("submit button not found")

type mismatchError struct{ want, got int }

func (e *mismatchError) Error() string {
	return "question count changed after reload: had " + strconv.Itoa(e.want) + ", found " + strconv.Itoa(e.got)
}

// selectCombo clicks one choice per question: the pinned option for
// resolved questions, the enumerated candidate otherwise.
func (s *Solver) selectCombo(ctx context.Context, ctrl controls, qs []question, combo []int) error {
	ci := 0
	for i, q := range qs {
		idx := q.resolved
		if idx < 0 {
			idx = combo[ci]
			ci++
		}
		if idx >= len(ctrl.choices[i]) {
			return &mismatchError{want: len(q.options), got: len(ctrl.choices[i])}
		}
		if err := ctrl.choices[i][idx].Click(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Solver) submit(ctx context.Context, page browser.Page) error {
	btn, err := page.QueryOne(ctx, submitSelector)
	if err != nil {
		return err
	}
	if btn == nil {
		return errSubmitNotFound
	}
	return btn.Click(ctx)
}

// readScore parses the "NN%" result element. Missing or unreadable
// scores count as zero, which keeps the search going.
func (s *Solver) readScore(ctx context.Context, page browser.Page) int {
	el, err := page.QueryOne(ctx, scoreSelector)
	if err != nil || el == nil {
		return 0
	}
	text, err := el.Text(ctx)
	if err != nil {
		return 0
	}
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "%"))
	score, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return score
}

// readback maps each question's checked input back to its option text
// after a perfect score.
func (s *Solver) readback(ctx context.Context, ctrl controls, qs []question) {
	for i := range qs {
		if qs[i].resolved >= 0 {
			continue
		}
		checked, err := ctrl.containers[i].QueryOne(ctx, checkedSelector)
		if err != nil || checked == nil {
			continue
		}
		value, err := checked.Attribute(ctx, "value")
		if err != nil {
			continue
		}
		option, ok := qs[i].valueToOption[value]
		if !ok {
			continue
		}
		for j, o := range qs[i].options {
			if o == option {
				qs[i].resolved = j
				break
			}
		}
	}
}

func (s *Solver) sleep(ctx context.Context) {
	if s.cfg.SettleDelay <= 0 {
		return
	}
	t := time.NewTimer(s.cfg.SettleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func optionCounts(qs []question) []int {
	var counts []int
	for _, q := range qs {
		if q.resolved < 0 {
			counts = append(counts, len(q.options))
		}
	}
	return counts
}
