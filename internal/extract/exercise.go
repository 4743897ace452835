package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/coursehound/coursehound/internal/browser"
	"github.com/coursehound/coursehound/pkg/course"
)

// A list must carry more than this many items before it is trusted to
// be the exercise's step sequence rather than a short nav list.
const minStepListItems = 3

// Steps shorter than this are numbering artifacts, not instructions.
const minStepChars = 15

// stepSelectors is the fallback chain for locating exercise steps.
var stepSelectors = []string{
	"#module-unit-content ol > li",
	".steps > li",
	"ol > li",
}

// ExtractExercise pulls the structured parts of a hands-on exercise
// unit: numbered steps with their code snippets, prerequisite items,
// and verification steps. Pages without a recognizable step list yield
// an empty detail, not an error.
func (x *Extractor) ExtractExercise(ctx context.Context, page browser.Page) (*course.ExerciseDetail, error) {
	detail := &course.ExerciseDetail{}

	steps, err := x.findSteps(ctx, page)
	if err != nil {
		return nil, err
	}
	for i, el := range steps {
		step, ok, err := x.extractStep(ctx, el)
		if err != nil {
			x.logger.Debug().Err(err).Int("step", i).Msg("skipping unreadable step")
			continue
		}
		if !ok {
			continue
		}
		detail.Steps = append(detail.Steps, step)
		if isVerification(step.Instruction) {
			detail.Verification = append(detail.Verification, step.Instruction)
		}
	}

	reqs, err := x.requirements(ctx, page)
	if err != nil {
		x.logger.Debug().Err(err).Msg("prerequisite scan failed")
	} else {
		detail.Requirements = reqs
	}

	return detail, nil
}

func (x *Extractor) findSteps(ctx context.Context, page browser.Page) ([]browser.Element, error) {
	for _, sel := range stepSelectors {
		els, err := page.Query(ctx, sel)
		if err != nil {
			return nil, err
		}
		if len(els) > minStepListItems {
			return els, nil
		}
	}
	return nil, nil
}

func (x *Extractor) extractStep(ctx context.Context, el browser.Element) (course.ExerciseStep, bool, error) {
	var zero course.ExerciseStep
	text, err := el.Text(ctx)
	if err != nil {
		return zero, false, err
	}
	instruction := collapseSpace(text)
	if utf8.RuneCountInString(instruction) <= minStepChars {
		return zero, false, nil
	}

	step := course.ExerciseStep{Instruction: instruction}
	snippets, err := el.Query(ctx, "pre, code")
	if err == nil {
		for _, sn := range snippets {
			code, err := sn.Text(ctx)
			if err != nil {
				continue
			}
			if code = strings.TrimSpace(code); code != "" {
				step.CodeSnippets = append(step.CodeSnippets, code)
			}
		}
	}
	return step, true, nil
}

func (x *Extractor) requirements(ctx context.Context, page browser.Page) ([]string, error) {
	list, err := page.QueryOne(ctx, ".prerequisites, #prerequisites + ul, [data-heading='prerequisites']")
	if err != nil || list == nil {
		return nil, err
	}
	lis, err := list.Query(ctx, "li")
	if err != nil {
		return nil, err
	}
	var reqs []string
	for _, li := range lis {
		text, err := li.Text(ctx)
		if err != nil {
			continue
		}
		if text = collapseSpace(text); text != "" {
			reqs = append(reqs, text)
		}
	}
	return reqs, nil
}

func isVerification(instruction string) bool {
	lower := strings.ToLower(instruction)
	return strings.HasPrefix(lower, "verify") || strings.HasPrefix(lower, "check that") ||
		strings.HasPrefix(lower, "confirm")
}
