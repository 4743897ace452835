package extract

import (
	"strings"

	"github.com/coursehound/coursehound/pkg/course"
)

// KindRule matches a unit kind by title substring first, URL-path
// substring second.
type KindRule struct {
	Kind  course.UnitKind
	Title []string
	URL   []string
}

// KindRules is evaluated in order; the first matching rule wins and
// anything unmatched is plain content. Ordering matters: a
// "Knowledge check" unit whose URL happens to contain "summary" must
// still classify as a quiz.
var KindRules = []KindRule{
	{Kind: course.UnitIntroduction, Title: []string{"introduction"}, URL: []string{"introduction"}},
	{Kind: course.UnitExercise, Title: []string{"exercise", "lab"}, URL: []string{"exercise"}},
	{Kind: course.UnitQuiz, Title: []string{"knowledge check", "quiz", "assessment"}, URL: []string{"knowledge-check", "quiz"}},
	{Kind: course.UnitSummary, Title: []string{"summary"}, URL: []string{"summary"}},
}

// ClassifyUnit derives a unit's kind from its title and URL.
func ClassifyUnit(title, url string) course.UnitKind {
	title = strings.ToLower(title)
	url = strings.ToLower(url)
	for _, rule := range KindRules {
		for _, sub := range rule.Title {
			if strings.Contains(title, sub) {
				return rule.Kind
			}
		}
		for _, sub := range rule.URL {
			if strings.Contains(url, sub) {
				return rule.Kind
			}
		}
	}
	return course.UnitContent
}
