// Package crawler walks a course tree over one shared rendered page:
// course, learning paths, modules, units, depth-first in discovery
// order, checkpointing after every completed module.
package crawler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coursehound/coursehound/internal/browser"
	"github.com/coursehound/coursehound/internal/extract"
	"github.com/coursehound/coursehound/internal/solver"
	"github.com/coursehound/coursehound/pkg/course"
	"github.com/coursehound/coursehound/pkg/logging"
)

const (
	pathLinkMarker   = "/training/paths/"
	moduleLinkMarker = "/training/modules/"
	unitLinkSelector = "a.unit-title"
)

// actionLabels are anchor texts of call-to-action buttons, not
// navigation targets.
var actionLabels = []string{"start", "begin", "launch", "continue"}

// Walker drives one crawl run. It owns the page while crawling and
// hands it to the solver for quiz units.
type Walker struct {
	cfg         Config
	page        browser.Page
	extractor   *extract.Extractor
	solver      *solver.Solver
	pacer       *Pacer
	checkpoints *Checkpointer
	logger      zerolog.Logger
	runID       string
	modulesDone int
}

func NewWalker(cfg Config, page browser.Page, checkpoints *Checkpointer) *Walker {
	runID := uuid.New().String()
	return &Walker{
		cfg:         cfg,
		page:        page,
		extractor:   extract.NewExtractor(cfg.BaseURL),
		solver:      solver.New(cfg.Solver),
		pacer:       NewPacer(cfg.Pacing),
		checkpoints: checkpoints,
		logger:      logging.GetCrawlLogger(runID, "walker"),
		runID:       runID,
	}
}

// RunID identifies this crawl in logs and archive commits.
func (w *Walker) RunID() string { return w.runID }

// Crawl walks the course at courseURL and returns the tree. A failed
// node is recorded with whatever was extracted before the fault and
// traversal continues; only the initial navigation and context
// cancellation abort the run. On cancellation the partial tree is
// returned alongside the context error.
func (w *Walker) Crawl(ctx context.Context, courseURL string) (*course.Course, error) {
	start := time.Now()
	w.logger.Info().Str("url", courseURL).Msg("crawl started")

	if err := w.visit(ctx, courseURL); err != nil {
		return nil, err
	}

	tree := &course.Course{
		URL:       courseURL,
		Title:     w.headline(ctx),
		CrawledAt: start.UTC(),
	}
	tree.Description, _ = w.metaContent(ctx, `meta[name="description"]`)

	paths := w.collectLinks(ctx, pathLinkMarker)
	if len(paths) == 0 {
		// Some catalog URLs point straight at a path or module list;
		// treat the page itself as a single path.
		paths = []link{{Title: tree.Title, URL: courseURL}}
	}

	for _, p := range paths {
		if ctx.Err() != nil {
			return tree, ctx.Err()
		}
		if w.moduleCapReached() {
			break
		}
		if err := w.crawlPath(ctx, p, tree); err != nil {
			if ctx.Err() != nil {
				return tree, ctx.Err()
			}
			w.logger.Error().Err(err).Str("path", p.URL).Msg("learning path failed, continuing")
		}
	}

	stats := course.CollectStats(tree)
	w.logger.Info().
		Int("paths", stats.LearningPaths).
		Int("modules", stats.Modules).
		Int("units", stats.Units).
		Int("questions", stats.QuestionsTotal).
		Int("answers", stats.AnswersResolved).
		Dur("elapsed", time.Since(start)).
		Msg("crawl finished")

	return tree, nil
}

func (w *Walker) crawlPath(ctx context.Context, p link, tree *course.Course) error {
	if w.page.CurrentURL() != p.URL {
		if err := w.visit(ctx, p.URL); err != nil {
			return err
		}
	}

	// The path is filled in place on the tree so every checkpoint
	// snapshot carries the modules crawled so far.
	tree.LearningPaths = append(tree.LearningPaths, course.LearningPath{Title: p.Title, URL: p.URL})
	lp := &tree.LearningPaths[len(tree.LearningPaths)-1]
	if lp.Title == "" {
		lp.Title = w.headline(ctx)
	}

	for _, m := range w.collectLinks(ctx, moduleLinkMarker) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if w.moduleCapReached() {
			break
		}
		mod := w.crawlModule(ctx, m)
		if mod == nil {
			continue
		}
		lp.Modules = append(lp.Modules, *mod)
		w.modulesDone++

		if err := w.checkpoints.Save(ctx, tree, w.modulesDone); err != nil {
			w.logger.Warn().Err(err).Msg("checkpoint save failed")
		}
	}
	return nil
}

// crawlModule returns nil only when the module page itself never
// loaded; unit faults leave partial units in place.
func (w *Walker) crawlModule(ctx context.Context, m link) *course.Module {
	nodeLog := logging.GetNodeLogger("module", m.URL)
	if err := w.visit(ctx, m.URL); err != nil {
		nodeLog.Error().Err(err).Msg("module page failed to load")
		return nil
	}

	mod := &course.Module{Title: m.Title, URL: m.URL}
	if mod.Title == "" {
		mod.Title = w.headline(ctx)
	}
	mod.Description, _ = w.metaContent(ctx, `meta[name="description"]`)
	mod.Duration = w.textOf(ctx, "span[data-bi-name=duration]")

	units := w.unitLinks(ctx, m.URL)
	nodeLog.Info().Str("title", mod.Title).Int("units", len(units)).Msg("module discovered")

	for _, u := range units {
		if ctx.Err() != nil {
			return mod
		}
		mod.Units = append(mod.Units, w.crawlUnit(ctx, u))
	}
	return mod
}

func (w *Walker) crawlUnit(ctx context.Context, u link) course.Unit {
	unit := course.Unit{
		Title: u.Title,
		URL:   u.URL,
		Kind:  extract.ClassifyUnit(u.Title, u.URL),
	}
	nodeLog := logging.GetNodeLogger("unit", u.URL)

	if err := w.visit(ctx, u.URL); err != nil {
		nodeLog.Error().Err(err).Msg("unit page failed to load, recording stub")
		return unit
	}
	if unit.Title == "" {
		unit.Title = w.headline(ctx)
		unit.Kind = extract.ClassifyUnit(unit.Title, u.URL)
	}

	blocks, err := w.extractor.ExtractPage(ctx, w.page)
	if err != nil {
		nodeLog.Error().Err(err).Msg("content extraction failed, keeping partial unit")
	}
	unit.Blocks = blocks

	switch unit.Kind {
	case course.UnitQuiz:
		assessment, err := w.solver.Solve(ctx, w.page)
		if err != nil {
			nodeLog.Error().Err(err).Msg("assessment solve failed")
		} else {
			unit.Assessment = assessment
		}
	case course.UnitExercise:
		detail, err := w.extractor.ExtractExercise(ctx, w.page)
		if err != nil {
			nodeLog.Error().Err(err).Msg("exercise extraction failed")
		} else {
			unit.Exercise = detail
		}
	}

	nodeLog.Debug().
		Str("kind", string(unit.Kind)).
		Int("blocks", len(unit.Blocks)).
		Msg("unit crawled")
	return unit
}

// visit navigates to a URL under pacing, then waits for readiness and
// the settle delay.
func (w *Walker) visit(ctx context.Context, target string) error {
	if err := w.pacer.Wait(ctx); err != nil {
		return err
	}
	if err := w.page.Navigate(ctx, target); err != nil {
		w.pacer.Failure()
		return err
	}
	w.pacer.Success()
	_ = w.page.AwaitStable(ctx, w.cfg.StableTimeout)
	return w.pacer.Settle(ctx)
}

type link struct {
	Title string
	URL   string
}

// collectLinks gathers anchors whose href contains marker, in document
// order, deduplicated on the raw href. Action-button anchors whose
// text is a call to action are navigation noise and skipped.
func (w *Walker) collectLinks(ctx context.Context, marker string) []link {
	anchors, err := w.page.Query(ctx, "a")
	if err != nil {
		w.logger.Debug().Err(err).Msg("anchor query failed")
		return nil
	}

	seen := make(map[string]bool)
	var links []link
	for _, a := range anchors {
		href, err := a.Attribute(ctx, "href")
		if err != nil || href == "" || !strings.Contains(href, marker) {
			continue
		}
		if seen[href] {
			continue
		}
		title, _ := a.Text(ctx)
		title = strings.Join(strings.Fields(title), " ")
		if isActionLabel(title) {
			continue
		}
		seen[href] = true
		links = append(links, link{Title: title, URL: w.absolutize(href)})
	}
	return links
}

// unitLinks prefers the unit list's own anchors and falls back to any
// navigation link nested under the module URL.
func (w *Walker) unitLinks(ctx context.Context, moduleURL string) []link {
	anchors, err := w.page.Query(ctx, unitLinkSelector)
	if err == nil && len(anchors) > 0 {
		seen := make(map[string]bool)
		var links []link
		for _, a := range anchors {
			href, err := a.Attribute(ctx, "href")
			if err != nil || href == "" || seen[href] {
				continue
			}
			seen[href] = true
			title, _ := a.Text(ctx)
			links = append(links, link{
				Title: strings.Join(strings.Fields(title), " "),
				URL:   w.absolutize(href),
			})
		}
		return links
	}

	prefix := strings.TrimSuffix(moduleURL, "/") + "/"
	var links []link
	for _, l := range w.collectLinks(ctx, moduleLinkMarker) {
		if strings.HasPrefix(l.URL, prefix) && l.URL != moduleURL {
			links = append(links, l)
		}
	}
	return links
}

func (w *Walker) absolutize(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	base, err := url.Parse(w.page.CurrentURL())
	if err != nil || !base.IsAbs() {
		base, err = url.Parse(w.cfg.BaseURL)
		if err != nil {
			return href
		}
	}
	return base.ResolveReference(ref).String()
}

func (w *Walker) headline(ctx context.Context) string {
	return w.textOf(ctx, "h1")
}

func (w *Walker) textOf(ctx context.Context, selector string) string {
	el, err := w.page.QueryOne(ctx, selector)
	if err != nil || el == nil {
		return ""
	}
	text, err := el.Text(ctx)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

func (w *Walker) metaContent(ctx context.Context, selector string) (string, error) {
	el, err := w.page.QueryOne(ctx, selector)
	if err != nil || el == nil {
		return "", err
	}
	return el.Attribute(ctx, "content")
}

func (w *Walker) moduleCapReached() bool {
	return w.cfg.MaxModules > 0 && w.modulesDone >= w.cfg.MaxModules
}

func isActionLabel(title string) bool {
	lower := strings.ToLower(title)
	for _, label := range actionLabels {
		if strings.HasPrefix(lower, label) {
			return true
		}
	}
	return false
}
