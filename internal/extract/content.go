// Package extract turns a rendered unit page into typed content
// blocks, classifies units, and resolves media references.
package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/coursehound/coursehound/internal/browser"
	"github.com/coursehound/coursehound/pkg/course"
	"github.com/coursehound/coursehound/pkg/logging"
)

// Retention thresholds, boundary inclusive. Shorter fragments are
// navigation chrome and button labels, not content.
const (
	MinParagraphChars = 20
	MinCodeChars      = 10
)

// contentRootSelectors is the fallback chain for locating the unit's
// content container, most specific first.
var contentRootSelectors = []string{
	"#module-unit-content",
	"article",
	"main",
	`[role="main"]`,
	".content",
}

const blockElementSelector = "h1, h2, h3, h4, h5, h6, p, blockquote, ul, ol, pre, table, img, video, iframe"

// Extractor walks a unit page's content container and emits blocks in
// document order.
type Extractor struct {
	Media  *MediaResolver
	logger zerolog.Logger
}

func NewExtractor(baseURL string) *Extractor {
	return &Extractor{
		Media:  &MediaResolver{Base: baseURL},
		logger: logging.GetLogger("extract"),
	}
}

// ExtractPage maps the current page to a block sequence. A page with
// no recognizable content root yields an empty sequence and no error.
// Faults on individual elements are logged and skipped.
func (x *Extractor) ExtractPage(ctx context.Context, page browser.Page) ([]course.ContentBlock, error) {
	root, err := x.findRoot(ctx, page)
	if err != nil {
		return nil, err
	}
	if root == nil {
		x.logger.Debug().Str("url", page.CurrentURL()).Msg("no content root found")
		return nil, nil
	}

	els, err := root.Query(ctx, blockElementSelector)
	if err != nil {
		return nil, err
	}

	var blocks []course.ContentBlock
	seenVideos := make(map[string]bool)
	for i, el := range els {
		block, ok, err := x.extractElement(ctx, el)
		if err != nil {
			x.logger.Debug().Err(err).Int("index", i).Msg("skipping unreadable element")
			continue
		}
		if !ok {
			continue
		}
		if block.Kind == course.BlockVideo {
			seenVideos[block.Video.EmbedURL] = true
		}
		blocks = append(blocks, block)
	}

	// Direct file URLs sometimes live in player scripts rather than
	// media elements; a source scan catches those.
	if html, err := page.Content(ctx); err == nil {
		for _, ref := range ScanDirectVideoURLs(html, seenVideos) {
			blocks = append(blocks, course.Video(ref))
		}
	} else {
		x.logger.Debug().Err(err).Msg("content scan unavailable")
	}

	return blocks, nil
}

func (x *Extractor) findRoot(ctx context.Context, page browser.Page) (browser.Element, error) {
	for _, sel := range contentRootSelectors {
		el, err := page.QueryOne(ctx, sel)
		if err != nil {
			return nil, err
		}
		if el != nil {
			return el, nil
		}
	}
	return nil, nil
}

func (x *Extractor) extractElement(ctx context.Context, el browser.Element) (course.ContentBlock, bool, error) {
	var zero course.ContentBlock
	tag, err := el.TagName(ctx)
	if err != nil {
		return zero, false, err
	}

	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text, err := el.Text(ctx)
		if err != nil {
			return zero, false, err
		}
		text = collapseSpace(text)
		if text == "" {
			return zero, false, nil
		}
		return course.Heading(int(tag[1]-'0'), text), true, nil

	case "p", "blockquote":
		text, err := el.Text(ctx)
		if err != nil {
			return zero, false, err
		}
		text = collapseSpace(text)
		if utf8.RuneCountInString(text) < MinParagraphChars {
			return zero, false, nil
		}
		return course.Paragraph(text), true, nil

	case "ul", "ol":
		items, err := x.listItems(ctx, el)
		if err != nil {
			return zero, false, err
		}
		if len(items) == 0 {
			return zero, false, nil
		}
		return course.List(tag == "ol", items), true, nil

	case "pre":
		return x.codeBlock(ctx, el)

	case "table":
		rows, err := x.tableRows(ctx, el)
		if err != nil {
			return zero, false, err
		}
		if len(rows) == 0 {
			return zero, false, nil
		}
		return course.Table(rows), true, nil

	case "img":
		src, err := el.Attribute(ctx, "src")
		if err != nil {
			return zero, false, err
		}
		// Inline data URIs are embedded pixels, not references.
		if src == "" || strings.HasPrefix(src, "data:") {
			return zero, false, nil
		}
		alt, _ := el.Attribute(ctx, "alt")
		title, _ := el.Attribute(ctx, "title")
		return course.Image(x.Media.ResolveImage(src, alt, title)), true, nil

	case "video":
		src, err := x.videoSource(ctx, el)
		if err != nil || src == "" {
			return zero, false, err
		}
		return course.Video(course.VideoRef{
			Provider: course.ProviderDirectFile,
			EmbedURL: src,
			WatchURL: src,
		}), true, nil

	case "iframe":
		src, err := el.Attribute(ctx, "src")
		if err != nil {
			return zero, false, err
		}
		if src == "" {
			return zero, false, nil
		}
		return course.Video(ClassifyEmbed(src)), true, nil
	}

	return zero, false, nil
}

func (x *Extractor) listItems(ctx context.Context, el browser.Element) ([]string, error) {
	lis, err := el.Query(ctx, "li")
	if err != nil {
		return nil, err
	}
	var items []string
	for _, li := range lis {
		text, err := li.Text(ctx)
		if err != nil {
			continue
		}
		if text = collapseSpace(text); text != "" {
			items = append(items, text)
		}
	}
	return items, nil
}

func (x *Extractor) codeBlock(ctx context.Context, el browser.Element) (course.ContentBlock, bool, error) {
	var zero course.ContentBlock
	text, err := el.Text(ctx)
	if err != nil {
		return zero, false, err
	}
	text = strings.Trim(text, "\n")
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinCodeChars {
		return zero, false, nil
	}

	lang := ""
	if inner, err := el.QueryOne(ctx, "code"); err == nil && inner != nil {
		class, _ := inner.Attribute(ctx, "class")
		lang = languageFromClass(class)
	}
	if lang == "" {
		class, _ := el.Attribute(ctx, "class")
		lang = languageFromClass(class)
	}
	return course.Code(lang, text), true, nil
}

func (x *Extractor) tableRows(ctx context.Context, el browser.Element) ([][]string, error) {
	trs, err := el.Query(ctx, "tr")
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, tr := range trs {
		cells, err := tr.Query(ctx, "th, td")
		if err != nil {
			continue
		}
		var row []string
		for _, cell := range cells {
			text, err := cell.Text(ctx)
			if err != nil {
				text = ""
			}
			row = append(row, collapseSpace(text))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (x *Extractor) videoSource(ctx context.Context, el browser.Element) (string, error) {
	src, err := el.Attribute(ctx, "src")
	if err != nil {
		return "", err
	}
	if src != "" {
		return src, nil
	}
	source, err := el.QueryOne(ctx, "source")
	if err != nil || source == nil {
		return "", err
	}
	return source.Attribute(ctx, "src")
}

// languageFromClass reads a "language-go" or "lang-go" class token.
func languageFromClass(class string) string {
	for _, token := range strings.Fields(class) {
		if lang := strings.TrimPrefix(token, "language-"); lang != token {
			return lang
		}
		if lang := strings.TrimPrefix(token, "lang-"); lang != token {
			return lang
		}
	}
	return ""
}

// collapseSpace trims and folds internal whitespace runs to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
