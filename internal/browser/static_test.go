package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<html><head><meta name="description" content="Intro to storage"></head>
<body>
<main id="module-unit-content">
  <h2>Overview</h2>
  <p class="lead">Blob storage holds unstructured data at scale.</p>
  <ul><li>hot tier</li><li>cool tier</li></ul>
  <img src="../../media/arch.png" alt="architecture">
  <a class="unit-title" href="/training/modules/intro/1-introduction">Introduction</a>
  <a class="unit-title" href="/training/modules/intro/2-explore">Explore</a>
</main>
</body></html>`

func TestStaticPage_Query(t *testing.T) {
	ctx := context.Background()
	page, err := NewStaticPageFromHTML(sampleHTML)
	require.NoError(t, err)

	links, err := page.Query(ctx, "a.unit-title")
	require.NoError(t, err)
	require.Len(t, links, 2)

	text, err := links[0].Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Introduction", text)

	href, err := links[1].Attribute(ctx, "href")
	require.NoError(t, err)
	assert.Equal(t, "/training/modules/intro/2-explore", href)
}

func TestStaticPage_QueryOne_Missing(t *testing.T) {
	ctx := context.Background()
	page, err := NewStaticPageFromHTML(sampleHTML)
	require.NoError(t, err)

	el, err := page.QueryOne(ctx, "#does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, el)
}

func TestStaticPage_MissingAttribute(t *testing.T) {
	ctx := context.Background()
	page, err := NewStaticPageFromHTML(sampleHTML)
	require.NoError(t, err)

	el, err := page.QueryOne(ctx, "img")
	require.NoError(t, err)
	require.NotNil(t, el)

	title, err := el.Attribute(ctx, "title")
	require.NoError(t, err)
	assert.Equal(t, "", title)
}

func TestStaticPage_NestedQuery(t *testing.T) {
	ctx := context.Background()
	page, err := NewStaticPageFromHTML(sampleHTML)
	require.NoError(t, err)

	root, err := page.QueryOne(ctx, "#module-unit-content")
	require.NoError(t, err)
	require.NotNil(t, root)

	items, err := root.Query(ctx, "ul li")
	require.NoError(t, err)
	require.Len(t, items, 2)

	tag, err := items[0].TagName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "li", tag)
}

func TestStaticPage_ClickNotInteractive(t *testing.T) {
	ctx := context.Background()
	page, err := NewStaticPageFromHTML(sampleHTML)
	require.NoError(t, err)

	el, err := page.QueryOne(ctx, "a.unit-title")
	require.NoError(t, err)
	require.NotNil(t, el)

	assert.ErrorIs(t, el.Click(ctx), ErrNotInteractive)
}

func TestJSString_EscapesSelectors(t *testing.T) {
	assert.Equal(t, `"a.unit-title"`, jsString("a.unit-title"))
	assert.Equal(t, `"button[data-bi-name='submit']"`, jsString("button[data-bi-name='submit']"))
	assert.NotContains(t, jsString("</script>"), "</script>")
}
