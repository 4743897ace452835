package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehound/coursehound/internal/browser"
	"github.com/coursehound/coursehound/pkg/course"
)

const unitHTML = `<html><body>
<nav><p>Short nav text</p></nav>
<div id="module-unit-content">
  <h2>Explore storage tiers</h2>
  <p>Blob storage offers hot, cool and archive access tiers.</p>
  <p>Too short.</p>
  <blockquote>Archive storage trades access latency for lower cost.</blockquote>
  <ul><li>hot</li><li>cool</li><li>archive</li></ul>
  <ol><li>Create the account</li><li>Upload a blob</li></ol>
  <pre><code class="language-go">fmt.Println("tiers")</code></pre>
  <pre><code>x</code></pre>
  <table>
    <tr><th>Tier</th><th>Latency</th></tr>
    <tr><td>hot</td><td>ms</td></tr>
  </table>
  <img src="../../media/tiers.png" alt="tier diagram">
  <iframe src="https://www.youtube.com/embed/abc123?rel=0"></iframe>
  <video><source src="https://cdn.example.com/clip.mp4"></video>
</div>
</body></html>`

func newTestPage(t *testing.T, html string) browser.Page {
	t.Helper()
	page, err := browser.NewStaticPageFromHTML(html)
	require.NoError(t, err)
	return page
}

func TestExtractPage(t *testing.T) {
	ctx := context.Background()
	x := NewExtractor("https://learn.example.com")
	blocks, err := x.ExtractPage(ctx, newTestPage(t, unitHTML))
	require.NoError(t, err)

	kinds := make([]course.BlockKind, len(blocks))
	for i, b := range blocks {
		kinds[i] = b.Kind
	}
	assert.Equal(t, []course.BlockKind{
		course.BlockHeading,
		course.BlockParagraph,
		course.BlockParagraph,
		course.BlockList,
		course.BlockList,
		course.BlockCode,
		course.BlockTable,
		course.BlockImage,
		course.BlockVideo,
		course.BlockVideo,
	}, kinds)

	assert.Equal(t, 2, blocks[0].Level)
	assert.Equal(t, "Explore storage tiers", blocks[0].Text)

	// Blockquotes are plain paragraphs.
	assert.Equal(t, "Archive storage trades access latency for lower cost.", blocks[2].Text)

	assert.False(t, blocks[3].Ordered)
	assert.Equal(t, []string{"hot", "cool", "archive"}, blocks[3].Items)
	assert.True(t, blocks[4].Ordered)

	assert.Equal(t, "go", blocks[5].Language)

	require.Len(t, blocks[6].Rows, 2)
	assert.Equal(t, []string{"Tier", "Latency"}, blocks[6].Rows[0])

	assert.Equal(t, "https://learn.example.com/training/media/tiers.png", blocks[7].Image.URL)
	assert.Equal(t, "tier diagram", blocks[7].Image.Alt)

	assert.Equal(t, course.ProviderHostedStream, blocks[8].Video.Provider)
	assert.Equal(t, "abc123", blocks[8].Video.VideoID)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", blocks[8].Video.WatchURL)

	assert.Equal(t, course.ProviderDirectFile, blocks[9].Video.Provider)
	assert.Equal(t, "https://cdn.example.com/clip.mp4", blocks[9].Video.EmbedURL)
}

func TestExtractPage_NoContentRoot(t *testing.T) {
	ctx := context.Background()
	x := NewExtractor("https://learn.example.com")
	blocks, err := x.ExtractPage(ctx, newTestPage(t, `<html><body><div class="chrome"></div></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestExtractPage_RootFallbackChain(t *testing.T) {
	ctx := context.Background()
	x := NewExtractor("https://learn.example.com")
	blocks, err := x.ExtractPage(ctx, newTestPage(t,
		`<html><body><article><p>Fallback root paragraph long enough.</p></article></body></html>`))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, course.BlockParagraph, blocks[0].Kind)
}

func TestExtractPage_Deterministic(t *testing.T) {
	ctx := context.Background()
	x := NewExtractor("https://learn.example.com")
	first, err := x.ExtractPage(ctx, newTestPage(t, unitHTML))
	require.NoError(t, err)
	second, err := x.ExtractPage(ctx, newTestPage(t, unitHTML))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractPage_ThresholdBoundaryInclusive(t *testing.T) {
	ctx := context.Background()
	x := NewExtractor("https://learn.example.com")

	para := strings.Repeat("a", MinParagraphChars)
	code := strings.Repeat("b", MinCodeChars)
	html := `<html><body><main><p>` + para + `</p><pre>` + code + `</pre></main></body></html>`

	blocks, err := x.ExtractPage(ctx, newTestPage(t, html))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, para, blocks[0].Text)
	assert.Equal(t, code, blocks[1].Code)
}

func TestExtractPage_DirectVideoScan(t *testing.T) {
	ctx := context.Background()
	x := NewExtractor("https://learn.example.com")
	html := `<html><body><main>
<p>A paragraph that is comfortably long enough to keep.</p>
<script>var player = {src: "https://media.example.com/lesson.mp4"};</script>
</main></body></html>`

	blocks, err := x.ExtractPage(ctx, newTestPage(t, html))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, course.BlockVideo, blocks[1].Kind)
	assert.Equal(t, "https://media.example.com/lesson.mp4", blocks[1].Video.EmbedURL)
}

func TestResolveImage_Idempotent(t *testing.T) {
	r := &MediaResolver{Base: "https://learn.example.com"}

	ref := r.ResolveImage("../../media/a.png", "alt", "")
	assert.Equal(t, "https://learn.example.com/training/media/a.png", ref.URL)

	again := r.ResolveImage(ref.URL, ref.Alt, ref.Title)
	assert.Equal(t, ref, again)
}

func TestResolveImage_RootRelative(t *testing.T) {
	r := &MediaResolver{Base: "https://learn.example.com/"}
	ref := r.ResolveImage("/training/media/b.png", "", "")
	assert.Equal(t, "https://learn.example.com/training/media/b.png", ref.URL)
}

func TestResolveImage_BareRelative(t *testing.T) {
	r := &MediaResolver{Base: "https://learn.example.com"}
	ref := r.ResolveImage("media/c.png", "", "")
	assert.Equal(t, "https://learn.example.com/media/c.png", ref.URL)

	again := r.ResolveImage(ref.URL, "", "")
	assert.Equal(t, ref.URL, again.URL)
}

func TestResolveImage_DataURIUntouched(t *testing.T) {
	r := &MediaResolver{Base: "https://learn.example.com"}
	ref := r.ResolveImage("data:image/png;base64,iVBORw0KGgo=", "", "")
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", ref.URL)
}

func TestExtractPage_SkipsDataURIImages(t *testing.T) {
	ctx := context.Background()
	x := NewExtractor("https://learn.example.com")
	html := `<html><body><main>
<img src="data:image/gif;base64,R0lGODlhAQ==" alt="tracking pixel">
<img src="media/kept.png" alt="kept">
</main></body></html>`

	blocks, err := x.ExtractPage(ctx, newTestPage(t, html))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "https://learn.example.com/media/kept.png", blocks[0].Image.URL)
}

func TestClassifyEmbed(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		provider course.VideoProvider
		videoID  string
		watchURL string
	}{
		{
			name:     "youtube embed path",
			url:      "https://www.youtube.com/embed/dQw4?start=10",
			provider: course.ProviderHostedStream,
			videoID:  "dQw4",
			watchURL: "https://www.youtube.com/watch?v=dQw4",
		},
		{
			name:     "youtube watch query",
			url:      "https://www.youtube.com/watch?v=xyz&t=5",
			provider: course.ProviderHostedStream,
			videoID:  "xyz",
			watchURL: "https://www.youtube.com/watch?v=xyz",
		},
		{
			name:     "hosted learn stream",
			url:      "https://learn-video.azurefd.net/vod/player?id=42",
			provider: course.ProviderHostedStream,
			watchURL: "https://learn-video.azurefd.net/vod/player?id=42",
		},
		{
			name:     "unknown embed",
			url:      "https://player.example.com/widget/9",
			provider: course.ProviderUnknownEmbed,
			watchURL: "https://player.example.com/widget/9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := ClassifyEmbed(tt.url)
			assert.Equal(t, tt.provider, ref.Provider)
			assert.Equal(t, tt.url, ref.EmbedURL)
			assert.Equal(t, tt.watchURL, ref.WatchURL)
			if tt.videoID != "" {
				assert.Equal(t, tt.videoID, ref.VideoID)
			}
		})
	}
}

func TestScanDirectVideoURLs_Dedup(t *testing.T) {
	html := `src="https://a.example.com/x.mp4" data="https://a.example.com/x.mp4" more="https://a.example.com/y.webm"`
	seen := map[string]bool{}
	refs := ScanDirectVideoURLs(html, seen)
	require.Len(t, refs, 2)
	assert.Equal(t, "https://a.example.com/x.mp4", refs[0].EmbedURL)
	assert.Equal(t, "https://a.example.com/y.webm", refs[1].EmbedURL)

	assert.Empty(t, ScanDirectVideoURLs(html, seen))
}

func TestClassifyUnit(t *testing.T) {
	tests := []struct {
		title string
		url   string
		want  course.UnitKind
	}{
		{"Introduction", "/training/modules/m/1-introduction", course.UnitIntroduction},
		{"Exercise - Create a storage account", "/training/modules/m/3-exercise-create", course.UnitExercise},
		{"Set up your lab environment", "/training/modules/m/2-lab", course.UnitExercise},
		{"Knowledge check", "/training/modules/m/5-knowledge-check", course.UnitQuiz},
		{"Module assessment", "/training/modules/m/6-check", course.UnitQuiz},
		{"Summary", "/training/modules/m/7-summary", course.UnitSummary},
		{"Explore access tiers", "/training/modules/m/4-explore", course.UnitContent},
		{"Quick quiz on tiers", "/training/modules/m/8-summary-quiz", course.UnitQuiz},
		{"", "/training/modules/m/9-knowledge-check", course.UnitQuiz},
	}

	for _, tt := range tests {
		t.Run(tt.title+tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUnit(tt.title, tt.url))
		})
	}
}

func TestExtractExercise(t *testing.T) {
	ctx := context.Background()
	x := NewExtractor("https://learn.example.com")

	html := `<html><body><div id="module-unit-content">
<ul class="prerequisites"><li>An active subscription</li><li>The CLI installed</li></ul>
<ol>
  <li>Open the portal and sign in with your account.</li>
  <li>Create a resource group for the exercise resources.
    <pre>az group create --name rg1</pre></li>
  <li>Deploy the storage account into the new group.</li>
  <li>Verify the deployment succeeded in the portal.</li>
  <li>n/a</li>
</ol>
</div></body></html>`

	detail, err := x.ExtractExercise(ctx, newTestPage(t, html))
	require.NoError(t, err)

	require.Len(t, detail.Steps, 4)
	assert.Equal(t, "Open the portal and sign in with your account.", detail.Steps[0].Instruction)
	require.Len(t, detail.Steps[1].CodeSnippets, 1)
	assert.Equal(t, "az group create --name rg1", detail.Steps[1].CodeSnippets[0])

	assert.Equal(t, []string{"An active subscription", "The CLI installed"}, detail.Requirements)
	require.Len(t, detail.Verification, 1)
	assert.Contains(t, detail.Verification[0], "Verify the deployment")
}

func TestExtractExercise_NoSteps(t *testing.T) {
	ctx := context.Background()
	x := NewExtractor("https://learn.example.com")
	detail, err := x.ExtractExercise(ctx, newTestPage(t, `<html><body><main><p>No steps here, just prose content.</p></main></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, detail.Steps)
	assert.Empty(t, detail.Requirements)
}
