package extract

import (
	"regexp"
	"strings"

	"github.com/coursehound/coursehound/pkg/course"
)

// hostedProviders are embed hosts that stream through a player rather
// than exposing a file URL.
var hostedProviders = []string{
	"youtube.com",
	"youtu.be",
	"learn-video.azurefd.net",
	"microsoftstream.com",
	"microsoft.com/videoplayer",
}

var directVideoRe = regexp.MustCompile(`https?://[^\s"'<>]+\.(?:mp4|webm|m4v)`)

// MediaResolver canonicalizes media references against a site base URL.
type MediaResolver struct {
	Base string
}

// ResolveImage turns a page-relative image src into an absolute
// reference. The `../../` escape used by unit pages resolves to the
// `/training/` root; anything else that is not already absolute gets
// the base prefix. Absolute URLs pass through, so resolving twice is
// a no-op.
func (r *MediaResolver) ResolveImage(src, alt, title string) course.ImageRef {
	if strings.HasPrefix(src, "../../") {
		src = "/training/" + strings.TrimPrefix(src, "../../")
	}
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"), strings.HasPrefix(src, "data:"):
	case strings.HasPrefix(src, "/"):
		src = strings.TrimSuffix(r.Base, "/") + src
	default:
		src = strings.TrimSuffix(r.Base, "/") + "/" + src
	}
	return course.ImageRef{URL: src, Alt: alt, Title: title}
}

// ClassifyEmbed maps an iframe src to a video reference. Known hosted
// providers get a provider ID and a canonical watch URL; anything else
// is kept as an opaque embed.
func ClassifyEmbed(url string) course.VideoRef {
	lower := strings.ToLower(url)
	for _, host := range hostedProviders {
		if !strings.Contains(lower, host) {
			continue
		}
		ref := course.VideoRef{
			Provider: course.ProviderHostedStream,
			EmbedURL: url,
			WatchURL: url,
			VideoID:  extractVideoID(url),
		}
		if ref.VideoID != "" && (strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be")) {
			ref.WatchURL = "https://www.youtube.com/watch?v=" + ref.VideoID
		}
		return ref
	}
	return course.VideoRef{
		Provider: course.ProviderUnknownEmbed,
		EmbedURL: url,
		WatchURL: url,
	}
}

// extractVideoID pulls a provider video ID from an embed URL, either
// the path segment after "embed/" or the "v=" query parameter.
func extractVideoID(url string) string {
	if i := strings.Index(url, "embed/"); i >= 0 {
		id := url[i+len("embed/"):]
		return trimIDAt(id, "?", "&", "/", "#")
	}
	if i := strings.Index(url, "v="); i >= 0 {
		id := url[i+len("v="):]
		return trimIDAt(id, "&", "#")
	}
	return ""
}

func trimIDAt(id string, delims ...string) string {
	for _, d := range delims {
		if i := strings.Index(id, d); i >= 0 {
			id = id[:i]
		}
	}
	return id
}

// ScanDirectVideoURLs finds direct video-file URLs anywhere in the
// markup, skipping ones already seen. Player scripts sometimes carry
// the file URL outside any media element, so a source scan catches
// what the DOM walk misses.
func ScanDirectVideoURLs(html string, seen map[string]bool) []course.VideoRef {
	var refs []course.VideoRef
	for _, url := range directVideoRe.FindAllString(html, -1) {
		if seen[url] {
			continue
		}
		seen[url] = true
		refs = append(refs, course.VideoRef{
			Provider: course.ProviderDirectFile,
			EmbedURL: url,
			WatchURL: url,
		})
	}
	return refs
}
