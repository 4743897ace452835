package course

// BlockKind discriminates the ContentBlock variants.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockList      BlockKind = "list"
	BlockTable     BlockKind = "table"
	BlockCode      BlockKind = "code"
	BlockImage     BlockKind = "image"
	BlockVideo     BlockKind = "video"
)

// VideoProvider classifies where an embedded video is hosted.
type VideoProvider string

const (
	ProviderHostedStream VideoProvider = "hosted-stream"
	ProviderDirectFile   VideoProvider = "direct-file"
	ProviderUnknownEmbed VideoProvider = "unknown-embed"
)

// ImageRef is a resolved, absolute image reference.
type ImageRef struct {
	URL   string `json:"url"`
	Alt   string `json:"alt,omitempty"`
	Title string `json:"title,omitempty"`
}

// VideoRef is an addressable video reference. Nothing is downloaded;
// WatchURL falls back to EmbedURL when no provider ID is recoverable.
type VideoRef struct {
	Provider VideoProvider `json:"provider"`
	EmbedURL string        `json:"embed_url"`
	WatchURL string        `json:"watch_url,omitempty"`
	VideoID  string        `json:"video_id,omitempty"`
}

// ContentBlock is one semantically typed unit of extracted page
// content. Kind selects the variant; only that variant's fields are
// populated. Blocks appear in document order and the order is part of
// the data's meaning.
type ContentBlock struct {
	Kind BlockKind `json:"kind"`

	// heading
	Level int `json:"level,omitempty"`

	// heading, paragraph
	Text string `json:"text,omitempty"`

	// list
	Ordered bool     `json:"ordered,omitempty"`
	Items   []string `json:"items,omitempty"`

	// table; first row is the header
	Rows [][]string `json:"rows,omitempty"`

	// code
	Language string `json:"language,omitempty"`
	Code     string `json:"code,omitempty"`

	// image / video
	Image *ImageRef `json:"image,omitempty"`
	Video *VideoRef `json:"video,omitempty"`
}

// Heading builds a heading block, clamping level into 1..6.
func Heading(level int, text string) ContentBlock {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return ContentBlock{Kind: BlockHeading, Level: level, Text: text}
}

// Paragraph builds a paragraph block.
func Paragraph(text string) ContentBlock {
	return ContentBlock{Kind: BlockParagraph, Text: text}
}

// List builds a list block.
func List(ordered bool, items []string) ContentBlock {
	return ContentBlock{Kind: BlockList, Ordered: ordered, Items: items}
}

// Table builds a table block.
func Table(rows [][]string) ContentBlock {
	return ContentBlock{Kind: BlockTable, Rows: rows}
}

// Code builds a code block; an empty language becomes "unknown".
func Code(language, code string) ContentBlock {
	if language == "" {
		language = "unknown"
	}
	return ContentBlock{Kind: BlockCode, Language: language, Code: code}
}

// Image builds an image block.
func Image(ref ImageRef) ContentBlock {
	return ContentBlock{Kind: BlockImage, Image: &ref}
}

// Video builds a video block.
func Video(ref VideoRef) ContentBlock {
	return ContentBlock{Kind: BlockVideo, Video: &ref}
}
