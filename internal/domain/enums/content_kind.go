package enums

import "strings"

type ContentKind string

const (
	ContentKindImage ContentKind = "image"
	ContentKindVideo ContentKind = "video"
	ContentKindText  ContentKind = "text"
	ContentKindURL   ContentKind = "url"
	ContentKindMedia ContentKind = "media"
)

func ParseContentKind(raw string) (ContentKind, bool) {
	switch ContentKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ContentKindImage:
		return ContentKindImage, true
	case ContentKindVideo:
		return ContentKindVideo, true
	case ContentKindText:
		return ContentKindText, true
	case ContentKindURL:
		return ContentKindURL, true
	case ContentKindMedia:
		return ContentKindMedia, true
	default:
		return "", false
	}
}

// IsVisual reports whether the kind is moderated by its media URL rather
// than by raw text.
func (k ContentKind) IsVisual() bool {
	return k == ContentKindImage || k == ContentKindVideo || k == ContentKindMedia
}
