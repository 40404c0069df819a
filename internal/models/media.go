package models

// MediaKind discriminates the media variant of a feed entry.
type MediaKind string

const (
	// MediaNone marks a post with no images yet ("no image available").
	MediaNone MediaKind = "none"
	// MediaSingle marks a post with exactly one image.
	MediaSingle MediaKind = "single"
	// MediaSequence marks a post with an ordered series of images.
	MediaSequence MediaKind = "sequence"
)

// Media is a tagged variant over {none, single image, ordered image sequence}.
// Consumers switch on Kind instead of probing nullable fields, so all three
// cases must be handled explicitly.
type Media struct {
	Kind MediaKind `json:"kind"`
	// URL is set only when Kind is MediaSingle.
	URL string `json:"url,omitempty"`
	// URLs is set only when Kind is MediaSequence, in display order.
	URLs []string `json:"urls,omitempty"`
}

// MediaFromImages derives the media variant from a post's ordered image set.
// Images must already be sorted by display order.
func MediaFromImages(images []PostImage) Media {
	switch len(images) {
	case 0:
		return Media{Kind: MediaNone}
	case 1:
		return Media{Kind: MediaSingle, URL: images[0].ImageURL}
	default:
		urls := make([]string, len(images))
		for i, img := range images {
			urls[i] = img.ImageURL
		}
		return Media{Kind: MediaSequence, URLs: urls}
	}
}
