package domain

import (
	"path"
	"strings"
)

// Image dataset columns, in checkpoint order.
const (
	ColImageArticle = "article"
	ColTitle        = "title"
	ColURL          = "url"
	ColPageURL      = "page url"
	ColThumbnailURL = "thumbnail url"
	ColFileType     = "file_type"
	ColWidth        = "width"
	ColHeight       = "height"
	ColResolution   = "resolution"
)

// ImageColumns is the fixed header of the image checkpoint.
var ImageColumns = []string{
	ColImageArticle, ColTitle, ColURL, ColPageURL, ColThumbnailURL,
	ColFileType, ColWidth, ColHeight, ColResolution,
}

// ImageExtensions are the file types picked up from article bodies.
var ImageExtensions = []string{"svg", "png", "jpg", "jpeg", "gif"}

// Resolution is the coarse size bucket of an image.
type Resolution string

const (
	ResolutionHigh Resolution = "High-res"
	ResolutionMid  Resolution = "Mid-res"
	ResolutionLow  Resolution = "Low-res"
)

const (
	highResEdge = 1920
	midResEdge  = 720
)

var vectorTypes = map[string]struct{}{"svg": {}}

// Classify derives the resolution bucket from pixel size and file type.
func Classify(width, height int, fileType string) Resolution {
	if _, vector := vectorTypes[fileType]; vector {
		return ResolutionHigh
	}
	switch {
	case width >= highResEdge || height >= highResEdge:
		return ResolutionHigh
	case width >= midResEdge || height >= midResEdge:
		return ResolutionMid
	default:
		return ResolutionLow
	}
}

// FileTypeOf returns the lower-cased extension of a file title, with jpeg
// folded into jpg.
func FileTypeOf(title string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(title), "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

// Image is one row of the image dataset. A row belongs to the article that
// referenced it; metadata is resolved per title.
type Image struct {
	Article      string
	Title        string
	URL          Opt[string]
	PageURL      Opt[string]
	ThumbnailURL Opt[string]
	FileType     Opt[string]
	Width        Opt[int]
	Height       Opt[int]
	Resolution   Opt[Resolution]
}

// NewImage returns a freshly discovered reference with no metadata yet.
func NewImage(article, title string) Image {
	return Image{Article: article, Title: title}
}

// Key identifies the row. Page titles cannot contain "|".
func (i Image) Key() string {
	return i.Article + "|" + i.Title
}

// IsUnset reports whether the named column still waits for a fetch.
func (i Image) IsUnset(column string) bool {
	switch column {
	case ColURL:
		return i.URL.IsUnset()
	case ColPageURL:
		return i.PageURL.IsUnset()
	case ColThumbnailURL:
		return i.ThumbnailURL.IsUnset()
	case ColFileType:
		return i.FileType.IsUnset()
	case ColWidth:
		return i.Width.IsUnset()
	case ColHeight:
		return i.Height.IsUnset()
	case ColResolution:
		return i.Resolution.IsUnset()
	default:
		return false
	}
}

// Fill copies fetched metadata into the columns i still lacks.
func (i Image) Fill(fetched Image) Image {
	i.URL = i.URL.Fill(fetched.URL)
	i.PageURL = i.PageURL.Fill(fetched.PageURL)
	i.ThumbnailURL = i.ThumbnailURL.Fill(fetched.ThumbnailURL)
	i.FileType = i.FileType.Fill(fetched.FileType)
	i.Width = i.Width.Fill(fetched.Width)
	i.Height = i.Height.Fill(fetched.Height)
	i.Resolution = i.Resolution.Fill(fetched.Resolution)
	return i
}

// Resolved reports whether the row carries a usable file URL.
func (i Image) Resolved() bool {
	u, ok := i.URL.Get()
	return ok && u != ""
}

// ImageInfo is the metadata resolved for one requested file title.
type ImageInfo struct {
	Title string
	// Lookup is Title without "|option" suffixes, as sent to the service.
	Lookup       string
	URL          string
	PageURL      string
	ThumbnailURL string
	Width        int
	Height       int
	// Found is false when the lookup had no usable entry for Title.
	Found bool
}

// FileType derives the normalized file type from the looked-up title.
func (ii ImageInfo) FileType() string {
	if ii.Lookup != "" {
		return FileTypeOf(ii.Lookup)
	}
	return FileTypeOf(ii.Title)
}

// Resolution derives the size bucket.
func (ii ImageInfo) Resolution() Resolution {
	return Classify(ii.Width, ii.Height, ii.FileType())
}

// Patch turns the lookup result into the row values for the given owner.
// A failed lookup yields explicitly empty columns.
func (ii ImageInfo) Patch(article string) Image {
	img := NewImage(article, ii.Title)
	if !ii.Found {
		img.URL = Empty[string]()
		img.PageURL = Empty[string]()
		img.ThumbnailURL = Empty[string]()
		img.FileType = Empty[string]()
		img.Width = Empty[int]()
		img.Height = Empty[int]()
		img.Resolution = Empty[Resolution]()
		return img
	}
	img.URL = Text(ii.URL)
	img.PageURL = Text(ii.PageURL)
	img.ThumbnailURL = Text(ii.ThumbnailURL)
	img.FileType = Text(ii.FileType())
	img.Width = Set(ii.Width)
	img.Height = Set(ii.Height)
	img.Resolution = Set(ii.Resolution())
	return img
}
