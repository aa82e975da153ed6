package dataset

import (
	"fmt"

	"VisualContentExtractor/internal/domain"
)

// Codec maps rows to and from checkpoint cells.
type Codec[R any] interface {
	Columns() []string
	Encode(row R) []string
	// Decode builds a row from cells keyed by column name. Absent columns
	// decode as unset.
	Decode(cells map[string]string) (R, bool, error)
}

// ArticleCodec encodes the article dataset.
type ArticleCodec struct{}

var _ Codec[domain.Article] = ArticleCodec{}

// Columns implements Codec.
func (ArticleCodec) Columns() []string { return domain.ArticleColumns }

// Encode implements Codec.
func (ArticleCodec) Encode(a domain.Article) []string {
	return []string{
		a.Title,
		encodeText(a.Link),
		encodeWith(a.Importance, func(v domain.Importance) string { return string(v) }),
		encodeWith(a.Quality, func(v domain.Quality) string { return string(v) }),
		encodeText(a.Categories),
		encodeInt(a.ImageCount),
	}
}

// Decode implements Codec. Rows without a title are skipped.
func (ArticleCodec) Decode(cells map[string]string) (domain.Article, bool, error) {
	title := cells[domain.ColArticle]
	if title == "" {
		return domain.Article{}, false, nil
	}
	count, err := decodeInt(cells[domain.ColImageCount])
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("%s: %w", domain.ColImageCount, err)
	}
	return domain.Article{
		Title:      title,
		Link:       decodeText(cells[domain.ColArticleLink]),
		Importance: decodeAs[domain.Importance](cells[domain.ColImportance]),
		Quality:    decodeAs[domain.Quality](cells[domain.ColQuality]),
		Categories: decodeText(cells[domain.ColCategories]),
		ImageCount: count,
	}, true, nil
}

// ImageCodec encodes the image dataset.
type ImageCodec struct{}

var _ Codec[domain.Image] = ImageCodec{}

// Columns implements Codec.
func (ImageCodec) Columns() []string { return domain.ImageColumns }

// Encode implements Codec.
func (ImageCodec) Encode(i domain.Image) []string {
	return []string{
		i.Article,
		i.Title,
		encodeText(i.URL),
		encodeText(i.PageURL),
		encodeText(i.ThumbnailURL),
		encodeText(i.FileType),
		encodeInt(i.Width),
		encodeInt(i.Height),
		encodeWith(i.Resolution, func(v domain.Resolution) string { return string(v) }),
	}
}

// Decode implements Codec. Rows without an owner or title are skipped.
func (ImageCodec) Decode(cells map[string]string) (domain.Image, bool, error) {
	article, title := cells[domain.ColImageArticle], cells[domain.ColTitle]
	if article == "" || title == "" {
		return domain.Image{}, false, nil
	}
	width, err := decodeInt(cells[domain.ColWidth])
	if err != nil {
		return domain.Image{}, false, fmt.Errorf("%s: %w", domain.ColWidth, err)
	}
	height, err := decodeInt(cells[domain.ColHeight])
	if err != nil {
		return domain.Image{}, false, fmt.Errorf("%s: %w", domain.ColHeight, err)
	}
	return domain.Image{
		Article:      article,
		Title:        title,
		URL:          decodeText(cells[domain.ColURL]),
		PageURL:      decodeText(cells[domain.ColPageURL]),
		ThumbnailURL: decodeText(cells[domain.ColThumbnailURL]),
		FileType:     decodeText(cells[domain.ColFileType]),
		Width:        width,
		Height:       height,
		Resolution:   decodeAs[domain.Resolution](cells[domain.ColResolution]),
	}, true, nil
}
