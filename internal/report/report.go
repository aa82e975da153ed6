// Package report assembles the article and image datasets into the final
// output document.
package report

import (
	"time"

	"VisualContentExtractor/internal/domain"
)

// DateLayout is the format of Info.Date.
const DateLayout = "2006-01-02"

// Info is the run metadata envelope.
type Info struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// Image is an image row as embedded in its article.
type Image struct {
	Article      string                        `json:"article"`
	Title        string                        `json:"title"`
	URL          domain.Opt[string]            `json:"url"`
	PageURL      domain.Opt[string]            `json:"page url"`
	ThumbnailURL domain.Opt[string]            `json:"thumbnail url"`
	FileType     domain.Opt[string]            `json:"file_type"`
	Width        domain.Opt[int]               `json:"width"`
	Height       domain.Opt[int]               `json:"height"`
	Resolution   domain.Opt[domain.Resolution] `json:"resolution"`
}

// Article is one entry of the data array.
type Article struct {
	Article     string                        `json:"article"`
	ArticleLink domain.Opt[string]            `json:"article_link"`
	Importance  domain.Opt[domain.Importance] `json:"importance"`
	Quality     domain.Opt[domain.Quality]    `json:"quality"`
	Categories  []string                      `json:"categories"`
	ImageCount  domain.Opt[int]               `json:"n_images"`
	Images      []Image                       `json:"images"`
}

// Document is the complete report.
type Document struct {
	Info Info      `json:"info"`
	Data []Article `json:"data"`
}

// NewInfo builds the metadata for a collection generated at the given time.
func NewInfo(c domain.Collection, generated time.Time) Info {
	return Info{Name: c.DisplayName(), Date: generated.Format(DateLayout)}
}

// Assemble joins every article with the images it owns, keeping dataset
// order on both sides. It never fails; empty inputs give an empty data array.
func Assemble(info Info, articles []domain.Article, images []domain.Image) Document {
	byArticle := make(map[string][]Image, len(articles))
	for _, img := range images {
		byArticle[img.Article] = append(byArticle[img.Article], toImage(img))
	}

	data := make([]Article, 0, len(articles))
	for _, a := range articles {
		embedded := byArticle[a.Title]
		if embedded == nil {
			embedded = []Image{}
		}
		data = append(data, Article{
			Article:     a.Title,
			ArticleLink: a.Link,
			Importance:  a.Importance,
			Quality:     a.Quality,
			Categories:  a.CategoryList(),
			ImageCount:  a.ImageCount,
			Images:      embedded,
		})
	}

	return Document{Info: info, Data: data}
}

func toImage(img domain.Image) Image {
	return Image{
		Article:      img.Article,
		Title:        img.Title,
		URL:          img.URL,
		PageURL:      img.PageURL,
		ThumbnailURL: img.ThumbnailURL,
		FileType:     img.FileType,
		Width:        img.Width,
		Height:       img.Height,
		Resolution:   img.Resolution,
	}
}
