package domain

import "strings"

// Article dataset columns, in checkpoint order.
const (
	ColArticle     = "article"
	ColArticleLink = "article_link"
	ColImportance  = "importance"
	ColQuality     = "quality"
	ColCategories  = "categories"
	ColImageCount  = "n_images"
)

// ArticleColumns is the fixed header of the article checkpoint.
var ArticleColumns = []string{ColArticle, ColArticleLink, ColImportance, ColQuality, ColCategories, ColImageCount}

// NoCategory marks an article that was checked and has no visible category.
const NoCategory = "no category"

// Article is one row of the article dataset, keyed by title.
type Article struct {
	Title      string
	Link       Opt[string]
	Importance Opt[Importance]
	Quality    Opt[Quality]
	// Categories holds the comma-joined category names.
	Categories Opt[string]
	ImageCount Opt[int]
}

// NewArticle returns a row with every enrichment column unset.
func NewArticle(title string) Article {
	return Article{Title: title}
}

// Key identifies the row.
func (a Article) Key() string {
	return a.Title
}

// IsUnset reports whether the named column still waits for a fetch.
func (a Article) IsUnset(column string) bool {
	switch column {
	case ColArticleLink:
		return a.Link.IsUnset()
	case ColImportance:
		return a.Importance.IsUnset()
	case ColQuality:
		return a.Quality.IsUnset()
	case ColCategories:
		return a.Categories.IsUnset()
	case ColImageCount:
		return a.ImageCount.IsUnset()
	default:
		return false
	}
}

// Fill copies fetched columns into the ones a still lacks.
func (a Article) Fill(fetched Article) Article {
	a.Link = a.Link.Fill(fetched.Link)
	a.Importance = a.Importance.Fill(fetched.Importance)
	a.Quality = a.Quality.Fill(fetched.Quality)
	a.Categories = a.Categories.Fill(fetched.Categories)
	a.ImageCount = a.ImageCount.Fill(fetched.ImageCount)
	return a
}

// CategoryList splits the stored categories back into names.
func (a Article) CategoryList() []string {
	joined, ok := a.Categories.Get()
	if !ok || joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}

// JoinCategories renders a category list the way the checkpoint stores it.
// An empty list becomes the NoCategory sentinel.
func JoinCategories(names []string) string {
	if len(names) == 0 {
		return NoCategory
	}
	return strings.Join(names, ",")
}

// Assessment is the per-article answer of the assessment lookup.
type Assessment struct {
	Title      string
	URL        string
	Quality    Quality
	Importance Importance
}

// CategorySet is the per-article answer of the category lookup.
type CategorySet struct {
	Article    string
	Categories string
}
