package wikimedia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"VisualContentExtractor/internal/batch"
	"VisualContentExtractor/internal/domain"
)

const (
	categoryPrefix = "Category:"
	thumbWidth     = 500
	// wp1Group is the assessment group preferred over project-specific ones.
	wp1Group = "Wikipedia 1.0"
)

type titleChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// titleMap carries the rewrites the API applied to requested titles.
type titleMap struct {
	Normalized []titleChange `json:"normalized"`
	Redirects  []titleChange `json:"redirects"`
}

// resolve follows the normalization and redirect of one requested title.
func (m titleMap) resolve(requested string) string {
	title := requested
	for _, n := range m.Normalized {
		if n.From == title {
			title = n.To
			break
		}
	}
	for _, r := range m.Redirects {
		if r.From == title {
			title = r.To
			break
		}
	}
	return title
}

func (m *titleMap) absorb(other titleMap) {
	m.Normalized = append(m.Normalized, other.Normalized...)
	m.Redirects = append(m.Redirects, other.Redirects...)
}

type categoryPage struct {
	Title      string `json:"title"`
	Missing    bool   `json:"missing"`
	Categories []struct {
		Title string `json:"title"`
	} `json:"categories"`
}

type categoryQuery struct {
	titleMap
	Pages []categoryPage `json:"pages"`
}

// Categories returns one record per requested title with its visible
// categories joined by commas, or the "no category" sentinel.
func (c *Client) Categories(ctx context.Context, titles []string) ([]domain.CategorySet, error) {
	out := make([]domain.CategorySet, 0, len(titles))
	err := batch.Each(ctx, titles, c.batchSize, func(ctx context.Context, chunk []string) error {
		sets, err := c.categoryBatch(ctx, chunk)
		if err != nil {
			return err
		}
		out = append(out, sets...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return out, nil
}

func (c *Client) categoryBatch(ctx context.Context, titles []string) ([]domain.CategorySet, error) {
	var (
		names    = make(map[string][]string, len(titles))
		rewrites titleMap
		cont     map[string]string
	)

	for {
		params := url.Values{}
		params.Set("prop", "categories")
		params.Set("clshow", "!hidden")
		params.Set("cllimit", "max")
		params.Set("redirects", "1")
		params.Set("titles", strings.Join(titles, "|"))
		for k, v := range cont {
			params.Set(k, v)
		}

		var q categoryQuery
		next, err := c.query(ctx, params, &q)
		if err != nil {
			return nil, err
		}
		rewrites.absorb(q.titleMap)
		for _, page := range q.Pages {
			if page.Missing {
				continue
			}
			for _, cat := range page.Categories {
				names[page.Title] = append(names[page.Title], strings.TrimPrefix(cat.Title, categoryPrefix))
			}
		}

		if len(next) == 0 {
			break
		}
		cont = next
	}

	sets := make([]domain.CategorySet, 0, len(titles))
	for _, title := range titles {
		sets = append(sets, domain.CategorySet{
			Article:    title,
			Categories: domain.JoinCategories(names[rewrites.resolve(title)]),
		})
	}
	return sets, nil
}

type imagePage struct {
	Title     string `json:"title"`
	ImageInfo []struct {
		URL            string `json:"url"`
		DescriptionURL string `json:"descriptionurl"`
		ThumbURL       string `json:"thumburl"`
		Width          int    `json:"width"`
		Height         int    `json:"height"`
	} `json:"imageinfo"`
}

type imageQuery struct {
	titleMap
	Pages []imagePage `json:"pages"`
}

// ImageInfo resolves file metadata. Every requested title yields exactly one
// record; titles the API has no usable entry for come back with Found unset.
func (c *Client) ImageInfo(ctx context.Context, titles []string) ([]domain.ImageInfo, error) {
	out := make([]domain.ImageInfo, 0, len(titles))
	err := batch.Each(ctx, titles, c.batchSize, func(ctx context.Context, chunk []string) error {
		infos, err := c.imageBatch(ctx, chunk)
		if err != nil {
			return err
		}
		out = append(out, infos...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch image info: %w", err)
	}
	return out, nil
}

func (c *Client) imageBatch(ctx context.Context, titles []string) ([]domain.ImageInfo, error) {
	lookup := make([]string, len(titles))
	for i, t := range titles {
		lookup[i] = stripOptions(t)
	}

	params := url.Values{}
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|thumbmime|size")
	params.Set("iiurlwidth", strconv.Itoa(thumbWidth))
	params.Set("titles", strings.Join(lookup, "|"))

	var q imageQuery
	if _, err := c.query(ctx, params, &q); err != nil {
		return nil, err
	}

	pages := make(map[string]imagePage, len(q.Pages))
	for _, p := range q.Pages {
		pages[p.Title] = p
	}

	infos := make([]domain.ImageInfo, 0, len(titles))
	for i, requested := range titles {
		info := domain.ImageInfo{Title: requested, Lookup: lookup[i]}
		page, ok := pages[q.resolve(lookup[i])]
		if ok && len(page.ImageInfo) > 0 && page.ImageInfo[0].URL != "" {
			ii := page.ImageInfo[0]
			info.URL = ii.URL
			info.PageURL = ii.DescriptionURL
			info.ThumbnailURL = ii.ThumbURL
			info.Width = ii.Width
			info.Height = ii.Height
			info.Found = true
		} else {
			c.logger.Warn("no image info", "title", requested)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// stripOptions drops "|thumb|caption" style suffixes from a file reference.
func stripOptions(title string) string {
	if i := strings.IndexByte(title, '|'); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

type assessmentPage struct {
	Title           string          `json:"title"`
	FullURL         string          `json:"fullurl"`
	PageAssessments json.RawMessage `json:"pageassessments"`
}

type assessmentQuery struct {
	Pages []assessmentPage `json:"pages"`
}

type assessmentGroup struct {
	Class      string `json:"class"`
	Importance string `json:"importance"`
}

// Assessment returns the canonical URL and one assessment of the article,
// preferring the Wikipedia 1.0 group over project groups.
func (c *Client) Assessment(ctx context.Context, article string) (domain.Assessment, error) {
	params := url.Values{}
	params.Set("prop", "pageassessments|info")
	params.Set("inprop", "url")
	params.Set("titles", article)

	var q assessmentQuery
	if _, err := c.query(ctx, params, &q); err != nil {
		return domain.Assessment{}, fmt.Errorf("fetch assessment: %w", err)
	}

	result := domain.Assessment{
		Title:      article,
		Quality:    domain.QualityUnassessed,
		Importance: domain.ImportanceUnassessed,
	}
	if len(q.Pages) == 0 {
		return result, nil
	}

	page := q.Pages[0]
	result.URL = page.FullURL

	group, ok, err := pickAssessment(page.PageAssessments)
	if err != nil {
		c.logger.Warn("malformed assessments", "article", article, "err", err)
		return result, nil
	}
	if ok {
		result.Quality = domain.QualityOrUnassessed(group.Class)
		result.Importance = domain.ParseImportance(group.Importance)
	}
	return result, nil
}

// pickAssessment selects the preferred group, falling back to the first one
// in response order.
func pickAssessment(raw json.RawMessage) (assessmentGroup, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("[]")) {
		return assessmentGroup{}, false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return assessmentGroup{}, false, fmt.Errorf("expected object, got %v", tok)
	}

	var (
		first    assessmentGroup
		hasFirst bool
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return assessmentGroup{}, false, err
		}
		name, _ := tok.(string)

		var group assessmentGroup
		if err := dec.Decode(&group); err != nil {
			return assessmentGroup{}, false, err
		}
		if name == wp1Group {
			return group, true, nil
		}
		if !hasFirst {
			first, hasFirst = group, true
		}
	}
	return first, hasFirst, nil
}
