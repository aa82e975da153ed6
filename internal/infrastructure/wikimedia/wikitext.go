package wikimedia

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"VisualContentExtractor/internal/domain"
)

const (
	redirectMarker = "#redirect"
	filePrefix     = "File:"
)

// fileRef captures a candidate name after a File:/Image: namespace or an
// infobox "| param =", up to the next pipe, bracket, brace or line end. The
// name itself may contain ":" and "=".
var fileRef = regexp.MustCompile(`(?i)(?:\b(?:file|image)[ \t]*:[ \t]*|\|[ \t]*[\w ]+?[ \t]*=[ \t]*)([^|\[\]{}\n]+)`)

// namespacePrefix is a File:/Image: prefix left on an infobox value.
var namespacePrefix = regexp.MustCompile(`(?i)^(?:file|image)[ \t]*:`)

// ImageList returns the file titles referenced by the article body. One
// redirect hop is followed.
func (c *Client) ImageList(ctx context.Context, article string) ([]string, error) {
	body, err := c.raw(ctx, article)
	if err != nil {
		return nil, err
	}

	target, isRedirect, err := redirectTarget(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", article, err)
	}
	if isRedirect {
		body, err = c.raw(ctx, target)
		if err != nil {
			return nil, err
		}
		if _, again, _ := redirectTarget(body); again {
			return nil, fmt.Errorf("%w: %s redirects more than once", domain.ErrUnsupportedRedirect, article)
		}
	}

	return ExtractImages(body), nil
}

// redirectTarget reports whether body is a redirect page and where it points.
func redirectTarget(body string) (string, bool, error) {
	text := strings.TrimSpace(body)
	if len(text) < len(redirectMarker) || !strings.EqualFold(text[:len(redirectMarker)], redirectMarker) {
		return "", false, nil
	}

	open := strings.Index(text, "[[")
	if open < 0 {
		return "", true, fmt.Errorf("%w: missing link", domain.ErrUnsupportedRedirect)
	}
	rest := text[open+2:]
	end := strings.Index(rest, "]]")
	if end < 0 {
		return "", true, fmt.Errorf("%w: unterminated link", domain.ErrUnsupportedRedirect)
	}

	target := rest[:end]
	if i := strings.IndexAny(target, "|#"); i >= 0 {
		target = target[:i]
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", true, fmt.Errorf("%w: empty target", domain.ErrUnsupportedRedirect)
	}
	return target, true, nil
}

// ExtractImages finds image file references in wikitext. Comments and markup
// tags are dropped first; results are normalized File: titles in order of
// first appearance.
func ExtractImages(wikitext string) []string {
	text := stripMarkup(wikitext)

	seen := make(map[string]struct{})
	var files []string
	for _, m := range fileRef.FindAllStringSubmatch(text, -1) {
		title, ok := normalizeFile(m[1])
		if !ok {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		files = append(files, title)
	}
	return files
}

// stripMarkup runs the text through an HTML parser, which drops comments and
// tags but keeps their content.
func stripMarkup(wikitext string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(wikitext))
	if err != nil {
		return wikitext
	}
	return doc.Text()
}

func normalizeFile(candidate string) (string, bool) {
	name := strings.TrimSpace(namespacePrefix.ReplaceAllString(strings.TrimSpace(candidate), ""))
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if strings.ContainsAny(name, "/#<>[]{}") {
		return "", false
	}

	name = strings.ReplaceAll(name, "_", " ")
	name = strings.Join(strings.Fields(name), " ")
	name = norm.NFC.String(name)
	if name == "" || !hasImageExtension(name) {
		return "", false
	}
	return filePrefix + upperFirst(name), true
}

func hasImageExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range domain.ImageExtensions {
		if strings.HasSuffix(lower, "."+ext) && len(lower) > len(ext)+1 {
			return true
		}
	}
	return false
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
