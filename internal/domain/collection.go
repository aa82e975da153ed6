package domain

import (
	"errors"
	"fmt"
	"strings"
)

// CollectionKind tells how article membership is defined.
type CollectionKind string

const (
	// KindProject collects the articles a WikiProject lists.
	KindProject CollectionKind = "wp"
	// KindList collects the titles of a user-supplied CSV list.
	KindList CollectionKind = "list"
)

// Collection identifies one extraction target.
type Collection struct {
	Kind CollectionKind
	Name string
}

// Validate rejects collections that cannot name a workspace.
func (c Collection) Validate() error {
	switch c.Kind {
	case KindProject, KindList:
	default:
		return fmt.Errorf("%w: unknown collection kind %q", ErrConfiguration, c.Kind)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: collection name is empty", ErrConfiguration)
	}
	if strings.ContainsAny(c.Name, `/\`) {
		return fmt.Errorf("%w: collection name %q contains a path separator", ErrConfiguration, c.Name)
	}
	return nil
}

// Slug is the directory and file prefix, e.g. "wp_Chemistry".
func (c Collection) Slug() string {
	return string(c.Kind) + "_" + c.Name
}

// DisplayName is the run name written into the report.
func (c Collection) DisplayName() string {
	if c.Kind == KindProject {
		return "Wikiproject " + c.Name
	}
	return "List " + c.Name
}

var (
	// ErrTransient marks a failed external call. The phase that issued it can
	// be re-run; completed rows are skipped.
	ErrTransient = errors.New("transient network error")
	// ErrConfiguration marks invalid or unknown identifiers and settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnsupportedRedirect marks article bodies whose redirect chain is
	// longer than one hop or whose redirect marker cannot be parsed.
	ErrUnsupportedRedirect = errors.New("unsupported redirect")
	// ErrArticleNotFound marks an article whose body does not exist.
	ErrArticleNotFound = errors.New("article not found")
)
