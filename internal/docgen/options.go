package docgen

import (
	"regexp"
	"strings"

	"github.com/mark3labs/routedoc/internal/logger"
	"github.com/mark3labs/routedoc/internal/swagger"
)

// BuildOption configures how documentation is built from a catalog.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeClasses map[string]struct{}
	excludeClasses map[string]struct{}
	verbs          map[string]struct{}
	pathRes        []*regexp.Regexp

	title      string
	apiVersion string
	basePath   string

	sanitize bool
	keys     swagger.KeyTranslator
	log      *logger.Logger
	progress func(done, total int)
}

// WithIncludeClasses keeps only routes owned by one of the given classes.
func WithIncludeClasses(names []string) BuildOption {
	return func(c *buildConfig) {
		c.includeClasses = addNames(c.includeClasses, names)
	}
}

// WithExcludeClasses removes routes owned by any of the given classes.
func WithExcludeClasses(names []string) BuildOption {
	return func(c *buildConfig) {
		c.excludeClasses = addNames(c.excludeClasses, names)
	}
}

// WithVerbs keeps only routes documented under one of the given HTTP methods.
// Route verbs are converted before comparison, so "del" matches DELETE.
func WithVerbs(verbs []string) BuildOption {
	return func(c *buildConfig) {
		for _, v := range verbs {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if c.verbs == nil {
				c.verbs = make(map[string]struct{}, len(verbs))
			}
			c.verbs[swagger.ConvertVerb(v)] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only routes whose documented path matches at least
// one of the provided regular expressions.
func WithPathPatterns(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				// An invalid pattern matches nothing.
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// WithTitle overrides the catalog title.
func WithTitle(title string) BuildOption {
	return func(c *buildConfig) { c.title = strings.TrimSpace(title) }
}

// WithAPIVersion overrides the catalog API version.
func WithAPIVersion(v string) BuildOption {
	return func(c *buildConfig) { c.apiVersion = strings.TrimSpace(v) }
}

// WithBasePath overrides the catalog base path.
func WithBasePath(p string) BuildOption {
	return func(c *buildConfig) { c.basePath = strings.TrimSpace(p) }
}

// WithSanitizeHTML strips markup from summaries and descriptions.
func WithSanitizeHTML(enabled bool) BuildOption {
	return func(c *buildConfig) { c.sanitize = enabled }
}

// WithKeyTranslator replaces the default attribute key translation.
func WithKeyTranslator(k swagger.KeyTranslator) BuildOption {
	return func(c *buildConfig) { c.keys = k }
}

func WithLogger(l *logger.Logger) BuildOption {
	return func(c *buildConfig) { c.log = l }
}

// WithProgress registers a callback invoked after each class is processed.
func WithProgress(fn func(done, total int)) BuildOption {
	return func(c *buildConfig) { c.progress = fn }
}

func addNames(set map[string]struct{}, names []string) map[string]struct{} {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(names))
		}
		set[n] = struct{}{}
	}
	return set
}

func (c *buildConfig) keepClass(name string) bool {
	if len(c.includeClasses) > 0 {
		if _, ok := c.includeClasses[name]; !ok {
			return false
		}
	}
	if _, ok := c.excludeClasses[name]; ok {
		return false
	}
	return true
}

// keepRoute applies the verb and path filters to a translated entry.
func (c *buildConfig) keepRoute(method, path string) bool {
	if len(c.verbs) > 0 {
		if _, ok := c.verbs[method]; !ok {
			return false
		}
	}
	if len(c.pathRes) == 0 {
		return true
	}
	for _, re := range c.pathRes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
