// Package i18n loads the player-facing message catalogs and renders them for
// a requested locale.
//
// Catalogs live in locales/<locale>/<namespace>.yaml. Each file declares its
// locale and namespace and a flat map of quoted keys to quoted templates.
// Templates use text/template syntax with the error metadata as data.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// BaseLocale is the canonical source locale; every key must exist there.
const BaseLocale = "en-US"

// Namespaces used by the Vorago services.
const (
	NamespaceErrors     = "errors"
	NamespaceRejections = "rejections"
)

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

var defaultBundle = mustLoadEmbedded()

// Bundle holds every locale catalog, grouped by namespace.
type Bundle struct {
	// locale -> namespace -> key -> template
	locales map[string]map[string]map[string]string
	tags    []language.Tag
	matcher language.Matcher
	cache   *templateCache
}

// Default returns the process-wide embedded bundle.
func Default() *Bundle {
	return defaultBundle
}

// LoadFromFS loads catalog files from the provided filesystem.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{
		locales: map[string]map[string]map[string]string{},
		cache:   newTemplateCache(),
	}
	for _, p := range paths {
		data, err := fs.ReadFile(catalogFS, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		file, err := parseCatalogFile(data)
		if err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, file); err != nil {
			return nil, err
		}
	}
	if _, ok := b.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	if err := b.buildMatcher(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) add(p string, file catalogFile) error {
	localeFromPath := path.Base(path.Dir(p))
	namespaceFromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))

	if file.Locale != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", p, file.Locale, localeFromPath)
	}
	if file.Namespace != namespaceFromPath {
		return fmt.Errorf("catalog %s: namespace %q must match filename %q", p, file.Namespace, namespaceFromPath)
	}

	namespaces, ok := b.locales[file.Locale]
	if !ok {
		namespaces = map[string]map[string]string{}
		b.locales[file.Locale] = namespaces
	}
	if _, exists := namespaces[file.Namespace]; exists {
		return fmt.Errorf("catalog %s: namespace %q already defined for locale %q", p, file.Namespace, file.Locale)
	}
	namespaces[file.Namespace] = file.Messages
	return nil
}

// buildMatcher orders the base locale first so unmatched requests fall back
// to it.
func (b *Bundle) buildMatcher() error {
	locales := b.Locales()
	tags := make([]language.Tag, 0, len(locales))
	base, err := language.Parse(BaseLocale)
	if err != nil {
		return fmt.Errorf("parse base locale: %w", err)
	}
	tags = append(tags, base)
	for _, locale := range locales {
		if locale == BaseLocale {
			continue
		}
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags = append(tags, tag)
	}
	b.tags = tags
	b.matcher = language.NewMatcher(tags)
	return nil
}

// Locales returns all available locale identifiers, sorted.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Match resolves a requested locale or Accept-Language style list to the
// closest catalog locale. Unknown or malformed input resolves to BaseLocale.
func (b *Bundle) Match(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return BaseLocale
	}
	if _, ok := b.locales[requested]; ok {
		return requested
	}
	desired, _, err := language.ParseAcceptLanguage(requested)
	if err != nil || len(desired) == 0 {
		return BaseLocale
	}
	_, index, confidence := b.matcher.Match(desired...)
	if confidence == language.No {
		return BaseLocale
	}
	return b.tags[index].String()
}

// Message returns the raw template for key, falling back to BaseLocale.
func (b *Bundle) Message(locale, namespace, key string) (string, bool) {
	if msg, ok := b.locales[locale][namespace][key]; ok {
		return msg, true
	}
	msg, ok := b.locales[BaseLocale][namespace][key]
	return msg, ok
}

// Keys lists the keys of one namespace in a locale, sorted.
func (b *Bundle) Keys(locale, namespace string) []string {
	messages := b.locales[locale][namespace]
	out := make([]string, 0, len(messages))
	for key := range messages {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Namespaces lists the namespaces a locale defines, sorted.
func (b *Bundle) Namespaces(locale string) []string {
	namespaces := b.locales[locale]
	out := make([]string, 0, len(namespaces))
	for namespace := range namespaces {
		out = append(out, namespace)
	}
	sort.Strings(out)
	return out
}

// HasLocale reports whether locale has a catalog.
func (b *Bundle) HasLocale(locale string) bool {
	_, ok := b.locales[locale]
	return ok
}

func mustLoadEmbedded() *Bundle {
	b, err := LoadFromFS(embeddedFS)
	if err != nil {
		panic(err)
	}
	return b
}
