// Package i18nstatus reports how complete each locale catalog is against the
// base locale.
package i18nstatus

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/louisbranch/vorago/internal/platform/i18n"
)

// Config holds report output settings.
type Config struct {
	BaseLocale string
	// MarkdownOut and JSONOut are file paths; empty skips that format.
	MarkdownOut string
	JSONOut     string
}

// Report is the translation status of every locale.
type Report struct {
	BaseLocale string         `json:"base_locale"`
	Locales    []LocaleStatus `json:"locales"`
}

// LocaleStatus summarizes one locale.
type LocaleStatus struct {
	Locale      string            `json:"locale"`
	BaseKeys    int               `json:"base_keys"`
	Translated  int               `json:"translated"`
	Missing     int               `json:"missing"`
	Extra       int               `json:"extra"`
	Completion  float64           `json:"completion"`
	Namespaces  []NamespaceStatus `json:"namespaces"`
	MissingKeys []string          `json:"missing_keys"`
	ExtraKeys   []string          `json:"extra_keys"`
}

// NamespaceStatus summarizes one namespace of a locale.
type NamespaceStatus struct {
	Namespace  string  `json:"namespace"`
	BaseKeys   int     `json:"base_keys"`
	Translated int     `json:"translated"`
	Missing    int     `json:"missing"`
	Extra      int     `json:"extra"`
	Completion float64 `json:"completion"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{}
	fs.StringVar(&cfg.BaseLocale, "base-locale", i18n.BaseLocale, "base locale used as translation source of truth")
	fs.StringVar(&cfg.MarkdownOut, "out", "", "markdown output path (empty skips)")
	fs.StringVar(&cfg.JSONOut, "json-out", "", "json output path (empty skips)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the report for bundle, writes the configured files and prints
// the locale summary table to out.
func Run(cfg Config, bundle *i18n.Bundle, out io.Writer) error {
	if bundle == nil {
		return errors.New("bundle is required")
	}
	if cfg.BaseLocale == "" {
		cfg.BaseLocale = i18n.BaseLocale
	}
	if !bundle.HasLocale(cfg.BaseLocale) {
		return fmt.Errorf("base locale %q is missing from catalogs", cfg.BaseLocale)
	}
	rep := BuildReport(bundle, cfg.BaseLocale)
	if cfg.JSONOut != "" {
		if err := writeJSON(cfg.JSONOut, rep); err != nil {
			return fmt.Errorf("write json report: %w", err)
		}
	}
	if cfg.MarkdownOut != "" {
		if err := writeFile(cfg.MarkdownOut, []byte(Markdown(rep))); err != nil {
			return fmt.Errorf("write markdown report: %w", err)
		}
	}
	if out == nil {
		return nil
	}
	_, err := io.WriteString(out, summaryTable(rep))
	return err
}

// BuildReport compares every locale against baseLocale.
func BuildReport(bundle *i18n.Bundle, baseLocale string) Report {
	baseMessages := localeKeys(bundle, baseLocale)

	locales := bundle.Locales()
	statuses := make([]LocaleStatus, 0, len(locales))
	for _, locale := range locales {
		localeMessages := localeKeys(bundle, locale)
		missing := difference(baseMessages, localeMessages)
		extra := difference(localeMessages, baseMessages)
		translated := len(baseMessages) - len(missing)

		namespaceSet := map[string]struct{}{}
		for _, namespace := range bundle.Namespaces(baseLocale) {
			namespaceSet[namespace] = struct{}{}
		}
		for _, namespace := range bundle.Namespaces(locale) {
			namespaceSet[namespace] = struct{}{}
		}

		namespaces := make([]NamespaceStatus, 0, len(namespaceSet))
		for _, namespace := range sortedSetKeys(namespaceSet) {
			baseNS := keySet(bundle.Keys(baseLocale, namespace))
			localeNS := keySet(bundle.Keys(locale, namespace))
			nsMissing := difference(baseNS, localeNS)
			nsTranslated := len(baseNS) - len(nsMissing)
			namespaces = append(namespaces, NamespaceStatus{
				Namespace:  namespace,
				BaseKeys:   len(baseNS),
				Translated: nsTranslated,
				Missing:    len(nsMissing),
				Extra:      len(difference(localeNS, baseNS)),
				Completion: percent(nsTranslated, len(baseNS)),
			})
		}

		statuses = append(statuses, LocaleStatus{
			Locale:      locale,
			BaseKeys:    len(baseMessages),
			Translated:  translated,
			Missing:     len(missing),
			Extra:       len(extra),
			Completion:  percent(translated, len(baseMessages)),
			Namespaces:  namespaces,
			MissingKeys: missing,
			ExtraKeys:   extra,
		})
	}
	return Report{BaseLocale: baseLocale, Locales: statuses}
}

// Markdown renders the full report.
func Markdown(rep Report) string {
	var b strings.Builder
	b.WriteString("# I18n Status\n\n")
	fmt.Fprintf(&b, "Base locale: `%s`.\n\n", rep.BaseLocale)
	b.WriteString("## Locale Summary\n\n")
	b.WriteString(summaryTable(rep))

	for _, locale := range rep.Locales {
		fmt.Fprintf(&b, "\n## Locale: `%s`\n\n", locale.Locale)
		b.WriteString("| Namespace | Base Keys | Translated | Missing | Extra | Completion |\n")
		b.WriteString("| --- | ---: | ---: | ---: | ---: | ---: |\n")
		for _, ns := range locale.Namespaces {
			fmt.Fprintf(&b, "| `%s` | %d | %d | %d | %d | %.1f%% |\n", ns.Namespace, ns.BaseKeys, ns.Translated, ns.Missing, ns.Extra, ns.Completion)
		}
		writeKeyList(&b, "Missing Keys", locale.MissingKeys)
		writeKeyList(&b, "Extra Keys", locale.ExtraKeys)
	}
	return b.String()
}

func summaryTable(rep Report) string {
	var b strings.Builder
	b.WriteString("| Locale | Base Keys | Translated | Missing | Extra | Completion |\n")
	b.WriteString("| --- | ---: | ---: | ---: | ---: | ---: |\n")
	for _, locale := range rep.Locales {
		fmt.Fprintf(&b, "| `%s` | %d | %d | %d | %d | %.1f%% |\n", locale.Locale, locale.BaseKeys, locale.Translated, locale.Missing, locale.Extra, locale.Completion)
	}
	return b.String()
}

func writeKeyList(b *strings.Builder, title string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", title)
	for _, key := range keys {
		fmt.Fprintf(b, "- `%s`\n", key)
	}
}

func writeJSON(path string, rep Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// localeKeys flattens a locale into namespace.key entries.
func localeKeys(bundle *i18n.Bundle, locale string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, namespace := range bundle.Namespaces(locale) {
		for _, key := range bundle.Keys(locale, namespace) {
			out[namespace+"."+key] = struct{}{}
		}
	}
	return out
}

func keySet(keys []string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		out[key] = struct{}{}
	}
	return out
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b map[string]struct{}) []string {
	out := make([]string, 0)
	for key := range a {
		if _, ok := b[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func sortedSetKeys(entries map[string]struct{}) []string {
	out := make([]string, 0, len(entries))
	for key := range entries {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func percent(numerator int, denominator int) float64 {
	if denominator <= 0 {
		return 100
	}
	value := float64(numerator) * 100 / float64(denominator)
	return math.Round(value*10) / 10
}
