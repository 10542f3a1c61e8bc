package i18n

import (
	"bytes"
	"strconv"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type templateCache struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

func newTemplateCache() *templateCache {
	return &templateCache{templates: map[string]*template.Template{}}
}

func (c *templateCache) get(id string) (*template.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[id]
	return t, ok
}

func (c *templateCache) put(id string, t *template.Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates[id] = t
}

// Format renders key from namespace for locale with metadata as template
// data. Integers can be rendered with the locale's digit grouping through the
// "num" template function. It reports false when the key is unknown; a
// template that fails to execute renders as its raw text.
func (b *Bundle) Format(locale, namespace, key string, metadata map[string]string) (string, bool) {
	locale = b.Match(locale)
	raw, ok := b.Message(locale, namespace, key)
	if !ok {
		return "", false
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	id := locale + "/" + namespace + "/" + key
	t, cached := b.cache.get(id)
	if !cached {
		printer := message.NewPrinter(language.Make(locale))
		parsed, err := template.New(id).Funcs(template.FuncMap{
			"num": func(value string) string {
				n, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return value
				}
				return printer.Sprintf("%d", n)
			},
		}).Option("missingkey=zero").Parse(raw)
		if err != nil {
			return raw, true
		}
		b.cache.put(id, parsed)
		t = parsed
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return raw, true
	}
	return buf.String(), true
}
