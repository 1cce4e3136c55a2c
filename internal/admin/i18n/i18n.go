package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

//go:embed locales/*.json
var localeFS embed.FS

// Bundle holds the UI translations for every supported language.
type Bundle struct {
	catalog   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	keys      map[string]struct{}
}

// Load builds a Bundle from the embedded locale files. English is the fallback.
func Load() (*Bundle, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales: %w", err)
	}

	b := &Bundle{
		catalog: catalog.NewBuilder(catalog.Fallback(language.English)),
		keys:    make(map[string]struct{}),
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".json" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, fmt.Errorf("i18n: locale %s: %w", name, err)
		}
		raw, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", name, err)
		}
		var messages map[string]string
		if err := json.Unmarshal(raw, &messages); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", name, err)
		}
		for key, msg := range messages {
			if err := b.catalog.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("i18n: %s %s: %w", name, key, err)
			}
			b.keys[key] = struct{}{}
		}
		b.supported = append(b.supported, tag)
	}

	sort.SliceStable(b.supported, func(i, j int) bool {
		return b.supported[i] == language.English && b.supported[j] != language.English
	})
	if len(b.supported) == 0 || b.supported[0] != language.English {
		return nil, fmt.Errorf("i18n: fallback locale en not loaded")
	}
	b.matcher = language.NewMatcher(b.supported)
	return b, nil
}

// MustLoad is Load for program start-up and tests.
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// Supported lists the loaded languages, fallback first.
func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for _, tag := range b.supported {
		out = append(out, tag.String())
	}
	return out
}

// Has reports whether key is translated.
func (b *Bundle) Has(key string) bool {
	_, ok := b.keys[key]
	return ok
}

// Resolve picks the best supported language for the preferences, given in
// priority order (an explicit choice, then Accept-Language).
func (b *Bundle) Resolve(prefs ...string) language.Tag {
	for _, pref := range prefs {
		if strings.TrimSpace(pref) == "" {
			continue
		}
		_, index, confidence := b.matcher.Match(parseAll(pref)...)
		if confidence != language.No {
			return b.supported[index]
		}
	}
	return b.supported[0]
}

// Localizer returns a printer bound to tag.
func (b *Bundle) Localizer(tag language.Tag) *Localizer {
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b.catalog)),
	}
}

func parseAll(pref string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		if tag, err := language.Parse(pref); err == nil {
			return []language.Tag{tag}
		}
		return nil
	}
	return tags
}

// Localizer translates message keys for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// T formats the message stored under key.
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Lang returns the BCP 47 tag of the localizer.
func (l *Localizer) Lang() string {
	return l.tag.String()
}

type contextKey struct{}

var fallbackLocalizer = MustLoad().Localizer(language.English)

// WithLocalizer stores the localizer on the context.
func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the request localizer, defaulting to English.
func FromContext(ctx context.Context) *Localizer {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*Localizer); ok && l != nil {
			return l
		}
	}
	return fallbackLocalizer
}

// T translates key with the localizer stored on ctx.
func T(ctx context.Context, key string, args ...any) string {
	return FromContext(ctx).T(key, args...)
}
