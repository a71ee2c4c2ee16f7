// Package i18n looks up user-facing messages from the embedded catalogs.
package i18n

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

// Translator localizes message IDs for one preferred language.
type Translator struct {
	loc *goi18n.Localizer
}

// New loads the embedded catalogs and returns a translator for lang (a BCP
// 47 tag). Unknown languages fall back to English.
func New(lang string) (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(locales, "locales/"+e.Name()); err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
	}

	if _, err := language.Parse(lang); err != nil {
		lang = language.English.String()
	}
	return &Translator{loc: goi18n.NewLocalizer(bundle, lang)}, nil
}

// Must is New that panics on error. The catalogs are embedded, so an error
// means a broken build.
func Must(lang string) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

// T returns the message for id. Missing messages render as the id itself.
func (t *Translator) T(id string, data ...map[string]any) string {
	cfg := &goi18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	return t.localize(id, cfg)
}

// N returns the plural form of id for count. Count is also available to
// the template as {{.Count}}.
func (t *Translator) N(id string, count int, data map[string]any) string {
	td := map[string]any{"Count": count}
	for k, v := range data {
		td[k] = v
	}
	return t.localize(id, &goi18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  count,
		TemplateData: td,
	})
}

func (t *Translator) localize(id string, cfg *goi18n.LocalizeConfig) string {
	if t == nil || t.loc == nil {
		return id
	}
	s, err := t.loc.Localize(cfg)
	if err != nil {
		return id
	}
	return s
}
