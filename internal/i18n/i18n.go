package i18n

import (
	"context"
	"embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/active.*.toml
var localeFS embed.FS

type Translations struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
}

// NewTranslations loads the embedded message files. English is the default
// and fallback language.
func NewTranslations() (*Translations, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("error reading locales: %w", err)
	}

	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("error loading locale file %s: %w", entry.Name(), err)
		}
	}

	return &Translations{
		bundle:  bundle,
		matcher: language.NewMatcher(bundle.LanguageTags()),
	}, nil
}

// Localizer returns a localizer for the first supported language in langs.
// Entries may be tags or whole Accept-Language values.
func (t *Translations) Localizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(t.bundle, append(langs, language.English.String())...)
}

// Match returns the supported base language closest to an Accept-Language value.
func (t *Translations) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English.String()
	}
	_, idx, _ := t.matcher.Match(tags...)
	base, _ := t.bundle.LanguageTags()[idx].Base()
	return base.String()
}

// SupportedLanguages lists the languages with a message file.
func (t *Translations) SupportedLanguages() []string {
	tags := t.bundle.LanguageTags()
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.String()
	}
	return out
}

type ctxKey struct{}

// WithLocalizer stores l in ctx.
func WithLocalizer(ctx context.Context, l *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

var (
	defaultOnce      sync.Once
	defaultLocalizer *i18n.Localizer
)

// FromContext returns the localizer stored in ctx, or an English one.
func FromContext(ctx context.Context) *i18n.Localizer {
	if l, ok := ctx.Value(ctxKey{}).(*i18n.Localizer); ok && l != nil {
		return l
	}
	defaultOnce.Do(func() {
		t, err := NewTranslations()
		if err != nil {
			panic(fmt.Sprintf("embedded locales are invalid: %v", err))
		}
		defaultLocalizer = t.Localizer()
	})
	return defaultLocalizer
}

// T localizes messageID with the localizer in ctx. The message ID is
// returned when no translation exists.
func T(ctx context.Context, messageID string, data map[string]interface{}) string {
	return GetMessage(FromContext(ctx), messageID, 0, data)
}

// TN is T with a plural count.
func TN(ctx context.Context, messageID string, count int, data map[string]interface{}) string {
	return GetMessage(FromContext(ctx), messageID, count, data)
}

func GetMessage(l *i18n.Localizer, messageID string, count int, templateData map[string]interface{}) string {
	cfg := &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	}
	if count > 0 {
		cfg.PluralCount = count
	}

	localized, err := l.Localize(cfg)
	if err != nil {
		return messageID
	}
	return localized
}
