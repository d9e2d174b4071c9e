package config

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"
)

const DefaultLocale = "en"

// Catalog localizes user-visible assembly text such as titles and labels.
// Texts missing from a locale fall back to the key itself.
type Catalog interface {
	Locales(ctx context.Context) ([]string, error)
	Text(ctx context.Context, locale, key string) string
	// Localizer returns a lookup bound to one locale.
	Localizer(locale string) func(key string) string
}

type iniCatalog struct {
	cfg *ini.File
}

func NewCatalog(path string) (Catalog, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return &iniCatalog{cfg: cfg}, nil
}

// EmptyCatalog returns a catalog that maps every key to itself.
func EmptyCatalog() Catalog {
	return &iniCatalog{cfg: ini.Empty()}
}

func (c *iniCatalog) Locales(_ context.Context) ([]string, error) {
	var locales []string
	for _, section := range c.cfg.Sections() {
		if len(section.Keys()) > 0 {
			locales = append(locales, section.Name())
		}
	}
	return locales, nil
}

func (c *iniCatalog) Text(ctx context.Context, locale, key string) string {
	section, err := c.cfg.GetSection(locale)
	if err != nil || !section.HasKey(key) {
		zerolog.Ctx(ctx).Debug().Str("locale", locale).Str("key", key).Msg("catalog text missing")
		return key
	}
	return section.Key(key).String()
}

func (c *iniCatalog) Localizer(locale string) func(key string) string {
	section, err := c.cfg.GetSection(locale)
	if err != nil {
		return func(key string) string { return key }
	}
	return func(key string) string {
		if !section.HasKey(key) {
			return key
		}
		return section.Key(key).String()
	}
}
