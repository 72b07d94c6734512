package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Translator renders a message by key. Unknown keys are used as the format.
type Translator interface {
	T(key string, args ...any) string
}

type Bundle struct {
	builder *catalog.Builder
	printer *message.Printer
	keys    map[string]struct{}
}

var _ Translator = (*Bundle)(nil)

func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedLocales)
}

func LoadFromFS(localesFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(localesFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	base := language.MustParse(BaseLocale)
	bundle := &Bundle{
		builder: catalog.NewBuilder(catalog.Fallback(base)),
		keys:    map[string]struct{}{},
	}
	for _, path := range paths {
		data, err := fs.ReadFile(localesFS, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := bundle.add(path, file); err != nil {
			return nil, err
		}
	}
	bundle.printer = message.NewPrinter(base, message.Catalog(bundle.builder))
	return bundle, nil
}

func (b *Bundle) add(path string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	if locale != filepath.Base(filepath.Dir(path)) {
		return fmt.Errorf("catalog %s: locale %q must match path", path, locale)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("catalog %s: parse locale: %w", path, err)
	}
	if strings.TrimSpace(file.Namespace) == "" {
		return fmt.Errorf("catalog %s: namespace is required", path)
	}
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		if _, exists := b.keys[key]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q", path, key)
		}
		if err := b.builder.SetString(tag, key, value); err != nil {
			return fmt.Errorf("catalog %s: set %q: %w", path, key, err)
		}
		b.keys[key] = struct{}{}
	}
	return nil
}

func (b *Bundle) Has(key string) bool {
	_, ok := b.keys[key]
	return ok
}

func (b *Bundle) T(key string, args ...any) string {
	return b.printer.Sprintf(key, args...)
}

// Override replaces the rendering of one message. Returning false keeps the
// base translation.
type Override func(key string, args ...any) (string, bool)

type overriding struct {
	base     Translator
	override Override
}

// WithOverride layers override on top of base for the lifetime of the
// returned Translator only.
func WithOverride(base Translator, override Override) Translator {
	return overriding{base: base, override: override}
}

func (o overriding) T(key string, args ...any) string {
	if text, ok := o.override(key, args...); ok {
		return text
	}
	return o.base.T(key, args...)
}
