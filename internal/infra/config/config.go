package config

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/caarlos0/env/v11"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type PlatformConfig struct {
	Addr         string   `env:"HTTP_ADDR" envDefault:":8080"`
	AllowOrigins string   `env:"HTTP_ALLOW_ORIGINS" envDefault:"http://localhost:3000"`
	Scheme       string   `env:"P_SCHEME" envDefault:"https"`
	MainDomain   string   `env:"P_MAIN_DOMAIN" envDefault:"localhost"`
	Multisite    bool     `env:"P_MULTISITE" envDefault:"true"`
	Components   []string `env:"P_COMPONENTS" envSeparator:"," envDefault:"sites,activity,members"`
	ThemeFlavour string   `env:"P_THEME_FLAVOUR" envDefault:"legacy"`
}

type ModerationConfig struct {
	Slug string `env:"SITE_MODERATION_SLUG"`
}

func NewPlatformConfig() *PlatformConfig {
	var cfg PlatformConfig
	if err := env.Parse(&cfg); err != nil {
		slog.Error("err parsing platform config", "err", err)
	}
	return &cfg
}

func NewModerationConfig() *ModerationConfig {
	var cfg ModerationConfig
	if err := env.Parse(&cfg); err != nil {
		slog.Error("err parsing moderation config", "err", err)
	}
	cfg.Slug = SanitizeTitle(cfg.Slug)
	if cfg.Slug == "" {
		cfg.Slug = consts.DefaultModerationScope
	}
	return &cfg
}

func (c *PlatformConfig) ComponentActive(name string) bool {
	for _, component := range c.Components {
		if strings.TrimSpace(component) == name {
			return true
		}
	}
	return false
}

// BaseURL is the address of the network's main site, without trailing slash.
func (c *PlatformConfig) BaseURL() string {
	return c.Scheme + "://" + c.MainDomain
}

func (c *PlatformConfig) DirectoryURL() string {
	return c.BaseURL() + "/sites/"
}

func (c *PlatformConfig) ActivityURL() string {
	return c.BaseURL() + "/activity/"
}

func (c *PlatformConfig) ProfileURL(username string) string {
	return c.BaseURL() + "/members/" + username + "/"
}

func (c *PlatformConfig) NetworkAdminURL(path string) string {
	return c.BaseURL() + "/network/" + strings.TrimPrefix(path, "/")
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9_\-]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// SanitizeTitle turns free text into a URL slug: accents stripped,
// lowercase, whitespace as dashes, anything else dropped.
func SanitizeTitle(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}
	plain = strings.ToLower(strings.TrimSpace(plain))
	plain = strings.Join(strings.Fields(plain), "-")
	plain = slugInvalid.ReplaceAllString(plain, "")
	plain = slugDashes.ReplaceAllString(plain, "-")
	return strings.Trim(plain, "-")
}
