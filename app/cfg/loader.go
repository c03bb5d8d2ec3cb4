package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
	"golang.org/x/text/language"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Notification configuration
	WebhookURL    string `long:"webhook-url" env:"WEBHOOK_URL" description:"Discord-compatible webhook URL (required)" required:"true"`
	MentionRoleID string `long:"mention-role" env:"MENTION_ROLE_ID" description:"Role ID to mention on new freebies (optional)"`

	// Scheduling configuration
	CheckInterval int `long:"check-interval" env:"CHECK_INTERVAL_HOURS" default:"6" description:"Check interval in hours (minimum 1)"`

	// Storage configuration
	StatePath string `long:"state-path" env:"STATE_PATH" default:"./notified.json" description:"Path to the notified-keys state file"`
	DBPath    string `long:"db-path" env:"DB_PATH" default:"./freebiewatch.db" description:"Path to the sqlite offer archive"`

	// Source configuration
	SourcesFile string `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"Optional source tuning file"`
	Locale      string `long:"locale" env:"LOCALE" default:"en-US" description:"BCP 47 locale for storefront requests"`

	// Application configuration
	Port      string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`
	Timeout   int    `long:"timeout" env:"HTTP_TIMEOUT" default:"30" description:"Timeout in seconds for outbound HTTP calls"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	locale, country := resolveLocale(raw.Locale)

	cfg := &Cfg{
		WebhookURL:    raw.WebhookURL,
		MentionRoleID: raw.MentionRoleID,
		CheckInterval: normalizeInterval(raw.CheckInterval),
		StatePath:     raw.StatePath,
		DBPath:        raw.DBPath,
		SourcesFile:   raw.SourcesFile,
		Locale:        locale,
		Country:       country,
		Port:          raw.Port,
		UserAgent:     cmp.Or(raw.UserAgent, "freebiewatch/"+GetVersion()),
		Timeout:       raw.Timeout,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// normalizeInterval floors the check interval at one hour. The storefronts
// rotate promotions weekly; anything below an hour only burns requests.
func normalizeInterval(hours int) int {
	if hours < 1 {
		return 1
	}
	return hours
}

// resolveLocale parses the configured BCP 47 tag and derives the country
// query parameter the promotions endpoint expects. An unparseable tag falls
// back to en-US rather than failing startup.
func resolveLocale(tag string) (string, string) {
	parsed, err := language.Parse(tag)
	if err != nil {
		fmt.Printf("Warning: Invalid locale '%s', using en-US: %v\n", tag, err)
		parsed = language.AmericanEnglish
	}

	region, _ := parsed.Region()
	return parsed.String(), region.String()
}
