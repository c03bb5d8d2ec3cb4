package sources

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes the storefront adapters. The file is optional: a missing
// file yields the defaults, a present file only overrides the keys it sets.
type Config struct {
	Epic  EpicConfig  `yaml:"epic"`
	Steam SteamConfig `yaml:"steam"`
}

type EpicConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Endpoint     string `yaml:"endpoint"`
	StoreBaseURL string `yaml:"store_base_url"`
	Color        int    `yaml:"color"`
}

type SteamConfig struct {
	Enabled   bool   `yaml:"enabled"`
	SearchURL string `yaml:"search_url"`
	Color     int    `yaml:"color"`
}

func Default() Config {
	return Config{
		Epic: EpicConfig{
			Enabled:      true,
			Endpoint:     "https://store-site-backend-static.ak.epicgames.com/freeGamesPromotions",
			StoreBaseURL: "https://store.epicgames.com",
			Color:        0x2A2A2A,
		},
		Steam: SteamConfig{
			Enabled:   true,
			SearchURL: "https://store.steampowered.com/search/?maxprice=free&specials=1&sort_by=Price_ASC",
			Color:     0x1B2838,
		},
	}
}

// LoadConfig reads the optional tuning file. Unmarshalling happens onto a
// fully populated default config, so absent keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("failed to read sources file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return config, fmt.Errorf("invalid sources file %s: %w", path, err)
	}

	return config, nil
}

func validateConfig(config Config) error {
	requiredURLs := map[string]string{
		"epic endpoint":       config.Epic.Endpoint,
		"epic store base URL": config.Epic.StoreBaseURL,
		"steam search URL":    config.Steam.SearchURL,
	}

	for fieldName, fieldValue := range requiredURLs {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		if _, err := url.ParseRequestURI(fieldValue); err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
		}
	}

	return nil
}
