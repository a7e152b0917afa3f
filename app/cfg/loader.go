package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"cartcomb_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"cartcomb_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"cartcomb" description:"Database name"`

	// Search index configuration
	MeiliURL    string `long:"meili-url" env:"MEILI_URL" default:"http://localhost:7700" description:"Meilisearch instance URL"`
	MeiliAPIKey string `long:"meili-api-key" env:"MEILI_API_KEY" description:"Meilisearch API key (optional)"`

	// Application configuration
	RetailersDir string `long:"retailers-dir" env:"RETAILERS_DIR" default:"./retailers" description:"Directory containing retailer configuration files"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of concurrent ingestion workers"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Scraping configuration
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36" description:"User agent string for portal requests"`
	Headless  bool   `long:"headless" env:"HEADLESS" description:"Run the scraping browser headless"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"Asia/Jerusalem" description:"Timezone for timestamps (e.g., UTC, Asia/Jerusalem)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
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

	cfg := &Cfg{
		DBHost:       raw.DBHost,
		DBPort:       raw.DBPort,
		DBUser:       raw.DBUser,
		DBPassword:   raw.DBPassword,
		DBName:       raw.DBName,
		MeiliURL:     raw.MeiliURL,
		MeiliAPIKey:  raw.MeiliAPIKey,
		RetailersDir: raw.RetailersDir,
		Port:         raw.Port,
		WorkerCount:  raw.WorkerCount,
		APIAccessKey: raw.APIAccessKey,
		UserAgent:    raw.UserAgent,
		Headless:     raw.Headless,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
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

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
