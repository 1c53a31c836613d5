package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Scheduler SchedulerConfig
	Crawler   CrawlerConfig
	Dataset   DatasetConfig
	Proxy     ProxyConfig
	DBPath    string
	APIAddr   string
	LogLevel  string
	Brokers   map[string]*BrokerConfig
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type CrawlerConfig struct {
	StaticWorkers int
	RenderWorkers int
	RunTimeout    time.Duration
	HostRPS       float64
}

type DatasetConfig struct {
	Dir         string
	DatabaseURL string
}

type ProxyConfig struct {
	URL string
}

// BrokerConfig describes one source site: where its index pages and sitemaps
// live, how detail links are recognized, and which extraction adapter applies.
type BrokerConfig struct {
	ID                 string   `yaml:"id"`
	Name               string   `yaml:"name"`
	Handler            string   `yaml:"handler"`
	IndexCandidates    []string `yaml:"index_candidates"`
	Sitemaps           []string `yaml:"sitemaps"`
	SitemapFirst       bool     `yaml:"sitemap_first"`
	LinkFilters        []string `yaml:"link_filters"`
	MaxLinks           int      `yaml:"max_links"`
	ArchivePages       int      `yaml:"archive_pages"`
	WaitSelectorIndex  string   `yaml:"wait_selector_index"`
	WaitSelectorDetail string   `yaml:"wait_selector_detail"`
	RenderDetail       bool     `yaml:"render_detail"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Scheduler: SchedulerConfig{
			// Daily at 02:00 unless overridden.
			Cron: getEnv("SCRAPE_CRON", "0 2 * * *"),
		},
		Crawler: CrawlerConfig{
			StaticWorkers: getEnvInt("STATIC_WORKERS", 8),
			RenderWorkers: getEnvInt("RENDER_WORKERS", 2),
			RunTimeout:    getEnvDuration("RUN_TIMEOUT", 45*time.Minute),
			HostRPS:       getEnvFloat("HOST_RPS", 1.0),
		},
		Dataset: DatasetConfig{
			Dir:         getEnv("DATA_DIR", "data"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		DBPath:   getEnv("DB_PATH", "crawler.db"),
		APIAddr:  getEnv("API_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Brokers:  make(map[string]*BrokerConfig),
	}

	// An explicit interval replaces the default cron schedule.
	if interval := os.Getenv("SCRAPE_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Scheduler.Interval = d
			if os.Getenv("SCRAPE_CRON") == "" {
				cfg.Scheduler.Cron = ""
			}
		}
	}

	if err := cfg.loadBrokerConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadBrokerConfigs() error {
	configDir := "config/brokers"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var broker BrokerConfig
		if err := yaml.Unmarshal(data, &broker); err != nil {
			return err
		}
		if broker.MaxLinks <= 0 {
			broker.MaxLinks = 40
		}

		c.Brokers[broker.ID] = &broker
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
