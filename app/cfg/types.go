package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Search index configuration
	MeiliURL    string
	MeiliAPIKey string

	// Application configuration
	RetailersDir string
	Port         string
	WorkerCount  int
	APIAccessKey string

	// Scraping configuration
	UserAgent string
	Headless  bool

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
