package config

// RetailerConfig represents a complete retailer descriptor
type RetailerConfig struct {
	Retailer RetailerInfo     `yaml:"retailer"`
	Settings RetailerSettings `yaml:"settings"`
}

// RetailerInfo contains basic retailer information
type RetailerInfo struct {
	Name      string `yaml:"name"`
	Portal    string `yaml:"portal"`
	PortalURL string `yaml:"portal_url"`
	Branch    string `yaml:"branch"`
	Username  string `yaml:"username"`
}

// RetailerSettings contains ingestion settings
type RetailerSettings struct {
	Enabled *bool `yaml:"enabled"`
}
