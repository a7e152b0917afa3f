package config

// IsEnabled reports whether ingestion is enabled for the retailer. A
// descriptor that omits the flag is enabled.
func (s *RetailerSettings) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}
