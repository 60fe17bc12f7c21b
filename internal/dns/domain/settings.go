package domain

// ConditionalForwarder sends queries for one zone to its own forwarders.
type ConditionalForwarder struct {
	Zone       string   `json:"zone" yaml:"zone" validate:"required,zonename"`
	Forwarders []string `json:"forwarders" yaml:"forwarders" validate:"required,min=1,dive,ip"`
}

// RecursionSettings is the recursion slice of the server options.
type RecursionSettings struct {
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	AllowedNetworks []string `json:"allowed_networks" yaml:"allowed_networks" validate:"dive,bindacl"`
}

// ServerSettings is the complete editable server configuration. It is read and
// replaced as one document. The validate tags name checks registered by the manager.
type ServerSettings struct {
	Recursion             RecursionSettings      `json:"recursion" yaml:"recursion"`
	Forwarders            []string               `json:"forwarders" yaml:"forwarders" validate:"dive,ip"`
	ConditionalForwarders []ConditionalForwarder `json:"conditional_forwarders" yaml:"conditional_forwarders" validate:"dive"`
	MaxCacheSize          string                 `json:"max_cache_size,omitempty" yaml:"max_cache_size,omitempty" validate:"omitempty,bindscalar"`
	MaxCacheTTL           string                 `json:"max_cache_ttl,omitempty" yaml:"max_cache_ttl,omitempty" validate:"omitempty,bindscalar"`
	BlockedZones          []string               `json:"blocked_zones" yaml:"blocked_zones" validate:"dive,zonename"`
}

// Health reports the manager and the server process state.
type Health struct {
	Status        string `json:"status"`
	Server        string `json:"bind_status"`
	ReloadPending bool   `json:"reload_pending"`
}

// Server process states reported by the reload gateway.
const (
	ServerRunning = "running"
	ServerUnknown = "unknown"
)
