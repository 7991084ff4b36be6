package config

// Config is the top-level YAML structure: the ingress routing map plus server
// tuning. Regions, organizations and integrations form the lookup tables the
// resolvers read; they hot-reload without a restart.
type Config struct {
	Version       string            `yaml:"version"`
	Server        ServerConf        `yaml:"server"`
	SigningSecret string            `yaml:"signing_secret"`
	Providers     []ProviderConf    `yaml:"providers"`
	Regions       []RegionConf      `yaml:"regions"`
	Organizations []OrgConf         `yaml:"organizations"`
	Integrations  []IntegrationConf `yaml:"integrations"`
}

// ServerConf holds tunable dispatch settings.
type ServerConf struct {
	DispatchWorkers  int `yaml:"dispatch_workers"`
	QueueDepth       int `yaml:"queue_depth"`
	ForwardTimeoutMs int `yaml:"forward_timeout_ms"`
}

// ProviderConf declares one webhook provider and its signing material.
// Exactly one of the key fields applies, depending on the provider's scheme.
type ProviderConf struct {
	Name          string `yaml:"name"`
	PublicKey     string `yaml:"public_key,omitempty"`     // hex Ed25519 key (discord)
	WebhookSecret string `yaml:"webhook_secret,omitempty"` // shared HMAC secret (github)
}

// RegionConf names a backend region and its base URL.
type RegionConf struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// OrgConf binds an organization to the region that owns its data.
type OrgConf struct {
	ID     int64  `yaml:"id"`
	Region string `yaml:"region"`
}

// IntegrationConf is one installed integration and the organizations using it.
type IntegrationConf struct {
	ID            int64   `yaml:"id"`
	Provider      string  `yaml:"provider"`
	ExternalID    string  `yaml:"external_id"`
	Organizations []int64 `yaml:"organizations"`
}
