package market

// Cfg is the market-service configuration, loaded from
// config/market-service.yaml with MARKET-SERVICE_* env overrides.
type Cfg struct {
	Name     string   `yaml:"name" mapstructure:"name"`
	LogLevel string   `yaml:"log_level" mapstructure:"log_level"`
	Db       DBConfig `yaml:"db" mapstructure:"db"`
	Redis    Redis    `yaml:"redis" mapstructure:"redis"`
	Nats     Nats     `yaml:"nats" mapstructure:"nats"`
	Events   Events   `yaml:"events" mapstructure:"events"`
	Metrics  Metrics  `yaml:"metrics" mapstructure:"metrics"`
}

type DBConfig struct {
	Enabled                bool   `yaml:"enabled" mapstructure:"enabled"`
	Type                   string `yaml:"type" mapstructure:"type"`
	SourceName             string `yaml:"source_name" mapstructure:"source_name"`
	MaxOpenConns           int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" mapstructure:"conn_max_lifetime_minutes"`
}

type Redis struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr         string `yaml:"addr" mapstructure:"addr"`
	Database     int    `yaml:"db" mapstructure:"db"`
	Auth         string `yaml:"auth" mapstructure:"auth"`
	PoolSize     int    `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
}

type Nats struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Url     string `yaml:"url" mapstructure:"url"`
}

type Events struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	BusSize int    `yaml:"bus_size" mapstructure:"bus_size"`
}

type Metrics struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}
