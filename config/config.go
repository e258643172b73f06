package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Horizon     HorizonConfig     `mapstructure:"horizon"`
	Wallet      WalletConfig      `mapstructure:"wallet"`
	Orders      OrdersConfig      `mapstructure:"orders"`
	Progression ProgressionConfig `mapstructure:"progression"`
	Settlement  SettlementConfig  `mapstructure:"settlement"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
	// Demo synthesizes a default order when an unknown id is requested
	// instead of returning 404. Never enable against a real backend.
	Demo bool `mapstructure:"demo"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type HorizonConfig struct {
	PublicURL  string        `mapstructure:"public_url"`
	TestnetURL string        `mapstructure:"testnet_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type WalletConfig struct {
	BalanceRefreshInterval time.Duration `mapstructure:"balance_refresh_interval"`
	// Simulated extension provider settings (stand-in for the browser wallet).
	ProviderInstalled bool   `mapstructure:"provider_installed"`
	ProviderAllowed   bool   `mapstructure:"provider_allowed"`
	ProviderAddress   string `mapstructure:"provider_address"`
	ProviderNetwork   string `mapstructure:"provider_network"`
}

type OrdersConfig struct {
	PaymentWindow time.Duration `mapstructure:"payment_window"`
	// Rates is fiat units per crypto unit, keyed by fiat code.
	Rates map[string]float64 `mapstructure:"rates"`
	// NotifyURL receives a POST when an order completes. Empty disables it.
	NotifyURL string `mapstructure:"notify_url"`
}

type ProgressionConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PaymentDelay    time.Duration `mapstructure:"payment_delay"`
	MintDelay       time.Duration `mapstructure:"mint_delay"`
	TransferDelay   time.Duration `mapstructure:"transfer_delay"`
	ConfirmAttempts int           `mapstructure:"confirm_attempts"`
	ConfirmInterval time.Duration `mapstructure:"confirm_interval"`
}

type SettlementConfig struct {
	TrustlineLatency time.Duration `mapstructure:"trustline_latency"`
	MintLatency      time.Duration `mapstructure:"mint_latency"`
	PaymentLatency   time.Duration `mapstructure:"payment_latency"`
	StatusLatency    time.Duration `mapstructure:"status_latency"`
	TrustlineRate    float64       `mapstructure:"trustline_rate"`
	ConfirmRate      float64       `mapstructure:"confirm_rate"`
	MintFailureRate  float64       `mapstructure:"mint_failure_rate"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: AFR_.
// Nested keys use underscore: AFR_REDIS_HOST, AFR_SERVER_PORT, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.demo", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "aframp")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("horizon.public_url", "https://horizon.stellar.org")
	v.SetDefault("horizon.testnet_url", "https://horizon-testnet.stellar.org")
	v.SetDefault("horizon.timeout", "10s")
	v.SetDefault("wallet.balance_refresh_interval", "30s")
	v.SetDefault("wallet.provider_installed", true)
	v.SetDefault("wallet.provider_allowed", true)
	v.SetDefault("wallet.provider_address", "")
	v.SetDefault("wallet.provider_network", "TESTNET")
	v.SetDefault("orders.payment_window", "15m")
	v.SetDefault("orders.notify_url", "")
	v.SetDefault("orders.rates", map[string]float64{
		"NGN": 1600,
		"KES": 130,
		"GHS": 15.5,
		"ZAR": 18.2,
		"UGX": 3750,
	})
	v.SetDefault("progression.poll_interval", "3s")
	v.SetDefault("progression.payment_delay", "30s")
	v.SetDefault("progression.mint_delay", "90s")
	v.SetDefault("progression.transfer_delay", "120s")
	v.SetDefault("progression.confirm_attempts", 10)
	v.SetDefault("progression.confirm_interval", "1s")
	v.SetDefault("settlement.trustline_latency", "1s")
	v.SetDefault("settlement.mint_latency", "2s")
	v.SetDefault("settlement.payment_latency", "1s")
	v.SetDefault("settlement.status_latency", "500ms")
	v.SetDefault("settlement.trustline_rate", 0.8)
	v.SetDefault("settlement.confirm_rate", 0.9)
	v.SetDefault("settlement.mint_failure_rate", 0.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: AFR_REDIS_HOST -> redis.host
	v.SetEnvPrefix("AFR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
