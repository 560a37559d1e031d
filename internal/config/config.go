// Package config loads service configuration. Defaults are overlaid by an
// optional YAML file named in CONFIG_FILE, and environment variables win over
// both.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreSpanner = "spanner"
	StoreMemory  = "memory"
)

// M-Pesa environments.
const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

// Config is the full service configuration.
type Config struct {
	HTTPPort string `yaml:"http_port"`
	GRPCPort string `yaml:"grpc_port"`

	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	POS    POSConfig    `yaml:"pos"`
	MPesa  MPesaConfig  `yaml:"mpesa"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Consul ConsulConfig `yaml:"consul"`
	Outbox OutboxConfig `yaml:"outbox"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	Driver          string `yaml:"driver"`
	SpannerDatabase string `yaml:"spanner_database"`
}

// POSConfig holds sale pricing and tender rules.
type POSConfig struct {
	// TaxRate is a decimal fraction, e.g. "0.16". Zero disables tax.
	TaxRate string `yaml:"tax_rate"`
	// CashUnderpayment is "allow" or "reject".
	CashUnderpayment string `yaml:"cash_underpayment"`
}

// MPesaConfig configures the STK push client.
type MPesaConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Environment     string        `yaml:"environment"`
	BaseURL         string        `yaml:"base_url"`
	ConsumerKey     string        `yaml:"consumer_key"`
	ConsumerSecret  string        `yaml:"consumer_secret"`
	ShortCode       string        `yaml:"shortcode"`
	PassKey         string        `yaml:"passkey"`
	CallbackURL     string        `yaml:"callback_url"`
	TransactionType string        `yaml:"transaction_type"`
	Timeout         time.Duration `yaml:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type ConsulConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Address     string `yaml:"address"`
	ServiceName string `yaml:"service_name"`
	ServiceHost string `yaml:"service_host"`
}

type OutboxConfig struct {
	BatchSize    int           `yaml:"batch_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxRetries   int           `yaml:"max_retries"`
	Retention    time.Duration `yaml:"retention"`
}

// Default returns the configuration used for local development against the
// Spanner emulator.
func Default() *Config {
	return &Config{
		HTTPPort: "8080",
		GRPCPort: "9090",
		Log:      LogConfig{Level: "info", Format: "json"},
		Store: StoreConfig{
			Driver:          StoreSpanner,
			SpannerDatabase: "projects/test-project/instances/dev-instance/databases/pos-db",
		},
		POS: POSConfig{TaxRate: "0", CashUnderpayment: "allow"},
		MPesa: MPesaConfig{
			Environment:     EnvSandbox,
			TransactionType: "CustomerPayBillOnline",
			Timeout:         30 * time.Second,
		},
		Kafka:  KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "pos.events"},
		Consul: ConsulConfig{Address: "localhost:8500", ServiceName: "pos-service", ServiceHost: "localhost"},
		Outbox: OutboxConfig{
			BatchSize:    100,
			PollInterval: 5 * time.Second,
			MaxRetries:   5,
			Retention:    7 * 24 * time.Hour,
		},
	}
}

// Load builds the configuration from defaults, CONFIG_FILE and the
// environment, then validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.overlayEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) overlayEnv(lookup lookupFunc) error {
	setString(lookup, "HTTP_PORT", &c.HTTPPort)
	setString(lookup, "GRPC_PORT", &c.GRPCPort)
	setString(lookup, "LOG_LEVEL", &c.Log.Level)
	setString(lookup, "LOG_FORMAT", &c.Log.Format)
	setString(lookup, "STORE_DRIVER", &c.Store.Driver)
	setString(lookup, "SPANNER_DATABASE", &c.Store.SpannerDatabase)
	setString(lookup, "POS_TAX_RATE", &c.POS.TaxRate)
	setString(lookup, "POS_CASH_UNDERPAYMENT", &c.POS.CashUnderpayment)
	setString(lookup, "MPESA_ENVIRONMENT", &c.MPesa.Environment)
	setString(lookup, "MPESA_BASE_URL", &c.MPesa.BaseURL)
	setString(lookup, "MPESA_CONSUMER_KEY", &c.MPesa.ConsumerKey)
	setString(lookup, "MPESA_CONSUMER_SECRET", &c.MPesa.ConsumerSecret)
	setString(lookup, "MPESA_SHORTCODE", &c.MPesa.ShortCode)
	setString(lookup, "MPESA_PASSKEY", &c.MPesa.PassKey)
	setString(lookup, "MPESA_CALLBACK_URL", &c.MPesa.CallbackURL)
	setString(lookup, "MPESA_TRANSACTION_TYPE", &c.MPesa.TransactionType)
	setString(lookup, "KAFKA_TOPIC", &c.Kafka.Topic)
	setString(lookup, "CONSUL_ADDRESS", &c.Consul.Address)
	setString(lookup, "CONSUL_SERVICE_NAME", &c.Consul.ServiceName)
	setString(lookup, "CONSUL_SERVICE_HOST", &c.Consul.ServiceHost)

	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = splitList(v)
	}

	var errs []error
	errs = append(errs,
		setBool(lookup, "MPESA_ENABLED", &c.MPesa.Enabled),
		setBool(lookup, "CONSUL_ENABLED", &c.Consul.Enabled),
		setDuration(lookup, "MPESA_TIMEOUT", &c.MPesa.Timeout),
		setDuration(lookup, "OUTBOX_POLL_INTERVAL", &c.Outbox.PollInterval),
		setDuration(lookup, "OUTBOX_RETENTION", &c.Outbox.Retention),
		setInt(lookup, "OUTBOX_BATCH_SIZE", &c.Outbox.BatchSize),
		setInt(lookup, "OUTBOX_MAX_RETRIES", &c.Outbox.MaxRetries),
	)
	return errors.Join(errs...)
}

// Validate checks the settings that would otherwise fail late, at the first
// sale or the first push.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreSpanner:
		if c.Store.SpannerDatabase == "" {
			errs = append(errs, errors.New("SPANNER_DATABASE is required for the spanner store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	if _, err := c.POS.TaxRateRat(); err != nil {
		errs = append(errs, err)
	}
	switch c.POS.CashUnderpayment {
	case "allow", "reject":
	default:
		errs = append(errs, fmt.Errorf("cash underpayment policy must be allow or reject, got %q", c.POS.CashUnderpayment))
	}

	if c.MPesa.Enabled {
		if c.MPesa.Environment != EnvSandbox && c.MPesa.Environment != EnvProduction {
			errs = append(errs, fmt.Errorf("MPESA_ENVIRONMENT must be sandbox or production, got %q", c.MPesa.Environment))
		}
		required := []struct{ key, value string }{
			{"MPESA_CONSUMER_KEY", c.MPesa.ConsumerKey},
			{"MPESA_CONSUMER_SECRET", c.MPesa.ConsumerSecret},
			{"MPESA_SHORTCODE", c.MPesa.ShortCode},
			{"MPESA_PASSKEY", c.MPesa.PassKey},
			{"MPESA_CALLBACK_URL", c.MPesa.CallbackURL},
		}
		for _, r := range required {
			if r.value == "" {
				errs = append(errs, fmt.Errorf("%s is required when M-Pesa is enabled", r.key))
			}
		}
		if c.MPesa.Timeout <= 0 {
			errs = append(errs, errors.New("MPESA_TIMEOUT must be positive"))
		}
	}

	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// TaxRateRat parses the tax rate. It must lie in [0, 1].
func (p POSConfig) TaxRateRat() (*big.Rat, error) {
	raw := strings.TrimSpace(p.TaxRate)
	if raw == "" {
		return new(big.Rat), nil
	}
	rate, ok := new(big.Rat).SetString(raw)
	if !ok {
		return nil, fmt.Errorf("invalid tax rate %q", p.TaxRate)
	}
	if rate.Sign() < 0 || rate.Cmp(big.NewRat(1, 1)) > 0 {
		return nil, fmt.Errorf("tax rate %q must be between 0 and 1", p.TaxRate)
	}
	return rate, nil
}

// ResolvedBaseURL returns the explicit base URL or the Daraja host for the
// configured environment.
func (m MPesaConfig) ResolvedBaseURL() string {
	if m.BaseURL != "" {
		return strings.TrimRight(m.BaseURL, "/")
	}
	if m.Environment == EnvProduction {
		return "https://api.safaricom.co.ke"
	}
	return "https://sandbox.safaricom.co.ke"
}

func setString(lookup lookupFunc, key string, dst *string) {
	if v, ok := lookup(key); ok && v != "" {
		*dst = v
	}
}

func setBool(lookup lookupFunc, key string, dst *bool) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(lookup lookupFunc, key string, dst *int) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(lookup lookupFunc, key string, dst *time.Duration) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
