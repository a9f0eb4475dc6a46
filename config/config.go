package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Services ServicesConfig `yaml:"services"`
	Booking  BookingConfig  `yaml:"booking"`
	Mail     MailConfig     `yaml:"mail"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig is optional: an empty Addr disables the pricing cache and the ticket delivery lock.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	BookingTopic      string   `yaml:"booking_topic"`
	DeadLetterTopic   string   `yaml:"dead_letter_topic"`
	GroupID           string   `yaml:"group_id"`
	Partitions        int      `yaml:"partitions"`
	ReplicationFactor int      `yaml:"replication_factor"`
}

type ServicesConfig struct {
	FlightsURL string `yaml:"flights_url"`
	UsersURL   string `yaml:"users_url"`
	TimeoutMS  int    `yaml:"timeout_ms"`
}

func (s ServicesConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

type BookingConfig struct {
	PricingCacheTTL int `yaml:"pricing_cache_ttl_seconds"`
}

type MailConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	From      string `yaml:"from"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

func (m MailConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutMS) * time.Millisecond
}

type WorkerConfig struct {
	DeliveryIntervalSeconds int  `yaml:"delivery_interval_seconds"`
	BatchSize               int  `yaml:"batch_size"`
	TicketLockTTLSeconds    int  `yaml:"ticket_lock_ttl_seconds"`
	DedupeByBooking         bool `yaml:"dedupe_by_booking"`
}

func (w WorkerConfig) DeliveryInterval() time.Duration {
	return time.Duration(w.DeliveryIntervalSeconds) * time.Second
}

func (w WorkerConfig) TicketLockTTL() time.Duration {
	return time.Duration(w.TicketLockTTLSeconds) * time.Second
}

const (
	AppConfigFile    = "config.yaml"
	WorkerConfigFile = "config.worker.yaml"
)

// PathFromEnv returns CONFIG_PATH when set, otherwise the binary's own default file.
func PathFromEnv(defaultPath string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultPath
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fills in defaults for zero values and rejects configs the services cannot start with.
func (c *Config) Validate() error {
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("config: kafka.brokers is required")
	}
	if c.Database.Name == "" {
		return errors.New("config: database.name is required")
	}

	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.BookingTopic == "" {
		c.Kafka.BookingTopic = "noti-queue"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "notification-service"
	}
	if c.Kafka.Partitions <= 0 {
		c.Kafka.Partitions = 1
	}
	if c.Kafka.ReplicationFactor <= 0 {
		c.Kafka.ReplicationFactor = 1
	}
	if c.Services.TimeoutMS <= 0 {
		c.Services.TimeoutMS = 3000
	}
	if c.Mail.TimeoutMS <= 0 {
		c.Mail.TimeoutMS = 10000
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
	if c.Worker.DeliveryIntervalSeconds <= 0 {
		c.Worker.DeliveryIntervalSeconds = 5
	}
	if c.Worker.BatchSize <= 0 {
		c.Worker.BatchSize = 100
	}
	if c.Worker.TicketLockTTLSeconds <= 0 {
		c.Worker.TicketLockTTLSeconds = 60
	}
	return nil
}
