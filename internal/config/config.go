package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	AppEnv  string `env:"APP_ENV" envDefault:"production"`
	GitSHA  string `env:"GIT_SHA"`
	Version string `env:"APP_VERSION" envDefault:"dev"`

	Database
	DBAutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"false"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	Payment Payment

	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopicPrefix string   `env:"KAFKA_TOPIC_PREFIX" envDefault:"pranam"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	StorageBucket string `env:"STORAGE_BUCKET"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ChatRateLimit      float64  `env:"CHAT_RATE_LIMIT" envDefault:"2"`
}

// Database is shared by the API and the migrate and seed commands.
type Database struct {
	DBUser                 string `env:"DB_USER,required"`
	DBPassword             string `env:"DB_PASSWORD,required"`
	DBHost                 string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME,required"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`
}

func LoadDatabase() (*Database, error) {
	var d Database
	if err := env.Parse(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Payment holds Razorpay credentials. An empty KeyID switches order creation
// to mock gateway ids.
type Payment struct {
	KeyID         string `env:"RAZORPAY_KEY_ID"`
	KeySecret     string `env:"RAZORPAY_KEY_SECRET"`
	WebhookSecret string `env:"RAZORPAY_WEBHOOK_SECRET"`
	BaseURL       string `env:"RAZORPAY_BASE_URL" envDefault:"https://api.razorpay.com/v1"`
	Currency      string `env:"PAYMENT_CURRENCY" envDefault:"INR"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv != "development" && c.AppEnv != "test"
}

// Admin is read by cmd/provision-admin only.
type Admin struct {
	Name     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	Email    string `env:"ADMIN_EMAIL,required"`
	Password string `env:"ADMIN_PASSWORD,required"`
}

func LoadAdmin() (*Admin, error) {
	var a Admin
	if err := env.Parse(&a); err != nil {
		return nil, err
	}
	return &a, nil
}
