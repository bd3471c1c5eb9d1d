package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Mongo    MongoConfig    `json:"mongo"`
	AWS      AWSConfig      `json:"aws"`
	Search   SearchConfig   `json:"search"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents the Postgres configuration (listings,
// inquiries, sales ledger)
type DatabaseConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"db_name"`
	SSLMode        string `json:"ssl_mode"`
	MaxConnections int    `json:"max_connections"`
	MaxIdleConns   int    `json:"max_idle_conns"`
}

// DSN renders the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// MongoConfig represents the document database holding parcel records and
// photo-node metadata
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// AWSConfig groups the AWS integrations: S3 photo storage, DynamoDB fix
// telemetry, SES inquiry mail, SNS payment notifications.
type AWSConfig struct {
	Region         string `json:"region"`
	AccessKey      string `json:"access_key"`
	SecretKey      string `json:"secret_key"`
	S3Endpoint     string `json:"s3_endpoint"`
	PhotoBucket    string `json:"photo_bucket"`
	TelemetryTable string `json:"telemetry_table"`
	SenderEmail    string `json:"sender_email"`
	PaymentsTopic  string `json:"payments_topic_arn"`
}

// SearchConfig represents the Elasticsearch listing index
type SearchConfig struct {
	Addresses []string `json:"addresses"`
	Index     string   `json:"index"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// A .env file is optional; ignore absence.
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "landportal",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "landportal",
		},
		AWS: AWSConfig{
			Region:         "eu-west-1",
			PhotoBucket:    "landportal-photos",
			TelemetryTable: "capture-fix-telemetry",
		},
		Search: SearchConfig{
			Addresses: []string{"http://localhost:9200"},
			Index:     "listings",
		},
		Logging: LoggingConfig{Level: "info"},
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
			}
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_HOST"); v != "" {
		config.Database.Host = v
	}
	if v := os.Getenv("DATABASE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}
	if v := os.Getenv("DATABASE_USER"); v != "" {
		config.Database.User = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		config.Database.Password = v
	}
	if v := os.Getenv("DATABASE_DBNAME"); v != "" {
		config.Database.DBName = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		config.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		config.Mongo.Database = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		config.AWS.Region = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		config.AWS.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		config.AWS.SecretKey = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		config.AWS.S3Endpoint = v
	}
	if v := os.Getenv("PHOTO_BUCKET"); v != "" {
		config.AWS.PhotoBucket = v
	}
	if v := os.Getenv("TELEMETRY_TABLE"); v != "" {
		config.AWS.TelemetryTable = v
	}
	if v := os.Getenv("SENDER_EMAIL"); v != "" {
		config.AWS.SenderEmail = v
	}
	if v := os.Getenv("PAYMENTS_TOPIC_ARN"); v != "" {
		config.AWS.PaymentsTopic = v
	}
	if v := os.Getenv("ELASTICSEARCH_URL"); v != "" {
		config.Search.Addresses = []string{v}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Security.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
