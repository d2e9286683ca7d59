package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int    `yaml:"port"`
		FrontendURL string `yaml:"frontendUrl"`
		BackendURL  string `yaml:"backendUrl"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Prober struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"prober"`

	Payment struct {
		APIKey   string `yaml:"apiKey"`
		UserID   string `yaml:"userId"`
		PageCode string `yaml:"pageCode"`
		Sandbox  bool   `yaml:"sandbox"`
		Amount   int    `yaml:"amount"`
	} `yaml:"payment"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`
}

// Load reads config.yaml and applies env overrides for secrets
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if cfg.Payment.Amount == 0 {
		cfg.Payment.Amount = 79
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PAYMENT_API_KEY"); v != "" {
		c.Payment.APIKey = v
	}
	if v := os.Getenv("PAYMENT_USER_ID"); v != "" {
		c.Payment.UserID = v
	}
	if v := os.Getenv("PAYMENT_PAGE_CODE"); v != "" {
		c.Payment.PageCode = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.Server.FrontendURL = v
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		c.Server.BackendURL = v
	}
}

// MySQLDSN helper to build the MySQL connection string
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN helper to build the Postgres connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}
