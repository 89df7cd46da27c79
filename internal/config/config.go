package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Token    TokenConfig    `yaml:"token"`
	Auth     AuthConfig     `yaml:"auth"`
	Hub      HubConfig      `yaml:"hub"`
	CORS     CORSConfig     `yaml:"cors"`
}

type HTTPConfig struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:""`
}

type DatabaseConfig struct {
	// DSN left empty runs the engine on the in-memory store.
	DSN string `yaml:"dsn" env:"DATABASE_DSN" env-default:""`
}

type SessionConfig struct {
	Duration        time.Duration `yaml:"duration" env:"SESSION_DURATION" env-default:"2h"`
	DefaultCapacity int           `yaml:"default_capacity" env-default:"10"`
	MaxCapacity     int           `yaml:"max_capacity" env-default:"100"`
}

type TokenConfig struct {
	APIKey    string        `yaml:"api_key" env:"ROOM_API_KEY"`
	APISecret string        `yaml:"api_secret" env:"ROOM_API_SECRET"`
	TTL       time.Duration `yaml:"ttl" env-default:"3h"`
}

type AuthConfig struct {
	Secret string `yaml:"secret" env:"AUTH_SECRET"`
	Issuer string `yaml:"issuer" env:"AUTH_ISSUER" env-default:""`
}

type HubConfig struct {
	MaxSubscribers int `yaml:"max_subscribers" env-default:"2048"`
	BufferSize     int `yaml:"buffer_size" env-default:"16"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.setDefaults()

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Session.Duration <= 0 {
		c.Session.Duration = 2 * time.Hour
	}
	if c.Token.TTL <= 0 {
		c.Token.TTL = c.Session.Duration + time.Hour
	}
}
