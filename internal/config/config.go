package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration (file + env overrides)
type Config struct {
	Server struct {
		Addr     string `mapstructure:"addr"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"server"`

	Postgres struct {
		Host         string `mapstructure:"host"`
		Port         int    `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		DBName       string `mapstructure:"db_name"`
		SSLMode      string `mapstructure:"ssl_mode"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
	} `mapstructure:"postgres"`

	Auth struct {
		JWTSecret         string `mapstructure:"jwt_secret"`
		TokenTTLMinutes   int    `mapstructure:"token_ttl_minutes"`
		BootstrapUsername string `mapstructure:"bootstrap_username"`
		BootstrapPassword string `mapstructure:"bootstrap_password"`
	} `mapstructure:"auth"`

	FCM struct {
		ServerKey string `mapstructure:"server_key"`
		Endpoint  string `mapstructure:"endpoint"`
	} `mapstructure:"fcm"`

	RateLimit struct {
		RequestsPerSecond float64 `mapstructure:"requests_per_second"`
		Burst             int     `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`

	Tracing struct {
		Enabled     bool   `mapstructure:"enabled"`
		Endpoint    string `mapstructure:"endpoint"`
		ServiceName string `mapstructure:"service_name"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"tracing"`

	Scheduler struct {
		Enabled bool   `mapstructure:"enabled"`
		Spec    string `mapstructure:"spec"`
	} `mapstructure:"scheduler"`
}

func Load() Config {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	_ = v.ReadInConfig() // optional; env can fully configure

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("unable to decode config: %w", err))
	}
	validate(&cfg)
	return cfg
}

func validate(c *Config) {
	if c.Server.Addr == "" { c.Server.Addr = ":8080" }
	if c.Postgres.Port == 0 { c.Postgres.Port = 5432 }
	if c.Postgres.SSLMode == "" { c.Postgres.SSLMode = "disable" }
	if c.Postgres.MaxOpenConns == 0 { c.Postgres.MaxOpenConns = 10 }
	if c.Postgres.MaxIdleConns == 0 { c.Postgres.MaxIdleConns = 10 }
	if c.Auth.TokenTTLMinutes <= 0 { c.Auth.TokenTTLMinutes = 60 }
	if c.Auth.BootstrapUsername == "" { c.Auth.BootstrapUsername = "admin" }
	if c.FCM.Endpoint == "" { c.FCM.Endpoint = "https://fcm.googleapis.com/fcm/send" }
	if c.RateLimit.RequestsPerSecond <= 0 { c.RateLimit.RequestsPerSecond = 20 }
	if c.RateLimit.Burst <= 0 { c.RateLimit.Burst = 40 }
	if c.Tracing.ServiceName == "" { c.Tracing.ServiceName = "admob-switch" }
	if c.Scheduler.Spec == "" { c.Scheduler.Spec = "@every 1m" }
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.DBName,
		c.Postgres.SSLMode,
	)
}
