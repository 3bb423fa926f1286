package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port   int
	Env    string
	Pepper string

	JWTSecret string
	JWTTTL    time.Duration

	UploadTimeout time.Duration

	Database PostgresConfig
	Minio    MinioConfig
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	BaseURL   string
	UseSSL    bool
}

// IsProd reports whether the app runs with the production environment.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// ConnectionInfo builds the postgres DSN.
func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// LoadConfig reads config.yml via viper, with VIDTUBE_-prefixed environment
// variables overriding file values and dev defaults backing everything. In
// production the config file is required and startup fails without it.
func LoadConfig(prod bool) Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("vidtube")
	viper.AutomaticEnv()

	viper.SetDefault("port", 8000)
	viper.SetDefault("env", "dev")
	viper.SetDefault("pepper", "secret-random-string")
	viper.SetDefault("jwt.secret", "secret-jwt-key")
	viper.SetDefault("jwt.ttl", "24h")
	viper.SetDefault("upload_timeout", "2m")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.name", "vidtube")
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")
	viper.SetDefault("minio.bucket", "vidtube")
	viper.SetDefault("minio.base_url", "http://localhost:9000")
	viper.SetDefault("minio.use_ssl", false)

	if err := viper.ReadInConfig(); err != nil {
		if prod {
			logrus.WithError(err).Fatal("config file is required in production")
		}
		logrus.Info("no config file found, using dev defaults")
	} else {
		logrus.Infof("loaded config file %s", viper.ConfigFileUsed())
	}

	return Config{
		Port:          viper.GetInt("port"),
		Env:           viper.GetString("env"),
		Pepper:        viper.GetString("pepper"),
		JWTSecret:     viper.GetString("jwt.secret"),
		JWTTTL:        viper.GetDuration("jwt.ttl"),
		UploadTimeout: viper.GetDuration("upload_timeout"),
		Database: PostgresConfig{
			Host:     viper.GetString("database.host"),
			Port:     viper.GetInt("database.port"),
			User:     viper.GetString("database.user"),
			Password: viper.GetString("database.password"),
			Name:     viper.GetString("database.name"),
		},
		Minio: MinioConfig{
			Endpoint:  viper.GetString("minio.endpoint"),
			AccessKey: viper.GetString("minio.access_key"),
			SecretKey: viper.GetString("minio.secret_key"),
			Bucket:    viper.GetString("minio.bucket"),
			BaseURL:   viper.GetString("minio.base_url"),
			UseSSL:    viper.GetBool("minio.use_ssl"),
		},
	}
}
