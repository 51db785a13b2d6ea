package config

import (
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/prontuario/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "PRONTUARIO"

// FileConfig mirrors Config for decoding config files and environment
// variables through viper. Durations accept strings such as "1h" or "30m";
// lists accept YAML/JSON arrays or comma-separated strings.
type FileConfig struct {
	EndpointAddrHTTP            string        `mapstructure:"endpoint_addr_http"`
	DatabaseDSN                 string        `mapstructure:"database_dsn"`
	SecretKey                   string        `mapstructure:"secret_key"`
	AccessTokenValidityDuration time.Duration `mapstructure:"access_token_validity_duration"`
	BcryptCost                  int           `mapstructure:"bcrypt_cost"`
	UploadDir                   string        `mapstructure:"upload_dir"`
	AttachmentBackend           string        `mapstructure:"attachment_backend"`
	MaxUploadSize               int64         `mapstructure:"max_upload_size"`
	S3RootUser                  string        `mapstructure:"s3_root_user"`
	S3RootPassword              string        `mapstructure:"s3_root_password"`
	S3Bucket                    string        `mapstructure:"s3_bucket"`
	S3Region                    string        `mapstructure:"s3_region"`
	S3BaseEndpoint              string        `mapstructure:"s3_base_endpoint"`
	LogLevel                    string        `mapstructure:"log_level"`
	LogFormat                   string        `mapstructure:"log_format"`
	CORSAllowedOrigins          []string      `mapstructure:"cors_allowed_origins"`
}

// loadDotEnv loads variables from the file named by PRONTUARIO_ENV_FILE, or
// from ./.env when present. Variables already set in the environment win.
func loadDotEnv() {
	path := os.Getenv(EnvPrefix + "_ENV_FILE")
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}

// parseFile overlays values from the config file given by -c/-config and
// from PRONTUARIO_* environment variables. Keys absent from both keep the
// value already present in config.
//
// If the file cannot be read or decoded, the function panics.
func parseFile(config *Config) {
	overlay(config, flagx.ConfigPath())
}

func overlay(config *Config, file string) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so every key is seeded with
	// the current value.
	v.SetDefault("endpoint_addr_http", config.EndpointAddrHTTP)
	v.SetDefault("database_dsn", config.DatabaseDSN)
	v.SetDefault("secret_key", config.SecretKey)
	v.SetDefault("access_token_validity_duration", config.AccessTokenValidityDuration)
	v.SetDefault("bcrypt_cost", config.BcryptCost)
	v.SetDefault("upload_dir", config.UploadDir)
	v.SetDefault("attachment_backend", config.AttachmentBackend)
	v.SetDefault("max_upload_size", config.MaxUploadSize)
	v.SetDefault("s3_root_user", config.S3RootUser)
	v.SetDefault("s3_root_password", config.S3RootPassword)
	v.SetDefault("s3_bucket", config.S3Bucket)
	v.SetDefault("s3_region", config.S3Region)
	v.SetDefault("s3_base_endpoint", config.S3BaseEndpoint)
	v.SetDefault("log_level", config.LogLevel)
	v.SetDefault("log_format", config.LogFormat)
	v.SetDefault("cors_allowed_origins", config.CORSAllowedOrigins)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			panic(err)
		}
	}

	c := &FileConfig{}
	if err := v.Unmarshal(c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration
	config.BcryptCost = c.BcryptCost
	config.UploadDir = c.UploadDir
	config.AttachmentBackend = c.AttachmentBackend
	config.MaxUploadSize = c.MaxUploadSize
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.LogLevel = c.LogLevel
	config.LogFormat = c.LogFormat
	config.CORSAllowedOrigins = c.CORSAllowedOrigins
}
