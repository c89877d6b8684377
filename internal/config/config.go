// Package config loads the server configuration.
//
// Values are taken, from lowest to highest priority, from the defaults, a JSON
// or YAML file named by CONFIG (or -c), the environment (a .env file is
// loaded first when present) and the command line flags.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// Config holds every setting of the server.
type Config struct {
	RunAddr     string `env:"SERVER_ADDRESS" json:"server_address" yaml:"server_address" validate:"hostname_port"`
	GRPCAddr    string `env:"GRPC_ADDRESS" json:"grpc_address" yaml:"grpc_address" validate:"omitempty,hostname_port"`
	LogLevel    string `env:"LOG_LEVEL" json:"log_level" yaml:"log_level" validate:"loglevel"`
	LogFile     string `env:"LOG_FILE" json:"log_file" yaml:"log_file" validate:"filepath"`
	Environment string `env:"ENVIRONMENT" json:"environment" yaml:"environment" validate:"oneof=development production"`

	DBFileName          string        `env:"FILE_STORAGE_PATH" json:"file_storage_path" yaml:"file_storage_path" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN" json:"database_dsn" yaml:"database_dsn"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"-" yaml:"-"`
	RedisAddress        string        `env:"REDIS_ADDRESS" json:"redis_address" yaml:"redis_address" validate:"omitempty,hostname_port"`
	RedisPassword       string        `env:"REDIS_PASSWORD" json:"redis_password" yaml:"redis_password"`
	RedisDB             int           `env:"REDIS_DB" json:"redis_db" yaml:"redis_db" validate:"min=0"`

	GithubAdminID      string   `env:"GITHUB_ADMIN_ID" json:"github_admin_id" yaml:"github_admin_id"`
	GithubClientID     string   `env:"GITHUB_CLIENT_ID" json:"github_client_id" yaml:"github_client_id"`
	GithubClientSecret string   `env:"GITHUB_CLIENT_SECRET" json:"github_client_secret" yaml:"github_client_secret"`
	GithubCallbackURL  string   `env:"GITHUB_CALLBACK_URL" json:"github_callback_url" yaml:"github_callback_url" validate:"omitempty,url"`
	SessionSecrets     []string `env:"SESSION_SECRETS" envSeparator:"," json:"session_secrets" yaml:"session_secrets" validate:"required_if=Environment production,dive,required"`

	TrustedSubnet       string `env:"TRUSTED_SUBNET" json:"trusted_subnet" yaml:"trusted_subnet" validate:"cidr_or_empty"`
	UserServiceURL      string `env:"USER_SERVICE_URL" json:"user_service_url" yaml:"user_service_url" validate:"omitempty,url"`
	UserServiceGRPCAddr string `env:"USER_SERVICE_GRPC_ADDR" json:"user_service_grpc_addr" yaml:"user_service_grpc_addr" validate:"omitempty,hostname_port"`
	GRPCSharedSecret    string `env:"GRPC_SHARED_SECRET" json:"grpc_shared_secret" yaml:"grpc_shared_secret"`

	ConfigFile string `env:"CONFIG" json:"-" yaml:"-"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	GRPCAddr:            ":3200",
	LogLevel:            "info",
	Environment:         EnvironmentDevelopment,
	DBConnectionTimeout: 10 * time.Second,
	GithubCallbackURL:   "http://localhost:8080/auth/github/callback",
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// New builds the configuration from all sources and validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Unable to load .env file: %v", err)
	}

	var valuesFromFlags Config
	if !options.disableFlagsParsing {
		valuesFromFlags, err = parseFlags(options.args)
		if err != nil {
			return nil, err
		}
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}

	cfg := &Config{}
	applyDefaults(cfg, defaultConfig)

	configFile := valuesFromEnv.ConfigFile
	if valuesFromFlags.ConfigFile != "" {
		configFile = valuesFromFlags.ConfigFile
	}
	if configFile != "" {
		valuesFromFile, err := loadFile(configFile)
		if err != nil {
			return nil, err
		}
		override(cfg, valuesFromFile)
	}

	override(cfg, valuesFromEnv)
	override(cfg, valuesFromFlags)

	if len(cfg.SessionSecrets) == 0 && !cfg.IsProduction() {
		cfg.SessionSecrets = []string{randomSecret()}
		log.Printf("SESSION_SECRETS is not set, sessions will not survive a restart")
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseFlags(args []string) (Config, error) {
	var values Config
	var sessionSecrets string

	flags := flag.NewFlagSet("atomicnotes", flag.ContinueOnError)
	flags.StringVar(&values.ConfigFile, "c", "", "JSON or YAML configuration file")
	flags.StringVar(&values.RunAddr, "a", "", "address and port to run the HTTP server")
	flags.StringVar(&values.GRPCAddr, "g", "", "address and port to run the gRPC server")
	flags.StringVar(&values.LogLevel, "l", "", "logger level")
	flags.StringVar(&values.LogFile, "log-file", "", "file to additionally write logs to")
	flags.StringVar(&values.Environment, "e", "", "development or production")
	flags.StringVar(&values.DBFileName, "f", "", "JSON file name with the key-value storage")
	flags.StringVar(&values.DatabaseDSN, "d", "", "A string with the database connection details")
	flags.StringVar(&values.RedisAddress, "r", "", "redis address")
	flags.StringVar(&values.TrustedSubnet, "t", "", "trusted subnet in CIDR notation")
	flags.StringVar(&values.UserServiceURL, "u", "", "base URL of a remote user service")
	flags.StringVar(&sessionSecrets, "s", "", "comma separated session secrets, the first one signs")

	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("in internal/config/config.go/parseFlags(): error while `flags.Parse()` calling: %w", err)
	}
	if sessionSecrets != "" {
		values.SessionSecrets = strings.Split(sessionSecrets, ",")
	}

	return values, nil
}

func loadFile(fileName string) (Config, error) {
	var values Config

	content, err := os.ReadFile(fileName)
	if err != nil {
		return values, fmt.Errorf("in internal/config/config.go/loadFile(): error while `os.ReadFile()` calling: %w", err)
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &values)
	default:
		err = json.Unmarshal(content, &values)
	}
	if err != nil {
		return values, fmt.Errorf("in internal/config/config.go/loadFile(): error while decoding %q: %w", fileName, err)
	}

	return values, nil
}

// applyDefaults fills every zero field of values from defaults.
func applyDefaults(values *Config, defaults Config) {
	merge(values, defaults, func(dst reflect.Value) bool { return dst.IsZero() })
}

// override copies every non-zero field of src into values.
func override(values *Config, src Config) {
	merge(values, src, func(reflect.Value) bool { return true })
}

func merge(values *Config, src Config, replace func(dst reflect.Value) bool) {
	dstValue := reflect.ValueOf(values).Elem()
	srcValue := reflect.ValueOf(src)
	for i := 0; i < srcValue.NumField(); i++ {
		field := srcValue.Field(i)
		if field.IsZero() || !replace(dstValue.Field(i)) {
			continue
		}
		dstValue.Field(i).Set(field)
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":  true,
		"info":   true,
		"warn":   true,
		"error":  true,
		"dpanic": true,
		"panic":  true,
		"fatal":  true,
	}

	return allowedLogLevels[value]
}

func validateCIDROrEmpty(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()
	if value == "" {
		return true
	}
	_, _, err := net.ParseCIDR(value)

	return err == nil
}

func validate(cfg *Config) error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("cidr_or_empty", validateCIDROrEmpty)
	if err != nil {
		return err
	}

	return validate.Struct(cfg)
}
