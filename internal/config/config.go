package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	Env     string `yaml:"env"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	AccessSecret  string `yaml:"access_secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	Issuer        string `yaml:"issuer"`
	AccessTTL     string `yaml:"access_ttl"`
	RefreshTTL    string `yaml:"refresh_ttl"`
}

type OTPConfig struct {
	TTL            string `yaml:"ttl"`
	MaxAttempts    int    `yaml:"max_attempts"`
	RequestCeiling int    `yaml:"request_ceiling"`
	RequestWindow  string `yaml:"request_window"`
}

type LockoutConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Duration    string `yaml:"duration"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Lockout  LockoutConfig  `yaml:"lockout"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Casbin   CasbinConfig   `yaml:"casbin"`
}

type Config struct {
	Port              string
	Env               string
	GinMode           string
	DSN               string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	JWTAccessSecret   string
	JWTRefreshSecret  string
	JWTIssuer         string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	OTPTTL            time.Duration
	OTPMaxAttempts    int
	OTPRequestCeiling int
	OTPRequestWindow  time.Duration
	LockoutAttempts   int
	LockoutDuration   time.Duration
	TwilioSID         string
	TwilioToken       string
	TwilioFrom        string
	CasbinModelPath   string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the YAML config file, with CONFIG_PATH overriding the default
// location and secrets overridable through the environment.
func Load() (*Config, error) {
	path := env("CONFIG_PATH", "config/config.yml")
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := time.ParseDuration(configFile.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	refTTL, err := time.ParseDuration(configFile.JWT.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}

	otpTTL, err := time.ParseDuration(configFile.OTP.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	reqWnd, err := time.ParseDuration(configFile.OTP.RequestWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP request window: %w", err)
	}

	lockDur, err := time.ParseDuration(configFile.Lockout.Duration)
	if err != nil {
		return nil, fmt.Errorf("invalid lockout duration: %w", err)
	}

	return &Config{
		Port:              fmt.Sprintf("%d", configFile.App.Port),
		Env:               configFile.App.Env,
		GinMode:           configFile.App.GinMode,
		DSN:               env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:         env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:     env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:           configFile.Redis.DB,
		JWTAccessSecret:   env("JWT_ACCESS_SECRET", configFile.JWT.AccessSecret),
		JWTRefreshSecret:  env("JWT_REFRESH_SECRET", configFile.JWT.RefreshSecret),
		JWTIssuer:         configFile.JWT.Issuer,
		AccessTTL:         accTTL,
		RefreshTTL:        refTTL,
		OTPTTL:            otpTTL,
		OTPMaxAttempts:    configFile.OTP.MaxAttempts,
		OTPRequestCeiling: configFile.OTP.RequestCeiling,
		OTPRequestWindow:  reqWnd,
		LockoutAttempts:   configFile.Lockout.MaxAttempts,
		LockoutDuration:   lockDur,
		TwilioSID:         env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken:       env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:        configFile.Twilio.FromNumber,
		CasbinModelPath:   configFile.Casbin.ModelPath,
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
