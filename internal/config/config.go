package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string

	// Bootstrap values for the instance config row; ignored once the row
	// exists.
	OwnerAddress           string
	InstanceAddress        string
	DefaultCooldownSeconds int

	OracleURL             string
	OracleCallbackURL     string
	OraclePublicKeyBase64 string
	OracleTimeoutSeconds  int

	PolicyBundlePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		OwnerAddress:           os.Getenv("OWNER_ADDRESS"),
		InstanceAddress:        os.Getenv("INSTANCE_ADDRESS"),
		DefaultCooldownSeconds: envIntDefault("DEFAULT_COOLDOWN_SECONDS", 60),
		OracleURL:              os.Getenv("ORACLE_URL"),
		OracleCallbackURL:      os.Getenv("ORACLE_CALLBACK_URL"),
		OraclePublicKeyBase64:  os.Getenv("ORACLE_PUBLIC_KEY_BASE64"),
		OracleTimeoutSeconds:   envIntDefault("ORACLE_TIMEOUT_SECONDS", 10),
		PolicyBundlePath:       os.Getenv("POLICY_BUNDLE_PATH"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
