package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/userauth/internal/flagx"
)

// EnvPrefix is prepended to every environment variable read by parseEnv.
const EnvPrefix = "USERAUTH_"

// parseEnv overlays USERAUTH_* variables. When -env names a dotenv file its
// entries are used as a fallback for variables missing from the process
// environment.
func parseEnv(config *Config) error {
	var file map[string]string
	if path := flagx.EnvFileFlag(); path != "" {
		var err error
		file, err = godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("config: read env file %s: %w", path, err)
		}
	}

	return applyEnv(config, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	})
}

func applyEnv(config *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("ENDPOINT_ADDR_HTTP"); ok {
		config.EndpointAddrHTTP = v
	}
	if v, ok := get("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := get("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := get("TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %sTOKEN_TTL: %w", EnvPrefix, err)
		}
		config.TokenTTL = d
	}
	if v, ok := get("BCRYPT_COST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sBCRYPT_COST: %w", EnvPrefix, err)
		}
		config.BcryptCost = n
	}
	if v, ok := get("LOG_FORMAT"); ok {
		config.LogFormat = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
	if v, ok := get("CORS_ALLOWED_ORIGINS"); ok {
		config.CORSAllowedOrigins = splitList(v)
	}
	if v, ok := get("ADMIN_USERS"); ok {
		config.AdminUsers = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
