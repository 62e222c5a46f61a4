package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/userauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-d string     PostgreSQL DSN; empty keeps the in-memory store
//	-s string     token HMAC secret key
//	-t duration   token time-to-live (e.g., "15m")
//	-b int        bcrypt cost
//	-l string     log format: json, text, zerolog, console
//	-v string     log level: debug, info, warn, error
//	-o string     comma-separated CORS allowed origins
//	-admin string comma-separated usernames granted ADMIN on registration
//
// Only the flags above are kept from os.Args (see flagx.FilterArgs), so the
// -c/-config and -env flags read by the other loaders do not collide.
func parseFlags(config *Config) error {
	return parseFlagArgs(config, os.Args[1:])
}

func parseFlagArgs(config *Config, all []string) error {
	args := flagx.FilterArgs(all, []string{"-a", "-d", "-s", "-t", "-b", "-l", "-v", "-o", "-admin"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenTTL, "t", config.TokenTTL, "token time-to-live")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	origins := fs.String("o", strings.Join(config.CORSAllowedOrigins, ","), "CORS allowed origins")
	admins := fs.String("admin", strings.Join(config.AdminUsers, ","), "admin usernames")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("config: flags: %w", err)
	}

	config.CORSAllowedOrigins = splitList(*origins)
	config.AdminUsers = splitList(*admins)
	return nil
}
