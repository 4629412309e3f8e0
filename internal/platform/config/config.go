package config

import (
	"os"
	"strings"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	ServiceDomain  string
	BootstrapAdmin string
	JWTSigningKey  string
	RedisURL       string
	KafkaBrokers   []string
	PostgresDSN    string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("REGISTRAR_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	serviceDomain := os.Getenv("REGISTRAR_SERVICE_DOMAIN")
	if serviceDomain == "" {
		serviceDomain = "ctx.xyz"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:           addr,
		ServiceDomain:  serviceDomain,
		BootstrapAdmin: os.Getenv("REGISTRAR_BOOTSTRAP_ADMIN"),
		JWTSigningKey:  jwtSigningKey,
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBrokers:   brokers,
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
	}
}
