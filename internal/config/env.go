package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

type Env struct {
	AppAddr string
	GinMode string

	DBDriver      string
	DBDSN         string
	DBAutoMigrate bool

	AuthJWTSecret  string
	AuthCookieName string
	AuthAudience   string

	LLMProvider    string
	LLMModel       string
	LLMAPIKey      string
	LLMBaseURL     string
	LLMMaxTokens   int
	LLMTemperature float64

	CORSAllowedOrigins []string

	LogFile          string
	TelemetryEnabled bool
	TelemetryDir     string
}

// LoadEnv reads the process environment; a .env file in the working directory is
// loaded first when present.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env", "error", err)
	}

	env := Env{
		AppAddr:        getString("APP_ADDR", ":8080"),
		GinMode:        getString("GIN_MODE", ""),
		DBDriver:       strings.ToLower(getString("DB_DRIVER", DriverMySQL)),
		DBAutoMigrate:  getBool("DB_AUTO_MIGRATE", true),
		AuthJWTSecret:  getString("AUTH_JWT_SECRET", ""),
		AuthCookieName: getString("AUTH_COOKIE_NAME", "sb-access-token"),
		AuthAudience:   getString("AUTH_AUDIENCE", ""),
		LLMProvider:    strings.ToLower(getString("LLM_PROVIDER", ProviderAnthropic)),
		LLMModel:       getString("LLM_MODEL", ""),
		LLMBaseURL:     getString("LLM_BASE_URL", ""),
		LLMMaxTokens:   getInt("LLM_MAX_TOKENS", 1000),
		LLMTemperature: getFloat("LLM_TEMPERATURE", 0.7),
		LogFile:        getString("LOG_FILE", ""),
		TelemetryDir:   getString("TELEMETRY_DIR", "logs"),

		TelemetryEnabled: getBool("TELEMETRY_ENABLED", false),
	}

	env.DBDSN = getString("DB_DSN", defaultDSN(env.DBDriver))

	env.LLMAPIKey = getString("LLM_API_KEY", "")
	if env.LLMAPIKey == "" {
		switch env.LLMProvider {
		case ProviderOpenAI:
			env.LLMAPIKey = getString("OPENAI_API_KEY", "")
		default:
			env.LLMAPIKey = getString("ANTHROPIC_API_KEY", "")
		}
	}

	if raw := getString("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSAllowedOrigins = append(env.CORSAllowedOrigins, o)
			}
		}
	}

	return env
}

func defaultDSN(driver string) string {
	if driver == DriverSQLite {
		return "file:familytrip.db?_foreign_keys=on"
	}
	return "root:@tcp(127.0.0.1:3306)/familytrip?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
}

func getString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v := getString(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := getString(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", v)
		return def
	}
	return f
}

func getBool(key string, def bool) bool {
	v := getString(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", v)
		return def
	}
	return b
}
