package shared

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv string

	// application under test
	BaseURL       string
	APIBaseURL    string
	AdminUsername string
	AdminPassword string
	APIRPS        int

	// browser
	Browser                string
	Headless               bool
	SlowMo                 time.Duration
	ExpectTimeout          time.Duration
	ActionTimeout          time.Duration
	Screenshots            bool
	RecordVideo            bool
	ArtifactsDir           string
	PlaywrightPreinstalled bool

	FixturesDir string
	Teardown    bool

	// reporting
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	JanitorWorkers int
}

// HasAdmin reports whether AUT admin credentials were supplied.
func (c Config) HasAdmin() bool { return c.AdminUsername != "" && c.AdminPassword != "" }

var defaults = map[string]any{
	"APP_ENV":                 "prod",
	"BASE_URL":                "https://automationintesting.online",
	"API_BASE_URL":            "",
	"ADMIN_USERNAME":          "",
	"ADMIN_PASSWORD":          "",
	"API_RPS":                 5,
	"BROWSER":                 "chromium",
	"HEADLESS":                true,
	"SLOW_MO_MS":              0,
	"EXPECT_TIMEOUT_MS":       5000,
	"ACTION_TIMEOUT_MS":       15000,
	"SCREENSHOTS":             true,
	"RECORD_VIDEO":            false,
	"ARTIFACTS_DIR":           "./test-results",
	"PLAYWRIGHT_PREINSTALLED": false,
	"FIXTURES_DIR":            "",
	"TEARDOWN":                true,
	"HTTP_ADDR":               ":8080",
	"METRICS_ADDR":            "",
	"MYSQL_DSN":               "",
	"REDIS_ADDR":              "",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,
	"CACHE_TTL_SECONDS":       900,
	"JANITOR_WORKERS":         4,
}

// Load reads configuration from the environment and an optional .env file
// in the working directory. Environment variables win over the file.
func Load() Config {
	v := viper.New()
	v.SetConfigFile(envFile())
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("ignoring unreadable env file")
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already-populated viper instance.
func FromViper(v *viper.Viper) Config {
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	ms := func(k string) time.Duration { return time.Duration(v.GetInt(k)) * time.Millisecond }

	c := Config{
		AppEnv:                 v.GetString("APP_ENV"),
		BaseURL:                strings.TrimRight(v.GetString("BASE_URL"), "/"),
		APIBaseURL:             strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		AdminUsername:          v.GetString("ADMIN_USERNAME"),
		AdminPassword:          v.GetString("ADMIN_PASSWORD"),
		APIRPS:                 v.GetInt("API_RPS"),
		Browser:                strings.ToLower(v.GetString("BROWSER")),
		Headless:               v.GetBool("HEADLESS"),
		SlowMo:                 ms("SLOW_MO_MS"),
		ExpectTimeout:          ms("EXPECT_TIMEOUT_MS"),
		ActionTimeout:          ms("ACTION_TIMEOUT_MS"),
		Screenshots:            v.GetBool("SCREENSHOTS"),
		RecordVideo:            v.GetBool("RECORD_VIDEO"),
		ArtifactsDir:           v.GetString("ARTIFACTS_DIR"),
		PlaywrightPreinstalled: v.GetBool("PLAYWRIGHT_PREINSTALLED"),
		FixturesDir:            v.GetString("FIXTURES_DIR"),
		Teardown:               v.GetBool("TEARDOWN"),
		HTTPAddr:               v.GetString("HTTP_ADDR"),
		MetricsAddr:            v.GetString("METRICS_ADDR"),
		MySQLDSN:               v.GetString("MYSQL_DSN"),
		RedisAddr:              v.GetString("REDIS_ADDR"),
		RedisPass:              v.GetString("REDIS_PASSWORD"),
		RedisDB:                v.GetInt("REDIS_DB"),
		CacheTTL:               time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		JanitorWorkers:         v.GetInt("JANITOR_WORKERS"),
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = c.BaseURL + "/api"
	}
	if !c.HasAdmin() {
		log.Warn().Msg("ADMIN_USERNAME/ADMIN_PASSWORD empty; API fixtures and teardown disabled")
	}
	return c
}

func envFile() string {
	if p := os.Getenv("ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}
