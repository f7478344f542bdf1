package config

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/AbdulWasayUl/go-country-currency/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Artifact storage.Config `mapstructure:"artifact"`
	Log      logger.Config  `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" default:"3000"`
}

type MongoConfig struct {
	URI                  string `mapstructure:"uri" default:""`
	Host                 string `mapstructure:"host" default:"localhost"`
	Port                 string `mapstructure:"port" default:"27017"`
	User                 string `mapstructure:"user" default:""`
	Pass                 string `mapstructure:"pass" default:""`
	Database             string `mapstructure:"database" default:"countries_db"`
	Collection           string `mapstructure:"collection" default:"countries"`
	MigrationsCollection string `mapstructure:"migrations_collection" default:"migrations_history"`
}

// UpstreamConfig locates the two external data sources.
type UpstreamConfig struct {
	CountriesURL string        `mapstructure:"countries_url" default:"https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"`
	RatesURL     string        `mapstructure:"rates_url" default:"https://open.er-api.com/v6/latest/USD"`
	Timeout      time.Duration `mapstructure:"timeout" default:"10s"`
}

// RefreshConfig controls background refreshes. An Interval of zero disables the schedule.
type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval" default:"0s"`
	OnStart  bool          `mapstructure:"on_start" default:"false"`
	Workers  int           `mapstructure:"workers" default:"5"`
}

// Load reads the .env file in dir (if any) and then the environment.
// Keys map to variables as SECTION_KEY, e.g. mongo.uri -> MONGO_URI.
func Load(dir string) (*Config, error) {
	envPath := ".env"
	if dir != "" && dir != "." {
		envPath = dir + "/.env"
	}
	// Ignore err if .env file is not found in deployment
	_ = godotenv.Load(envPath)

	v := viper.New()
	bindDefaults(v, reflect.TypeOf(Config{}), "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, nil
}

// bindDefaults registers every mapstructure key with its default tag so
// that AutomaticEnv can resolve it.
func bindDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}

// ConnectionURI returns URI when set, otherwise builds one from host, port and credentials.
func (m MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	u := url.URL{Scheme: "mongodb", Host: m.Host + ":" + m.Port}
	if m.User != "" {
		u.User = url.UserPassword(m.User, m.Pass)
	}
	return u.String()
}
