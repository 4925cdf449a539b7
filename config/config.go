// Package config loads the service configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STOREFRONT_CONFIG_FILE"

const (
	CatalogSourceREST     = "rest"
	CatalogSourceSnapshot = "snapshot"

	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreKafka  = "kafka"
)

type backend struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

type cloudinary struct {
	CloudName    string `mapstructure:"cloud_name"`
	UploadPreset string `mapstructure:"upload_preset"`
	Folder       string `mapstructure:"folder"`
}

type catalog struct {
	Source          string        `mapstructure:"source"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	MemoSize        int           `mapstructure:"memo_size"`
	Collation       string        `mapstructure:"collation"`
}

type recentlyViewed struct {
	Store string `mapstructure:"store"`
	Limit int    `mapstructure:"limit"`
}

type redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type topics struct {
	CatalogEvents string `mapstructure:"catalog_events"`
	ProductViews  string `mapstructure:"product_views"`
}

type consumers struct {
	CatalogEventsGroup  string `mapstructure:"catalog_events_group"`
	RecentlyViewedGroup string `mapstructure:"recently_viewed_group"`
}

type brokerTLS struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
	TLS                brokerTLS `mapstructure:"tls"`
}

// Enabled reports whether catalog events and broker backed stores are on.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

func (t brokerTLS) Enabled() bool {
	return t.CAFile != ""
}

type Config struct {
	LogLevel           slog.Level     `mapstructure:"log_level"`
	HTTPServerAddr     string         `mapstructure:"http_server_addr"`
	HTTPHandlerTimeout time.Duration  `mapstructure:"http_handler_timeout"`
	SQLDB              string         `mapstructure:"sql_db"`
	Backend            backend        `mapstructure:"backend"`
	Cloudinary         cloudinary     `mapstructure:"cloudinary"`
	Catalog            catalog        `mapstructure:"catalog"`
	RecentlyViewed     recentlyViewed `mapstructure:"recently_viewed"`
	Redis              redis          `mapstructure:"redis"`
	Broker             broker         `mapstructure:"broker"`
}

// Load reads the file named by the --config flag or the
// STOREFRONT_CONFIG_FILE env. It exits the process on failure.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("http_handler_timeout", "30s")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("backend.retries", 3)
	v.SetDefault("catalog.source", CatalogSourceREST)
	v.SetDefault("catalog.refresh_interval", "5m")
	v.SetDefault("catalog.memo_size", 256)
	v.SetDefault("catalog.collation", "en")
	v.SetDefault("recently_viewed.store", StoreMemory)
	v.SetDefault("recently_viewed.limit", 10)
	v.SetDefault("redis.ttl", "720h")
	v.SetDefault("broker.topics.catalog_events", "storefront-catalog-events")
	v.SetDefault("broker.topics.product_views", "storefront-product-views")
	v.SetDefault("broker.consumers.catalog_events_group", "storefront-catalog-snapshot")
	v.SetDefault("broker.consumers.recently_viewed_group", "storefront-recently-viewed")
}

func (c Config) validate() error {
	var errs []error

	if c.Backend.URL == "" {
		errs = append(errs, errors.New("backend.url: required"))
	}

	switch c.Catalog.Source {
	case CatalogSourceREST:
	case CatalogSourceSnapshot:
		if c.SQLDB == "" {
			errs = append(errs, errors.New("sql_db: required by snapshot catalog source"))
		}
	default:
		errs = append(errs, fmt.Errorf("catalog.source: unknown %q", c.Catalog.Source))
	}

	switch c.RecentlyViewed.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr: required by redis store"))
		}
	case StoreKafka:
		if !c.Broker.Enabled() {
			errs = append(errs, errors.New("broker.seed_brokers: required by kafka store"))
		}
	default:
		errs = append(errs, fmt.Errorf("recently_viewed.store: unknown %q", c.RecentlyViewed.Store))
	}

	if c.Broker.Enabled() && len(c.Broker.SchemaRegistryURLs) == 0 {
		errs = append(errs, errors.New("broker.schema_registry_urls: required"))
	}

	tls := c.Broker.TLS
	if tls.Enabled() && (tls.CertFile == "" || tls.KeyFile == "") {
		errs = append(errs, errors.New("broker.tls: cert_file and key_file are required"))
	}

	return errors.Join(errs...)
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HTTPHandlerTimeout=%s
	SQLDB=%q

	Backend:
	URL=%q
	Timeout=%s
	Retries=%d

	Cloudinary:
	CloudName=%q
	UploadPreset=%q
	Folder=%q

	Catalog:
	Source=%q
	RefreshInterval=%s
	MemoSize=%d
	Collation=%q

	RecentlyViewed:
	Store=%q
	Limit=%d

	Redis:
	Addr=%q
	DB=%d
	TTL=%s

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		CatalogEvents=%q
		ProductViews=%q
	Consumers:
		CatalogEventsGroup=%q
		RecentlyViewedGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HTTPHandlerTimeout,
		redact(c.SQLDB),
		c.Backend.URL,
		c.Backend.Timeout,
		c.Backend.Retries,
		c.Cloudinary.CloudName,
		c.Cloudinary.UploadPreset,
		c.Cloudinary.Folder,
		c.Catalog.Source,
		c.Catalog.RefreshInterval,
		c.Catalog.MemoSize,
		c.Catalog.Collation,
		c.RecentlyViewed.Store,
		c.RecentlyViewed.Limit,
		c.Redis.Addr,
		c.Redis.DB,
		c.Redis.TTL,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.CatalogEvents,
		c.Broker.Topics.ProductViews,
		c.Broker.Consumers.CatalogEventsGroup,
		c.Broker.Consumers.RecentlyViewedGroup,
	)
}

// redact hides the password of a DSN.
func redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, _ := strings.Cut(userinfo, ":")
	return scheme + "://" + user + ":***@" + host
}
