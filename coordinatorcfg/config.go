// Package coordinatorcfg loads the coordinator's configuration from a base
// file plus environment overrides, the way the teacher's subsystems each
// carry their own Config struct with documented defaults.
package coordinatorcfg

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix every environment override must carry, e.g.
	// MULTISIG_APP__LISTEN for app.listen.
	EnvPrefix = "MULTISIG"

	// DefaultListen is the default address the HTTP façade listens on.
	DefaultListen = "0.0.0.0:59059"

	// DefaultMaxConn is the default Postgres connection pool ceiling.
	DefaultMaxConn = 10

	// DefaultTimeout is the default wallet runtime request timeout.
	DefaultTimeout = 30 * time.Second
)

// Config is the root configuration structure for the coordinator server.
type Config struct {
	App   AppConfig
	DB    DBConfig
	Miden MidenConfig
}

// AppConfig carries the HTTP façade's own settings.
type AppConfig struct {
	// Listen is the address the HTTP façade binds to, e.g. "0.0.0.0:59059".
	Listen string

	// NetworkIDHRP is the bech32 human-readable part tagging every
	// address this deployment encodes or accepts, e.g. "mtst".
	NetworkIDHRP string

	// CORSAllowedOrigins lists allowed CORS origins. ["*"] allows all.
	CORSAllowedOrigins []string
}

// DBConfig carries the persistence layer's connection settings.
type DBConfig struct {
	// DBURL is the Postgres connection URL.
	DBURL string

	// MaxConn is the maximum number of pooled connections.
	MaxConn uint32
}

// MidenConfig carries the wallet client runtime's connection settings.
type MidenConfig struct {
	// NodeURL is the URL of the Miden node to connect to.
	NodeURL string

	// StorePath is the path to the wallet SDK's local store directory.
	StorePath string

	// KeystorePath is the path to the wallet SDK's keystore directory.
	KeystorePath string

	// Timeout bounds how long a single wallet runtime request may take.
	Timeout time.Duration
}

// Load reads configFile (if non-empty) as the base configuration, then
// layers in environment variables prefixed with EnvPrefix using "__" as
// the nested-key separator, e.g. MULTISIG_APP__LISTEN overrides app.listen.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app.listen", DefaultListen)
	v.SetDefault("db.max_conn", DefaultMaxConn)
	v.SetDefault("miden.timeout", DefaultTimeout.String())

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("coordinatorcfg: read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	for _, key := range []string{
		"app.listen", "app.network_id_hrp", "app.cors_allowed_origins",
		"db.db_url", "db.max_conn",
		"miden.node_url", "miden.store_path", "miden.keystore_path", "miden.timeout",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("coordinatorcfg: bind env %s: %w", key, err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString("miden.timeout"))
	if err != nil {
		return nil, fmt.Errorf("coordinatorcfg: parse miden.timeout: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Listen:             v.GetString("app.listen"),
			NetworkIDHRP:       v.GetString("app.network_id_hrp"),
			CORSAllowedOrigins: v.GetStringSlice("app.cors_allowed_origins"),
		},
		DB: DBConfig{
			DBURL:   v.GetString("db.db_url"),
			MaxConn: v.GetUint32("db.max_conn"),
		},
		Miden: MidenConfig{
			NodeURL:      v.GetString("miden.node_url"),
			StorePath:    v.GetString("miden.store_path"),
			KeystorePath: v.GetString("miden.keystore_path"),
			Timeout:      timeout,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.App.NetworkIDHRP == "" {
		return fmt.Errorf("coordinatorcfg: app.network_id_hrp is required")
	}
	if c.DB.DBURL == "" {
		return fmt.Errorf("coordinatorcfg: db.db_url is required")
	}
	if c.Miden.NodeURL == "" {
		return fmt.Errorf("coordinatorcfg: miden.node_url is required")
	}
	if len(c.App.CORSAllowedOrigins) == 0 {
		c.App.CORSAllowedOrigins = []string{"*"}
	}
	return nil
}
