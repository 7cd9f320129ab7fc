package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/raysh454/employeesapp/internal/antiforgery"
	"github.com/raysh454/employeesapp/internal/employees"
	"github.com/raysh454/employeesapp/internal/server"
	"github.com/raysh454/employeesapp/internal/webclient"
)

// EnvPrefix prefixes environment overrides, e.g. EMPLOYEESAPP_SERVER_LISTEN_ADDR.
const EnvPrefix = "EMPLOYEESAPP"

// Config gathers the per-package configs the binary wires together.
type Config struct {
	LogLevel string

	Server    server.Config
	Store     employees.StoreConfig
	WebClient webclient.Config
}

// AntiForgery returns the cookie and field names shared by the app and
// the smoke client.
func (c *Config) AntiForgery() antiforgery.Config {
	return c.Server.AntiForgery
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		Server:    server.DefaultConfig(),
		Store:     employees.DefaultStoreConfig(),
		WebClient: webclient.DefaultConfig(),
	}
}

// LoadConfig applies defaults < config file < environment. path may be
// empty; a missing file is an error only when path was given explicitly.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("config path %s is a directory", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("log_level", def.LogLevel)

	v.SetDefault("server.listen_addr", def.Server.ListenAddr)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.antiforgery_key", def.Server.AntiForgeryKey)

	v.SetDefault("antiforgery.cookie_name", def.Server.AntiForgery.CookieName)
	v.SetDefault("antiforgery.field_name", def.Server.AntiForgery.FieldName)

	v.SetDefault("store.dsn", def.Store.DSN)
	v.SetDefault("store.seed", def.Store.Seed)

	v.SetDefault("webclient.client", string(def.WebClient.Client))
	v.SetDefault("webclient.timeout", def.WebClient.Timeout)
	v.SetDefault("webclient.cookie_jar", def.WebClient.CookieJar)
	v.SetDefault("webclient.disable_redirects", def.WebClient.DisableRedirects)
	v.SetDefault("webclient.show_browser", def.WebClient.ShowBrowser)
	v.SetDefault("webclient.idle_after", def.WebClient.IdleAfter)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		LogLevel: v.GetString("log_level"),
		Server: server.Config{
			ListenAddr:     v.GetString("server.listen_addr"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			AntiForgeryKey: v.GetString("server.antiforgery_key"),
			AntiForgery: antiforgery.Config{
				CookieName: v.GetString("antiforgery.cookie_name"),
				FieldName:  v.GetString("antiforgery.field_name"),
			},
		},
		Store: employees.StoreConfig{
			DSN:  v.GetString("store.dsn"),
			Seed: v.GetBool("store.seed"),
		},
		WebClient: webclient.Config{
			Client:           webclient.Client(v.GetString("webclient.client")),
			Timeout:          v.GetDuration("webclient.timeout"),
			CookieJar:        v.GetBool("webclient.cookie_jar"),
			DisableRedirects: v.GetBool("webclient.disable_redirects"),
			ShowBrowser:      v.GetBool("webclient.show_browser"),
			IdleAfter:        v.GetDuration("webclient.idle_after"),
		},
	}
}

var ErrInvalidConfig = errors.New("invalid configuration")

func (c *Config) Validate() error {
	if err := c.Server.AntiForgery.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		return fmt.Errorf("%w: server.listen_addr is empty", ErrInvalidConfig)
	}
	if c.Server.ReadTimeout < 0 || c.WebClient.Timeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	return nil
}
