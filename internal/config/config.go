// Package config is the settings file of the mealplan binaries.
package config

import (
	"fmt"
	"time"

	"mealplan-backend/internal/aliases"
	"mealplan-backend/internal/components/chrono"
	"mealplan-backend/internal/scrapers/mealportal"
	"mealplan-backend/internal/server"
	"mealplan-backend/pkg/configutil"

	"dario.cat/mergo"
)

const (
	DefaultPath = "config.json5"
	DefaultPort = 5002
)

type CredentialsConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PortalConfig struct {
	LoginUrl         string `json:"login_url"`
	MealsUrl         string `json:"meals_url"`
	Next             string `json:"next"`
	UserAgent        string `json:"user_agent"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
}

type ServerConfig struct {
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type Config struct {
	Credentials CredentialsConfig `json:"credentials"`
	// Aliases maps a raw child name as the portal prints it to the name to display.
	Aliases  map[string]string `json:"aliases"`
	Portal   PortalConfig      `json:"portal"`
	Display  server.Display    `json:"display"`
	Server   ServerConfig      `json:"server"`
	Timezone string            `json:"timezone"`
}

// Read reads the config file at path (merged with its local override) and fills in
// defaults for everything left unset.
func Read(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	err = cfg.applyDefaults()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	err := mergo.Merge(&c.Display, server.DefaultDisplay())
	if err != nil {
		return fmt.Errorf("apply display defaults: %w", err)
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Timezone == "" {
		c.Timezone = chrono.DefaultLocation
	}
	return nil
}

// PortalOptions returns the client options, anything left empty falls back to the
// client's own defaults.
func (c Config) PortalOptions() mealportal.Options {
	return mealportal.Options{
		LoginUrl:         c.Portal.LoginUrl,
		MealsUrl:         c.Portal.MealsUrl,
		Next:             c.Portal.Next,
		UserAgent:        c.Portal.UserAgent,
		Timeout:          time.Duration(c.Portal.TimeoutSeconds) * time.Second,
		CloudflareBypass: c.Portal.CloudflareBypass,
	}
}

func (c Config) PortalCredentials() mealportal.Credentials {
	return mealportal.Credentials{
		Username: c.Credentials.Username,
		Password: c.Credentials.Password,
	}
}

func (c Config) AliasTable() aliases.Table {
	return aliases.New(c.Aliases)
}

func (c Config) TimeAPI() (chrono.API, error) {
	timeAPI, err := chrono.NewStandardImpl(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return timeAPI, nil
}
