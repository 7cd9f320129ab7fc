package server

import (
	"time"

	"github.com/raysh454/employeesapp/internal/antiforgery"
)

type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// AntiForgery names the cookie and hidden field the guard issues.
	AntiForgery antiforgery.Config

	// AntiForgeryKey signs request tokens. Empty means a random key per
	// process, which invalidates outstanding tokens on restart.
	AntiForgeryKey string

	ReadTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:  ":8080",
		AntiForgery: antiforgery.DefaultConfig(),
		ReadTimeout: 15 * time.Second,
	}
}
