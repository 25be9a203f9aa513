// Package config resolves the command line into the handful of values the
// rest of frameloom needs to start: parse flags, fall back to .env, fall
// back to defaults. Uses urfave/cli/v2 for flags and
// github.com/joho/godotenv for .env defaults.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// ServerPort is the fixed TCP port the server binds and the client dials.
const ServerPort uint16 = 34567

// ResolveBudget bounds how long endpoint resolution may take.
const ResolveBudget = time.Second

// Exit codes returned by cmd/frameloom for startup failures, distinct
// from a normal shutdown (0).
const (
	ExitNoMediaDirectory = -2
	ExitNoEndpoints      = -3
	ExitNoAcceptorBound  = -4
)

// Config holds the resolved startup parameters.
type Config struct {
	MediaDir   string
	ServerHost string
}

// Parse loads .env (if present, silently ignoring its absence) and then
// parses args, letting FRAMELOOM_MEDIA/FRAMELOOM_SERVER environment
// variables supply defaults that explicit flags override.
func Parse(args []string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	app := &cli.App{
		Name:  "frameloom",
		Usage: "stream GIF frames from a media directory to a window, over TCP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "media",
				Value:   "media",
				EnvVars: []string{"FRAMELOOM_MEDIA"},
				Usage:   "directory of .gif files to stream",
			},
			&cli.StringFlag{
				Name:    "server",
				Value:   "",
				EnvVars: []string{"FRAMELOOM_SERVER"},
				Usage:   "server host name or address to bind and connect to (empty means loopback)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg.MediaDir = c.String("media")
			cfg.ServerHost = c.String("server")
			return nil
		},
	}

	if err := app.Run(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
