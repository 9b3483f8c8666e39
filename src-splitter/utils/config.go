package utils

import (
	"log/slog"
	"os"
	"path/filepath"
)

type Config struct {
	sourceIcsUrl     string
	localUpstreamIcs string
	eventsDir        string
	feedsDir         string
	databasePath     string

	port            string
	serve           bool
	refreshSchedule string
}

func NewConfig() *Config {
	return &Config{
		sourceIcsUrl: func() string {
			sourceIcsUrl := os.Getenv("SOURCE_ICS_URL")
			if sourceIcsUrl == "" {
				slog.Warn("SOURCE_ICS_URL is not set, using local upstream file")
			} else {
				slog.Debug("env", "SOURCE_ICS_URL", Redact(sourceIcsUrl))
			}
			return sourceIcsUrl
		}(),
		localUpstreamIcs: func() string {
			localUpstreamIcs := os.Getenv("LOCAL_UPSTREAM_ICS")
			if localUpstreamIcs == "" {
				localUpstreamIcs = "personal.ics"
			}
			slog.Debug("env", "LOCAL_UPSTREAM_ICS", localUpstreamIcs)
			return filepath.Clean(localUpstreamIcs)
		}(),
		eventsDir: func() string {
			eventsDir := os.Getenv("EVENTS_DIR")
			if eventsDir == "" {
				eventsDir = "events"
			}
			slog.Debug("env", "EVENTS_DIR", eventsDir)
			return filepath.Clean(eventsDir)
		}(),
		feedsDir: func() string {
			feedsDir := os.Getenv("FEEDS_DIR")
			if feedsDir == "" {
				slog.Error("FEEDS_DIR is not set")
				os.Exit(2)
			}
			slog.Debug("env", "FEEDS_DIR", feedsDir)
			return filepath.Clean(feedsDir)
		}(),
		databasePath: func() string {
			databasePath := os.Getenv("DATABASE_PATH")
			if databasePath == "" {
				databasePath = "./splitter.db"
			}
			slog.Debug("env", "DATABASE_PATH", databasePath)
			return databasePath
		}(),

		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),
		serve: func() bool {
			serve := os.Getenv("SERVE")
			slog.Debug("env", "SERVE", serve)
			switch serve {
			case "1", "true", "yes":
				return true
			default:
				return false
			}
		}(),
		refreshSchedule: func() string {
			refreshSchedule := os.Getenv("REFRESH_INTERVAL")
			if refreshSchedule == "" {
				refreshSchedule = "@every 30m"
			}
			slog.Debug("env", "REFRESH_INTERVAL", refreshSchedule)
			return refreshSchedule
		}(),
	}
}

// Get SOURCE_ICS_URL env, blank means local mode
func (c *Config) GetSourceIcsUrl() string {
	return c.sourceIcsUrl
}

// Get LOCAL_UPSTREAM_ICS env, default to "personal.ics"
func (c *Config) GetLocalUpstreamIcs() string {
	return c.localUpstreamIcs
}

// Get EVENTS_DIR env, default to "events"
func (c *Config) GetEventsDir() string {
	return c.eventsDir
}

// Get FEEDS_DIR env
func (c *Config) GetFeedsDir() string {
	return c.feedsDir
}

// Get DATABASE_PATH env, default to "./splitter.db"
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get SERVE env
func (c *Config) GetServe() bool {
	return c.serve
}

// Get REFRESH_INTERVAL env, a cron spec, default to "@every 30m"
func (c *Config) GetRefreshSchedule() string {
	return c.refreshSchedule
}
