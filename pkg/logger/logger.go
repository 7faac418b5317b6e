package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// InitLogger initializes the structured logger with proper configuration.
func InitLogger(logLevel string, isDevelopment bool) *logrus.Logger {
	log := logrus.New()

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			if isDevelopment {
				logLevel = "debug"
			} else {
				logLevel = "info"
			}
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("invalid LOG_LEVEL, using info")
	}

	if !isDevelopment || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	log.SetOutput(os.Stdout)
	Logger = log
	return log
}

// GetLogger returns the global logger instance, lazily initializing a
// default one if InitLogger was never called.
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return InitLogger("info", false)
	}
	return Logger
}

// WithRequestContext creates a logger with request/correlation context.
func WithRequestContext(requestID string) *logrus.Entry {
	return GetLogger().WithField("request_id", requestID)
}

// WithTeamContext creates a logger scoped to a single team.
func WithTeamContext(team string) *logrus.Entry {
	return GetLogger().WithField("team", team)
}

// WithScenarioContext creates a logger scoped to a named scenario.
func WithScenarioContext(scenarioID uint, scenarioName string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"scenario_id":   scenarioID,
		"scenario_name": scenarioName,
	})
}

// WithMarketContext creates a logger scoped to an outbound market-adapter
// call.
func WithMarketContext(operation, team string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"market_operation": operation,
		"team":             team,
	})
}
