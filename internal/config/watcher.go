package config

import (
	"context"
	"os"
	"sync"
	"time"

	"recruitdesk/internal/models"

	"github.com/sirupsen/logrus"
)

const defaultPollInterval = 5 * time.Second

// ConfigWatcher polls the configuration file and reloads it when it changes
type ConfigWatcher struct {
	configPath   string
	logger       *logrus.Logger
	pollInterval time.Duration
	mu           sync.RWMutex
	config       *models.Config
	callbacks    []func(*models.Config)
}

// NewConfigWatcher creates a new configuration watcher
func NewConfigWatcher(configPath string, logger *logrus.Logger) *ConfigWatcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &ConfigWatcher{
		configPath:   configPath,
		logger:       logger,
		pollInterval: defaultPollInterval,
		callbacks:    make([]func(*models.Config), 0),
	}
}

// Start loads the file once and then polls its modification time until ctx is done
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	config, err := LoadConfig(cw.configPath)
	if err != nil {
		return err
	}

	cw.mu.Lock()
	cw.config = config
	cw.mu.Unlock()

	stat, err := os.Stat(cw.configPath)
	if err != nil {
		return err
	}
	lastModTime := stat.ModTime()

	cw.logger.WithField("path", cw.configPath).Info("Configuration watcher started")

	ticker := time.NewTicker(cw.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.logger.Info("Configuration watcher stopping")
			return nil

		case <-ticker.C:
			stat, err := os.Stat(cw.configPath)
			if err != nil {
				cw.logger.WithError(err).Error("Failed to stat configuration file")
				continue
			}

			if stat.ModTime().After(lastModTime) {
				cw.logger.Debug("Configuration file changed")
				lastModTime = stat.ModTime()
				cw.reloadConfig()
			}
		}
	}
}

// GetConfig returns the current configuration (thread-safe)
func (cw *ConfigWatcher) GetConfig() *models.Config {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.config
}

// OnConfigChange registers a callback to be called when configuration changes
func (cw *ConfigWatcher) OnConfigChange(callback func(*models.Config)) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

func (cw *ConfigWatcher) reloadConfig() {
	newConfig, err := LoadConfig(cw.configPath)
	if err != nil {
		cw.logger.WithError(err).Error("Failed to reload configuration")
		return
	}

	cw.mu.Lock()
	oldConfig := cw.config
	cw.config = newConfig
	callbacks := make([]func(*models.Config), len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.Unlock()

	cw.logger.Info("Configuration reloaded successfully")

	for _, callback := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					cw.logger.WithField("panic", r).Error("Config change callback panicked")
				}
			}()
			callback(newConfig)
		}()
	}

	cw.logConfigChanges(oldConfig, newConfig)
}

// logConfigChanges logs settings that only take effect through callbacks
func (cw *ConfigWatcher) logConfigChanges(old, new *models.Config) {
	if old == nil {
		return
	}

	if old.LogLevel != new.LogLevel {
		cw.logger.WithFields(logrus.Fields{
			"old": old.LogLevel,
			"new": new.LogLevel,
		}).Info("Log level changed")
	}

	if old.RetentionDays != new.RetentionDays {
		cw.logger.WithFields(logrus.Fields{
			"old": old.RetentionDays,
			"new": new.RetentionDays,
		}).Info("Retention days changed")
	}

	if old.Server.CleanupIntervalHours != new.Server.CleanupIntervalHours {
		cw.logger.WithFields(logrus.Fields{
			"old": old.Server.CleanupIntervalHours,
			"new": new.Server.CleanupIntervalHours,
		}).Info("Cleanup interval changed (applies on restart)")
	}

	if old.RecordStore.APIBaseURL != new.RecordStore.APIBaseURL || old.Moderation.Notifier != new.Moderation.Notifier {
		cw.logger.Warn("Record store or notifier settings changed; restart to apply")
	}
}
