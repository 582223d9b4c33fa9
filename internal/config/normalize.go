package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTTS()
	c.normalizeAssembly()
	c.normalizeObjectStore()
	c.normalizePersonality()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTTS() {
	c.TTS.Provider = strings.ToLower(strings.TrimSpace(c.TTS.Provider))
	if c.TTS.Provider == "" {
		c.TTS.Provider = defaultProvider
	}
	c.TTS.Model = strings.TrimSpace(c.TTS.Model)
	c.TTS.BaseURL = strings.TrimSpace(c.TTS.BaseURL)
	if c.TTS.APIKey == "" {
		c.TTS.APIKey = os.Getenv("CASTPRESS_TTS_API_KEY")
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
	if c.TTS.BatchSize <= 0 {
		c.TTS.BatchSize = defaultBatchSize
	}
	if c.TTS.BatchPauseMS < 0 {
		c.TTS.BatchPauseMS = defaultBatchPauseMS
	}
	if c.TTS.SampleRate <= 0 {
		c.TTS.SampleRate = defaultSampleRate
	}
}

func (c *Config) normalizeAssembly() {
	if c.Assembly.CrossfadeSeconds <= 0 {
		c.Assembly.CrossfadeSeconds = defaultCrossfadeSeconds
	}
	if c.Assembly.HostPan <= 0 || c.Assembly.HostPan >= 1 {
		c.Assembly.HostPan = defaultHostPan
	}
	if c.Assembly.GuestPan <= 0 || c.Assembly.GuestPan >= 1 {
		c.Assembly.GuestPan = defaultGuestPan
	}
	c.Assembly.IntroKey = strings.TrimSpace(c.Assembly.IntroKey)
	c.Assembly.OutroKey = strings.TrimSpace(c.Assembly.OutroKey)
}

func (c *Config) normalizeObjectStore() {
	c.ObjectStore.URL = strings.TrimSpace(c.ObjectStore.URL)
	if c.ObjectStore.URL == "" {
		c.ObjectStore.URL = defaultObjectStoreURL
	}
	c.ObjectStore.Bucket = strings.TrimSpace(c.ObjectStore.Bucket)
	if c.ObjectStore.Bucket == "" {
		c.ObjectStore.Bucket = defaultObjectStoreBucket
	}
}

func (c *Config) normalizePersonality() {
	c.Personality.SourceLocale = strings.TrimSpace(c.Personality.SourceLocale)
	if c.Personality.SourceLocale == "" {
		c.Personality.SourceLocale = defaultSourceLocale
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.ProcessTimeoutSeconds <= 0 {
		c.Workflow.ProcessTimeoutSeconds = defaultProcessTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
