package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateAssembly(); err != nil {
		return err
	}
	if err := c.validateObjectStore(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTTS() error {
	if c.TTS.Provider == "" {
		return errors.New("tts.provider must be set")
	}
	if c.TTS.BatchSize < 1 {
		return errors.New("tts.batch_size must be at least 1")
	}
	if c.TTS.SampleRate < 8000 {
		return fmt.Errorf("tts.sample_rate %d is below the minimum of 8000", c.TTS.SampleRate)
	}
	return nil
}

func (c *Config) validateAssembly() error {
	if c.Assembly.CrossfadeSeconds <= 0 {
		return errors.New("assembly.crossfade_seconds must be positive")
	}
	if c.Assembly.HostPan < 0 || c.Assembly.HostPan > 1 {
		return errors.New("assembly.host_pan must be between 0 and 1")
	}
	if c.Assembly.GuestPan < 0 || c.Assembly.GuestPan > 1 {
		return errors.New("assembly.guest_pan must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateObjectStore() error {
	if c.ObjectStore.URL == "" {
		return errors.New("object_store.url must be set")
	}
	if c.ObjectStore.Bucket == "" {
		return errors.New("object_store.bucket must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ProcessTimeoutSeconds < 30 {
		return errors.New("workflow.process_timeout_seconds must be at least 30")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
