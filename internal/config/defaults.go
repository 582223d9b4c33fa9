package config

const (
	defaultDataDir               = "~/.local/share/castpress"
	defaultLogDir                = "~/.local/share/castpress/logs"
	defaultProvider              = "inflect"
	defaultTTSTimeoutSeconds     = 60
	defaultBatchSize             = 5
	defaultBatchPauseMS          = 200
	defaultSampleRate            = 44100
	defaultCrossfadeSeconds      = 4.0
	defaultHostPan               = 0.35
	defaultGuestPan              = 0.65
	defaultObjectStoreURL        = "nats://127.0.0.1:4222"
	defaultObjectStoreBucket     = "castpress-episodes"
	defaultSourceLocale          = "en"
	defaultNotifyRequestTimeout  = 10
	defaultProcessTimeoutSeconds = 300
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		TTS: TTS{
			Provider:       defaultProvider,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
			BatchSize:      defaultBatchSize,
			BatchPauseMS:   defaultBatchPauseMS,
			SampleRate:     defaultSampleRate,
		},
		Assembly: Assembly{
			CrossfadeSeconds: defaultCrossfadeSeconds,
			HostPan:          defaultHostPan,
			GuestPan:         defaultGuestPan,
		},
		ObjectStore: ObjectStore{
			URL:    defaultObjectStoreURL,
			Bucket: defaultObjectStoreBucket,
		},
		Personality: Personality{
			SourceLocale: defaultSourceLocale,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Workflow: Workflow{
			ProcessTimeoutSeconds: defaultProcessTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
