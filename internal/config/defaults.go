package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Service: ServiceConfig{
			URL:        "http://localhost:8000",
			TimeoutMS:  120000,
			HealthPath: "/docs",
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Notify: NotifyConfig{
			Desktop: false,
			AppName: "voxlate",
			Sound:   true,
		},
		Log: LogConfig{Level: "info"},
	}
}
