// Package config resolves, parses, validates, and defaults voxlate configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by voxlate.
type Config struct {
	Service        ServiceConfig
	Audio          AudioConfig
	TargetLanguage string `key:"target_language"`
	Notify         NotifyConfig
	Clipboard      CommandConfig
	Export         ExportConfig
	Log            LogConfig
	Debug          DebugConfig
}

// ServiceConfig locates the transcription/translation service.
type ServiceConfig struct {
	URL        string `key:"service.url" validate:"required,url"`
	TimeoutMS  int    `key:"service.timeout_ms" validate:"min=1000,max=600000"`
	HealthPath string `key:"service.health_path" validate:"required,startswith=/"`
	GRPCHealth string `key:"service.grpc_health" validate:"omitempty,hostname_port"`
}

// Timeout returns the per-request HTTP timeout.
func (s ServiceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string `key:"audio.input"`
	Fallback string `key:"audio.fallback"`
}

// NotifyConfig controls desktop notices and audio cues.
type NotifyConfig struct {
	Desktop bool   `key:"notify.desktop"`
	AppName string `key:"notify.app_name" validate:"required_if=Desktop true"`
	Sound   bool   `key:"notify.sound"`
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// ExportConfig sets the default directory for exported results.
type ExportConfig struct {
	Dir string `key:"export.dir"`
}

// LogConfig controls the runtime log threshold.
type LogConfig struct {
	Level string `key:"log.level" validate:"oneof=debug info warn error"`
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool `key:"debug.audio_dump"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
