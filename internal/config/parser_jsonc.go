package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tailscale/hujson"
)

type jsoncConfig struct {
	Service        *jsoncService `json:"service"`
	Audio          *jsoncAudio   `json:"audio"`
	TargetLanguage *string       `json:"target_language"`
	Notify         *jsoncNotify  `json:"notify"`
	ClipboardCmd   *string       `json:"clipboard_cmd"`
	Export         *jsoncExport  `json:"export"`
	Log            *jsoncLog     `json:"log"`
	Debug          *jsoncDebug   `json:"debug"`
}

type jsoncService struct {
	URL        *string `json:"url"`
	TimeoutMS  *int    `json:"timeout_ms"`
	HealthPath *string `json:"health_path"`
	GRPCHealth *string `json:"grpc_health"`
}

type jsoncAudio struct {
	Input    *string `json:"input"`
	Fallback *string `json:"fallback"`
}

type jsoncNotify struct {
	Desktop *bool   `json:"desktop"`
	AppName *string `json:"app_name"`
	Sound   *bool   `json:"sound"`
}

type jsoncExport struct {
	Dir *string `json:"dir"`
}

type jsoncLog struct {
	Level *string `json:"level"`
}

type jsoncDebug struct {
	AudioDump *bool `json:"audio_dump"`
}

// Parse decodes JSONC content over base and validates the result.
func Parse(content string, base Config) (Config, []Warning, error) {
	cfg, warnings, err := decode(content, base)
	if err != nil {
		return Config{}, nil, err
	}
	validated, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, append(warnings, validated...), nil
}

// decode applies JSONC content over base without validating.
func decode(content string, base Config) (Config, []Warning, error) {
	if strings.TrimSpace(content) == "" {
		return base, nil, nil
	}

	// Standardize blanks out comments and trailing commas in place, so offsets still map to the source.
	standard, err := hujson.Standardize([]byte(content))
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(standard))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(content, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(content, err)
	}

	cfg := base
	warnings, err := payload.applyTo(&cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) ([]Warning, error) {
	var warnings []Warning

	if s := payload.Service; s != nil {
		setString(&cfg.Service.URL, s.URL)
		if s.TimeoutMS != nil {
			cfg.Service.TimeoutMS = *s.TimeoutMS
		}
		setString(&cfg.Service.HealthPath, s.HealthPath)
		setString(&cfg.Service.GRPCHealth, s.GRPCHealth)
	}

	if a := payload.Audio; a != nil {
		setString(&cfg.Audio.Input, a.Input)
		setString(&cfg.Audio.Fallback, a.Fallback)
	}

	setString(&cfg.TargetLanguage, payload.TargetLanguage)

	if n := payload.Notify; n != nil {
		if n.Desktop != nil {
			cfg.Notify.Desktop = *n.Desktop
		}
		setString(&cfg.Notify.AppName, n.AppName)
		if n.Sound != nil {
			cfg.Notify.Sound = *n.Sound
		}
	}

	if payload.ClipboardCmd != nil {
		raw := *payload.ClipboardCmd
		argv, err := splitCommand(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid clipboard_cmd: %w", err)
		}
		cfg.Clipboard = CommandConfig{Raw: raw, Argv: argv}
	}

	if payload.Export != nil {
		setString(&cfg.Export.Dir, payload.Export.Dir)
	}

	if payload.Log != nil && payload.Log.Level != nil {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(*payload.Log.Level))
	}

	if payload.Debug != nil && payload.Debug.AudioDump != nil {
		cfg.Debug.EnableAudioDump = *payload.Debug.AudioDump
		if cfg.Debug.EnableAudioDump {
			warnings = append(warnings, Warning{Message: "debug.audio_dump is enabled; recordings are written under the state directory"})
		}
	}

	return warnings, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

// offsetToLineCol converts a 1-based byte offset into a line/column pair.
func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}
	limit := min(int(offset), len(content))

	line, col := 1, 1
	for _, ch := range []byte(content[:max(limit-1, 0)]) {
		if ch == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
