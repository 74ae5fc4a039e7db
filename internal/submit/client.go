package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rbright/voxlate/internal/version"
)

// TranscribePath is the service route accepting multipart audio plus a target language.
const TranscribePath = "/v1/transcribe-and-translate"

// Transport performs one transcribe-and-translate exchange.
type Transport interface {
	TranscribeAndTranslate(ctx context.Context, req Request) (Result, error)
}

// ClientConfig configures the HTTP transport.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the resty-backed Transport for the translation service.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for cfg.BaseURL.
func NewClient(cfg ClientConfig) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.UserAgent())
	if cfg.Timeout > 0 {
		http.SetTimeout(cfg.Timeout)
	}
	return &Client{http: http}
}

// envelope mirrors the service body; absent fields stay nil.
type envelope struct {
	Data *struct {
		Transcription *string `json:"transcription"`
		Translation   *string `json:"translation"`
	} `json:"data"`
	Detail json.RawMessage `json:"detail"`
}

// TranscribeAndTranslate uploads the artifact as field "file" with "target_language".
func (c *Client) TranscribeAndTranslate(ctx context.Context, req Request) (Result, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetMultipartField("file", req.Audio.Name, req.Audio.MimeType, bytes.NewReader(req.Audio.Bytes)).
		SetMultipartFormData(map[string]string{"target_language": req.TargetLanguage}).
		Post(TranscribePath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	var body envelope
	decodeErr := json.Unmarshal(resp.Body(), &body)

	if !resp.IsSuccess() {
		detail := ""
		if decodeErr == nil {
			detail = detailText(body.Detail)
		}
		return Result{}, &RemoteError{StatusCode: resp.StatusCode(), Detail: detail}
	}
	if decodeErr != nil {
		return Result{}, fmt.Errorf("decode response: %w", decodeErr)
	}

	result := Result{Transcription: UnavailableTranscription, Translation: UnavailableTranslation}
	if body.Data != nil {
		if body.Data.Transcription != nil && *body.Data.Transcription != "" {
			result.Transcription = *body.Data.Transcription
		}
		if body.Data.Translation != nil && *body.Data.Translation != "" {
			result.Translation = *body.Data.Translation
		}
	}
	return result, nil
}

// detailText renders a "detail" member; non-string details are kept as compact JSON.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}
