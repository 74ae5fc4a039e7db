package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	structValid  *validator.Validate
)

// validatorInstance reports field errors by their config key names.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		structValid = validator.New(validator.WithRequiredStructEnabled())
		structValid.RegisterTagNameFunc(func(field reflect.StructField) string {
			if key := field.Tag.Get("key"); key != "" {
				return key
			}
			return field.Name
		})
	})
	return structValid
}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	var warnings []Warning

	if err := validatorInstance().Struct(cfg); err != nil {
		return nil, describeValidation(err)
	}

	parsed, err := url.Parse(cfg.Service.URL)
	if err != nil {
		return nil, fmt.Errorf("service.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("service.url must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("service.url must include a host")
	}
	if parsed.Path != "" && parsed.Path != "/" {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("service.url path %q is prefixed to every request", parsed.Path)})
	}

	if strings.TrimSpace(cfg.Clipboard.Raw) != "" && !strings.HasPrefix(strings.TrimSpace(cfg.Clipboard.Raw), "#") && len(cfg.Clipboard.Argv) == 0 {
		return nil, fmt.Errorf("clipboard_cmd is configured but empty")
	}

	if dir := cfg.Export.Dir; dir != "" && !filepath.IsAbs(dir) && !strings.HasPrefix(dir, "~") {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("export.dir %q is relative; results are exported relative to the working directory", dir)})
	}

	return warnings, nil
}

// describeValidation renders the first struct validation failure against its config key.
func describeValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("invalid config: %w", err)
	}

	fe := fieldErrs[0]
	key := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Errorf("%s must not be empty", key)
	case "url":
		return fmt.Errorf("%s must be an absolute URL, got %q", key, fe.Value())
	case "startswith":
		return fmt.Errorf("%s must start with %q", key, fe.Param())
	case "min":
		return fmt.Errorf("%s must be >= %s", key, fe.Param())
	case "max":
		return fmt.Errorf("%s must be <= %s", key, fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", key, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "hostname_port":
		return fmt.Errorf("%s must be host:port, got %q", key, fe.Value())
	default:
		return fmt.Errorf("%s failed %q validation", key, fe.Tag())
	}
}
