package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validate validates the Config using struct tags plus cross-field rules.
// Returns an error with an actionable message on failure.
func (c *Config) Validate() error {
	if err := c.validateTLSPairing(); err != nil {
		return err
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateTimeouts(); err != nil {
		return err
	}

	return nil
}

// validateTLSPairing ensures TLS cert and key are configured together, or
// not at all.
func (c *Config) validateTLSPairing() error {
	hasCert := c.Server.TLSCertFile != ""
	hasKey := c.Server.TLSKeyFile != ""
	if hasCert != hasKey {
		return errors.New("server: tls_cert_file and tls_key_file must be set together")
	}
	return nil
}

// validateTimeouts ensures every configured timeout string parses as a
// positive duration (go-playground/validator has no duration-string tag).
func (c *Config) validateTimeouts() error {
	for field, value := range map[string]string{
		"timeouts.tool_call":     c.Timeouts.ToolCall,
		"timeouts.resource_read": c.Timeouts.ResourceRead,
		"timeouts.prompt_get":    c.Timeouts.PromptGet,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", field, value, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s: must be positive, got %q", field, value)
		}
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors into
// user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for one
// validation failure.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "file":
		return fmt.Sprintf("%s must point to an existing file", field)
	case "dir":
		return fmt.Sprintf("%s must point to an existing directory", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
