package config

import (
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/rileyhilliard/plantdash/internal/errors"
)

// MinPollInterval keeps the dashboard from hammering the backend.
const MinPollInterval = time.Second

// MaxPollLimit caps how many samples a cycle may request.
const MaxPollLimit = 500

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but plantdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest plantdash release")
	}

	if err := validateAPI(cfg.API); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'api' section in your .plantdash.yaml.")
	}

	if err := validatePoll(cfg.Poll); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'poll' section in your .plantdash.yaml.")
	}

	if err := validateRange("thresholds.temperature", cfg.Thresholds.Temperature); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'thresholds' section in your .plantdash.yaml.")
	}
	if err := validateRange("thresholds.humidity", cfg.Thresholds.Humidity); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'thresholds' section in your .plantdash.yaml.")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your .plantdash.yaml.")
	}

	return nil
}

func validateAPI(api APIConfig) error {
	if api.BaseURL == "" {
		return fmt.Errorf("api.base_url is empty - point it at the backend, like '%s'", DefaultBaseURL)
	}
	u, err := url.Parse(api.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url '%s' isn't a valid URL: %v", api.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url '%s' needs an http:// or https:// scheme", api.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url '%s' is missing a host", api.BaseURL)
	}
	if api.Timeout < 0 {
		return fmt.Errorf("api.timeout can't be negative - use 0 for no timeout")
	}
	return nil
}

func validatePoll(poll PollConfig) error {
	if poll.Interval < MinPollInterval {
		return fmt.Errorf("poll.interval %v is too short - use at least %v", poll.Interval, MinPollInterval)
	}
	if poll.Limit < 1 || poll.Limit > MaxPollLimit {
		return fmt.Errorf("poll.limit needs to be 1-%d (got %d)", MaxPollLimit, poll.Limit)
	}
	return nil
}

func validateRange(name string, r *RangeConfig) error {
	if r == nil {
		return nil
	}
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return fmt.Errorf("%s needs finite min and max values", name)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s.min (%g) is higher than max (%g) - should be the other way around", name, r.Min, r.Max)
	}
	return nil
}

func validateOutput(out OutputConfig) error {
	switch out.Color {
	case "", "auto", "always", "never":
		return nil
	}
	return fmt.Errorf("output.color '%s' isn't valid - use 'auto', 'always', or 'never'", out.Color)
}
