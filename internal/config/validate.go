package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gmn-tools/rmsmonitor/internal/errors"
)

// Validate checks a parsed config for values that would make a run meaningless.
func Validate(cfg *Config) error {
	if len(cfg.Cameras) == 0 {
		return errors.New(errors.ErrConfig,
			"No cameras configured",
			"List camera ids in 'cameras', e.g. 'cameras = UK0006,UK000F'.")
	}
	for _, id := range cfg.Cameras {
		if len(id) < 2 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Camera id '%s' is too short", id),
				"Camera ids start with a two letter network code, like UK0006.")
		}
	}

	if err := validateThresholds(cfg.Thresholds.Warning, cfg.Thresholds.Alert); err != nil {
		return err
	}

	if err := validateSources(cfg.Sources); err != nil {
		return err
	}

	return validateMarkers(cfg.Markers)
}

func validateThresholds(warning, alert int) error {
	if warning < 0 || alert < 0 {
		return errors.New(errors.ErrConfig,
			"Thresholds can't be negative",
			"Use whole numbers of days, like 'thresholds = 7,30'.")
	}
	if warning > alert {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Warning threshold (%d days) is above the alert threshold (%d days)", warning, alert),
			"List the warning first: 'thresholds = <warning>,<alert>'.")
	}
	return nil
}

func validateSources(src Sources) error {
	if src.IndexURL == "" {
		return errors.New(errors.ErrConfig,
			"'sources.index_url' is empty",
			"Remove the key to use the public status pages.")
	}
	if err := validateTemplate("sources.index_url", src.IndexURL); err != nil {
		return err
	}
	if src.LatestURL != "" {
		if err := validateTemplate("sources.latest_url", src.LatestURL); err != nil {
			return err
		}
	}
	if src.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			"'sources.timeout' can't be negative",
			"Use 0s for no timeout.")
	}
	return nil
}

func validateTemplate(key, tmpl string) error {
	u, err := url.Parse(strings.ReplaceAll(tmpl, SegmentToken, "AA"))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid URL", key),
			"Use a full http(s) URL with a {segment} placeholder.")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' must be an http or https URL", key),
			"Use a full http(s) URL with a {segment} placeholder.")
	}
	if !strings.Contains(tmpl, SegmentToken) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' has no {segment} placeholder", key),
			"Every network segment has its own page; put {segment} where the two letter code goes.")
	}
	return nil
}

func validateMarkers(m Markers) error {
	if strings.TrimSpace(m.Upload) == "" || strings.TrimSpace(m.Calibration) == "" {
		return errors.New(errors.ErrConfig,
			"Upload and calibration markers can't be empty",
			"Remove the keys from [markers] to use the defaults.")
	}
	if m.StatusLookahead < 0 {
		return errors.New(errors.ErrConfig,
			"'markers.status_lookahead' can't be negative",
			"Use a number of lines, like 10.")
	}
	return nil
}
