package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/status"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// RMSMONITOR_SETTINGS_CAMERAS=AB0001,AB0002.
const EnvPrefix = "RMSMONITOR"

// requiredKeys must be present in every config.
var requiredKeys = []string{
	"settings.cameras",
	"settings.thresholds",
	"settings.report_only_exception",
	"settings.upload_warning",
	"settings.upload_alert",
	"settings.calibration_warning",
	"settings.calibration_alert",
	"settings.normal",
}

// viperFormats are read by viper directly; anything else is treated as INI.
var viperFormats = map[string]bool{
	".yaml": true,
	".yml":  true,
	".toml": true,
	".json": true,
}

// Load reads and validates the config at path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("config file %s missing", path),
				"Run 'rmsmonitor init' to create one, or pass the path as the first argument.")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot access config file: "+path,
			"Check file permissions")
	}

	v := newViper()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if viperFormats[strings.ToLower(filepath.Ext(path))] {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the syntax of "+path)
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check file permissions")
		}
		defer f.Close()

		v.SetConfigType("ini")
		if err := v.ReadConfig(f); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to parse config file",
				"Check the INI syntax of "+path)
		}
		if err := inheritINIDefaults(v); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to load config values",
				"Check the [DEFAULT] section of "+path)
		}
	}

	return parseConfig(v, path)
}

// setDefaults registers values for every optional key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("settings.error", DefaultColors["error"])
	v.SetDefault("settings.force_terminal", false)
	v.SetDefault("settings.columns", "")

	src := DefaultSources()
	v.SetDefault("sources.index_url", src.IndexURL)
	v.SetDefault("sources.latest_url", src.LatestURL)
	v.SetDefault("sources.timeout", "0s")
	v.SetDefault("sources.user_agent", src.UserAgent)

	m := DefaultMarkers()
	v.SetDefault("markers.upload", m.Upload)
	v.SetDefault("markers.calibration", m.Calibration)
	v.SetDefault("markers.detections", m.Detections)
	v.SetDefault("markers.status", m.Status)
	v.SetDefault("markers.status_lookahead", m.StatusLookahead)
}

// parseConfig converts viper values into a Config and validates it.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			return nil, errors.MissingKey(key, path)
		}
	}

	cfg := &Config{Path: path}

	for _, id := range listValue(v.Get("settings.cameras")) {
		cfg.Cameras = append(cfg.Cameras, status.NormalizeID(id))
	}

	th, err := ParseThresholds(listValue(v.Get("settings.thresholds")))
	if err != nil {
		return nil, err
	}
	cfg.Thresholds = th

	cfg.ReportOnlyExceptions, err = parseBool("settings.report_only_exception", v.Get("settings.report_only_exception"))
	if err != nil {
		return nil, err
	}
	cfg.ForceTerminal, err = parseBool("settings.force_terminal", v.Get("settings.force_terminal"))
	if err != nil {
		return nil, err
	}

	cfg.Columns, err = ParseColumns(listValue(v.Get("settings.columns")))
	if err != nil {
		return nil, err
	}

	pairs := []struct {
		key  string
		dest *ColorPair
	}{
		{"upload_warning", &cfg.Palette.UploadWarning},
		{"upload_alert", &cfg.Palette.UploadAlert},
		{"calibration_warning", &cfg.Palette.CalibrationWarning},
		{"calibration_alert", &cfg.Palette.CalibrationAlert},
		{"normal", &cfg.Palette.Normal},
		{"error", &cfg.Palette.Error},
	}
	for _, p := range pairs {
		pair, err := ParseColorPair(p.key, listValue(v.Get("settings."+p.key)))
		if err != nil {
			return nil, err
		}
		*p.dest = pair
	}

	timeout, err := parseDuration("sources.timeout", v.GetString("sources.timeout"))
	if err != nil {
		return nil, err
	}
	cfg.Sources = Sources{
		IndexURL:  strings.TrimSpace(v.GetString("sources.index_url")),
		LatestURL: strings.TrimSpace(v.GetString("sources.latest_url")),
		Timeout:   timeout,
		UserAgent: strings.TrimSpace(v.GetString("sources.user_agent")),
	}

	lookahead, err := cast.ToIntE(v.Get("markers.status_lookahead"))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid 'markers.status_lookahead'",
			"Use a whole number of lines, like 10.")
	}
	cfg.Markers = Markers{
		Upload:          v.GetString("markers.upload"),
		Calibration:     v.GetString("markers.calibration"),
		Detections:      v.GetString("markers.detections"),
		Status:          v.GetString("markers.status"),
		StatusLookahead: lookahead,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// listValue flattens a comma/newline separated string or a list into trimmed,
// non-empty items.
func listValue(raw interface{}) []string {
	var parts []string
	switch val := raw.(type) {
	case nil:
		return nil
	case string:
		parts = strings.FieldsFunc(val, func(r rune) bool { return r == ',' || r == '\n' })
	case []string:
		parts = val
	case []interface{}:
		for _, item := range val {
			parts = append(parts, cast.ToString(item))
		}
	default:
		parts = []string{cast.ToString(val)}
	}

	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// ParseThresholds parses a warning,alert pair of whole days.
func ParseThresholds(items []string) (status.Thresholds, error) {
	if len(items) != 2 {
		return status.Thresholds{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("'thresholds' needs exactly two values, got %d", len(items)),
			"Use 'thresholds = 7,30' for a 7 day warning and a 30 day alert.")
	}

	values := make([]int, 2)
	for i, item := range items {
		n, err := strconv.Atoi(item)
		if err != nil {
			return status.Thresholds{}, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Threshold '%s' is not a whole number of days", item),
				"Use 'thresholds = 7,30' for a 7 day warning and a 30 day alert.")
		}
		values[i] = n
	}
	return status.Thresholds{Warning: values[0], Alert: values[1]}, nil
}

// parseBool accepts the usual boolean spellings plus yes/no and on/off.
func parseBool(key string, raw interface{}) (bool, error) {
	if s, ok := raw.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y", "on":
			return true, nil
		case "no", "n", "off", "":
			return false, nil
		}
	}

	b, err := cast.ToBoolE(raw)
	if err != nil {
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' is not a boolean", key),
			"Use true or false.")
	}
	return b, nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid duration", key),
			"Try something like 30s or 2m, or 0s for no timeout.")
	}
	return d, nil
}
