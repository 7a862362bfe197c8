package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/status"
	"gopkg.in/yaml.v3"
)

// Starter holds the answers collected by 'rmsmonitor init'.
type Starter struct {
	Cameras              []string
	Thresholds           status.Thresholds
	ReportOnlyExceptions bool
}

// colorKeys is the order color pairs are written in.
var colorKeys = []string{"upload_warning", "upload_alert", "calibration_warning", "calibration_alert", "normal", "error"}

type starterFile struct {
	Settings starterSettings `yaml:"settings"`
}

type starterSettings struct {
	Cameras             []string `yaml:"cameras"`
	Thresholds          []int    `yaml:"thresholds"`
	ReportOnlyException bool     `yaml:"report_only_exception"`
	UploadWarning       string   `yaml:"upload_warning"`
	UploadAlert         string   `yaml:"upload_alert"`
	CalibrationWarning  string   `yaml:"calibration_warning"`
	CalibrationAlert    string   `yaml:"calibration_alert"`
	Normal              string   `yaml:"normal"`
	Error               string   `yaml:"error"`
}

// RenderStarter renders a starter config in the format implied by path's
// extension: YAML for .yaml/.yml, INI otherwise.
func RenderStarter(path string, s Starter) ([]byte, error) {
	if err := validateThresholds(s.Thresholds.Warning, s.Thresholds.Alert); err != nil {
		return nil, err
	}

	cameras := make([]string, 0, len(s.Cameras))
	for _, id := range s.Cameras {
		if id = status.NormalizeID(id); id != "" {
			cameras = append(cameras, id)
		}
	}
	if len(cameras) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"No cameras given",
			"Enter at least one camera id, like UK0006.")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc := starterFile{Settings: starterSettings{
			Cameras:             cameras,
			Thresholds:          []int{s.Thresholds.Warning, s.Thresholds.Alert},
			ReportOnlyException: s.ReportOnlyExceptions,
			UploadWarning:       DefaultColors["upload_warning"],
			UploadAlert:         DefaultColors["upload_alert"],
			CalibrationWarning:  DefaultColors["calibration_warning"],
			CalibrationAlert:    DefaultColors["calibration_alert"],
			Normal:              DefaultColors["normal"],
			Error:               DefaultColors["error"],
		}}
		return yaml.Marshal(doc)

	case ".toml", ".json":
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Can't write a starter config as %s", filepath.Ext(path)),
			"Use a .ini or .yaml file name.")
	}

	settings := [][2]string{
		{"cameras", strings.Join(cameras, ",")},
		{"thresholds", strconv.Itoa(s.Thresholds.Warning) + "," + strconv.Itoa(s.Thresholds.Alert)},
		{"report_only_exception", strconv.FormatBool(s.ReportOnlyExceptions)},
	}
	for _, key := range colorKeys {
		settings = append(settings, [2]string{key, DefaultColors[key]})
	}

	data, err := renderINI("settings", settings)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to render starter config",
			"Try a .yaml file name instead.")
	}
	return data, nil
}

// WriteStarter writes a starter config to path. Existing files are only
// replaced when force is set.
func WriteStarter(path string, s Starter, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%s already exists", path),
				"Use --force to overwrite it.")
		}
	}

	data, err := RenderStarter(path, s)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check that the directory exists and is writable.")
	}
	return nil
}
