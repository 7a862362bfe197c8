package config

import (
	"bytes"

	encini "github.com/go-viper/encoding/ini"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// iniSections are the sections that inherit keys from [DEFAULT].
var iniSections = []string{"settings", "sources", "markers"}

// iniLoadOptions follow configparser: indented lines continue the previous
// value, and '#' or ';' only start a comment at the beginning of a line so
// hex colors survive.
var iniLoadOptions = encini.LoadOptions{
	AllowPythonMultilineValues: true,
	IgnoreInlineComment:        true,
}

// newViper returns a viper instance that also reads INI files.
func newViper() *viper.Viper {
	codecs := viper.NewCodecRegistry()
	// RegisterCodec only fails for an empty format name.
	_ = codecs.RegisterCodec("ini", encini.Codec{LoadOptions: iniLoadOptions})
	return viper.NewWithOptions(viper.WithCodecRegistry(codecs))
}

// inheritINIDefaults copies keys from the [DEFAULT] section into every known
// section that doesn't set them itself.
func inheritINIDefaults(v *viper.Viper) error {
	defaults := v.GetStringMapString("default")
	if len(defaults) == 0 {
		return nil
	}

	missing := make(map[string]interface{})
	for _, section := range iniSections {
		values := make(map[string]interface{})
		for key, val := range defaults {
			if !v.InConfig(section + "." + key) {
				values[key] = val
			}
		}
		if len(values) > 0 {
			missing[section] = values
		}
	}
	return v.MergeConfigMap(missing)
}

// renderINI writes one section with keys in the given order.
func renderINI(section string, values [][2]string) ([]byte, error) {
	f := ini.Empty()
	sec, err := f.NewSection(section)
	if err != nil {
		return nil, err
	}
	for _, kv := range values {
		if _, err := sec.NewKey(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
