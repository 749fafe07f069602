package config

import (
	"os"

	ini "gopkg.in/ini.v1"
)

// Settings is the subset of the shared WakaTime settings file
// (~/.wakatime.cfg) the plugin consumes. The api key itself is never
// loaded; wakatime-cli reads it on its own.
type Settings struct {
	Debug     bool
	HasAPIKey bool
}

// WakaTimeSettings reads the [settings] section of the INI file at path.
// A missing file yields zero Settings and no error.
func WakaTimeSettings(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}

	section := f.Section("settings")
	s.Debug, _ = section.Key("debug").Bool()
	s.HasAPIKey = section.Key("api_key").String() != ""
	return s, nil
}
