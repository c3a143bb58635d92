package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const lastCatalogURLKey = "last_catalog_url"

// statePath is the YAML file holding what the CLI remembers between runs. It is kept
// apart from config.yaml so user settings are never rewritten. Empty disables it.
var statePath = defaultStatePath()

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "plutodl", "state.yaml")
}

func newStateViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(statePath)
	v.SetConfigType("yaml")
	return v
}

// LastCatalogURL returns the catalog URL recorded by a previous run, or "" when none was.
func LastCatalogURL() string {
	if statePath == "" {
		return ""
	}
	v := newStateViper()
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			logger.Debug().Err(err).Str("path", statePath).Msg("Ignoring unreadable state file")
		}
		return ""
	}
	return v.GetString(lastCatalogURLKey)
}

// SaveLastCatalogURL records url so the next run can omit it.
func SaveLastCatalogURL(url string) error {
	if statePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(statePath), 0o755); err != nil {
		return err
	}
	v := newStateViper()
	_ = v.ReadInConfig()
	v.Set(lastCatalogURLKey, url)
	return v.WriteConfigAs(statePath)
}
