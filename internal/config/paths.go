package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/stepwire/internal/constants"
	"github.com/mrz1836/stepwire/internal/errors"
)

// GlobalConfigDir returns ~/.stepwire.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.StepwireHome), nil
}

// GlobalConfigPath returns ~/.stepwire/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns .stepwire/config.yaml, relative to the working
// directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.StepwireHome, constants.ConfigFileName)
}
