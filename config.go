package arbor

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppConfig describes where the application lives on disk. It is computed
// once by New and immutable afterwards.
type AppConfig struct {
	// RootDir is the project root the scanner resolves package paths
	// against.
	RootDir string

	// AppDirName is the name of the application directory under RootDir.
	// Empty when the application lives directly in RootDir.
	AppDirName string

	// AppDir is RootDir/AppDirName.
	AppDir string
}

// DefaultAppConfig computes the configuration for an application in the
// appDirName directory under rootDir.
func DefaultAppConfig(rootDir, appDirName string) AppConfig {
	return AppConfig{
		RootDir:    rootDir,
		AppDirName: appDirName,
		AppDir:     filepath.Join(rootDir, appDirName),
	}
}

// validate checks that the application directory exists. A missing or
// non-directory app dir is a fatal configuration error: silently serving
// an empty route tree would be much harder to diagnose.
func (c AppConfig) validate() error {
	info, err := os.Stat(c.AppDir)
	if err != nil {
		return configErrorf("config", "application directory %s: %w", c.AppDir, err)
	}
	if !info.IsDir() {
		return configErrorf("config", "application directory %s: %w", c.AppDir, fmt.Errorf("not a directory"))
	}
	return nil
}
