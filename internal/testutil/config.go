package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/booksuggest/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	DatabaseFile   string
	ModelFile      string
	CheckpointFile string
	CoverDir       string
	DownloadCovers bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		DatabaseFile:   config.DatabaseFile,
		ModelFile:      config.ModelFile,
		CheckpointFile: config.CheckpointFile,
		CoverDir:       config.CoverDir,
		DownloadCovers: config.DownloadCovers,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.DatabaseFile = state.DatabaseFile
	config.ModelFile = state.ModelFile
	config.CheckpointFile = state.CheckpointFile
	config.CoverDir = state.CoverDir
	config.DownloadCovers = state.DownloadCovers
}

// SetTestConfig points every configurable path at a sandboxed directory and
// restores the previous configuration when the test completes.
func SetTestConfig(t *testing.T, env *TestEnv) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	config.DatabaseFile = env.Path("booksuggest.db")
	config.ModelFile = env.Path("book2vec.model")
	config.CheckpointFile = env.Path("checkpoint.yaml")
	config.CoverDir = env.Path("covers")
	config.DownloadCovers = false
	viper.Set("cache.dbfile", env.Path("cache.db"))

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}
