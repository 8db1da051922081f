package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// DatabaseFile is the path to the SQLite database holding users, books and interactions
	DatabaseFile string
	// ModelFile is the path to the trained embedding model artifact
	ModelFile string
	// CheckpointFile is the path to the crawl checkpoint
	CheckpointFile string
	// CoverDir is the directory where downloaded cover thumbnails are stored
	CoverDir string
	// DownloadCovers controls whether enrichment downloads cover images
	DownloadCovers bool
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("database.file", "./booksuggest.db")
	viper.SetDefault("model.file", "./book2vec.model")
	viper.SetDefault("crawl.checkpoint", "./checkpoint.yaml")
	viper.SetDefault("covers.dir", "./covers/")
	viper.SetDefault("covers.download", false)

	// Get values from viper
	DatabaseFile = viper.GetString("database.file")
	ModelFile = viper.GetString("model.file")
	CheckpointFile = viper.GetString("crawl.checkpoint")
	CoverDir = viper.GetString("covers.dir")
	DownloadCovers = viper.GetBool("covers.download")
}

// SetDatabaseFile sets the database path
func SetDatabaseFile(path string) {
	DatabaseFile = path
}

// SetModelFile sets the model artifact path
func SetModelFile(path string) {
	ModelFile = path
}

// SetCheckpointFile sets the crawl checkpoint path
func SetCheckpointFile(path string) {
	CheckpointFile = path
}
