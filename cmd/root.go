// Package cmd wires the command line interface for booksuggest.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/booksuggest/cmd/crawl"
	"github.com/lepinkainen/booksuggest/cmd/enrich"
	"github.com/lepinkainen/booksuggest/cmd/recommend"
	"github.com/lepinkainen/booksuggest/cmd/train"
	"github.com/lepinkainen/booksuggest/internal/config"
	"github.com/lepinkainen/booksuggest/internal/store"
	"github.com/lepinkainen/booksuggest/internal/word2vec"
)

var (
	runRanking = crawl.RunRankingWithParams
	runTags    = crawl.RunTagsWithParams
	runTrain   = train.TrainWithParams
	runSearch  = recommend.SearchWithParams
	runSimilar = recommend.SimilarWithParams
	runBrowse  = recommend.BrowseWithParams
	runEnrich  = enrich.RunWithParams
)

// CLI represents the complete command structure for the booksuggest application
type CLI struct {
	// Global flags
	Database   string `help:"Path to SQLite database file" default:"./booksuggest.db"`
	ModelFile  string `help:"Path to trained model artifact" default:"./book2vec.model"`
	Checkpoint string `help:"Path to crawl checkpoint file" default:"./checkpoint.yaml"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./cache.db"`

	Crawl   CrawlCmd   `cmd:"" help:"Ingest user-book interactions from the reading-log site"`
	Train   TrainCmd   `cmd:"" help:"Train the book embedding model from stored interactions"`
	Search  SearchCmd  `cmd:"" help:"Resolve free text to matching books"`
	Similar SimilarCmd `cmd:"" help:"Show the nearest neighbors of a book"`
	Browse  BrowseCmd  `cmd:"" help:"Search, pick a book interactively and show its neighbors"`
	Enrich  EnrichCmd  `cmd:"" help:"Backfill metadata for books missing authors"`
	Stats   StatsCmd   `cmd:"" help:"Print user, book and interaction counts"`
}

// CrawlCmd groups the two discovery walks.
type CrawlCmd struct {
	Ranking RankingCmd `cmd:"" help:"Walk the annual popularity rankings"`
	Tags    TagsCmd    `cmd:"" help:"Walk the popular profile tag listings"`
}

// RankingCmd crawls the annual ranking walk.
type RankingCmd struct {
	StartYear int  `help:"First (most recent) ranking year to crawl" default:"2015"`
	EndYear   int  `help:"Last (oldest) ranking year to crawl" default:"2009"`
	Headless  bool `help:"Run the browser headless" default:"true" negatable:""`
}

// TagsCmd crawls the profile tag walk.
type TagsCmd struct {
	Headless bool `help:"Run the browser headless" default:"true" negatable:""`
}

// TrainCmd trains the embedding model.
type TrainCmd struct {
	Update        bool   `help:"Continue training the existing model instead of starting fresh"`
	Size          int    `help:"Embedding dimensionality" default:"208"`
	Window        int    `help:"Context window size" default:"29"`
	Epochs        int    `help:"Training epochs" default:"5"`
	Negative      int    `help:"Negative sample count" default:"9"`
	MinCount      int    `help:"Minimum occurrences for a book to enter the vocabulary" default:"1"`
	ModelType     string `help:"Architecture: cbow or skipgram" default:"cbow" enum:"cbow,skipgram"`
	Approximation string `help:"Softmax approximation: negative or hierarchical" default:"negative" enum:"negative,hierarchical"`
	Seed          int64  `help:"Training RNG seed" default:"1"`
}

// SearchCmd resolves free text.
type SearchCmd struct {
	Query []string `arg:"" help:"Search text"`
}

// SimilarCmd queries nearest neighbors by book id.
type SimilarCmd struct {
	BookID string `arg:"" help:"Origin-site book code"`
	TopN   int    `help:"Number of neighbors to return" default:"4"`
}

// BrowseCmd runs the interactive search-and-recommend flow.
type BrowseCmd struct {
	Query []string `arg:"" help:"Search text"`
	TopN  int      `help:"Number of neighbors to return" default:"4"`
}

// EnrichCmd backfills metadata.
type EnrichCmd struct {
	DownloadCovers bool `help:"Download and resize cover images" default:"false"`
}

// StatsCmd prints table counts.
type StatsCmd struct{}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("booksuggest"),
		kong.Description("Builds and queries a book recommendation model from a community reading log."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initLogging() {
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	viper.SetDefault("database.file", "./booksuggest.db")
	viper.SetDefault("model.file", "./book2vec.model")
	viper.SetDefault("crawl.checkpoint", "./checkpoint.yaml")
	viper.SetDefault("covers.dir", "./covers/")
	viper.SetDefault("covers.download", false)
	viper.SetDefault("cache.dbfile", "./cache.db")

	viper.AutomaticEnv()
	if err := viper.BindEnv("googlebooks.apikey", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	config.SetDatabaseFile(cli.Database)
	config.SetModelFile(cli.ModelFile)
	config.SetCheckpointFile(cli.Checkpoint)

	viper.Set("cache.dbfile", cli.CacheDBFile)
}

// Run methods for each command

func (r *RankingCmd) Run() error {
	return runRanking(context.Background(), r.StartYear, r.EndYear, r.Headless)
}

func (t *TagsCmd) Run() error {
	return runTags(context.Background(), t.Headless)
}

func (t *TrainCmd) Run() error {
	params := word2vec.Hyperparameters{
		VectorSize:    t.Size,
		Window:        t.Window,
		Epochs:        t.Epochs,
		NegativeSize:  t.Negative,
		MinCount:      t.MinCount,
		ModelType:     word2vec.ModelType(t.ModelType),
		Approximation: word2vec.Approximation(t.Approximation),
		Seed:          t.Seed,
	}

	start := time.Now()
	if err := runTrain(t.Update, params); err != nil {
		return err
	}
	slog.Info("Training finished", "elapsed", time.Since(start).Round(time.Second))
	return nil
}

func (s *SearchCmd) Run() error {
	return runSearch(joinQuery(s.Query))
}

func (s *SimilarCmd) Run() error {
	return runSimilar(context.Background(), s.BookID, s.TopN)
}

func (b *BrowseCmd) Run() error {
	return runBrowse(context.Background(), joinQuery(b.Query), b.TopN)
}

func (e *EnrichCmd) Run() error {
	config.DownloadCovers = e.DownloadCovers
	return runEnrich(context.Background())
}

func (s *StatsCmd) Run() error {
	st := store.NewSQLiteStore(config.DatabaseFile)
	if err := st.Connect(); err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	users, err := st.CountUsers()
	if err != nil {
		return err
	}
	books, err := st.CountBooks()
	if err != nil {
		return err
	}
	interactions, err := st.CountInteractions()
	if err != nil {
		return err
	}

	fmt.Printf("users:        %d\n", users)
	fmt.Printf("books:        %d\n", books)
	fmt.Printf("interactions: %d\n", interactions)
	return nil
}

func joinQuery(parts []string) string {
	return strings.Join(parts, " ")
}
