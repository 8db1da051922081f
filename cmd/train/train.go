// Package train builds the per-user corpus from stored interactions and
// trains the book embedding model.
package train

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lepinkainen/booksuggest/internal/config"
	"github.com/lepinkainen/booksuggest/internal/corpus"
	"github.com/lepinkainen/booksuggest/internal/store"
	"github.com/lepinkainen/booksuggest/internal/word2vec"
)

// TrainWithParams trains the embedding model over the current interaction
// graph. In update mode the existing artifact's vocabulary frame is kept and
// training continues over the new corpus; fresh mode discards it. The
// finished model replaces the artifact atomically.
func TrainWithParams(update bool, params word2vec.Hyperparameters) error {
	st := store.NewSQLiteStore(config.DatabaseFile)
	if err := st.Connect(); err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return trainWithStore(st, config.ModelFile, update, params)
}

func trainWithStore(st store.Store, modelPath string, update bool, params word2vec.Hyperparameters) error {
	interactions, err := st.AllInteractions()
	if err != nil {
		return err
	}
	if len(interactions) == 0 {
		return fmt.Errorf("no interactions to train on, run a crawl first")
	}

	c := corpus.Build(interactions)
	sentences := c.Sentences()
	slog.Info("Built training corpus", "users", len(sentences), "interactions", len(interactions))

	var model *word2vec.Model
	if update {
		existing, err := word2vec.Load(modelPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("update mode needs an existing model at %s, train fresh first", modelPath)
			}
			return err
		}
		model, err = existing.TrainUpdate(sentences)
		if err != nil {
			return err
		}
	} else {
		model, err = word2vec.Train(sentences, params)
		if err != nil {
			return err
		}
	}

	if err := model.Save(modelPath); err != nil {
		return err
	}

	slog.Info("Model saved", "path", modelPath, "vocab_size", model.VocabSize())
	return nil
}
