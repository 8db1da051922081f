package word2vec

import "fmt"

// ModelType selects the training architecture.
type ModelType string

const (
	// ModelCBOW predicts the target book from its context (context-predicts-target).
	ModelCBOW ModelType = "cbow"
	// ModelSkipGram predicts the context from the target book (target-predicts-context).
	ModelSkipGram ModelType = "skipgram"
)

// Approximation selects the softmax approximation used during training.
type Approximation string

const (
	// ApproxNegative uses negative sampling.
	ApproxNegative Approximation = "negative"
	// ApproxHierarchical uses a Huffman-tree hierarchical softmax.
	ApproxHierarchical Approximation = "hierarchical"
)

// Hyperparameters control vocabulary admission and training behavior. They
// are persisted inside the model artifact so a loaded model knows how it
// was produced.
type Hyperparameters struct {
	// VectorSize is the embedding dimensionality.
	VectorSize int
	// Window is the maximum context distance on either side of the target.
	Window int
	// Epochs is the number of passes over the corpus.
	Epochs int
	// NegativeSize is the number of negative samples per target (negative
	// sampling only).
	NegativeSize int
	// MinCount is the minimum occurrence count for a book id to enter the
	// vocabulary. Ids below the threshold are unqueryable.
	MinCount int
	// ModelType selects CBOW or skip-gram.
	ModelType ModelType
	// Approximation selects negative sampling or hierarchical softmax.
	Approximation Approximation
	// Seed seeds the training RNG so runs are reproducible.
	Seed int64
}

// DefaultHyperparameters returns the tuned defaults.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		VectorSize:    208,
		Window:        29,
		Epochs:        5,
		NegativeSize:  9,
		MinCount:      1,
		ModelType:     ModelCBOW,
		Approximation: ApproxNegative,
		Seed:          1,
	}
}

func (p Hyperparameters) validate() error {
	if p.VectorSize <= 0 {
		return fmt.Errorf("vector size must be positive, got %d", p.VectorSize)
	}
	if p.Window <= 0 {
		return fmt.Errorf("window must be positive, got %d", p.Window)
	}
	if p.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", p.Epochs)
	}
	if p.MinCount <= 0 {
		return fmt.Errorf("min count must be positive, got %d", p.MinCount)
	}
	switch p.ModelType {
	case ModelCBOW, ModelSkipGram:
	default:
		return fmt.Errorf("unknown model type %q", p.ModelType)
	}
	switch p.Approximation {
	case ApproxNegative, ApproxHierarchical:
	default:
		return fmt.Errorf("unknown approximation %q", p.Approximation)
	}
	if p.Approximation == ApproxNegative && p.NegativeSize <= 0 {
		return fmt.Errorf("negative sampling requires a positive sample count, got %d", p.NegativeSize)
	}
	return nil
}
