package word2vec

import (
	"math"
	"sort"
)

const unigramTableSize = 1 << 20

// buildVocab counts book id occurrences across all sentences and keeps the
// ids seen at least minCount times. The result is sorted by descending count
// with id as tie-break, so vocabulary order is deterministic.
func buildVocab(sentences [][]string, minCount int) (words []string, counts []int) {
	occurrences := make(map[string]int)
	for _, sentence := range sentences {
		for _, id := range sentence {
			occurrences[id]++
		}
	}

	for id, count := range occurrences {
		if count >= minCount {
			words = append(words, id)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		ci, cj := occurrences[words[i]], occurrences[words[j]]
		if ci != cj {
			return ci > cj
		}
		return words[i] < words[j]
	})

	counts = make([]int, len(words))
	for i, id := range words {
		counts[i] = occurrences[id]
	}
	return words, counts
}

// buildUnigramTable builds the sampling table for negative sampling. Ids are
// represented proportionally to count^0.75, the standard smoothing that keeps
// frequent books from dominating the negative draws.
func buildUnigramTable(counts []int) []int32 {
	if len(counts) == 0 {
		return nil
	}

	var total float64
	for _, c := range counts {
		total += math.Pow(float64(c), 0.75)
	}

	table := make([]int32, unigramTableSize)
	word := 0
	cumulative := math.Pow(float64(counts[word]), 0.75) / total
	for i := range table {
		table[i] = int32(word)
		if float64(i)/float64(unigramTableSize) > cumulative && word < len(counts)-1 {
			word++
			cumulative += math.Pow(float64(counts[word]), 0.75) / total
		}
	}
	return table
}

// huffmanCode is the hierarchical-softmax path for one vocabulary entry.
type huffmanCode struct {
	points []int32 // inner node indices from root to leaf parent
	code   []byte  // branch decisions along the path
}

// buildHuffmanTree assigns a binary Huffman code to every vocabulary entry,
// giving frequent books short paths through the output tree.
func buildHuffmanTree(counts []int) []huffmanCode {
	vocabSize := len(counts)
	if vocabSize == 0 {
		return nil
	}

	// Standard two-pointer Huffman construction over count-sorted vocab.
	count := make([]int64, vocabSize*2-1)
	parent := make([]int, vocabSize*2-1)
	binary := make([]byte, vocabSize*2-1)
	for i, c := range counts {
		count[i] = int64(c)
	}
	for i := vocabSize; i < len(count); i++ {
		count[i] = math.MaxInt64
	}

	pos1 := vocabSize - 1
	pos2 := vocabSize
	for a := 0; a < vocabSize-1; a++ {
		var min1, min2 int
		if pos1 >= 0 && count[pos1] < count[pos2] {
			min1 = pos1
			pos1--
		} else {
			min1 = pos2
			pos2++
		}
		if pos1 >= 0 && count[pos1] < count[pos2] {
			min2 = pos1
			pos1--
		} else {
			min2 = pos2
			pos2++
		}
		count[vocabSize+a] = count[min1] + count[min2]
		parent[min1] = vocabSize + a
		parent[min2] = vocabSize + a
		binary[min2] = 1
	}

	codes := make([]huffmanCode, vocabSize)
	for a := 0; a < vocabSize; a++ {
		var code []byte
		var points []int32
		for b := a; b != vocabSize*2-2; b = parent[b] {
			code = append(code, binary[b])
			points = append(points, int32(parent[b]-vocabSize))
		}
		// reverse so the path runs root to leaf
		for i, j := 0, len(code)-1; i < j; i, j = i+1, j-1 {
			code[i], code[j] = code[j], code[i]
			points[i], points[j] = points[j], points[i]
		}
		codes[a] = huffmanCode{points: points, code: code}
	}
	return codes
}
