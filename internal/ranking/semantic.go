package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/gcbaptista/course-search-engine/internal/lexicon"
	"github.com/gcbaptista/course-search-engine/internal/tokenizer"
	"github.com/gcbaptista/course-search-engine/model"
)

// VectorSpace scores a query against the documents it was built from.
type VectorSpace interface {
	// Similarities returns one cosine similarity in [0,1] per document, in
	// document order.
	Similarities(queryTerms []string) []float64
}

// VectorSpaceBuilder builds a VectorSpace over tokenized documents. A builder
// may cache, but it must return the same similarities as a fresh build.
type VectorSpaceBuilder func(documents [][]string) VectorSpace

// NewTFIDFSpace builds a TF-IDF space with raw term counts and smoothed IDF
// ln((1+n)/(1+df)) + 1, where n counts the documents only.
func NewTFIDFSpace(documents [][]string) VectorSpace {
	space := &tfidfSpace{
		vocabulary: make(map[string]int),
		vectors:    make([]sparseVector, len(documents)),
	}

	counts := make([]map[int]float64, len(documents))
	var df []int
	for i, doc := range documents {
		counts[i] = make(map[int]float64, len(doc))
		for _, term := range doc {
			idx, ok := space.vocabulary[term]
			if !ok {
				idx = len(df)
				space.vocabulary[term] = idx
				df = append(df, 0)
			}
			if counts[i][idx] == 0 {
				df[idx]++
			}
			counts[i][idx]++
		}
	}

	n := float64(len(documents))
	space.idf = make([]float64, len(df))
	for idx, freq := range df {
		space.idf[idx] = math.Log((1+n)/(1+float64(freq))) + 1
	}

	for i, termCounts := range counts {
		space.vectors[i] = newSparseVector(termCounts, space.idf)
	}
	return space
}

type tfidfSpace struct {
	vocabulary map[string]int
	idf        []float64
	vectors    []sparseVector
}

func (s *tfidfSpace) Similarities(queryTerms []string) []float64 {
	similarities := make([]float64, len(s.vectors))

	counts := make(map[int]float64, len(queryTerms))
	for _, term := range queryTerms {
		// Terms outside the corpus vocabulary carry no weight.
		if idx, ok := s.vocabulary[term]; ok {
			counts[idx]++
		}
	}
	queryVector := newSparseVector(counts, s.idf)
	if queryVector.norm == 0 {
		return similarities
	}

	weights := make(map[int]float64, len(queryVector.entries))
	for _, e := range queryVector.entries {
		weights[e.index] = e.weight
	}

	for i, doc := range s.vectors {
		if doc.norm == 0 {
			continue
		}
		dot := 0.0
		for _, e := range doc.entries {
			dot += e.weight * weights[e.index]
		}
		similarity := dot / (doc.norm * queryVector.norm)
		similarities[i] = math.Min(1, math.Max(0, similarity))
	}
	return similarities
}

type sparseEntry struct {
	index  int
	weight float64
}

// sparseVector keeps entries sorted by index so sums are evaluated in a fixed order.
type sparseVector struct {
	entries []sparseEntry
	norm    float64
}

func newSparseVector(counts map[int]float64, idf []float64) sparseVector {
	v := sparseVector{entries: make([]sparseEntry, 0, len(counts))}
	for idx, count := range counts {
		v.entries = append(v.entries, sparseEntry{index: idx, weight: count * idf[idx]})
	}
	sort.Slice(v.entries, func(i, j int) bool { return v.entries[i].index < v.entries[j].index })

	sum := 0.0
	for _, e := range v.entries {
		sum += e.weight * e.weight
	}
	v.norm = math.Sqrt(sum)
	return v
}

// semanticDocument turns a course into the token list used for similarity:
// name and description, stop words removed, abbreviations expanded both ways.
func semanticDocument(course model.Course, lex *lexicon.Lexicon) []string {
	return semanticTerms(course.Name+" "+course.Description, lex)
}

// semanticTerms tokenizes text for the vector space.
func semanticTerms(text string, lex *lexicon.Lexicon) []string {
	tokens := tokenizer.Tokenize(text)
	abbreviations := lex.Abbreviations()

	terms := make([]string, 0, len(tokens))
	emit := func(token string) {
		if !lex.IsStopWord(token) {
			terms = append(terms, token)
		}
	}

	for i, token := range tokens {
		emit(token)
		for _, abbr := range abbreviations {
			if token == abbr.Short {
				for _, word := range strings.Fields(abbr.Full) {
					emit(word)
				}
				continue
			}
			if endsFullForm(tokens, i, abbr.Full) {
				emit(abbr.Short)
			}
		}
	}
	return terms
}

// endsFullForm reports whether tokens[..i] ends with the words of full.
func endsFullForm(tokens []string, i int, full string) bool {
	words := strings.Fields(full)
	start := i - len(words) + 1
	if len(words) == 0 || start < 0 {
		return false
	}
	for j, word := range words {
		if tokens[start+j] != word {
			return false
		}
	}
	return true
}
