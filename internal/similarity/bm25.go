package similarity

import (
	"math"
	"sort"
)

const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// Field is a piece of a document with its own weight, so a title can count
// more than a body.
type Field struct {
	Text   string
	Weight float64
}

type Document struct {
	ID     string
	Fields []Field
}

type Result struct {
	ID    string
	Score float64
}

type indexedDoc struct {
	id     string
	terms  map[string]float64
	length float64
}

// Index is an Okapi BM25 index. It is immutable once built and safe for
// concurrent searches.
type Index struct {
	k1     float64
	b      float64
	docs   []indexedDoc
	df     map[string]int
	avgLen float64
}

// NewIndex builds an index with the usual k1 and b.
func NewIndex(docs []Document) *Index {
	return NewIndexWithParams(docs, DefaultK1, DefaultB)
}

func NewIndexWithParams(docs []Document, k1, b float64) *Index {
	idx := &Index{
		k1: k1,
		b:  b,
		df: make(map[string]int),
	}

	var totalLen float64
	for _, d := range docs {
		doc := indexedDoc{id: d.ID, terms: make(map[string]float64)}
		for _, field := range d.Fields {
			w := field.Weight
			if w <= 0 {
				w = 1
			}
			for _, tok := range Tokenize(field.Text) {
				doc.terms[tok] += w
				doc.length += w
			}
		}
		for term := range doc.terms {
			idx.df[term]++
		}
		totalLen += doc.length
		idx.docs = append(idx.docs, doc)
	}

	if len(idx.docs) > 0 {
		idx.avgLen = totalLen / float64(len(idx.docs))
	}
	return idx
}

func (idx *Index) Len() int {
	return len(idx.docs)
}

func (idx *Index) idf(term string) float64 {
	n := float64(len(idx.docs))
	df := float64(idx.df[term])
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// Search scores every document against query and returns the ones with a
// positive score, best first. limit <= 0 returns all of them.
func (idx *Index) Search(query string, limit int) []Result {
	terms := Tokenize(query)
	if len(terms) == 0 || len(idx.docs) == 0 {
		return nil
	}

	var results []Result
	for _, doc := range idx.docs {
		var score float64
		for _, term := range terms {
			tf, ok := doc.terms[term]
			if !ok {
				continue
			}
			norm := 1 - idx.b
			if idx.avgLen > 0 {
				norm += idx.b * doc.length / idx.avgLen
			}
			score += idx.idf(term) * tf * (idx.k1 + 1) / (tf + idx.k1*norm)
		}
		if score > 0 {
			results = append(results, Result{ID: doc.id, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
