// Package words provides the secret-word source for game rounds.
package words

import (
	_ "embed"
	"errors"
	"math/rand"
	"strings"
)

//go:embed words.txt
var embedded string

var ErrEmptyList = errors.New("word list contains no words")

// List hands out uniformly chosen words from a fixed list.
type List struct {
	words []string
}

// New builds a List from the given words, skipping blank entries.
func New(ws []string) (*List, error) {
	cleaned := make([]string, 0, len(ws))
	for _, w := range ws {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		cleaned = append(cleaned, w)
	}
	if len(cleaned) == 0 {
		return nil, ErrEmptyList
	}
	return &List{words: cleaned}, nil
}

// Embedded loads the word list compiled into the binary.
func Embedded() (*List, error) {
	return New(strings.Split(embedded, "\n"))
}

// Next returns one word, uniformly selected. Safe for concurrent use.
func (l *List) Next() string {
	return l.words[rand.Intn(len(l.words))]
}
