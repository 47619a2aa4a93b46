// Package pool dispenses jokes from a fixed set in random order without
// repeating any joke until every joke has been handed out once.
package pool

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"

	"dadjoke/internal/metrics"
	"dadjoke/pkg/logger"

	"gopkg.in/yaml.v3"
)

var ErrEmptyUniverse = errors.New("joke pool needs at least one joke")

type Pool struct {
	mu        sync.Mutex
	universe  []string
	available []string
	refills   int
	intn      func(n int) int
}

type Option func(*Pool)

// WithRand replaces the index source. intn must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(p *Pool) {
		p.intn = intn
	}
}

func New(jokes []string, opts ...Option) (*Pool, error) {
	if len(jokes) == 0 {
		return nil, ErrEmptyUniverse
	}

	universe := make([]string, len(jokes))
	copy(universe, jokes)

	p := &Pool{
		universe:  universe,
		available: append([]string(nil), universe...),
		intn:      rand.IntN,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Draw removes and returns a random joke, refilling the working set first
// when it is empty.
func (p *Pool) Draw() string {
	p.mu.Lock()
	refilled := len(p.available) == 0
	if refilled {
		p.available = append(p.available[:0], p.universe...)
		p.refills++
	}

	i := p.intn(len(p.available))
	joke := p.available[i]

	last := len(p.available) - 1
	p.available[i] = p.available[last]
	p.available[last] = ""
	p.available = p.available[:last]
	p.mu.Unlock()

	if refilled {
		metrics.PoolRefills.Inc()
		logger.Info("Joke pool refilled", logger.Int("size", len(p.universe)))
	}

	return joke
}

func (p *Pool) Len() int {
	return len(p.universe)
}

func (p *Pool) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available)
}

func (p *Pool) Refills() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refills
}

type jokeFile struct {
	Jokes []string `yaml:"jokes"`
}

// LoadFile reads a YAML document of the form `jokes: [...]`.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read joke file: %w", err)
	}

	var f jokeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse joke file %s: %w", path, err)
	}

	jokes := f.Jokes[:0]
	for _, j := range f.Jokes {
		if j != "" {
			jokes = append(jokes, j)
		}
	}

	return jokes, nil
}
