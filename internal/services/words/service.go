package words

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/aliasgame/internal/dependencies/random"
	"github.com/mcoot/aliasgame/internal/model"
)

//go:embed data/words.txt
var defaultCorpus string

// Service holds word lists per difficulty tier and draws random words from them
type Service struct {
	random random.Random

	mu    sync.RWMutex
	tiers map[model.Difficulty][]string
}

// New creates a Service loaded with the embedded default corpus
func New(rng random.Random) (*Service, error) {
	s := &Service{
		random: rng,
		tiers:  make(map[model.Difficulty][]string),
	}
	if err := s.Load(strings.NewReader(defaultCorpus)); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFromFile replaces the corpus with the contents of a sectioned word file
func (s *Service) LoadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.Load(file)
}

// Load replaces the corpus with one read from r.
//
// Format:
//
//	# comment
//	[easy]
//	apple
//	[medium]
//	...
//
// Every difficulty must end up with at least one word. On error the
// previous corpus is kept.
func (s *Service) Load(r io.Reader) error {
	tiers, err := parseCorpus(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers = tiers
	return nil
}

func parseCorpus(r io.Reader) (map[model.Difficulty][]string, error) {
	tiers := make(map[model.Difficulty][]string)
	var current model.Difficulty

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = model.Difficulty(strings.ToLower(strings.TrimSpace(line[1 : len(line)-1])))
			if !current.IsValid() {
				return nil, fmt.Errorf("%w: line %d: unknown difficulty %q", model.ErrInvalidCorpus, lineNo, current)
			}
			continue
		}

		if current == "" {
			return nil, fmt.Errorf("%w: line %d: word before any section", model.ErrInvalidCorpus, lineNo)
		}
		tiers[current] = append(tiers[current], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, d := range model.Difficulties() {
		if len(tiers[d]) == 0 {
			return nil, fmt.Errorf("%w: no words for difficulty %q", model.ErrInvalidCorpus, d)
		}
	}
	return tiers, nil
}

// Random returns a uniformly random word from the tier.
// Draws are independent, so repeats are possible.
func (s *Service) Random(d model.Difficulty) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.tiers[d]
	if !ok || len(list) == 0 {
		return "", fmt.Errorf("%w: unknown difficulty %q", model.ErrInvalidSettings, d)
	}
	return list[s.random.Intn(len(list))], nil
}

// Words returns a copy of the tier's word list
func (s *Service) Words(d model.Difficulty) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, len(s.tiers[d]))
	copy(result, s.tiers[d])
	return result
}

// Count returns the number of words in the tier
func (s *Service) Count(d model.Difficulty) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tiers[d])
}

// Source is the part of the service the game machine draws from
type Source interface {
	Random(d model.Difficulty) (string, error)
}

var _ Source = (*Service)(nil)
