package recipe

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrEmptyName = errors.New("recipe name is empty")
	ErrNotFound  = errors.New("recipe not found")
)

// Recipe is a named formulation expressed per Basis mass units, together with
// the properties predicted when it was saved.
type Recipe struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Masses     Masses     `json:"masses"`
	Prediction Prediction `json:"prediction"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Fields returns the recipe as display strings in export column order.
func (r Recipe) Fields() []string {
	fields := make([]string, 0, NumIngredients+4)
	fields = append(fields, r.Name)
	for _, v := range r.Masses {
		fields = append(fields, formatNumber(v))
	}
	return append(fields,
		formatNumber(r.Prediction.Viscosity),
		formatNumber(r.Prediction.PH),
		formatNumber(r.Prediction.DS),
	)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Store keeps the recipes of one session. It is owned by whoever created it
// and is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	recipes []Recipe
	now     func() time.Time
	newID   func() string
}

func NewStore() *Store {
	return &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Save rescales masses to Basis, rounds every number to 2 decimals and appends
// the recipe. Identical saves are kept as separate entries.
func (s *Store) Save(name string, masses Masses, prediction Prediction) (Recipe, error) {
	scaled, err := masses.Rescale(Basis)
	if err != nil {
		return Recipe{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Recipe{}, ErrEmptyName
	}

	for i, v := range scaled {
		scaled[i] = Round2(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := Recipe{
		ID:         s.newID(),
		Name:       name,
		Masses:     scaled,
		Prediction: prediction.Round(),
		CreatedAt:  s.now(),
	}
	s.recipes = append(s.recipes, r)
	return r, nil
}

// List returns a copy of all recipes in insertion order.
func (s *Store) List() []Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes)
}

// Get returns the recipe with the given id.
func (s *Store) Get(id string) (Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.recipes {
		if r.ID == id {
			return r, nil
		}
	}
	return Recipe{}, ErrNotFound
}

// Delete removes the recipe with the given id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.recipes {
		if r.ID == id {
			s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Reset drops every recipe.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = nil
}

// Filter returns the recipes whose displayed row contains term, ignoring
// case. An empty term matches everything.
func (s *Store) Filter(term string) []Recipe {
	all := s.List()
	needle := foldText(strings.TrimSpace(term))
	if needle == "" {
		return all
	}

	matched := make([]Recipe, 0, len(all))
	for _, r := range all {
		if strings.Contains(foldText(strings.Join(r.Fields(), " ")), needle) {
			matched = append(matched, r)
		}
	}
	return matched
}

// Select returns the recipes with the given ids, in list order.
func (s *Store) Select(ids []string) []Recipe {
	if len(ids) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var out []Recipe
	for _, r := range s.List() {
		if _, ok := wanted[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// foldText normalizes s for caseless comparison. A Caser is stateful, so each
// call gets its own.
func foldText(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}
