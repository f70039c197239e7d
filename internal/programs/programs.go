// Package programs serves the built-in workout templates a session can be
// started from.
package programs

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/claude/setsreps/internal/models"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

// Exercise is one planned exercise. Sets and Reps are targets shown to the
// user; no sets are pre-logged.
type Exercise struct {
	Name     string `yaml:"name" json:"name" validate:"required"`
	Category string `yaml:"category" json:"category"`
	Muscle   string `yaml:"muscle" json:"muscle"`
	Sets     int    `yaml:"sets" json:"sets" validate:"gte=1"`
	Reps     string `yaml:"reps" json:"reps" validate:"required"`
}

type Program struct {
	ID          string     `yaml:"id" json:"id" validate:"required"`
	Name        string     `yaml:"name" json:"name" validate:"required"`
	Description string     `yaml:"description" json:"description"`
	Duration    string     `yaml:"duration" json:"duration"`
	Difficulty  string     `yaml:"difficulty" json:"difficulty" validate:"oneof=Beginner Intermediate Advanced"`
	Exercises   []Exercise `yaml:"exercises" json:"exercises" validate:"required,min=1,dive"`
}

// StartSession returns a fresh session at now with one empty entry per
// program exercise, in program order.
func (p Program) StartSession(now time.Time) models.Session {
	s := models.NewSession(now)
	for _, e := range p.Exercises {
		s.AddExercise(e.Name, e.Category, e.Muscle)
	}
	return *s
}

// Catalog is an ordered, read-only set of programs.
type Catalog struct {
	programs []Program
	byID     map[string]int
}

// Builtin parses the embedded catalog.
func Builtin() (*Catalog, error) {
	return Parse(builtin)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Programs []Program `yaml:"programs" validate:"dive"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing program catalog: %w", err)
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("validating program catalog: %w", err)
	}

	c := &Catalog{programs: doc.Programs, byID: make(map[string]int, len(doc.Programs))}
	for i, p := range doc.Programs {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate program id %q", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// List returns every program in catalog order.
func (c *Catalog) List() []Program {
	out := make([]Program, len(c.programs))
	copy(out, c.programs)
	return out
}

// Get returns the program with id.
func (c *Catalog) Get(id string) (Program, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Program{}, false
	}
	return c.programs[i], true
}
