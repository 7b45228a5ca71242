// Package generator picks practice exercises.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/tuiano/internal/theory"
)

// Exercise is a scale to practice.
type Exercise struct {
	Root string
	Type theory.ScaleType
}

// Generator produces randomized exercises.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Pick selects a root and a scale type uniformly.
func (g *Generator) Pick(roots []string, types []theory.ScaleType) Exercise {
	if len(roots) == 0 || len(types) == 0 {
		return Exercise{}
	}
	return Exercise{
		Root: roots[g.rnd.Intn(len(roots))],
		Type: types[g.rnd.Intn(len(types))],
	}
}

// PickWeighted selects an exercise with a bias toward scales containing weak
// pitch classes. Each candidate weighs 1 + weakCount*factor.
func (g *Generator) PickWeighted(roots []string, types []theory.ScaleType, weak map[string]struct{}, factor float64) Exercise {
	if len(weak) == 0 || factor <= 0 {
		return g.Pick(roots, types)
	}
	weakChroma := map[int]struct{}{}
	for note := range weak {
		if c, ok := theory.Chroma(note); ok {
			weakChroma[c] = struct{}{}
		}
	}

	candidates := make([]Exercise, 0, len(roots)*len(types))
	weights := make([]float64, 0, cap(candidates))
	total := 0.0
	for _, root := range roots {
		for _, st := range types {
			notes := theory.GenerateScale(root, st)
			if len(notes) == 0 {
				continue
			}
			weakCount := 0
			for _, n := range notes {
				if c, ok := theory.Chroma(n); ok {
					if _, isWeak := weakChroma[c]; isWeak {
						weakCount++
					}
				}
			}
			w := 1.0 + float64(weakCount)*factor
			candidates = append(candidates, Exercise{Root: root, Type: st})
			weights = append(weights, w)
			total += w
		}
	}
	if len(candidates) == 0 {
		return Exercise{}
	}

	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}
