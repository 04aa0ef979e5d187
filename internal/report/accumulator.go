package report

import (
	"math"
	"strings"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
)

// RunningStats is a one-pass reduction of a stream of samples.
type RunningStats struct {
	Sum          float64
	SumOfSquares float64
	Min          float64
	Max          float64
	Counter      int
}

func (s *RunningStats) Observe(v float64) {
	if s.Counter == 0 {
		s.Min, s.Max = v, v
	}
	s.Sum += v
	s.SumOfSquares += v * v
	s.Counter++
	s.Max = math.Max(s.Max, v)
	s.Min = math.Min(s.Min, v)
}

func (s RunningStats) Avg() float64 {
	return DivOrZero(s.Sum, float64(s.Counter))
}

// Stdev is the population standard deviation; zero below two samples or when
// every sample is equal.
func (s RunningStats) Stdev() float64 {
	if s.Counter < 2 || s.Min == s.Max {
		return 0
	}
	avg := s.Avg()
	variance := s.SumOfSquares/float64(s.Counter) - avg*avg
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

type variable struct {
	name string
	path []string
}

func newVariable(name string) variable {
	return variable{name: name, path: strings.Split(name, ".")}
}

type statsKey struct {
	summary *Tree
	name    string
}

// Accumulators reduces registered variables into sum, count, extrema, mean and
// standard deviation. Dotted names descend into nested objects; a list on the way
// fans the update out to every element.
type Accumulators struct {
	vars  []variable
	stats map[statsKey]*RunningStats
}

func (a *Accumulators) Register(names ...string) {
	for _, n := range names {
		a.vars = append(a.vars, newVariable(n))
	}
}

func (a *Accumulators) Names() []string {
	out := make([]string, 0, len(a.vars))
	for _, v := range a.vars {
		out = append(out, v.name)
	}
	return out
}

// Update applies every registered variable found in row. Nested summary and row
// objects are only created once a value is observed beneath them.
func (a *Accumulators) Update(row domain.RawRow, summary, rowhash *Tree) {
	for _, v := range a.vars {
		a.update(v.path, nil, row, summary, rowhash)
	}
}

func (a *Accumulators) update(path, parents []string, node any, summary, rowhash *Tree) {
	obj, ok := node.(map[string]any)
	if !ok {
		return
	}
	child, ok := obj[path[0]]
	if !ok {
		return
	}
	if len(path) > 1 {
		if list, ok := child.([]any); ok {
			for _, el := range list {
				a.update(path[1:], parents, el, summary, rowhash)
			}
			return
		}
		a.update(path[1:], append(parents[:len(parents):len(parents)], path[0]), child, summary, rowhash)
		return
	}
	v, ok := toFloat(child)
	if !ok {
		return
	}
	a.observe(path[0], v, summary.subtreeAt(parents))
	rowhash.subtreeAt(parents).Set(path[0], child)
}

func (a *Accumulators) observe(name string, v float64, summary *Tree) {
	if a.stats == nil {
		a.stats = make(map[statsKey]*RunningStats)
	}
	key := statsKey{summary: summary, name: name}
	st, ok := a.stats[key]
	if !ok {
		st = &RunningStats{}
		// A preset sum (cpu_time starts at zero) is carried forward.
		if base, ok := summary.Number(name); ok {
			st.Sum = base
		}
		a.stats[key] = st
	}
	st.Observe(v)

	summary.Set(name, st.Sum)
	summary.Set(name+"_counter", st.Counter)
	summary.Set(name+"_sq", st.SumOfSquares)
	summary.Set("max_"+name, st.Max)
	summary.Set("min_"+name, st.Min)
	summary.Set("avg_"+name, st.Avg())
	summary.Set("stdev_"+name, st.Stdev())
}
