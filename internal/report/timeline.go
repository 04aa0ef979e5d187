package report

import (
	"strings"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
)

// Timelines tracks the earliest and latest occurrence of wall-clock instants.
// For a variable v the summary gains first_v and last_v; a variable ending in
// _start or _end also exposes its earliest start or latest end as v, and once
// both halves of a pair are known <base>_elapsed_time is kept current.
type Timelines struct {
	vars []variable
}

// RegisterExplicit tracks first_/last_ only.
func (tl *Timelines) RegisterExplicit(names ...string) {
	for _, n := range names {
		tl.vars = append(tl.vars, newVariable(n))
	}
}

// Register tracks <base>_start and <base>_end for each base name and returns the
// synthesized elapsed-time names.
func (tl *Timelines) Register(bases ...string) []string {
	elapsed := make([]string, 0, len(bases))
	for _, b := range bases {
		tl.vars = append(tl.vars, newVariable(b+"_start"), newVariable(b+"_end"))
		elapsed = append(elapsed, b+"_elapsed_time")
	}
	return elapsed
}

func (tl *Timelines) Names() []string {
	out := make([]string, 0, len(tl.vars))
	for _, v := range tl.vars {
		out = append(out, v.name)
	}
	return out
}

func (tl *Timelines) Update(row domain.RawRow, summary *Tree) {
	for _, v := range tl.vars {
		tl.update(v.path, nil, row, summary)
	}
}

func (tl *Timelines) update(path, parents []string, node any, root *Tree) {
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
				tl.update(path[1:], parents, el, root)
			}
			return
		}
		tl.update(path[1:], append(parents[:len(parents):len(parents)], path[0]), child, root)
		return
	}
	v, ok := toFloat(child)
	if !ok {
		return
	}
	summary := root.subtreeAt(parents)
	name := path[0]
	if first, ok := summary.Number("first_" + name); !ok || v < first {
		summary.Set("first_"+name, v)
		if strings.HasSuffix(name, "_start") {
			summary.Set(name, v)
		}
	}
	if last, ok := summary.Number("last_" + name); !ok || v > last {
		summary.Set("last_"+name, v)
		if strings.HasSuffix(name, "_end") {
			summary.Set(name, v)
		}
	}
	if base, ok := timelineBase(name); ok {
		end, haveEnd := summary.Number("last_" + base + "_end")
		start, haveStart := summary.Number("first_" + base + "_start")
		if haveEnd && haveStart {
			summary.Set(base+"_elapsed_time", end-start)
		}
	}
}

func timelineBase(name string) (string, bool) {
	if b, ok := strings.CutSuffix(name, "_start"); ok && b != "" {
		return b, true
	}
	if b, ok := strings.CutSuffix(name, "_end"); ok && b != "" {
		return b, true
	}
	return "", false
}
