package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
)

var ErrBadDirective = errors.New("cannot parse copy directive")

type copyField struct {
	name   string
	path   []string
	format *NumberFormat
}

// parseCopyField splits "a.b.c:precision=3:base=0" into its path and format.
func parseCopyField(spec string) (copyField, error) {
	parts := strings.Split(spec, ":")
	cf := copyField{name: parts[0], path: strings.Split(parts[0], ".")}
	if len(parts) == 1 {
		return cf, nil
	}
	nf := DefaultNumberFormat()
	for _, opt := range parts[1:] {
		key, value, ok := strings.Cut(opt, "=")
		if !ok {
			return cf, fmt.Errorf("%w %q in %q", ErrBadDirective, opt, spec)
		}
		switch key {
		case "precision", "base", "integer":
			n, err := strconv.Atoi(value)
			if err != nil {
				return cf, fmt.Errorf("%w %q in %q: %v", ErrBadDirective, opt, spec, err)
			}
			switch key {
			case "precision":
				nf.Precision = n
			case "base":
				if !validBase(n) {
					return cf, &FormatError{Base: n}
				}
				nf.Base = n
			case "integer":
				nf.Integer = n != 0
			}
		case "suffix":
			nf.Suffix = value
		default:
			return cf, fmt.Errorf("%w %q in %q: unknown option", ErrBadDirective, opt, spec)
		}
	}
	cf.format = &nf
	return cf, nil
}

// FieldCopier copies optional annotations from input rows into the output row and
// the summary, formatting them when the registration carried directives.
type FieldCopier struct {
	fields []copyField
}

func (c *FieldCopier) Register(specs ...string) error {
	for _, s := range specs {
		cf, err := parseCopyField(s)
		if err != nil {
			return err
		}
		c.fields = append(c.fields, cf)
	}
	return nil
}

func (c *FieldCopier) Names() []string {
	out := make([]string, 0, len(c.fields))
	for _, f := range c.fields {
		out = append(out, f.name)
	}
	return out
}

func (c *FieldCopier) Copy(p Printer, row domain.RawRow, summary, rowhash *Tree) error {
	for _, f := range c.fields {
		if err := c.copy(p, f, f.path, nil, row, summary, rowhash); err != nil {
			return err
		}
	}
	return nil
}

func (c *FieldCopier) copy(p Printer, f copyField, path, parents []string, node any, summary, rowhash *Tree) error {
	obj, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	child, ok := obj[path[0]]
	if !ok {
		return nil
	}
	if len(path) > 1 {
		if list, ok := child.([]any); ok {
			for _, el := range list {
				if err := c.copy(p, f, path[1:], parents, el, summary, rowhash); err != nil {
					return err
				}
			}
			return nil
		}
		return c.copy(p, f, path[1:], append(parents[:len(parents):len(parents)], path[0]), child, summary, rowhash)
	}
	summary, rowhash = summary.subtreeAt(parents), rowhash.subtreeAt(parents)
	value := child
	if f.format != nil {
		v, err := p.Format(child, *f.format)
		if err != nil {
			return err
		}
		value = v
	} else if m, ok := child.(map[string]any); ok {
		rowhash.Set(path[0], TreeFromMap(m))
		summary.Set(path[0], TreeFromMap(m))
		return nil
	}
	rowhash.Set(path[0], value)
	summary.Set(path[0], value)
	return nil
}
