package report

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
)

// RenderContext carries everything the renderer needs; nothing is kept on the
// Reporter between calls.
type RenderContext struct {
	Format  domain.Format
	Indent  int
	JobName string
	// Headers maps a top-level section to the labels printed before nested keys,
	// one per depth.
	Headers map[string][]string

	// KeyWidth and IntegerWidth come from ComputeWidths.
	KeyWidth     int
	IntegerWidth int
}

// ComputeWidths walks the tree once and returns the widest key label (including
// per-depth indentation) and the widest integer part of any numeric leaf.
func ComputeWidths(t *Tree, indent int) (keyWidth, intWidth int) {
	for _, key := range t.keys {
		var fw, nw int
		if sub, ok := t.values[key].(*Tree); ok {
			fw, nw = ComputeWidths(sub, indent)
			fw += indent
		} else {
			nw, _ = integerWidth(t.values[key])
			fw = runewidth.StringWidth(strings.TrimSpace(key))
		}
		keyWidth = max(keyWidth, fw)
		intWidth = max(intWidth, nw)
	}
	return keyWidth, intWidth
}

// Render writes the tree: every top-level key is a section whose body is printed
// recursively with values aligned on one global column.
func Render(w io.Writer, t *Tree, rc RenderContext) error {
	r := &renderer{w: w, rc: rc}
	for _, key := range t.keys {
		sub, ok := t.values[key].(*Tree)
		if !ok || sub.Len() == 0 {
			continue
		}
		if !rc.Format.IsParseable() {
			r.printf("%s:\n", key)
		}
		r.subreport([]string{key}, sub, rc.Headers[key], rc.Indent)
	}
	return r.err
}

type renderer struct {
	w   io.Writer
	rc  RenderContext
	err error
}

func (r *renderer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *renderer) subreport(path []string, t *Tree, headers []string, keyColumn int) {
	parseable := r.rc.Format.IsParseable()
	var headerName string
	if keyColumn > 0 && len(headers) > 0 {
		headerName, headers = headers[0], headers[1:]
	}
	margin := strings.Repeat(" ", keyColumn)
	for _, key := range t.keys {
		label := strings.TrimSpace(key)
		if !parseable && strings.HasPrefix(key, "\n") {
			r.printf("\n")
		}
		npath := append(path[:len(path):len(path)], key)
		switch v := t.values[key].(type) {
		case *Tree:
			if !parseable {
				if headerName != "" {
					r.printf("%s%s: %s:\n", margin, headerName, label)
				} else {
					r.printf("%s%s:\n", margin, label)
				}
			}
			r.subreport(npath, v, headers, keyColumn+r.rc.Indent)
		default:
			if parseable {
				r.printf("%s: %s\n", ParseablePath(r.rc.JobName, npath), parseableValue(v))
			} else {
				r.leaf(margin, label, v, keyColumn)
			}
		}
		if !parseable && strings.HasSuffix(key, "\n") {
			r.printf("\n")
		}
	}
}

func (r *renderer) leaf(margin, label string, v any, keyColumn int) {
	value := leafString(v)
	integerIndent := 0
	if nw, ok := integerWidth(v); ok {
		integerIndent = r.rc.IntegerWidth - nw
	} else {
		value = strings.TrimSpace(value)
		if len(value) <= r.rc.IntegerWidth {
			integerIndent = r.rc.IntegerWidth - len(value)
		}
	}
	if strings.Contains(value, "\n") {
		r.printf("%s%s:\n%s\n", margin, label, indentLines(value, strings.Repeat(" ", keyColumn+2)))
		return
	}
	pad := r.rc.KeyWidth + integerIndent - keyColumn - runewidth.StringWidth(label)
	r.printf("%s%s: %s%s\n", margin, label, strings.Repeat(" ", max(pad, 0)), value)
}

func leafString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return "N/A"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// integerWidth is the digit count of the integer part of a numeric leaf; a
// trailing unit ("1.5 KiB") is ignored.
func integerWidth(v any) (int, bool) {
	s := strings.TrimSpace(leafString(v))
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return len(strconv.FormatInt(int64(f), 10)), true
}

func parseableValue(v any) string {
	s := leafString(v)
	if strings.Contains(s, "\n") {
		return base64.StdEncoding.EncodeToString([]byte(s))
	}
	return strings.TrimSpace(s)
}

// ParseablePath flattens a key path into job.path.to.key form.
func ParseablePath(jobName string, path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strings.ReplaceAll(p, ":", "")
	}
	answer := strings.ReplaceAll(strings.ToLower(strings.Join(parts, ".")), "\n", "")
	answer = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ',', '/', '"', '\'':
			return '_'
		}
		return r
	}, answer)
	for strings.Contains(answer, "__") {
		answer = strings.ReplaceAll(answer, "__", "_")
	}
	return jobName + "." + answer
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// WrapText fills text to width, breaking only at spaces. Continuation lines are
// indented by two spaces and count the indent against width; a word longer than
// the line is kept whole.
func WrapText(text string, width int) string {
	var (
		lines []string
		cur   strings.Builder
		curW  int
	)
	limit := width
	for _, word := range strings.Fields(text) {
		ww := runewidth.StringWidth(word)
		if curW > 0 && curW+1+ww > limit {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
			limit = width - 2
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		cur.WriteString(word)
		curW += ww
	}
	if curW > 0 {
		lines = append(lines, cur.String())
	}
	return strings.Join(lines, "\n  ")
}
