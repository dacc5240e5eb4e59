package chz

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/latticeforge/chz/internal/argmap"
	"github.com/latticeforge/chz/internal/chzerr"
	"github.com/latticeforge/chz/internal/lazygraph"
	"github.com/latticeforge/chz/internal/params"
	"github.com/latticeforge/chz/internal/walk"
)

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"

	helpColumnClip  = 40
	helpColumnAlign = 20
)

// GetHelp renders every parameter discovered by the construction walk with
// its type and effective source: the bound value annotated with its layer,
// the chosen meta-factory, the default, or "-". Applied
// arguments affect the output: polymorphically constructed fields show the
// parameters of whatever factory the bindings selected. Extraneous,
// missing, and invalid-reference diagnostics become inline warnings rather
// than errors.
func (b *Blueprint[T]) GetHelp() string {
	var sb strings.Builder

	r, err := walk.MakeLazy(b.target.raw(), b.argMap)
	if err != nil {
		fmt.Fprintf(&sb, "WARNING: %v\n\n", err)
		fmt.Fprintf(&sb, "Entry point: %s\n", params.Repr(b.target.raw()))
		return sb.String()
	}

	paths := r.ParamPaths()
	if aerr := b.argMap.AuditExtraneous(r.Used, paths, params.Repr(b.target.raw())); aerr != nil {
		fmt.Fprintf(&sb, "WARNING: %v\n\n", aerr)
	}
	if rerr := lazygraph.CheckReferenceTargets(r.VM, paths); rerr != nil {
		fmt.Fprintf(&sb, "WARNING: %v\n\n", rerr)
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(&sb, "WARNING: %v\n\n", chzerr.NewMissing(r.Missing))
	}

	fmt.Fprintf(&sb, "Entry point: %s\n\n", params.Repr(b.target.raw()))

	rows := make([][4]string, 0, len(r.ParamOrder))
	for _, paramPath := range r.ParamOrder {
		p := r.AllParams[paramPath]
		rows = append(rows, [4]string{paramPath, typeName(p.Type), b.effectiveSource(paramPath, p, r), p.Doc})
	}

	header := "Arguments:"
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		header = ansiBold + header + ansiReset
	}
	sb.WriteString(header + "\n")

	widths := columnWidths(rows)
	for _, row := range rows {
		line := fmt.Sprintf("  %s  %s  %s  %s",
			padCell(row[0], widths[0]), padCell(row[1], widths[1]), padCell(row[2], widths[2]), row[3])
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return sb.String()
}

// effectiveSource renders the third help column: what would actually feed
// this parameter if Make ran now.
func (b *Blueprint[T]) effectiveSource(paramPath string, p *params.Param, r *walk.Result) string {
	found, ok := b.argMap.Lookup(paramPath)
	if !ok {
		if mf, hit := r.MetaFactoryValue[paramPath]; hit {
			return mf + " (meta_factory)"
		}
		if p.Default != nil {
			return p.Default.ToHelpStr() + " (default)"
		}
		return "-"
	}

	var s string
	switch v := found.Value.(type) {
	case argmap.Castable:
		s = string(v)
	case argmap.Reference:
		s = "@=" + string(v)
	case argmap.FactoryName:
		s = "~=" + string(v)
	default:
		s = fmt.Sprintf("%v", found.Value)
	}
	if found.LayerName != "" {
		s += fmt.Sprintf(" (from %s)", found.LayerName)
	}
	return s
}

// columnWidths computes per-column pad targets: the widest cell, clipped to
// helpColumnClip. The doc column is never padded.
func columnWidths(rows [][4]string) [3]int {
	var widths [3]int
	for _, row := range rows {
		for c := 0; c < 3; c++ {
			if l := len(row[c]); l > widths[c] {
				widths[c] = l
			}
		}
	}
	for c := range widths {
		if widths[c] > helpColumnClip {
			widths[c] = helpColumnClip
		}
	}
	return widths
}

// padCell left-justifies s to width; a longer cell overflows to the next
// helpColumnAlign-aligned boundary instead of being truncated.
func padCell(s string, width int) string {
	if len(s) <= width {
		return s + strings.Repeat(" ", width-len(s))
	}
	overflow := (-len(s)) % helpColumnAlign
	if overflow < 0 {
		overflow += helpColumnAlign
	}
	return s + strings.Repeat(" ", overflow)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}
