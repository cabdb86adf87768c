package viz

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dynobj/internal/experiment"
	"github.com/san-kum/dynobj/internal/object"
	"github.com/san-kum/dynobj/internal/storage"
)

// ClassTree renders every registered class under its parent together with
// its resolved method table. Each method names the class that serves it.
func ClassTree(reg *object.Registry) string {
	var b strings.Builder
	for _, root := range reg.Hierarchy() {
		writeClass(&b, reg, root, 0)
	}
	return b.String()
}

func writeClass(b *strings.Builder, reg *object.Registry, node *object.Node, depth int) {
	c := node.Class
	indent := strings.Repeat("  ", depth)
	name := titleStyle().Render(c.Name())
	if p := c.Parent(); p != nil {
		name += subtleStyle().Render(" : " + p.Name())
	}
	b.WriteString(indent + name + "\n")

	for _, bind := range reg.MethodTable(c) {
		line := fmt.Sprintf("%s  %-22s", indent, bind.Method)
		switch {
		case bind.Overrides:
			line += warnStyle().Render("override")
		case bind.Owner == c:
			line += okStyle().Render("own")
		default:
			line += subtleStyle().Render("from " + bind.Owner.Name())
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	for _, child := range node.Children {
		writeClass(b, reg, child, depth+1)
	}
}

// RecordLine renders one step on a single line. Multi-line output is cut
// to its first line.
func RecordLine(rec experiment.Record) string {
	mark := okStyle().Render("✓")
	if rec.Failed {
		mark = errStyle().Render("✗")
	} else if rec.Err != "" {
		mark = warnStyle().Render("!")
	}

	text := rec.Output
	if rec.Err != "" {
		text = rec.Err
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + " …"
	}

	call := rec.Instance + "." + rec.Method
	if len(rec.Args) > 0 {
		args := make([]string, len(rec.Args))
		for i, a := range rec.Args {
			args[i] = fmt.Sprintf("%g", a)
		}
		call += "(" + strings.Join(args, ", ") + ")"
	}

	return fmt.Sprintf("%s %4d %-34s %s", mark, rec.Step, call, text)
}

// Transcript renders every step of a run in full.
func Transcript(records []experiment.Record) string {
	var b strings.Builder
	for _, rec := range records {
		b.WriteString(RecordLine(rec) + "\n")
		if strings.Contains(rec.Output, "\n") {
			for _, line := range strings.Split(rec.Output, "\n") {
				b.WriteString("       " + subtleStyle().Render(line) + "\n")
			}
		}
	}
	return b.String()
}

// Summary renders the outcome of a run and its final metrics.
func Summary(res *experiment.Result) string {
	var b strings.Builder
	b.WriteString(headerStyle().Render(strings.ToUpper(res.Scenario)) + "\n\n")

	b.WriteString(labelStyle().Render("Seed") + valueStyle().Render(fmt.Sprint(res.Seed)) + "\n")
	b.WriteString(labelStyle().Render("Steps") + valueStyle().Render(fmt.Sprint(len(res.Records))) + "\n")

	failures := okStyle().Render("0")
	if res.Failures > 0 {
		failures = errStyle().Render(fmt.Sprint(res.Failures))
	}
	b.WriteString(labelStyle().Render("Failures") + failures + "\n")

	leaked := okStyle().Render("0")
	if res.Leaked > 0 {
		leaked = errStyle().Render(fmt.Sprint(res.Leaked))
	}
	b.WriteString(labelStyle().Render("Leaked") + leaked + "\n")

	if len(res.Metrics) > 0 {
		b.WriteString("\n" + Metrics(res.Metrics))
	}
	return b.String()
}

// Metrics renders a metric map sorted by key.
func Metrics(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(labelStyle().Width(28).Render(k) + valueStyle().Render(fmt.Sprintf("%10.3f", m[k])) + "\n")
	}
	return b.String()
}

// Snapshots renders each recorded payload as a flat field listing.
// Payloads that fail to decode are shown as an error in place.
func Snapshots(snaps []experiment.Snapshot) string {
	if len(snaps) == 0 {
		return subtleStyle().Render("no snapshots") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle().Render(fmt.Sprintf("%4s %-12s %-16s %s", "STEP", "INSTANCE", "CLASS", "PAYLOAD")) + "\n")
	for _, s := range snaps {
		var payload any
		var text string
		if err := cbor.Unmarshal(s.Payload, &payload); err != nil {
			text = errStyle().Render(err.Error())
		} else {
			text = formatValue(payload)
		}
		b.WriteString(fmt.Sprintf("%4d %-12s %-16s %s\n", s.Step, s.Instance, s.Class, text))
	}
	return b.String()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case map[any]any:
		fields := make([]string, 0, len(t))
		for k, val := range t {
			fields = append(fields, fmt.Sprintf("%v=%s", k, formatValue(val)))
		}
		sort.Strings(fields)
		return "{" + strings.Join(fields, " ") + "}"
	case map[string]any:
		fields := make([]string, 0, len(t))
		for k, val := range t {
			fields = append(fields, k+"="+formatValue(val))
		}
		sort.Strings(fields)
		return "{" + strings.Join(fields, " ") + "}"
	case []any:
		items := make([]string, len(t))
		for i, val := range t {
			items[i] = formatValue(val)
		}
		return "[" + strings.Join(items, " ") + "]"
	case float64:
		return strconv.FormatFloat(t, 'g', 6, 64)
	default:
		return fmt.Sprint(t)
	}
}

func RunTable(runs []storage.RunMetadata) string {
	if len(runs) == 0 {
		return subtleStyle().Render("no saved runs") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle().Render(fmt.Sprintf("%-32s %-12s %-20s %6s %8s", "ID", "SCENARIO", "TIME", "STEPS", "FAILURES")) + "\n")
	for _, r := range runs {
		line := fmt.Sprintf("%-32s %-12s %-20s %6d %8d",
			r.ID, r.Scenario, r.Timestamp.Format("2006-01-02 15:04:05"), r.Steps, r.Failures)
		if r.Failures > 0 || r.Leaked > 0 {
			line = warnStyle().Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// Plot draws values against step number. Long series are sampled down
// to width points by asciigraph.
func Plot(field string, steps, values []float64, height, width int) string {
	if len(values) == 0 {
		return ""
	}
	caption := field
	if len(steps) > 0 {
		caption = fmt.Sprintf("%s (steps %.0f-%.0f)", field, steps[0], steps[len(steps)-1])
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(caption))
}
