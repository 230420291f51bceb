package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/bitia-ru/anypod/pkg/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

// Color palette
var (
	colorHeading = lipgloss.Color("12") // Bright blue
	colorName    = lipgloss.Color("10") // Bright green
	colorHint    = lipgloss.Color("11") // Bright yellow
)

// Printer writes resolution results for humans.
type Printer struct {
	out io.Writer

	headingStyle   lipgloss.Style
	nameStyle      lipgloss.Style
	namespaceStyle lipgloss.Style
	hintStyle      lipgloss.Style
}

// NewPrinter returns a Printer writing to out. Colors follow the terminal
// capabilities of out unless color is false.
func NewPrinter(out io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(out)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		out:            out,
		headingStyle:   r.NewStyle().Foreground(colorHeading).Bold(true),
		nameStyle:      r.NewStyle().Foreground(colorName),
		namespaceStyle: r.NewStyle().Foreground(colorHeading),
		hintStyle:      r.NewStyle().Foreground(colorHint),
	}
}

// PodName prints a resolved pod name on its own line, unstyled, so it can be
// used in shell substitutions.
func (p *Printer) PodName(name string) {
	fmt.Fprintln(p.out, name)
}

// NoMatch explains that nothing matched and lists what the namespace does
// contain, followed by close matches for fragment when there are any.
func (p *Printer) NoMatch(namespace, fragment string, groups []types.WorkloadGroup) {
	fmt.Fprintf(p.out, "No matching pods found in namespace '%s'!\n", p.namespaceStyle.Render(namespace))
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Here are the workloads that exist in this namespace.")
	fmt.Fprintln(p.out)

	for _, g := range groups {
		if len(g.Names) == 0 {
			continue
		}
		fmt.Fprintln(p.out, p.headingStyle.Render(g.Kind.String()+"s:"))
		for _, name := range g.Names {
			fmt.Fprintf(p.out, "  %s\n", p.nameStyle.Render(name))
		}
		fmt.Fprintln(p.out)
	}

	suggestions := Suggest(fragment, groups)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(p.out, p.hintStyle.Render("Did you mean:"))
	for _, s := range suggestions {
		fmt.Fprintf(p.out, "  %s\n", s)
	}
}

// ExecFailed reports that the shell could not be started.
func (p *Printer) ExecFailed(tool string, err error) {
	fmt.Fprintf(p.out, "Failed to execute %s: %v\n", tool, err)
}

// Suggest returns up to three "<kind>/<name>" queries whose workload names
// fuzzy-match fragment, best first. The kind prefix is the form accepted by
// the query parser.
func Suggest(fragment string, groups []types.WorkloadGroup) []string {
	if fragment == "" {
		return nil
	}

	var names, queries []string
	for _, g := range groups {
		prefix := strings.ToLower(g.Kind.String()) + "/"
		for _, name := range g.Names {
			names = append(names, name)
			queries = append(queries, prefix+name)
		}
	}

	matches := fuzzy.Find(fragment, names)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	result := make([]string, 0, len(matches))
	for _, m := range matches {
		result = append(result, queries[m.Index])
	}
	return result
}
