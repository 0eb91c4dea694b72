package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// stdout receives user-facing output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// ANSI 256 palette.
var (
	ansiTeal  = lipgloss.Color("36")
	ansiGreen = lipgloss.Color("35")
	ansiAmber = lipgloss.Color("220")
	ansiRed   = lipgloss.Color("167")
	ansiSky   = lipgloss.Color("75")
	ansiWhite = lipgloss.Color("255")
	ansiGray  = lipgloss.Color("245")
	ansiDim   = lipgloss.Color("240")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	StyleTitle   = fg(ansiTeal).Bold(true)
	StyleDim     = fg(ansiDim)
	StyleValue   = fg(ansiWhite)
	StyleWarning = fg(ansiAmber)
	StyleLink    = fg(ansiSky).Underline(true)

	styleIconSpinner = fg(ansiTeal)
	styleKey         = fg(ansiGray).Width(12)
	styleCommand     = fg(ansiSky)
)

// status is the leading glyph of a one-line message.
type status struct {
	glyph string
	style lipgloss.Style
}

var (
	statusOK   = status{"✓", fg(ansiGreen)}
	statusFail = status{"✗", fg(ansiRed)}
	statusWarn = status{"!", fg(ansiAmber)}
	statusInfo = status{"›", fg(ansiGray)}
)

func (s status) line(text string) string {
	return s.style.Render(s.glyph) + " " + text
}

func (s status) println(text string) {
	fmt.Fprintln(stdout, s.line(text))
}

func printSuccess(format string, args ...any) { statusOK.println(fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { statusFail.println(fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { statusInfo.println(fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	statusWarn.println(StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints a dimmed line under the previous status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints "→ path (size)" for a written artifact.
func printFile(path string, size int) {
	fmt.Fprintf(stdout, "  %s %s %s\n",
		StyleDim.Render("→"), StyleValue.Render(path), StyleDim.Render("("+humanize.Bytes(uint64(size))+")"))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints "3 rows · 5 categories · cached".
func printStats(rows, categories int, cached bool) {
	source := fg(ansiGray).Render("fresh")
	if cached {
		source = fg(ansiGreen).Render("cached")
	}
	sep := StyleDim.Render(" · ")
	fmt.Fprintln(stdout, "  "+strings.Join([]string{
		StyleDim.Render(count(rows, "row", "rows")),
		StyleDim.Render(count(categories, "category", "categories")),
		source,
	}, sep))
}

func printNextStep(what, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(what+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }

// count formats n with thousands separators and the matching noun.
func count(n int, one, many string) string {
	return humanize.Comma(int64(n)) + " " + plural(n, one, many)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
