package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"fileorganizer/internal/engine"
	"fileorganizer/internal/organizer"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderReport formats a run report: a per-recipe table, then the failures,
// then one status line for the run.
func renderReport(report engine.Report, colorize bool) string {
	var b strings.Builder
	title := "Run " + report.RunID
	if report.DryRun {
		title += " (dry run)"
	}
	for _, line := range renderSectionHeader(title, colorize) {
		b.WriteString(line + "\n")
	}

	headers := []string{"Recipe", "Moved", "Copied", "Skipped", "Failed", "Size", "Last run"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(report.Recipes))
	for _, s := range report.Recipes {
		rows = append(rows, []string{
			s.Recipe,
			strconv.Itoa(s.Moved),
			strconv.Itoa(s.Copied),
			strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Failed),
			humanize.Bytes(uint64(s.Bytes)),
			lastRunLabel(s),
		})
	}
	totals := report.Totals()
	footer := []string{
		"Total",
		strconv.Itoa(totals.Moved),
		strconv.Itoa(totals.Copied),
		strconv.Itoa(totals.Skipped),
		strconv.Itoa(totals.Failed),
		humanize.Bytes(uint64(totals.Bytes)),
		"",
	}
	b.WriteString(renderTable(headers, rows, aligns, footer))
	b.WriteString("\n")

	if lines := failureLines(report, colorize); len(lines) > 0 {
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(runStatusLine(report, colorize) + "\n")
	return b.String()
}

func lastRunLabel(s organizer.RecipeSummary) string {
	switch {
	case s.NewLastRun == nil:
		return "-"
	case s.LastRunChanged() && s.PreviousLastRun != nil:
		return s.PreviousLastRun.String() + " -> " + s.NewLastRun.String()
	default:
		return s.NewLastRun.String()
	}
}

func failureLines(report engine.Report, colorize bool) []string {
	var lines []string
	for _, s := range report.Recipes {
		if s.Err != nil {
			lines = append(lines, renderStatusLine(s.Recipe, statusError, s.Err.Error(), colorize))
		}
		for _, f := range s.Failures {
			lines = append(lines, renderStatusLine(s.Recipe, statusError, fmt.Sprintf("%s: %v", f.Path, f.Err), colorize))
		}
	}
	if report.PersistErr != nil {
		lines = append(lines, renderStatusLine("Recipe file", statusError, report.PersistErr.Error(), colorize))
	}
	return lines
}

func runStatusLine(report engine.Report, colorize bool) string {
	totals := report.Totals()
	elapsed := report.Duration().Round(time.Millisecond)
	switch {
	case report.HasFailures():
		msg := fmt.Sprintf("%d file(s) and %d recipe(s) failed in %s", totals.Failed, totals.FailedRecipes, elapsed)
		return renderStatusLine("Result", statusError, msg, colorize)
	case report.DryRun:
		msg := fmt.Sprintf("%d file(s) would be organized; nothing was changed", totals.Moved+totals.Copied)
		return renderStatusLine("Result", statusInfo, msg, colorize)
	default:
		msg := fmt.Sprintf("%d file(s) organized in %s", totals.Moved+totals.Copied, elapsed)
		return renderStatusLine("Result", statusOK, msg, colorize)
	}
}
