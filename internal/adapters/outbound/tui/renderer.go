package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"

	"github.com/abdidvp/slopwatch/internal/domain"
	"github.com/abdidvp/slopwatch/internal/domain/views"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	metricStyle   = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderAnalysis formats one file's verdict and its diagnostics.
func RenderAnalysis(path string, result *domain.AnalysisResult, diags []domain.Diagnostic, thresholds domain.Thresholds) string {
	var b strings.Builder

	// ── Header ──
	bucket := thresholds.Classify(result.DeficitScore)
	title := headerStyle.Render("slopwatch")
	subtitle := dimStyle.Render(shortenPath(path))
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(bucketColor(bucket)).
		Render(domain.FormatScore(result.DeficitScore))
	statusStyled := lipgloss.NewStyle().
		Foreground(bucketColor(bucket)).
		Render(result.Status)

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + statusStyled))
	b.WriteString("\n\n")

	// ── Metrics ──
	for _, m := range result.Metrics() {
		name := metricStyle.Render(padRight(m.Name, 12))
		fmt.Fprintf(&b, "  %s %s  %s\n", name, ratioBar(m.Value, 20), dimStyle.Render(fmt.Sprintf("%.3f", m.Value)))
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	// ── Findings ──
	findings := diags
	if len(findings) > 0 {
		findings = findings[1:]
	}
	if len(findings) > 0 {
		errorCount, warnCount, infoCount := countSeverities(findings)
		b.WriteString("  ")
		b.WriteString(titleStyle.Render("Findings"))
		b.WriteString("  ")
		if errorCount > 0 {
			b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", errorCount)))
			b.WriteString("  ")
		}
		if warnCount > 0 {
			b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", warnCount)))
			b.WriteString("  ")
		}
		if infoCount > 0 {
			b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", infoCount)))
		}
		b.WriteString("\n\n")

		for _, d := range findings {
			renderDiagnostic(&b, d)
		}
	} else {
		b.WriteString("  " + passStyle.Render("No findings.") + "\n")
	}

	b.WriteString("\n")
	return b.String()
}

func renderDiagnostic(b *strings.Builder, d domain.Diagnostic) {
	tag := severityTag(d.Severity)
	loc := fileStyle.Render(fmt.Sprintf("L%-4d", d.Range.Start.Line+1))
	if d.Code != "" {
		fmt.Fprintf(b, "    %s %s %s\n", tag, loc, titleStyle.Render(Humanize(d.Code)))
		fmt.Fprintf(b, "               %s\n", dimStyle.Render(d.Message))
		return
	}
	fmt.Fprintf(b, "    %s %s %s\n", tag, loc, dimStyle.Render(d.Message))
}

func severityTag(severity domain.Severity) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func countSeverities(diags []domain.Diagnostic) (errors, warnings, infos int) {
	for _, d := range diags {
		switch d.Severity {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return
}

// Humanize turns a finding category such as "bare_except" or
// "mutableDefault" into "Bare except" / "Mutable default".
func Humanize(category string) string {
	var words []string
	for _, part := range strings.FieldsFunc(category, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }) {
		words = append(words, camelcase.Split(part)...)
	}
	if len(words) == 0 {
		return category
	}
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

// RenderStatus formats a status snapshot as a single line.
func RenderStatus(s domain.StatusSnapshot) string {
	var style lipgloss.Style
	switch {
	case s.Busy:
		style = dimStyle
	case s.Failed:
		style = failStyle
	default:
		style = lipgloss.NewStyle().Foreground(bucketColor(s.Bucket))
	}
	return fmt.Sprintf("%s %s\n", style.Render(iconGlyph(s)), style.Render(s.Label))
}

func iconGlyph(s domain.StatusSnapshot) string {
	switch {
	case s.Busy:
		return "…"
	case s.Failed || s.Bucket == domain.BucketError:
		return "✗"
	case s.Bucket == domain.BucketWarning:
		return "!"
	default:
		return "✓"
	}
}

// RenderWorkspace formats a workspace summary.
func RenderWorkspace(s domain.WorkspaceSummary) string {
	var b strings.Builder

	title := headerStyle.Render("slopwatch")
	subtitle := dimStyle.Render("Workspace " + shortenPath(s.Root))
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(bucketColor(s.OverallStatus)).
		Render(domain.FormatScore(s.AverageScore))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + string(s.OverallStatus)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %s %d\n", metricStyle.Render(padRight("Files", 12)), s.TotalFiles)
	if s.CommitHash != "" {
		fmt.Fprintf(&b, "  %s %s\n", metricStyle.Render(padRight("Commit", 12)), faintStyle.Render(shortHash(s.CommitHash)))
	}
	b.WriteString("\n")
	return b.String()
}

// RenderHistory formats a history view, newest first.
func RenderHistory(title string, v views.HistoryView) string {
	if v.Empty {
		return "  " + dimStyle.Render("No history found for this file.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render(title) + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, r := range v.Rows {
		line := fmt.Sprintf("  %s  %s", dimStyle.Render(padRight(r.Label, 26)), r.Description)
		if r.Detail != "" {
			line += "  " + faintStyle.Render(r.Detail)
		}

		// Rows are newest first, so compare against the next (older) row.
		if i+1 < len(v.Rows) {
			line += trend(v.Rows[i+1].Score, r.Score)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// trend marks the change from the older score. Lower is better.
func trend(older, newer float64) string {
	diff := newer - older
	switch {
	case diff < 0:
		return "  " + passStyle.Render(fmt.Sprintf("↓%.1f", -diff))
	case diff > 0:
		return "  " + failStyle.Render(fmt.Sprintf("↑%.1f", diff))
	default:
		return ""
	}
}

func ratioBar(v float64, width int) string {
	filled := max(0, min(int(v*float64(width)+0.5), width))
	empty := width - filled

	filledStr := lipgloss.NewStyle().Foreground(accent).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func bucketColor(b domain.Bucket) lipgloss.Color {
	switch b {
	case domain.BucketError:
		return danger
	case domain.BucketWarning:
		return warning
	case domain.BucketGood:
		return success
	default:
		return fg
	}
}

func shortenPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
