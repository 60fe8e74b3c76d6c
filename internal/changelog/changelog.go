// Package changelog renders the per-run markdown changelog from a diff
// summary and the override report.
package changelog

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"editiongen/internal/differ"
	"editiongen/internal/override"
	"editiongen/pkg/docsig"
)

// Build renders the changelog for one run and signs it with the run id.
func Build(summary differ.Summary, report []override.ReportEntry, runID string) string {
	return docsig.Sign(render(summary, report), runID)
}

func render(summary differ.Summary, report []override.ReportEntry) string {
	var parts []string

	switch {
	case summary.Initial:
		parts = append(parts, "# Initial Data Release\n\n"+summary.Note)
	case summary.Note != "":
		parts = append(parts, "# Edition Catalog Update\n\n"+summary.Note)
	default:
		parts = append(parts, "# Edition Catalog Update\n")

		if len(summary.Updated) > 0 {
			parts = append(parts, "## 🔄 Updated Countries\n- "+strings.Join(summary.Updated, "\n- "))
		}

		if len(summary.Added) > 0 {
			parts = append(parts, "## ➕ Added Countries\n- "+strings.Join(summary.Added, "\n- "))
		}

		if len(summary.Removed) > 0 {
			parts = append(parts, "## ➖ Removed Countries\n- "+strings.Join(summary.Removed, "\n- "))
		}
	}

	if len(report) > 0 {
		parts = append(parts, "## 🔧 Applied Overrides\n"+overrideTable(report))
	}

	return strings.Join(parts, "\n")
}

// overrideTable renders the override report as a markdown table with
// columns padded to display width.
func overrideTable(report []override.ReportEntry) string {
	rows := [][]string{{"Edition", "Field", "Search", "Replace", "Outcome"}}

	for _, entry := range report {
		outcome := string(entry.Status)
		if entry.Locale != "" {
			outcome += " (" + entry.Locale + ")"
		}

		rows = append(rows, []string{
			entry.Rule.EditionID,
			entry.Rule.Field,
			entry.Rule.Search,
			entry.Rule.Replace,
			outcome,
		})
	}

	return alignTable(rows)
}

// alignTable lays out rows as a markdown table, inserting the separator
// after the header. Widths are display widths, not byte counts, so wide
// runes line up.
func alignTable(rows [][]string) string {
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	colWidths := make([]int, colCount)

	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	var sb strings.Builder

	writeRow := func(row []string) {
		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			content := ""
			if j < len(row) {
				content = row[j]
			}

			sb.WriteString(content)

			if padding := colWidths[j] - runewidth.StringWidth(content); padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}

			sb.WriteString(" |")
		}

		sb.WriteString("\n")
	}

	writeRow(rows[0])

	sb.WriteString("|")

	for j := 0; j < colCount; j++ {
		sb.WriteString(" " + strings.Repeat("-", colWidths[j]) + " |")
	}

	sb.WriteString("\n")

	for _, row := range rows[1:] {
		writeRow(row)
	}

	return strings.TrimRight(sb.String(), "\n")
}
