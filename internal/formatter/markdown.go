// Package formatter renders clipping reports as an HTML page and a markdown digest.
package formatter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"newsclip/internal/models"
	"newsclip/pkg/metadata"
	"newsclip/pkg/utils"

	"github.com/mattn/go-runewidth"
)

// ErrNilReport is returned when there is nothing to render.
var ErrNilReport = errors.New("report is nil")

// cellReplacer keeps cell text from breaking the table row.
var cellReplacer = strings.NewReplacer("|", "｜", "\r", " ", "\n", " ")

// RenderMarkdown renders a digest with one table per category, signed like the HTML page.
func RenderMarkdown(report *models.Report, title, version string) (string, error) {
	if report == nil {
		return "", ErrNilReport
	}

	helper := utils.NewStringHelper()
	loc := report.WindowStart.Location()

	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "- 생성: %s\n", report.GeneratedAt.In(loc).Format(time.DateTime))
	fmt.Fprintf(&sb, "- 기간: %s ~ %s\n", report.WindowStart.Format(time.DateTime), report.WindowEnd.In(loc).Format(time.DateTime))
	fmt.Fprintf(&sb, "- 기사: %d\n", report.TotalArticles())

	for _, category := range report.Categories {
		fmt.Fprintf(&sb, "\n## %s\n\n", category.Name)

		if len(category.Articles) == 0 {
			sb.WriteString("_기사 없음_\n")
			continue
		}

		sb.WriteString("| 발행 시간 | 제목 | 링크 |\n")
		sb.WriteString("| --- | --- | --- |\n")

		for _, a := range category.Articles {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n",
				a.Published,
				cellReplacer.Replace(helper.StripMarkup(a.Title)),
				cellReplacer.Replace(a.Link),
			)
		}
	}

	signed := metadata.Sign(sb.String(), metadata.Metadata{
		Generated: report.GeneratedAt,
		Version:   version,
		RunID:     report.RunID,
		Articles:  report.TotalArticles(),
	})

	return FormatMarkdown(signed)
}

// FormatMarkdown takes a raw markdown string and formats it,
// specifically focusing on fixing table formatting issues.
// A metadata block, if present, is re-signed over the formatted content.
func FormatMarkdown(content string) (string, error) {
	meta, cleanContent := metadata.Extract(content)

	lines := strings.Split(cleanContent, "\n")

	var formattedLines []string

	var tableBuffer []string

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmedLine := strings.TrimSpace(line)

		// Simple heuristic: starts and ends with |
		if strings.HasPrefix(trimmedLine, "|") && strings.HasSuffix(trimmedLine, "|") {
			tableBuffer = append(tableBuffer, line)

			continue
		}

		if len(tableBuffer) > 0 {
			formattedLines = append(formattedLines, processTable(tableBuffer)...)
			tableBuffer = nil
		}

		formattedLines = append(formattedLines, line)
	}

	// Table at the end of the file
	if len(tableBuffer) > 0 {
		formattedLines = append(formattedLines, processTable(tableBuffer)...)
	}

	formattedContent := strings.Join(formattedLines, "\n")

	if meta == nil {
		return formattedContent, nil
	}

	return metadata.Sign(formattedContent, *meta), nil
}

func processTable(rows []string) []string {
	// Needs header+separator
	if len(rows) < 2 {
		return rows
	}

	var table [][]string

	for _, row := range rows {
		parts := strings.Split(row, "|")

		// The split leaves empty strings at start/end when the line starts/ends with a pipe
		if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
			parts = parts[1:]
		}

		if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
			parts = parts[:len(parts)-1]
		}

		var cells []string
		for _, p := range parts {
			cells = append(cells, strings.TrimSpace(p))
		}

		table = append(table, cells)
	}

	colCount := 0
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	// Separator row is the 2nd row when every cell is dashes/colons
	separatorRowIdx := -1

	isSep := true

	for _, cell := range table[1] {
		trim := strings.NewReplacer("-", "", ":", "", " ", "").Replace(cell)
		if trim != "" {
			isSep = false
			break
		}
	}

	if isSep {
		separatorRowIdx = 1
	}

	// Max widths by display width
	colWidths := make([]int, colCount)

	for rIdx, row := range table {
		if rIdx == separatorRowIdx {
			continue
		}

		for i := 0; i < len(row) && i < colCount; i++ {
			width := runewidth.StringWidth(row[i])
			if width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	var result []string

	for i, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			if i == separatorRowIdx {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
				sb.WriteString(" |")

				continue
			}

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

		result = append(result, sb.String())
	}

	return result
}
