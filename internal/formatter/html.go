package formatter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"newsclip/internal/config"
	"newsclip/internal/models"
	"newsclip/pkg/metadata"
	"newsclip/pkg/utils"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html.tmpl").
		Funcs(template.FuncMap{
			"join":     strings.Join,
			"plain":    utils.NewStringHelper().StripMarkup,
			"ellipsis": func() string { return utils.Ellipsis },
		}).
		ParseFS(templateFS, "templates/report.html.tmpl"),
)

type pageData struct {
	Page       config.PageConfig
	Categories []models.CategoryResults
}

// RenderHTML renders the report page and signs it with a metadata block.
// Titles and descriptions lose their search-highlight markup and are escaped.
func RenderHTML(report *models.Report, page config.PageConfig, version string) (string, error) {
	if report == nil {
		return "", ErrNilReport
	}

	var buf bytes.Buffer

	err := reportTemplate.Execute(&buf, pageData{
		Page:       page,
		Categories: report.Categories,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	return metadata.Sign(buf.String(), metadata.Metadata{
		Generated: report.GeneratedAt,
		Version:   version,
		RunID:     report.RunID,
		Articles:  report.TotalArticles(),
	}), nil
}
