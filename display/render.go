package display

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/andocmdo/eink-display-control-panel/models"
)

// Absent is shown in place of a value that has not been fetched yet
const Absent = "--"

//go:embed templates/*.tmpl
var templates embed.FS

var (
	dashboardTemplate = template.Must(template.ParseFS(templates, "templates/dashboard.md.tmpl"))

	markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

	// user text is plain text on the device
	stripMarkup = bluemonday.StrictPolicy()

	markdownSpecial = strings.NewReplacer(
		`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
		"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "|", `\|`, "~", `\~`,
	)
	blockStart = regexp.MustCompile(`^([#+=-]|\d+[.)])`)
)

// Content is the rendered dashboard
type Content struct {
	Markdown string
	HTML     string
}

type row struct {
	Key   string
	Value string
}

type view struct {
	Weekday string
	Date    string
	Updated string
	Weather []row
	Stocks  []row
	Todos   []string
}

// Render turns a snapshot into device content. It never fails: sections
// without entries stay empty and values not fetched yet show as Absent.
// Blank todos are left out.
func Render(snap *models.Snapshot, now time.Time) Content {
	if snap == nil {
		snap = models.NewSnapshot()
	}

	v := view{
		Weekday: now.Format("Monday"),
		Date:    now.Format("January 2, 2006"),
		Updated: now.Format("15:04"),
	}
	for _, e := range snap.Weather {
		v.Weather = append(v.Weather, row{Key: plainText(e.Location), Value: plainText(models.Deref(e.Temperature, Absent))})
	}
	for _, e := range snap.Stocks {
		v.Stocks = append(v.Stocks, row{Key: plainText(e.Ticker), Value: plainText(models.Deref(e.Price, Absent))})
	}
	for _, t := range snap.Todos {
		if text := plainText(t.Text); text != "" {
			v.Todos = append(v.Todos, text)
		}
	}

	var md bytes.Buffer
	if err := dashboardTemplate.Execute(&md, v); err != nil {
		logger.Error().Err(err).Msg("dashboard template failed")
		return fallback(now, err)
	}

	var out bytes.Buffer
	out.WriteString("<div class=\"dashboard\">\n")
	if err := markdown.Convert(md.Bytes(), &out); err != nil {
		logger.Error().Err(err).Msg("markdown conversion failed")
		return fallback(now, err)
	}
	out.WriteString("</div>\n")

	return Content{Markdown: md.String(), HTML: out.String()}
}

// plainText strips markup from user input, folds whitespace and escapes
// what markdown would otherwise interpret
func plainText(s string) string {
	s = strings.Join(strings.Fields(stripMarkup.Sanitize(s)), " ")
	if s == Absent {
		return s
	}
	s = markdownSpecial.Replace(s)
	if loc := blockStart.FindStringIndex(s); loc != nil {
		// escape the marker so it stays inline text
		end := loc[1] - 1
		s = s[:end] + `\` + s[end:]
	}
	return s
}

func fallback(now time.Time, err error) Content {
	msg := fmt.Sprintf("Dashboard unavailable (%v)", err)
	return Content{
		Markdown: msg,
		HTML:     fmt.Sprintf("<div class=\"dashboard\">\n<h1>%s</h1>\n<p>%s</p>\n</div>\n", now.Format("Monday, January 2, 2006"), html.EscapeString(msg)),
	}
}
