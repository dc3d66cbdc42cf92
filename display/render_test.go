package display

import (
	"strings"
	"testing"
	"time"

	"github.com/andocmdo/eink-display-control-panel/models"
)

var monday = time.Date(2026, time.October, 19, 8, 30, 0, 0, time.UTC)

func TestRenderEmptySnapshot(t *testing.T) {
	for name, snap := range map[string]*models.Snapshot{"nil": nil, "empty": models.NewSnapshot()} {
		t.Run(name, func(t *testing.T) {
			got := Render(snap, monday).HTML

			for _, want := range []string{
				"<h1>Monday, October 19, 2026</h1>",
				"<h2>Weather</h2>",
				"<h2>Todo</h2>",
				"<h2>Stocks</h2>",
				"Updated 08:30",
			} {
				if !strings.Contains(got, want) {
					t.Errorf("expected %q in:\n%s", want, got)
				}
			}
			if strings.Contains(got, "<li>") || strings.Contains(got, "<table>") {
				t.Errorf("empty sections should have no entries:\n%s", got)
			}
		})
	}
}

func TestRenderValues(t *testing.T) {
	snap := &models.Snapshot{
		Weather: []models.WeatherEntry{
			{Location: "Paris", Temperature: models.StringPtr("12°C")},
			{Location: "Lima"},
		},
		Stocks: []models.StockEntry{
			{Ticker: "AAPL", Price: models.StringPtr("$190.00")},
			{Ticker: "MSFT"},
		},
		Todos: []models.TodoItem{
			{ID: "1", Text: "water plants"},
			{ID: "2", Text: ""},
			{ID: "3", Text: "call   mum"},
		},
	}

	content := Render(snap, monday)

	for _, want := range []string{
		"<li><strong>Paris</strong> 12°C</li>",
		"<li><strong>Lima</strong> --</li>",
		"<li>water plants</li>",
		"<li>call mum</li>",
		"<table>",
		"AAPL",
		"$190.00",
	} {
		if !strings.Contains(content.HTML, want) {
			t.Errorf("expected %q in:\n%s", want, content.HTML)
		}
	}
	if strings.Count(content.HTML, "<li>") != 4 {
		t.Errorf("blank todos should be skipped:\n%s", content.HTML)
	}
	if !strings.Contains(content.Markdown, "| MSFT | -- |") {
		t.Errorf("absent price should render as --:\n%s", content.Markdown)
	}
}

func TestRenderStripsMarkup(t *testing.T) {
	snap := models.NewSnapshot()
	snap.Todos = []models.TodoItem{
		{ID: "1", Text: "<b>milk</b> & eggs"},
		{ID: "2", Text: "<script>alert(1)</script>"},
		{ID: "3", Text: "*not emphasis*"},
		{ID: "4", Text: "# not a heading"},
		{ID: "5", Text: "1. not a list"},
	}

	got := Render(snap, monday).HTML

	for _, want := range []string{
		"<li>milk &amp; eggs</li>",
		"<li>*not emphasis*</li>",
		"<li># not a heading</li>",
		"<li>1. not a list</li>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
	for _, unwanted := range []string{"<b>", "<script", "alert", "<em>", "<ol>"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("unexpected %q in:\n%s", unwanted, got)
		}
	}
}
