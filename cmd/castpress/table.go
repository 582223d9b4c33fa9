package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"castpress/internal/podcast"
)

const maxTitleWidth = 32

// renderJobTable renders the queue listing: identity and title on the
// left, lifecycle counters right-aligned.
func renderJobTable(jobs []*podcast.Job) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Progress", "Lines", "Attempts"})

	for _, job := range jobs {
		title := job.Title
		if title == "" {
			title = "(untitled)"
		}
		tw.AppendRow(table.Row{
			job.ID,
			truncateTitle(title),
			string(job.Status),
			fmt.Sprintf("%.0f%%", job.Progress),
			fmt.Sprintf("%d/%d", job.CurrentLine, job.TotalLines),
			job.Attempts,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func truncateTitle(title string) string {
	if len(title) <= maxTitleWidth {
		return title
	}
	return strings.TrimSpace(title[:maxTitleWidth-3]) + "..."
}

// statusNames lists the known statuses for flag help text.
func statusNames() string {
	names := make([]string, 0, 4)
	for _, status := range podcast.AllStatuses() {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}
