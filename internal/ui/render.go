package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"reelfetch/internal/media"
	"reelfetch/internal/provider"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	indexStyle = lipgloss.NewStyle().Faint(true)
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	urlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// RenderStreams writes streams as a numbered, styled list.
func RenderStreams(w io.Writer, req media.Request, streams []media.StreamDescriptor) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d stream(s) for %s", len(streams), req)))
	for i, s := range streams {
		fmt.Fprintf(w, "%s %s\n   %s\n",
			indexStyle.Render(strconv.Itoa(i+1)+"."),
			nameStyle.Render(s.Name),
			urlStyle.Render(s.StreamURL),
		)
	}
}

// RenderProviders writes the registry in the order it will be tried.
func RenderProviders(w io.Writer, providers []*provider.Provider) {
	fmt.Fprintln(w, titleStyle.Render("Providers"))
	for _, p := range providers {
		direct := ""
		if p.Config().StreamAPIPath.Movie != "" || p.Config().StreamAPIPath.TV != "" {
			direct = faintStyle.Render(" (stream API)")
		}
		fmt.Fprintf(w, "%s %s %s%s\n",
			indexStyle.Render(strconv.Itoa(p.Priority())+"."),
			nameStyle.Render(p.Name()),
			urlStyle.Render(p.BaseURL()),
			direct,
		)
	}
}
