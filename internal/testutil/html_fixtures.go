package testutil

import (
	"fmt"
	"strings"
)

// EpisodeCardOptions describes one episode card on a generated catalog page
type EpisodeCardOptions struct {
	Href        string // Relative or absolute link to the episode
	Title       string // Optional title attribute
	Text        string // Visible anchor text
	Description string // Optional <p> inside the anchor
	ImageSrc    string // Optional <img src> inside the anchor
	NoImageSrc  bool   // Render an <img> without src
}

// navigationLinks mirrors the header and footer chrome of a Pluto TV series page
var navigationLinks = []struct{ href, text string }{
	{"/br/live-tv", "TV ao Vivo"},
	{"/br/on-demand", "Sob Demanda"},
	{"/br/search", "Procurar"},
	{"/br/on-demand/series/season-pass/watch", "Assista Agora"},
	{"https://support.pluto.tv/hc/pt-br?ep=1", "Suporte"},
	{"/br/terms-of-use?season=1", "Termos de Uso"},
	{"/br/privacy-policy?episodio=1", "Privacidade"},
}

// GenerateCatalogHTML generates a series page with navigation chrome around the given cards,
// loosely following the markup of a Pluto TV on-demand series page.
func GenerateCatalogHTML(cards []EpisodeCardOptions) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>Série | Pluto TV</title></head>
<body>
<header><nav>
`)
	for _, nav := range navigationLinks[:4] {
		fmt.Fprintf(&sb, "\t<a href=\"%s\">%s</a>\n", nav.href, nav.text)
	}
	sb.WriteString("</nav></header>\n<main>\n<ul class=\"episode-list\">\n")

	for _, card := range cards {
		writeEpisodeCard(&sb, card)
	}

	sb.WriteString("</ul>\n</main>\n<footer>\n")
	for _, nav := range navigationLinks[4:] {
		fmt.Fprintf(&sb, "\t<a href=\"%s\">%s</a>\n", nav.href, nav.text)
	}
	sb.WriteString("</footer>\n</body>\n</html>")

	return sb.String()
}

func writeEpisodeCard(sb *strings.Builder, card EpisodeCardOptions) {
	titleAttr := ""
	if card.Title != "" {
		titleAttr = fmt.Sprintf(` title="%s"`, card.Title)
	}

	sb.WriteString("\t<li>\n")
	fmt.Fprintf(sb, "\t\t<a href=\"%s\"%s>\n", card.Href, titleAttr)
	switch {
	case card.NoImageSrc:
		sb.WriteString("\t\t\t<img alt=\"thumbnail\">\n")
	case card.ImageSrc != "":
		fmt.Fprintf(sb, "\t\t\t<img src=\"%s\" alt=\"thumbnail\">\n", card.ImageSrc)
	}
	if card.Text != "" {
		fmt.Fprintf(sb, "\t\t\t<span>%s</span>\n", card.Text)
	}
	if card.Description != "" {
		fmt.Fprintf(sb, "\t\t\t<p>%s</p>\n", card.Description)
	}
	sb.WriteString("\t\t</a>\n\t</li>\n")
}
