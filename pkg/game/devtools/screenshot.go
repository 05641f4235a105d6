package devtools

import (
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/ill13/wfc-softrender/pkg/engine/world"
)

const openCellColor = "#111111"

// RenderMapHTML renders the map as a standalone HTML page: one coloured
// square per cell, location emoji on top, then the legend and messages.
func RenderMapHTML(m MapInfo, messages []string) (string, error) {
	if m.Grid == nil || m.Catalog == nil {
		return "", fmt.Errorf("no grid")
	}
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>` + html.EscapeString(m.Name) + `</title>
    <style>
        body {
            background-color: #1a1a2e;
            color: #eee;
            font-family: 'Courier New', monospace;
            padding: 20px;
        }
        .header {
            color: #bb86fc;
            font-size: 18px;
            margin-bottom: 10px;
        }
        .meta { color: #888; margin-bottom: 20px; }
        .map-container {
            background-color: #0f0f1a;
            padding: 20px;
            border-radius: 8px;
            display: inline-block;
            margin: 20px 0;
        }
        .map-row { display: flex; }
        .cell {
            width: 16px;
            height: 16px;
            font-size: 12px;
            line-height: 16px;
            text-align: center;
        }
        .legend { margin-top: 20px; color: #888; }
        .swatch {
            display: inline-block;
            width: 12px;
            height: 12px;
            margin: 0 4px 0 12px;
        }
        .messages {
            margin-top: 20px;
            border-top: 1px solid #333;
            padding-top: 10px;
        }
        .message { color: #ccc; margin: 5px 0; }
    </style>
</head>
<body>
`)

	fmt.Fprintf(&b, `    <div class="header">%s</div>`+"\n", html.EscapeString(m.Name))
	fmt.Fprintf(&b, `    <div class="meta">%s &middot; seed %d &middot; %dx%d &middot; %d restarts</div>`+"\n",
		html.EscapeString(m.Theme), m.Seed, m.Grid.Width(), m.Grid.Height(), m.Stats.Restarts)

	b.WriteString(`    <div class="map-container">` + "\n")
	for y := 0; y < m.Grid.Height(); y++ {
		b.WriteString(`        <div class="map-row">`)
		for x := 0; x < m.Grid.Width(); x++ {
			color, icon, title := cellHTMLInfo(m, m.Grid.GetCell(x, y))
			fmt.Fprintf(&b, `<span class="cell" style="background:%s" title="%s">%s</span>`,
				html.EscapeString(color), html.EscapeString(title), html.EscapeString(icon))
		}
		b.WriteString("</div>\n")
	}
	b.WriteString(`    </div>` + "\n")

	// Legend shows the first colour of every terrain
	b.WriteString(`    <div class="legend">`)
	for _, id := range m.Catalog.IDs() {
		color := openCellColor
		if colors := m.Catalog.Colors(id); len(colors) > 0 {
			color = colors[0]
		}
		fmt.Fprintf(&b, `<span class="swatch" style="background:%s"></span>%s`,
			html.EscapeString(color), html.EscapeString(m.Catalog.Label(id)))
	}
	b.WriteString(`</div>` + "\n")

	if len(m.Placed) > 0 {
		b.WriteString(`    <div class="legend">Locations: `)
		for i, p := range m.Placed {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %s (%d,%d)", html.EscapeString(p.Template.Emoji),
				html.EscapeString(p.Template.DisplayName()), p.X, p.Y)
		}
		b.WriteString(`</div>` + "\n")
	}

	if len(messages) > 0 {
		b.WriteString(`    <div class="messages">` + "\n")
		for _, msg := range messages {
			fmt.Fprintf(&b, `        <div class="message">%s</div>`+"\n", html.EscapeString(stripANSI(msg)))
		}
		b.WriteString(`    </div>` + "\n")
	}

	b.WriteString(`</body>
</html>
`)
	return b.String(), nil
}

// cellHTMLInfo returns the background colour, icon and hover text of a cell
func cellHTMLInfo(m MapInfo, c *world.Cell) (string, string, string) {
	if c == nil || !c.Collapsed {
		return openCellColor, "", ""
	}
	color := c.Color
	if color == "" {
		color = openCellColor
	}
	title := m.Catalog.Label(c.Terrain)
	if c.HasLocation() {
		return color, c.Location.Emoji, c.Location.DisplayName() + " on " + title
	}
	return color, "", title
}

// SaveMapHTML writes the HTML rendering to path, or to a timestamped
// map-*.html file when path is empty, and returns the file name.
func SaveMapHTML(m MapInfo, messages []string, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("map-%s.html", time.Now().Format("20060102-150405"))
	}
	page, err := RenderMapHTML(m, messages)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// stripANSI removes ANSI escape codes from a string
func stripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
