// Package svgdebug renders a BF2 build's debug trace to SVG: the
// min-perimeter outline per floor layer, a marker at each of its
// corners, and the corner-decision trace as text, following the
// string-builder SVG idiom of the composition engine's renderer package.
// Bay boundaries, corner ramp zones, the roof triangulation and the
// solver trace are not drawn.
package svgdebug

import (
	"fmt"
	"strings"

	"github.com/arxos/bf2/facade/geom"
	"github.com/arxos/bf2/facade/mesh"
)

// Config tunes the rendered SVG's size and margin. ShowRoof is not read
// by Render.
type Config struct {
	Width, Height float64
	Margin        float64
	ShowRoof      bool
}

// DefaultConfig returns sensible defaults for a quick debug view.
func DefaultConfig() Config {
	return Config{Width: 1000, Height: 1000, Margin: 20, ShowRoof: true}
}

// Render produces a standalone SVG document visualizing m.Debug. It
// returns an empty-canvas SVG if m.Debug is nil (invariant checks were
// run without EmitDebugTrace).
func Render(m *mesh.Mesh, cfg Config) string {
	if m.Debug == nil || len(m.Debug.MinPerimetersPerLayer) == 0 {
		return renderEmptySVG(cfg)
	}

	bounds := boundsOf(m.Debug.MinPerimetersPerLayer)

	var b strings.Builder
	b.WriteString(fmt.Sprintf(`<svg width="%.2f" height="%.2f" viewBox="0 0 %.2f %.2f" xmlns="http://www.w3.org/2000/svg">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height))
	b.WriteString("\n")
	writeDefs(&b)

	project := projector(bounds, cfg)

	for layerIdx, loop := range m.Debug.MinPerimetersPerLayer {
		b.WriteString(fmt.Sprintf("  <g id=\"layer-%d\" class=\"min-perimeter\">\n", layerIdx))
		writePolyline(&b, loop, project, "min-perimeter-outline")
		for i, v := range loop {
			p := project(v)
			b.WriteString(fmt.Sprintf("    <circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" class=\"corner-marker\" data-corner=\"%d\"/>\n", p.X, p.Y, i))
		}
		b.WriteString("  </g>\n")
	}

	if len(m.Debug.CornerDecisions) > 0 {
		b.WriteString("  <g id=\"corner-decisions\" class=\"debug-text\">\n")
		for i, line := range m.Debug.CornerDecisions {
			b.WriteString(fmt.Sprintf("    <text x=\"%.2f\" y=\"%.2f\">%s</text>\n", cfg.Margin, cfg.Margin+14*float64(i+1), escapeXML(line)))
		}
		b.WriteString("  </g>\n")
	}

	b.WriteString("</svg>")
	return b.String()
}

func renderEmptySVG(cfg Config) string {
	return fmt.Sprintf(`<svg width="%.2f" height="%.2f" xmlns="http://www.w3.org/2000/svg"></svg>`, cfg.Width, cfg.Height)
}

func writeDefs(b *strings.Builder) {
	b.WriteString("  <defs>\n")
	b.WriteString("    <style>\n")
	b.WriteString("      .min-perimeter-outline { fill: none; stroke: #2a6; stroke-width: 1.5; }\n")
	b.WriteString("      .corner-marker { fill: #c33; }\n")
	b.WriteString("      .debug-text { font-family: monospace; font-size: 11px; fill: #333; }\n")
	b.WriteString("    </style>\n")
	b.WriteString("  </defs>\n")
}

type bounds struct{ minX, minY, maxX, maxY float64 }

func boundsOf(loops [][]geom.Vec2) bounds {
	bd := bounds{minX: 1e18, minY: 1e18, maxX: -1e18, maxY: -1e18}
	for _, loop := range loops {
		for _, v := range loop {
			if v.X < bd.minX {
				bd.minX = v.X
			}
			if v.X > bd.maxX {
				bd.maxX = v.X
			}
			if v.Y < bd.minY {
				bd.minY = v.Y
			}
			if v.Y > bd.maxY {
				bd.maxY = v.Y
			}
		}
	}
	return bd
}

func projector(bd bounds, cfg Config) func(geom.Vec2) geom.Vec2 {
	w := bd.maxX - bd.minX
	h := bd.maxY - bd.minY
	if w < 1e-9 {
		w = 1
	}
	if h < 1e-9 {
		h = 1
	}
	scaleX := (cfg.Width - 2*cfg.Margin) / w
	scaleY := (cfg.Height - 2*cfg.Margin) / h
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	return func(v geom.Vec2) geom.Vec2 {
		return geom.Vec2{
			X: cfg.Margin + (v.X-bd.minX)*scale,
			Y: cfg.Height - (cfg.Margin + (v.Y-bd.minY)*scale),
		}
	}
}

func writePolyline(b *strings.Builder, loop []geom.Vec2, project func(geom.Vec2) geom.Vec2, class string) {
	var pts strings.Builder
	for i, v := range loop {
		p := project(v)
		if i > 0 {
			pts.WriteString(" ")
		}
		pts.WriteString(fmt.Sprintf("%.2f,%.2f", p.X, p.Y))
	}
	if len(loop) > 0 {
		first := project(loop[0])
		pts.WriteString(fmt.Sprintf(" %.2f,%.2f", first.X, first.Y))
	}
	b.WriteString(fmt.Sprintf("    <polyline points=\"%s\" class=\"%s\"/>\n", pts.String(), class))
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
