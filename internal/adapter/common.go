package adapter

import (
	"log/slog"

	"github.com/OCAP2/simvis/internal/diff"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

// applyCommon applies the preferences every kind shares. It reports
// whether any component changed.
func (c *Context) applyCommon(h scene.Handle, next, prev core.Opt[core.CommonPrefs], log *slog.Logger) bool {
	n, ok := next.Get()
	if !ok {
		return false
	}
	p := prev.Value()
	changed := false

	if diff.Changed(n.Name, p.Name) {
		label := c.label(h)
		label.Text = n.Name.Value()
		if label.Style.Font == nil {
			label.Style.Font = c.Resources.DefaultFont()
		}
		label.Dirty()
		changed = true
	}

	if n.Labels.Has() {
		if c.applyLabel(h, n.Labels.Value(), p.Labels.Value(), log) {
			changed = true
		}
	}
	return changed
}

func (c *Context) applyLabel(h scene.Handle, next, prev core.LabelPrefs, log *slog.Logger) bool {
	changed := false
	label := func() *scene.Label {
		changed = true
		return c.label(h)
	}

	if diff.Changed(next.Draw, prev.Draw) {
		l := label()
		l.Visible = next.Draw.Value()
		l.Dirty()
	}

	if diff.Changed(next.OverlayFontName, prev.OverlayFontName) {
		name := next.OverlayFontName.Value()
		if font := c.Resources.Font(name); font != nil {
			l := label()
			l.Style.Font = font
			l.Dirty()
		} else {
			log.Warn("Label font unavailable, keeping current font", "font", name)
		}
	}

	if diff.Changed(next.OverlayFontPointSize, prev.OverlayFontPointSize) {
		l := label()
		l.Style.PointSize = next.OverlayFontPointSize.Value()
		l.Dirty()
	}

	if diff.Changed(next.Alignment, prev.Alignment) {
		align := next.Alignment.Value()
		if ha, va, ok := anchor(align); ok {
			l := label()
			l.Style.HorizontalAlignment = ha
			l.Style.VerticalAlignment = va
			l.Dirty()
		} else {
			log.Warn("Unhandled label alignment", "alignment", align)
		}
	}
	return changed
}

// anchor maps a text alignment to the label anchor it implies.
// Only right-center has a defined mapping.
func anchor(a core.TextAlignment) (scene.HAlign, scene.VAlign, bool) {
	switch a {
	case core.AlignRightCenter:
		return scene.HAlignRight, scene.VAlignCenter, true
	}
	return 0, 0, false
}

// label returns the label of h, attaching a visible one if missing.
func (c *Context) label(h scene.Handle) *scene.Label {
	if l, ok := c.Scene.Labels.Get(h); ok {
		return l
	}
	l := c.Scene.Labels.Emplace(h)
	l.Visible = true
	return l
}
