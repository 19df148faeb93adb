package serialize

import (
	"fmt"

	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

func Layer(l *session.Layer, c *Collector) projectfile.SerializableLayer {
	out := projectfile.SerializableLayer{
		ID:       l.ID,
		Name:     l.Name,
		Visible:  l.Visible,
		Locked:   l.Locked,
		Opacity:  l.Opacity,
		Order:    l.Order,
		Elements: make([]projectfile.SerializableElement, 0, len(l.Elements)),
	}
	for _, e := range l.Elements {
		out.Elements = append(out.Elements, Element(e, c))
	}
	return out
}

// Element serializes one 2D element. An image element whose image cannot
// be decoded is kept without an image path.
func Element(e *session.Element, c *Collector) projectfile.SerializableElement {
	out := projectfile.SerializableElement{
		ID:       e.ID,
		Name:     e.Name,
		Type:     string(e.Kind),
		X:        e.X,
		Y:        e.Y,
		Width:    e.Width,
		Height:   e.Height,
		Rotation: e.Rotation,
		Opacity:  e.Opacity,
		Visible:  e.Visible,
	}
	switch e.Kind {
	case session.ElementImage:
		data, ext, err := imageBytes(e.Image, e.ImageDataURL)
		if err != nil {
			c.Warn("image", "element image unavailable, skipped", "element_id", e.ID, "error", err)
			break
		}
		out.ImagePath = projectfile.ImagePath(e.ID, ext)
		c.Add(out.ImagePath, data)
	case session.ElementText:
		out.Text = e.Text
	case session.ElementSpine:
		out.SpineInstanceID = e.SpineInstanceID
	}
	return out
}

// SpineInstance serializes a Spine instance. Without a skeleton file the
// instance cannot be restored and is skipped: ok is false.
func SpineInstance(s *session.SpineInstance, c *Collector) (projectfile.SerializableSpineInstance, bool) {
	if s.Skeleton == nil || len(s.Skeleton.Data) == 0 {
		c.Warn("spine", "spine skeleton missing, instance skipped", "spine_id", s.ID, "name", s.Name)
		return projectfile.SerializableSpineInstance{}, false
	}

	out := projectfile.SerializableSpineInstance{
		ID:           s.ID,
		Name:         s.Name,
		SkeletonPath: projectfile.SpineSkeletonPath(s.ID),
		TexturePaths: []string{},
		Animation:    s.Animation,
		Skin:         s.Skin,
		Loop:         s.Loop,
		X:            s.X,
		Y:            s.Y,
		Scale:        s.Scale,
	}
	c.Add(out.SkeletonPath, s.Skeleton.Data)

	if s.Atlas != nil && len(s.Atlas.Data) > 0 {
		out.AtlasPath = projectfile.SpineAtlasPath(s.ID)
		c.Add(out.AtlasPath, s.Atlas.Data)
	} else {
		c.Warn("spine", "spine atlas missing", "spine_id", s.ID)
	}

	names := nameSet{}
	for i, t := range s.Textures {
		if t == nil || len(t.Data) == 0 {
			c.Warn("spine", "spine texture has no data, skipped", "spine_id", s.ID, "index", i)
			continue
		}
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("texture_%d.%s", i, ImageExt(t.MimeType, t.Data))
		}
		p := projectfile.SpineTexturePath(s.ID, names.claim(i, name))
		c.Add(p, t.Data)
		out.TexturePaths = append(out.TexturePaths, p)
	}
	return out, true
}
