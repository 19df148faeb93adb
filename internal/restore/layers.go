package restore

import (
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

// restoreLayers restores Spine instances first so element references can be
// remapped through the spine ledger.
func restoreLayers(r *run) {
	store := r.opts.Layers
	store.ResetLayers()

	for _, ss := range r.state.SpineInstances {
		skeleton, err := r.blob(ss.SkeletonPath)
		if err != nil {
			r.warn("spine skeleton missing, instance skipped", "spine_id", ss.ID, "path", ss.SkeletonPath)
			continue
		}
		inst := &session.SpineInstance{
			ID:        session.NewID(),
			Name:      ss.Name,
			Skeleton:  skeleton,
			Animation: ss.Animation,
			Skin:      ss.Skin,
			Loop:      ss.Loop,
			X:         ss.X,
			Y:         ss.Y,
			Scale:     ss.Scale,
		}
		if ss.AtlasPath != "" {
			if atlas, err := r.blob(ss.AtlasPath); err == nil {
				inst.Atlas = atlas
			} else {
				r.warn("spine atlas missing", "spine_id", ss.ID, "path", ss.AtlasPath)
			}
		}
		for _, p := range ss.TexturePaths {
			tex, err := r.blob(p)
			if err != nil {
				r.warn("spine texture missing, skipped", "spine_id", ss.ID, "path", p)
				continue
			}
			inst.Textures = append(inst.Textures, tex)
		}
		if err := store.AddSpineInstance(inst); err != nil {
			r.warn("spine instance could not be added, skipped", "spine_id", ss.ID, "error", err)
			continue
		}
		r.ledger.RecordSpine(ss.ID, inst.ID)
	}

	for _, sl := range r.state.Layers {
		layer := &session.Layer{
			ID:      session.NewID(),
			Name:    sl.Name,
			Visible: sl.Visible,
			Locked:  sl.Locked,
			Opacity: sl.Opacity,
			Order:   sl.Order,
		}
		for _, se := range sl.Elements {
			el := &session.Element{
				ID:       session.NewID(),
				Name:     se.Name,
				Kind:     session.ElementKind(se.Type),
				X:        se.X,
				Y:        se.Y,
				Width:    se.Width,
				Height:   se.Height,
				Rotation: se.Rotation,
				Opacity:  se.Opacity,
				Visible:  se.Visible,
				Text:     se.Text,
			}
			if se.ImagePath != "" {
				if img, err := r.blob(se.ImagePath); err == nil {
					img.MimeType = mimeForExt(img.Name)
					el.Image = img
				} else {
					r.warn("element image missing, skipped", "element_id", se.ID, "path", se.ImagePath)
				}
			}
			if se.SpineInstanceID != "" {
				if newID, ok := r.ledger.ResolveSpine(se.SpineInstanceID); ok {
					el.SpineInstanceID = newID
				} else {
					r.warn("spine reference unresolved, cleared", "element_id", se.ID, "spine_id", se.SpineInstanceID)
				}
			}
			layer.Elements = append(layer.Elements, el)
		}
		if err := store.AddLayer(layer); err != nil {
			r.warn("layer could not be added, skipped", "layer_id", sl.ID, "error", err)
		}
	}
}

func mimeForExt(name string) string {
	switch projectfile.Ext(name) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	case "svg":
		return "image/svg+xml"
	case "bmp":
		return "image/bmp"
	default:
		return "image/png"
	}
}
