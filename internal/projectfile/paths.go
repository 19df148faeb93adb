package projectfile

import (
	"fmt"
	"path"
	"strings"
)

// Entry paths are derived only from owning entity IDs, indexes and stable
// names, so the same session always produces the same path set.

const (
	modelsRoot  = "models"
	imagesRoot  = "assets/images"
	spineRoot   = "assets/spine"
	effectsRoot = "assets/effects"

	// DirectorEDLPath holds the timeline in EDL form for other editors.
	DirectorEDLPath = "director/timeline.edl"
)

// FileSegment returns the final path segment of name with either slash
// style, never "", "." or "..".
func FileSegment(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	switch base {
	case "", ".", "..", "/":
		return "file"
	}
	return base
}

// Ext returns the lower-case extension of name without the dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(FileSegment(name))), ".")
}

func ModelDir(modelID string) string {
	return path.Join(modelsRoot, modelID)
}

func ModelFilePath(modelID, fileName string) string {
	return path.Join(ModelDir(modelID), FileSegment(fileName))
}

func ModelTexturePath(modelID, name string) string {
	return path.Join(ModelDir(modelID), "textures", FileSegment(name))
}

func SnapshotPath(modelID, snapshotID, ext string) string {
	return path.Join(ModelDir(modelID), "snapshots", snapshotID+"."+ext)
}

// ShaderTexturePath names texture n of feature featureIndex in group groupIndex.
func ShaderTexturePath(modelID, key string, groupIndex, featureIndex, n int, ext string) string {
	name := fmt.Sprintf("%s_%d_%d_%d.%s", key, groupIndex, featureIndex, n, ext)
	return path.Join(ModelDir(modelID), "shader", "textures", name)
}

func ImagePath(elementID, ext string) string {
	return path.Join(imagesRoot, elementID+"."+ext)
}

func SpineSkeletonPath(instanceID string) string {
	return path.Join(spineRoot, instanceID, "skeleton.skel")
}

func SpineAtlasPath(instanceID string) string {
	return path.Join(spineRoot, instanceID, "skeleton.atlas")
}

func SpineTexturePath(instanceID, name string) string {
	return path.Join(spineRoot, instanceID, "textures", FileSegment(name))
}

// EffectResourcePath flattens relativePath to its file name under the
// effect's namespace.
func EffectResourcePath(modelID, effectID, relativePath string) string {
	return path.Join(effectsRoot, modelID, effectID, FileSegment(relativePath))
}
