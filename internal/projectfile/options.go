package projectfile

import (
	apperrors "github.com/heimdex/jr3d/internal/errors"
)

// ExportOptions toggles the top-level sections of an export.
type ExportOptions struct {
	Include3DModels   bool `json:"include3DModels"`
	Include2D         bool `json:"include2D"`
	IncludeAnimations bool `json:"includeAnimations"`
	IncludeShader     bool `json:"includeShader"`
	IncludeEffects    bool `json:"includeEffects"`
	// IncludeAudio is reserved and always exported as false.
	IncludeAudio bool `json:"includeAudio"`
}

// DefaultExportOptions enables every section.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Include3DModels:   true,
		Include2D:         true,
		IncludeAnimations: true,
		IncludeShader:     true,
		IncludeEffects:    true,
	}
}

// CanExport is false when neither 3D models nor 2D layers are selected.
func (o ExportOptions) CanExport() bool {
	return o.Include3DModels || o.Include2D
}

// CanExportAnimations: the timeline needs something to animate.
func (o ExportOptions) CanExportAnimations() bool {
	return o.Include3DModels || o.Include2D
}

// CanExportShader: shaders are attached to 3D models.
func (o ExportOptions) CanExportShader() bool {
	return o.Include3DModels
}

// Validate fails with NO_EXPORTABLE_CONTENT when nothing can be exported.
func (o ExportOptions) Validate() error {
	if !o.CanExport() {
		return apperrors.New(apperrors.CodeNoExportableContent, "no exportable content: select 3D models or 2D layers")
	}
	return nil
}

// Effective returns the flags that are actually honoured after applying the
// cross-section legality rules.
func (o ExportOptions) Effective() ExportOptions {
	return ExportOptions{
		Include3DModels:   o.Include3DModels,
		Include2D:         o.Include2D,
		IncludeAnimations: o.IncludeAnimations && o.CanExportAnimations(),
		IncludeShader:     o.IncludeShader && o.CanExportShader(),
		IncludeEffects:    o.IncludeEffects && o.Include3DModels,
		IncludeAudio:      false,
	}
}
