// Package serialize turns live session entities into archive DTOs. The
// transforms are pure: binary content never enters a DTO and is instead
// appended to a Collector under a deterministic entry path.
package serialize

import (
	"fmt"
	"log/slog"
	"strings"
)

// Entry is one binary file destined for the archive.
type Entry struct {
	Path string
	Data []byte
}

// Warning is a skipped asset or entity. Kind groups warnings for metrics
// (model, texture, image, shader_texture, effect_resource, spine, snapshot).
type Warning struct {
	Kind    string
	Message string
}

func (w Warning) String() string {
	return w.Message
}

// Collector is the append-only side channel the serializers write binary
// entries and warnings to. It is owned by a single export.
type Collector struct {
	entries  []Entry
	warnings []Warning
	logger   *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{logger: logger}
}

// Add appends an entry. Duplicate paths are kept; the packager resolves them.
func (c *Collector) Add(path string, data []byte) {
	c.entries = append(c.entries, Entry{Path: path, Data: data})
}

// Warn logs and records a skip. attrs are slog key/value pairs and are
// appended to the recorded message.
func (c *Collector) Warn(kind, msg string, attrs ...any) {
	c.logger.Warn(msg, append([]any{"kind", kind}, attrs...)...)
	c.warnings = append(c.warnings, Warning{Kind: kind, Message: formatWarning(msg, attrs)})
}

func (c *Collector) Entries() []Entry {
	return c.entries
}

func (c *Collector) Warnings() []Warning {
	return c.warnings
}

// Paths returns the entry paths in insertion order.
func (c *Collector) Paths() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Path
	}
	return out
}

func formatWarning(msg string, attrs []any) string {
	if len(attrs) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(attrs); i += 2 {
		fmt.Fprintf(&b, " %v=%v", attrs[i], attrs[i+1])
	}
	return b.String()
}
