// Package ledger records how identifiers from an archive map to the fresh
// identifiers of the restored entities. A Ledger lives for a single import.
package ledger

import (
	"cogentcore.org/core/base/ordmap"
)

// Ledger holds old→new identifier maps in the order entities were restored.
type Ledger struct {
	Models *ordmap.Map[string, string]
	Clips  *ordmap.Map[string, string]
	Spines *ordmap.Map[string, string]
}

func New() *Ledger {
	return &Ledger{
		Models: ordmap.New[string, string](),
		Clips:  ordmap.New[string, string](),
		Spines: ordmap.New[string, string](),
	}
}

func (l *Ledger) RecordModel(oldID, newID string) { l.Models.Add(oldID, newID) }
func (l *Ledger) RecordClip(oldID, newID string)  { l.Clips.Add(oldID, newID) }
func (l *Ledger) RecordSpine(oldID, newID string) { l.Spines.Add(oldID, newID) }

func (l *Ledger) ResolveModel(oldID string) (string, bool) { return l.Models.ValueByKeyTry(oldID) }
func (l *Ledger) ResolveClip(oldID string) (string, bool)  { return l.Clips.ValueByKeyTry(oldID) }
func (l *Ledger) ResolveSpine(oldID string) (string, bool) { return l.Spines.ValueByKeyTry(oldID) }

// ModelIDs returns the model map as a plain map.
func (l *Ledger) ModelIDs() map[string]string { return toMap(l.Models) }

// ClipIDs returns the clip map as a plain map.
func (l *Ledger) ClipIDs() map[string]string { return toMap(l.Clips) }

// SpineIDs returns the spine instance map as a plain map.
func (l *Ledger) SpineIDs() map[string]string { return toMap(l.Spines) }

func toMap(om *ordmap.Map[string, string]) map[string]string {
	out := make(map[string]string, om.Len())
	for _, kv := range om.Order {
		out[kv.Key] = kv.Value
	}
	return out
}
