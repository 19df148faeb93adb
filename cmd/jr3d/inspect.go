package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/heimdex/jr3d/internal/archive"
	"github.com/heimdex/jr3d/internal/projectfile"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// inspectReport is what inspect prints for one archive.
type inspectReport struct {
	File          string                    `json:"file" yaml:"file"`
	Manifest      manifestReport            `json:"manifest" yaml:"manifest"`
	ExportOptions projectfile.ExportOptions `json:"exportOptions" yaml:"export_options"`
	Counts        countsReport              `json:"counts" yaml:"counts"`
	Entries       []entryReport             `json:"entries" yaml:"entries"`
	TotalSize     uint64                    `json:"totalSize" yaml:"total_size"`
	Missing       []string                  `json:"missing" yaml:"missing"`
}

type manifestReport struct {
	Version       string    `json:"version" yaml:"version"`
	CreatedAt     time.Time `json:"createdAt" yaml:"created_at"`
	AppVersion    string    `json:"appVersion" yaml:"app_version"`
	ProjectName   string    `json:"projectName" yaml:"project_name"`
	ModelCount    int       `json:"modelCount" yaml:"model_count"`
	HasAnimations bool      `json:"hasAnimations" yaml:"has_animations"`
}

type countsReport struct {
	Models         int  `json:"models" yaml:"models"`
	Clips          int  `json:"clips" yaml:"clips"`
	ShaderGroups   int  `json:"shaderGroups" yaml:"shader_groups"`
	Effects        int  `json:"effects" yaml:"effects"`
	Snapshots      int  `json:"snapshots" yaml:"snapshots"`
	Tracks         int  `json:"tracks" yaml:"tracks"`
	DirectorClips  int  `json:"directorClips" yaml:"director_clips"`
	Layers         int  `json:"layers" yaml:"layers"`
	Elements       int  `json:"elements" yaml:"elements"`
	SpineInstances int  `json:"spineInstances" yaml:"spine_instances"`
	HasDirector    bool `json:"hasDirector" yaml:"has_director"`
}

type entryReport struct {
	Path           string `json:"path" yaml:"path"`
	Size           uint64 `json:"size" yaml:"size"`
	CompressedSize uint64 `json:"compressedSize" yaml:"compressed_size"`
}

func newInspectCmd() *cobra.Command {
	var format string
	var extractDir string

	cmd := &cobra.Command{
		Use:   "inspect <file.jr3d>",
		Short: "Show the manifest, contents and missing assets of an archive",
		Long: `Inspect a .jr3d archive without loading it.

Prints the manifest, counts of the project's sections, every stored entry
with its size, and any asset the project state references but the archive
does not contain. With --extract, the stored entries are also written
below the given directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := archive.OpenFile(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			report := buildReport(args[0], a)

			if err := writeReport(cmd.OutOrStdout(), report, format); err != nil {
				return err
			}
			if extractDir != "" {
				n, err := extractEntries(a, extractDir)
				if err != nil {
					return fmt.Errorf("extract: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "extracted %d entries to %s\n", n, extractDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")
	cmd.Flags().StringVar(&extractDir, "extract", "", "write stored entries below this directory")
	return cmd
}

func buildReport(file string, a *archive.Archive) inspectReport {
	r := inspectReport{
		File: filepath.Base(file),
		Manifest: manifestReport{
			Version:       a.Manifest.Version,
			CreatedAt:     a.Manifest.CreatedAt,
			AppVersion:    a.Manifest.AppVersion,
			ProjectName:   a.Manifest.ProjectName,
			ModelCount:    a.Manifest.ModelCount,
			HasAnimations: a.Manifest.HasAnimations,
		},
		ExportOptions: a.State.ExportOptions,
		Counts:        countState(a.State),
		Entries:       []entryReport{},
		Missing:       []string{},
	}
	for _, e := range a.Entries() {
		r.Entries = append(r.Entries, entryReport{Path: e.Path, Size: e.Size, CompressedSize: e.CompressedSize})
		r.TotalSize += e.Size
	}
	r.Missing = append(r.Missing, a.MissingAssets()...)
	return r
}

func countState(s projectfile.ProjectState) countsReport {
	c := countsReport{
		Models:         len(s.Models),
		Layers:         len(s.Layers),
		SpineInstances: len(s.SpineInstances),
		HasDirector:    s.Director != nil,
	}
	for _, m := range s.Models {
		c.Clips += len(m.CreatedClips)
		c.ShaderGroups += len(m.ShaderGroups)
		c.Effects += len(m.Effects)
		c.Snapshots += len(m.Snapshots)
	}
	if s.Director != nil {
		c.Tracks = len(s.Director.Tracks)
		for _, t := range s.Director.Tracks {
			c.DirectorClips += len(t.Clips)
		}
	}
	for _, l := range s.Layers {
		c.Elements += len(l.Elements)
	}
	return c
}

func writeReport(w io.Writer, r inspectReport, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case formatText, "":
		return writeText(w, r)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func writeText(w io.Writer, r inspectReport) error {
	m := r.Manifest
	fmt.Fprintf(w, "File:        %s\n", r.File)
	fmt.Fprintf(w, "Project:     %s\n", m.ProjectName)
	fmt.Fprintf(w, "Format:      %s (app %s)\n", m.Version, m.AppVersion)
	fmt.Fprintf(w, "Created:     %s (%s)\n", m.CreatedAt.Format(time.RFC3339), humanize.Time(m.CreatedAt))
	fmt.Fprintf(w, "Animations:  %t\n", m.HasAnimations)
	fmt.Fprintln(w)

	c := r.Counts
	fmt.Fprintf(w, "Models:      %d (%d clips, %d shader groups, %d effects, %d snapshots)\n",
		c.Models, c.Clips, c.ShaderGroups, c.Effects, c.Snapshots)
	if c.HasDirector {
		fmt.Fprintf(w, "Director:    %d tracks, %d clips\n", c.Tracks, c.DirectorClips)
	} else {
		fmt.Fprintln(w, "Director:    not exported")
	}
	fmt.Fprintf(w, "2D:          %d layers, %d elements, %d spine instances\n", c.Layers, c.Elements, c.SpineInstances)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Entries (%d, %s):\n", len(r.Entries), humanize.Bytes(r.TotalSize))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range r.Entries {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.Path, humanize.Bytes(e.Size), humanize.Bytes(e.CompressedSize))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Missing) == 0 {
		fmt.Fprintln(w, "\nAll referenced assets are present.")
		return nil
	}
	fmt.Fprintf(w, "\nMissing assets (%d):\n", len(r.Missing))
	for _, p := range r.Missing {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}

// extractEntries writes every stored entry below dir and returns how many
// were written. Entry paths that would escape dir are rejected.
func extractEntries(a *archive.Archive, dir string) (int, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range a.Paths() {
		target, err := safeJoin(root, p)
		if err != nil {
			return n, err
		}
		data, err := a.ReadFile(p)
		if err != nil {
			return n, err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return n, err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func safeJoin(root, entry string) (string, error) {
	if entry == "" || filepath.IsAbs(entry) || strings.HasPrefix(entry, "/") {
		return "", fmt.Errorf("unsafe entry path %q", entry)
	}
	target := filepath.Join(root, filepath.FromSlash(entry))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("unsafe entry path %q", entry)
	}
	return target, nil
}
