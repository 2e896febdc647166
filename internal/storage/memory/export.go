// internal/storage/memory/export.go
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// SessionExport is the root JSON structure
type SessionExport struct {
	SessionName      string       `json:"sessionName"`
	ExtensionVersion string       `json:"extensionVersion"`
	StartTime        string       `json:"startTime"`
	EndTime          float64      `json:"endTime"`
	Entities         []EntityJSON `json:"entities"`
}

// EntityJSON is one entity with its frames. Each frame is positional:
// [time, [lon, lat, alt] | null, [x, y, z, w], label, iconSize, lineWkt]
type EntityJSON struct {
	ID     uint64  `json:"id"`
	Kind   string  `json:"kind"`
	HostID uint64  `json:"hostId,omitempty"`
	Name   string  `json:"name,omitempty"`
	Frames [][]any `json:"frames"`
}

// exportJSON writes the session data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	name := strings.ReplaceAll(b.session.Name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	if name == "" {
		name = "session"
	}
	timestamp := b.session.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", name, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() SessionExport {
	export := SessionExport{
		SessionName:      b.session.Name,
		ExtensionVersion: b.session.ExtensionVersion,
		StartTime:        b.session.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		Entities:         make([]EntityJSON, 0, len(b.entities)),
	}

	for _, record := range b.sortedRecords() {
		entity := EntityJSON{
			ID:     uint64(record.Entity.ID),
			Kind:   record.Entity.Kind.String(),
			HostID: uint64(record.Entity.HostID),
			Name:   record.Entity.Name,
			Frames: make([][]any, 0, len(record.Frames)),
		}

		for _, f := range record.Frames {
			var pos any
			if f.HasPosition {
				pos = []float64{f.Position.Longitude, f.Position.Latitude, f.Position.Altitude}
			}
			entity.Frames = append(entity.Frames, []any{
				f.Time,     // [0] time
				pos,        // [1] position
				f.Rotation, // [2] rotation
				f.Label,    // [3] label text
				f.IconSize, // [4] icon size in pixels
				f.LineWKT,  // [5] line geometry
			})
			if f.Time > export.EndTime {
				export.EndTime = f.Time
			}
		}

		export.Entities = append(export.Entities, entity)
	}

	return export
}

func writeJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		_ = gzWriter.Close()
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return gzWriter.Close()
}
