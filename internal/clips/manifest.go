package clips

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sfx/internal/log"
)

// Clip is a labelled region of a clip sheet. JSON keys match the
// lyd_data.json files consumed by the web frontend.
type Clip struct {
	ID    string  `json:"id" yaml:"id"`
	Text  string  `json:"tekst" yaml:"tekst"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"slut" yaml:"slut"`
}

// Empty reports whether the clip has no sound, as for padding entries.
func (c Clip) Empty() bool { return c.End <= c.Start }

// Manifest lists the clips of one recording in phrase order.
type Manifest []Clip

var idCleaner = strings.NewReplacer("!", "", ".", "", "?", "", " ", "_")

// ClipID derives the stable id of the index'th phrase, e.g.
// ClipID("Prøv igen!", 1) is "id_1_prøv_igen".
func ClipID(text string, index int) string {
	return fmt.Sprintf("id_%d_%s", index, idCleaner.Replace(strings.ToLower(text)))
}

// Label pairs texts with segments in order. Segments beyond the texts are
// ignored; texts beyond the segments get empty clips at 0 and the number
// of such texts is returned.
func Label(segments []Segment, texts []string) (Manifest, int) {
	m := make(Manifest, len(texts))
	missing := 0
	for i, text := range texts {
		var seg Segment
		if i < len(segments) {
			seg = segments[i]
		} else {
			missing++
		}
		m[i] = Clip{
			ID:    ClipID(text, i),
			Text:  text,
			Start: roundMillis(seg.Start),
			End:   roundMillis(seg.End),
		}
	}
	if missing > 0 {
		log.Warn(log.CatClips, "Fewer segments than texts, padding with empty clips",
			"segments", len(segments), "texts", len(texts))
	}
	return m, missing
}

func roundMillis(v float64) float64 { return math.Round(v*1000) / 1000 }

// Lookup returns the clip with the given id.
func (m Manifest) Lookup(id string) (Clip, bool) {
	for _, c := range m {
		if c.ID == id {
			return c, true
		}
	}
	return Clip{}, false
}

// Format is a manifest serialization.
type Format int

const (
	JSON Format = iota
	YAML
)

// FormatFor picks the format from a file extension, JSON unless .yaml/.yml.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Encode writes m to w. JSON is indented by two spaces and keeps non-ASCII
// text unescaped.
func (m Manifest) Encode(w io.Writer, f Format) error {
	if m == nil {
		m = Manifest{}
	}
	if f == YAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encoding yaml manifest: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding json manifest: %w", err)
	}
	return nil
}

// Decode reads a manifest in format f.
func Decode(r io.Reader, f Format) (Manifest, error) {
	var m Manifest
	var err error
	if f == YAML {
		err = yaml.NewDecoder(r).Decode(&m)
	} else {
		err = json.NewDecoder(r).Decode(&m)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return m, nil
}

// WriteFile saves m to path in the format its extension implies.
func (m Manifest) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	if err := m.Encode(f, FormatFor(path)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadManifest loads a manifest saved by WriteFile.
func ReadManifest(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f, FormatFor(path))
}
