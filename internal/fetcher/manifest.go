package fetcher

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Source is one entry in the run manifest: a workbook to process plus the
// store metadata that cannot be derived from the sheet itself. Blank fields
// fall back to filename parsing.
type Source struct {
	// Path is a local file path, or blank when URL is set.
	Path string `yaml:"path,omitempty"`
	// URL is an ftp:// location to pull the workbook from.
	URL string `yaml:"url,omitempty"`

	Market      string `yaml:"market,omitempty"` // brand mapping market, e.g. "UK"
	Country     string `yaml:"country,omitempty"`
	City        string `yaml:"city,omitempty"`
	Retailer    string `yaml:"retailer,omitempty"`
	StoreFormat string `yaml:"store_format,omitempty"`
}

// Manifest lists the source workbooks for one processing run.
type Manifest struct {
	Sources []Source `yaml:"sources"`
}

// LoadManifest reads and validates a run manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "fetcher: parse manifest")
	}

	if len(m.Sources) == 0 {
		return nil, eris.New("fetcher: manifest lists no sources")
	}
	for i, s := range m.Sources {
		if s.Path == "" && s.URL == "" {
			return nil, eris.Errorf("fetcher: manifest source %d has neither path nor url", i)
		}
	}

	return &m, nil
}

// DefaultsFor merges a source's explicit metadata with filename parsing:
// explicit values win, parsed values fill the gaps.
func (s Source) DefaultsFor(filename string) Defaults {
	meta := ParseFilename(filename)

	d := Defaults{
		Country:     s.Country,
		City:        s.City,
		Retailer:    s.Retailer,
		StoreFormat: s.StoreFormat,
	}
	if d.City == "" {
		d.City = meta.City
	}
	if d.Retailer == "" {
		d.Retailer = meta.Retailer
	}
	if d.StoreFormat == "" {
		d.StoreFormat = meta.StoreFormat
	}
	return d
}
