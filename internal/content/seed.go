// ABOUTME: Optional YAML seed file providing bootstrap section titles
// ABOUTME: Used only when no snapshot exists yet; built-in defaults otherwise

package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile is the YAML shape of a seed file:
//
//	sections:
//	  - id: 1
//	    title: Documents
type seedFile struct {
	Sections []seedSection `yaml:"sections"`
}

type seedSection struct {
	ID    int    `yaml:"id"`
	Title string `yaml:"title"`
}

// LoadSeedTitles reads default section titles from a YAML seed file.
// An empty path returns an empty map (callers fall back to built-ins);
// a path that does not exist or does not parse is an error, since a
// configured seed file is expected to be usable.
func LoadSeedTitles(path string) (map[int]string, error) {
	if path == "" {
		return map[int]string{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	titles := make(map[int]string, len(sf.Sections))
	for _, sec := range sf.Sections {
		if sec.ID < 1 {
			return nil, fmt.Errorf("seed section id %d: must be positive", sec.ID)
		}
		titles[sec.ID] = sec.Title
	}
	return titles, nil
}
