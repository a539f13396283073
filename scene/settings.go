package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scengine/scengine/core"
)

// Settings are the scene tunables, loadable from a yaml file so projects
// can adjust the spatial index and frame defaults without recompiling.
type Settings struct {
	OctreeSize  float32 `yaml:"octree_size"`
	OctreeDepth int     `yaml:"octree_depth"`
	LooseOctree bool    `yaml:"loose_octree"`
	LooseRatio  float32 `yaml:"loose_ratio"`

	ClearColor [4]float32 `yaml:"clear_color"`
	ClearDepth float32    `yaml:"clear_depth"`

	MaxLights int `yaml:"max_lights"`

	FrustumCulling bool `yaml:"frustum_culling"`
	Lighting       bool `yaml:"lighting"`
	LOD            bool `yaml:"lod"`
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		OctreeSize:     16384,
		OctreeDepth:    3,
		LooseOctree:    true,
		LooseRatio:     0.5,
		ClearColor:     [4]float32{0.5, 0.5, 0.5, 1},
		ClearDepth:     1,
		MaxLights:      8,
		FrustumCulling: true,
		Lighting:       true,
		LOD:            false,
	}
}

// LoadSettings reads a yaml settings file over the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, fmt.Errorf("%s: %w", path, core.ErrFileNotFound)
		}
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("settings %s: %v: %w", path, err, core.ErrBadFormat)
	}
	if s.OctreeSize <= 0 || s.OctreeDepth < 0 || s.LooseRatio < 0 {
		return s, fmt.Errorf("settings %s: %w", path, core.ErrInvalidArg)
	}
	return s, nil
}
