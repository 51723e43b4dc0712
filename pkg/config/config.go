// Package config reads YAML scene descriptions and builds scenes from them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a scene description is structurally wrong.
var ErrInvalid = errors.New("config: invalid scene description")

// SourceBox names the built-in cube mesh source.
const SourceBox = "box"

// Defaults applied to missing fields.
const (
	DefaultWidth  = 320
	DefaultHeight = 240
	DefaultFOV    = 60
)

// Vec3 is a YAML [x, y, z] triple.
type Vec3 [3]float64

// File is a scene description.
type File struct {
	Width             int              `yaml:"width"`
	Height            int              `yaml:"height"`
	Antialias         bool             `yaml:"antialias"`
	Background        string           `yaml:"background"`
	BackgroundTexture string           `yaml:"background_texture"`
	Ambient           string           `yaml:"ambient"`
	Camera            Camera           `yaml:"camera"`
	Lights            map[string]Light `yaml:"lights"`
	Meshes            map[string]Mesh  `yaml:"meshes"`
}

// Camera places the viewer. Angles are in degrees.
type Camera struct {
	Position *Vec3   `yaml:"position"`
	Target   Vec3    `yaml:"target"`
	FOV      float64 `yaml:"fov"`
	Roll     float64 `yaml:"roll"`
	Near     float64 `yaml:"near"`
}

// Light is a directional light in view space. Missing colors default to
// white; missing sheen and spread take the scene defaults.
type Light struct {
	Direction Vec3   `yaml:"direction"`
	Diffuse   string `yaml:"diffuse"`
	Specular  string `yaml:"specular"`
	Sheen     *uint8 `yaml:"sheen"`
	Spread    *uint8 `yaml:"spread"`
}

// Mesh is either the built-in box or a glTF/GLB file. Rotations are in
// degrees and applied X, then Y, then Z.
type Mesh struct {
	Source    string    `yaml:"source"`
	Size      float64   `yaml:"size"` // Box side
	Fit       bool      `yaml:"fit"`  // Recenter and scale to a 2 unit cube
	Translate Vec3      `yaml:"translate"`
	Rotate    Vec3      `yaml:"rotate"`
	Scale     float64   `yaml:"scale"`
	Hidden    bool      `yaml:"hidden"`
	Material  *Material `yaml:"material"` // Overrides materials from the file
}

// Material mirrors models.Material with hex colors and texture paths.
type Material struct {
	Color        string `yaml:"color"`
	Transparency uint8  `yaml:"transparency"`
	Reflectivity uint8  `yaml:"reflectivity"`
	Flat         bool   `yaml:"flat"`
	Wireframe    bool   `yaml:"wireframe"`
	Texture      string `yaml:"texture"`
	EnvMap       string `yaml:"env_map"`
}

// Load reads and parses the scene description at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a scene description. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Default returns the scene used when no description is given: a lit box.
func Default() *File {
	sheen, spread := uint8(180), uint8(40)
	f := &File{
		Ambient: "#202020",
		Lights: map[string]Light{
			"key": {Direction: Vec3{-0.4, -0.6, -1}, Sheen: &sheen, Spread: &spread},
		},
		Meshes: map[string]Mesh{
			"box": {
				Source:   SourceBox,
				Size:     1.5,
				Rotate:   Vec3{25, 35, 0},
				Material: &Material{Color: "#e07030", Reflectivity: 160},
			},
		},
	}
	f.applyDefaults()
	return f
}

func (f *File) applyDefaults() {
	if f.Width <= 0 {
		f.Width = DefaultWidth
	}
	if f.Height <= 0 {
		f.Height = DefaultHeight
	}
	if f.Camera.Position == nil {
		f.Camera.Position = &Vec3{0, 0, 5}
	}
	if f.Camera.FOV == 0 {
		f.Camera.FOV = DefaultFOV
	}
	for name, m := range f.Meshes {
		if m.Size == 0 {
			m.Size = 1
		}
		if m.Scale == 0 {
			m.Scale = 1
		}
		f.Meshes[name] = m
	}
}

func (f *File) validate() error {
	for _, name := range slices.Sorted(maps.Keys(f.Meshes)) {
		m := f.Meshes[name]
		switch {
		case m.Source == "":
			return fmt.Errorf("%w: mesh %q has no source", ErrInvalid, name)
		case m.Size < 0:
			return fmt.Errorf("%w: mesh %q has negative size", ErrInvalid, name)
		case m.Source != SourceBox && !isGLTF(m.Source):
			return fmt.Errorf("%w: mesh %q source %q is neither %q nor a .gltf/.glb file",
				ErrInvalid, name, m.Source, SourceBox)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(f.Lights)) {
		if f.Lights[name].Direction == (Vec3{}) {
			return fmt.Errorf("%w: light %q has no direction", ErrInvalid, name)
		}
	}
	return nil
}

func isGLTF(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return true
	}
	return false
}

// Assets lists the files the scene reads besides the description itself,
// resolved against baseDir.
func (f *File) Assets(baseDir string) []string {
	var out []string
	add := func(p string) {
		if p != "" {
			out = append(out, resolve(baseDir, p))
		}
	}
	add(f.BackgroundTexture)
	for _, name := range slices.Sorted(maps.Keys(f.Meshes)) {
		m := f.Meshes[name]
		if m.Source != SourceBox {
			add(m.Source)
		}
		if m.Material != nil {
			add(m.Material.Texture)
			add(m.Material.EnvMap)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func resolve(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
