// Package platform supplies the hardware description the planner needs:
// how many parallel units are available and how large each unit's staging
// buffer is.
package platform

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Query is the platform collaborator consumed by the planner.
type Query interface {
	AvailableUnits() int
	BufferCapacityBytes() int64
}

// Info is a static platform description.
type Info struct {
	Name        string `yaml:"name" json:"name"`
	Units       int    `yaml:"units" json:"units"`
	BufferBytes int64  `yaml:"buffer_bytes" json:"buffer_bytes"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

func (i Info) AvailableUnits() int        { return i.Units }
func (i Info) BufferCapacityBytes() int64 { return i.BufferBytes }

func (i Info) String() string {
	return fmt.Sprintf("%s (units=%d buffer=%dB)", i.Name, i.Units, i.BufferBytes)
}

// Override returns a copy of i with non-zero fields replaced.
func (i Info) Override(units int, bufferBytes int64) Info {
	if units > 0 {
		i.Units = units
	}
	if bufferBytes > 0 {
		i.BufferBytes = bufferBytes
	}
	return i
}

// UBSize is the vector-core unified buffer size of the reference NPU parts.
const UBSize = 196608

var ErrUnknownProfile = errors.New("unknown platform profile")

var builtin = []Info{
	{Name: "ascend910b", Units: 48, BufferBytes: UBSize, Description: "training part, 48 vector cores"},
	{Name: "ascend310b", Units: 8, BufferBytes: UBSize, Description: "edge inference part"},
	{Name: "sim8", Units: 8, BufferBytes: UBSize, Description: "eight-unit simulator"},
}

// Registry is a named set of platform profiles.
type Registry struct {
	profiles map[string]Info
}

// NewRegistry returns a registry holding the built-in profiles plus the
// current host.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Info)}
	for _, p := range builtin {
		r.profiles[p.Name] = p
	}
	r.profiles["host"] = Host()
	return r
}

// Add registers or replaces a profile.
func (r *Registry) Add(p Info) error {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		return errors.New("platform profile has no name")
	}
	if p.Units <= 0 || p.BufferBytes <= 0 {
		return fmt.Errorf("platform %q: units and buffer_bytes must be positive", name)
	}
	p.Name = name
	r.profiles[name] = p
	return nil
}

// Lookup returns the named profile.
func (r *Registry) Lookup(name string) (Info, error) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Info{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownProfile, name, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// Names returns profile names sorted alphabetically.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// List returns every profile sorted by name.
func (r *Registry) List() []Info {
	names := r.Names()
	out := make([]Info, len(names))
	for i, n := range names {
		out[i] = r.profiles[n]
	}
	return out
}

type profileFile struct {
	Platforms []Info `yaml:"platforms"`
}

// LoadFile merges profiles from a YAML file of the form:
//
//	platforms:
//	  - name: lab
//	    units: 16
//	    buffer_bytes: 131072
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.Load(data)
}

// Load merges profiles from YAML bytes.
func (r *Registry) Load(data []byte) error {
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse platform profiles: %w", err)
	}
	for _, p := range pf.Platforms {
		if err := r.Add(p); err != nil {
			return err
		}
	}
	return nil
}
