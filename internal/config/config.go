package config

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"rrs-edge/internal/rewrite"
	"rrs-edge/internal/variant"
)

// Profile is one deployment of the rewriter. The allow-list and the
// override extension are the only things that differ between deployments.
type Profile struct {
	Sizes     []int  `yaml:"sizes"`
	Extension string `yaml:"extension"`
}

type File struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

var Presets = map[string]Profile{
	"responsive": {
		Sizes:     []int{128, 256, 384, 640, 750, 828, 1080, 1200, 1440, 1920},
		Extension: "webp",
	},
	"single": {
		Sizes: []int{500},
	},
}

// Load reads a profile file. An empty path yields a File holding only the
// presets.
func Load(path string) (f File, err error) {
	if path == "" {
		return
	}
	b, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrap(err, "read config")
		return
	}
	err = yaml.Unmarshal(b, &f)
	if err != nil {
		err = errors.Wrapf(err, "parse config %s", path)
		return
	}
	for name, p := range f.Profiles {
		err = p.Validate()
		if err != nil {
			err = errors.Wrapf(err, "profile %q", name)
			return
		}
	}
	return
}

// Profile resolves name against the file first and the presets second.
func (f File) Profile(name string) (rewrite.Config, error) {
	p, ok := f.Profiles[name]
	if !ok {
		p, ok = Presets[name]
	}
	if !ok {
		return rewrite.Config{}, errors.Errorf("unknown profile %q", name)
	}
	return p.Config(), nil
}

// Names lists every resolvable profile name in order.
func (f File) Names() []string {
	seen := map[string]struct{}{}
	for name := range Presets {
		seen[name] = struct{}{}
	}
	for name := range f.Profiles {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p Profile) Validate() error {
	if len(p.Sizes) == 0 {
		return errors.New("no sizes configured")
	}
	seen := make(map[int]struct{}, len(p.Sizes))
	for _, s := range p.Sizes {
		if s <= 0 {
			return errors.Errorf("size %d is not positive", s)
		}
		if _, dup := seen[s]; dup {
			return errors.Errorf("size %d listed twice", s)
		}
		seen[s] = struct{}{}
	}
	if p.Extension != "" {
		if _, ok := variant.ContentTypeFor(p.Extension); !ok {
			return errors.Errorf("extension %q is not a format the resize pipeline writes", p.Extension)
		}
	}
	return nil
}

func (p Profile) Config() rewrite.Config {
	return rewrite.Config{
		Sizes:     append([]int(nil), p.Sizes...),
		Extension: p.Extension,
	}
}
