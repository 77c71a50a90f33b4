package question

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed banks/*.yaml
var embeddedBanks embed.FS

// ErrUnknownBank is returned when a bank name is not in the catalog.
var ErrUnknownBank = errors.New("unknown question bank")

// Catalog holds every loaded bank, keyed by name.
type Catalog struct {
	banks map[string]*Bank
	order []string
}

// Default loads the banks compiled into the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embeddedBanks, "banks")
	if err != nil {
		return nil, fmt.Errorf("open embedded banks: %w", err)
	}
	return LoadCatalog(sub)
}

// LoadCatalog parses every *.yaml file at the root of fsys as a bank.
// Malformed banks are authoring errors and fail the whole load.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	sort.Strings(files)

	c := &Catalog{banks: make(map[string]*Bank, len(files))}
	for _, name := range files {
		bank, err := readBank(fsys, name)
		if err != nil {
			return nil, err
		}
		if _, dup := c.banks[bank.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate bank name %q", name, bank.Name)
		}
		c.banks[bank.Name] = bank
		c.order = append(c.order, bank.Name)
	}
	if len(c.order) == 0 {
		return nil, fmt.Errorf("no question banks found")
	}
	return c, nil
}

func readBank(fsys fs.FS, name string) (*Bank, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var bank Bank
	if err := dec.Decode(&bank); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if bank.Name == "" {
		bank.Name = trimExt(name)
	}
	bank.normalize()
	if err := bank.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &bank, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(path.Ext(name))]
}

// Bank returns the named bank.
func (c *Catalog) Bank(name string) (*Bank, error) {
	bank, ok := c.banks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBank, name)
	}
	return bank, nil
}

// Banks returns all banks sorted by file name.
func (c *Catalog) Banks() []*Bank {
	out := make([]*Bank, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.banks[name])
	}
	return out
}
