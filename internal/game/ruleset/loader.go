// Package ruleset loads the character-creation rules content: races, classes,
// backgrounds and enemy templates.
package ruleset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// validator is implemented by every content definition.
type validator interface {
	Validate() error
}

// loadDir reads all .yaml files in dir and parses each as a T, validating every entry.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed definitions (may be empty slice) or a non-nil error
// naming the offending file.
func loadDir[T any, PT interface {
	*T
	validator
}](dir, kind string) ([]*T, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		v := new(T)
		if err := yaml.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("parsing %s file %s: %w", kind, path, err)
		}
		if err := PT(v).Validate(); err != nil {
			return nil, fmt.Errorf("%s file %s: %w", kind, path, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}

// Dirs names the content directory for each rules kind. An empty entry is skipped.
type Dirs struct {
	Races       string
	Classes     string
	Backgrounds string
	Enemies     string
}

// Load reads every configured directory concurrently and returns a populated Registry.
//
// Postcondition: Returns the first loader error encountered, or a Registry containing
// every definition found.
func Load(ctx context.Context, dirs Dirs) (*Registry, error) {
	var (
		races       []*Race
		classes     []*Class
		backgrounds []*Background
		enemies     []*EnemyTemplate
	)
	g, _ := errgroup.WithContext(ctx)
	if dirs.Races != "" {
		g.Go(func() (err error) { races, err = LoadRaces(dirs.Races); return })
	}
	if dirs.Classes != "" {
		g.Go(func() (err error) { classes, err = LoadClasses(dirs.Classes); return })
	}
	if dirs.Backgrounds != "" {
		g.Go(func() (err error) { backgrounds, err = LoadBackgrounds(dirs.Backgrounds); return })
	}
	if dirs.Enemies != "" {
		g.Go(func() (err error) { enemies, err = LoadEnemies(dirs.Enemies); return })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg := NewRegistry()
	for _, r := range races {
		reg.RegisterRace(r)
	}
	for _, c := range classes {
		reg.RegisterClass(c)
	}
	for _, b := range backgrounds {
		reg.RegisterBackground(b)
	}
	for _, e := range enemies {
		reg.RegisterEnemy(e)
	}
	return reg, nil
}
