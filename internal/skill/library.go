package skill

import (
	"fmt"
	"sort"
)

// Library holds skills discovered across the configured search paths.
// Later paths win on name collision.
type Library struct {
	skills map[string]*Skill
}

// LoadLibrary loads every valid skill found under the given directories.
func LoadLibrary(paths []string) (*Library, error) {
	lib := &Library{skills: make(map[string]*Skill)}
	for _, dir := range paths {
		refs, err := Discover(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill directory %s: %w", dir, err)
		}
		for _, ref := range refs {
			s, err := Load(ref.Path)
			if err != nil {
				continue // Discover already filtered, but frontmatter may still be incomplete
			}
			lib.skills[s.Name] = s
		}
	}
	return lib, nil
}

// Get returns the named skill.
func (l *Library) Get(name string) (*Skill, error) {
	s, ok := l.skills[name]
	if !ok {
		return nil, fmt.Errorf("unknown skill %q", name)
	}
	return s, nil
}

// Names returns the loaded skill names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.skills))
	for name := range l.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InstructionBlocks resolves skill names to rendered prompt blocks.
func (l *Library) InstructionBlocks(names []string) ([]string, error) {
	blocks := make([]string, 0, len(names))
	for _, name := range names {
		s, err := l.Get(name)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, s.InstructionBlock())
	}
	return blocks, nil
}
