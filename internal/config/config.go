package config

import (
	"gopkg.in/yaml.v3"

	"loom/internal/errs"
	"loom/internal/value"
)

// Builder accumulates providers in override order.
type Builder struct {
	providers []Provider
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// WithFile adds a required file provider.
func (b *Builder) WithFile(path string) *Builder {
	b.providers = append(b.providers, FileProvider{Path: path})
	return b
}

// WithOptionalFile adds a file provider that tolerates a missing file.
func (b *Builder) WithOptionalFile(path string) *Builder {
	b.providers = append(b.providers, FileProvider{Path: path, Optional: true})
	return b
}

// WithEnv adds an environment overlay with the given prefix.
func (b *Builder) WithEnv(prefix string) *Builder {
	b.providers = append(b.providers, EnvProvider{Prefix: prefix})
	return b
}

// WithProvider adds an arbitrary provider.
func (b *Builder) WithProvider(p Provider) *Builder {
	b.providers = append(b.providers, p)
	return b
}

// Build loads every provider and merges the trees, later providers winning.
func (b *Builder) Build() (*Root, error) {
	tree := value.Null()
	for _, p := range b.providers {
		layer, err := p.Load()
		if err != nil {
			return nil, err
		}
		tree = tree.Merge(layer)
	}
	return &Root{tree: tree}, nil
}

// Root is the merged configuration tree.
type Root struct {
	tree value.Value
}

// Value exposes the underlying tree.
func (r *Root) Value() value.Value { return r.tree }

// Section addresses a subtree by dotted path; the empty path is the root.
func (r *Root) Section(path string) *Section {
	return &Section{root: r, path: path}
}

// Section is a view of a subtree that can be bound to a struct.
type Section struct {
	root *Root
	path string
}

// Bind decodes the section into target. Binding goes through a YAML round
// trip so that custom UnmarshalYAML defaulting applies regardless of the
// original file format. A missing section is a NotFound error.
func (s *Section) Bind(target any) error {
	path, err := value.ParsePath(s.path)
	if err != nil {
		return errs.Wrap(errs.Internal, err, "section path %q", s.path)
	}
	sub, ok := s.root.tree.GetPath(path)
	if !ok {
		return errs.New(errs.NotFound, "config section %q", s.path)
	}
	raw, err := yaml.Marshal(sub.Interface())
	if err != nil {
		return errs.Wrap(errs.Internal, err, "encode section %q", s.path)
	}
	if err := yaml.Unmarshal(raw, target); err != nil {
		return errs.Wrap(errs.Parse, err, "bind section %q", s.path)
	}
	return nil
}

// Exists reports whether the section is present in the merged tree.
func (s *Section) Exists() bool {
	path, err := value.ParsePath(s.path)
	if err != nil {
		return false
	}
	_, ok := s.root.tree.GetPath(path)
	return ok
}
