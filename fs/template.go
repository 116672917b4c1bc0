package fs

import (
	"bytes"
	"fmt"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/drawgen"
	"gopkg.in/yaml.v3"
)

// templatePattern matches template files anywhere under the directory.
const templatePattern = "**/*.md"

// frontMatter is the optional YAML header of a template file.
type frontMatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// TemplateStore discovers system-prompt templates in a directory. Each
// Markdown file is one template; its body is the system prompt. A leading
// YAML block delimited by "---" lines may set the name and description.
// Without one the name is the file path relative to the directory, minus
// the extension.
type TemplateStore struct {
	dir string
}

// NewTemplateStore creates a TemplateStore over dir.
func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{dir: dir}
}

// List returns every template sorted by name. A missing directory yields
// no templates.
func (s *TemplateStore) List() ([]drawgen.Template, error) {
	info, err := os.Stat(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fs: template dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fs: template dir %s is not a directory", s.dir)
	}

	fsys := os.DirFS(s.dir)
	var templates []drawgen.Template
	err = doublestar.GlobWalk(fsys, templatePattern, func(p string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		data, err := iofs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		tmpl, err := parseTemplate(p, data)
		if err != nil {
			return err
		}
		tmpl.Path = filepath.Join(s.dir, filepath.FromSlash(p))
		templates = append(templates, tmpl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fs: list templates: %w", err)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

// Get returns the template called name. Errors wrap drawgen.ErrNotFound when
// no template has that name.
func (s *TemplateStore) Get(name string) (drawgen.Template, error) {
	templates, err := s.List()
	if err != nil {
		return drawgen.Template{}, err
	}
	for _, t := range templates {
		if t.Name == name {
			return t, nil
		}
	}
	return drawgen.Template{}, fmt.Errorf("fs: template %q: %w", name, drawgen.ErrNotFound)
}

func parseTemplate(rel string, data []byte) (drawgen.Template, error) {
	tmpl := drawgen.Template{Name: strings.TrimSuffix(rel, path.Ext(rel))}
	body := data

	if rest, ok := bytes.CutPrefix(data, []byte("---\n")); ok {
		header, after, found := bytes.Cut(rest, []byte("\n---\n"))
		if !found {
			return drawgen.Template{}, fmt.Errorf("template %s: unterminated front matter", rel)
		}
		var fm frontMatter
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return drawgen.Template{}, fmt.Errorf("template %s: %w", rel, err)
		}
		if fm.Name != "" {
			tmpl.Name = fm.Name
		}
		tmpl.Description = fm.Description
		body = after
	}

	tmpl.SystemPrompt = strings.TrimSpace(string(body))
	return tmpl, nil
}
