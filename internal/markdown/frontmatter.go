package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// Document pairs parsed frontmatter with the Markdown body it annotated.
type Document struct {
	Meta FrontMatter
	Body []byte
}

// FrontMatter carries the page attributes a Markdown source declares. Keys
// that do not map to a known attribute land in Fields and are written to the
// page's template fields by code name.
type FrontMatter struct {
	Template    string
	Name        string
	Title       string
	Slug        string
	Parent      string
	Keywords    string
	Description string
	BodyField   string
	Active      bool
	Fields      map[string]any
}

type frontMatterEnvelope struct {
	Template    string         `yaml:"template"`
	Name        string         `yaml:"name"`
	Title       string         `yaml:"title"`
	Slug        string         `yaml:"slug"`
	Parent      string         `yaml:"parent"`
	Keywords    string         `yaml:"keywords"`
	Description string         `yaml:"description"`
	BodyField   string         `yaml:"body_field"`
	Active      *bool          `yaml:"active"`
	Fields      map[string]any `yaml:",inline"`
}

// ParseDocument extracts frontmatter and the Markdown body from source bytes.
func ParseDocument(source []byte) (*Document, error) {
	var envelope frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &envelope)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	active := true
	if envelope.Active != nil {
		active = *envelope.Active
	}
	fields := envelope.Fields
	if fields == nil {
		fields = map[string]any{}
	}

	return &Document{
		Meta: FrontMatter{
			Template:    envelope.Template,
			Name:        envelope.Name,
			Title:       envelope.Title,
			Slug:        envelope.Slug,
			Parent:      envelope.Parent,
			Keywords:    envelope.Keywords,
			Description: envelope.Description,
			BodyField:   envelope.BodyField,
			Active:      active,
			Fields:      fields,
		},
		Body: body,
	}, nil
}
