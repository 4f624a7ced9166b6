package review

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Field is a canonical comment field fed by one source CSV column.
type Field string

const (
	FieldSheet     Field = "sheet"
	FieldAuthor    Field = "author"
	FieldCreatedAt Field = "created_at"
	FieldSubject   Field = "subject"
	FieldComment   Field = "comment"
	FieldMarkupID  Field = "markup_id"
)

// Fields returns the canonical fields in inference priority order.
func Fields() []Field {
	return []Field{FieldSheet, FieldAuthor, FieldCreatedAt, FieldSubject, FieldComment, FieldMarkupID}
}

// AliasTable maps each canonical field to an ordered list of header aliases.
// Earlier aliases win.
type AliasTable map[Field][]string

// DefaultAliases covers the header variants seen across Bluebeam markup
// summary exports.
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldSheet:     {"page label", "pagelabel", "sheet", "sheet number", "page"},
		FieldAuthor:    {"author", "created by", "creator", "user"},
		FieldCreatedAt: {"date", "creation date", "created", "created at", "timestamp"},
		FieldSubject:   {"subject", "type", "markup type", "markup", "tool"},
		FieldComment:   {"comment", "contents", "text", "note", "comment text", "comments"},
		FieldMarkupID:  {"markup id", "annotation id", "id"},
	}
}

type aliasProfile struct {
	Aliases map[string][]string `toml:"aliases"`
}

// LoadAliasProfile reads a TOML file of per-field alias overrides and merges
// it over the defaults. Fields absent from the file keep their default
// aliases; unknown field names are an error.
func LoadAliasProfile(path string) (AliasTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias profile: %w", err)
	}

	var profile aliasProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("parse alias profile: %w", err)
	}

	table := DefaultAliases()
	known := make(map[Field]struct{}, len(table))
	for _, f := range Fields() {
		known[f] = struct{}{}
	}

	for name, aliases := range profile.Aliases {
		field := Field(strings.TrimSpace(strings.ToLower(name)))
		if _, ok := known[field]; !ok {
			return nil, fmt.Errorf("unknown field %q in alias profile", name)
		}
		if len(aliases) == 0 {
			continue
		}
		table[field] = aliases
	}

	return table, nil
}

// Mapping assigns a source column name to each canonical field. An empty
// source means the field is unmapped and yields empty values for every row.
type Mapping struct {
	Sheet     string `json:"sheet" yaml:"sheet"`
	Author    string `json:"author" yaml:"author"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	Subject   string `json:"subject" yaml:"subject"`
	Comment   string `json:"comment" yaml:"comment"`
	MarkupID  string `json:"markup_id" yaml:"markup_id"`
}

// Source returns the source column mapped to f, or "".
func (m Mapping) Source(f Field) string {
	switch f {
	case FieldSheet:
		return m.Sheet
	case FieldAuthor:
		return m.Author
	case FieldCreatedAt:
		return m.CreatedAt
	case FieldSubject:
		return m.Subject
	case FieldComment:
		return m.Comment
	case FieldMarkupID:
		return m.MarkupID
	default:
		return ""
	}
}

func (m *Mapping) setSource(f Field, col string) {
	switch f {
	case FieldSheet:
		m.Sheet = col
	case FieldAuthor:
		m.Author = col
	case FieldCreatedAt:
		m.CreatedAt = col
	case FieldSubject:
		m.Subject = col
	case FieldComment:
		m.Comment = col
	case FieldMarkupID:
		m.MarkupID = col
	}
}

// Merge overlays non-empty sources from other onto m and returns the result.
// Used to apply user overrides on top of an inferred mapping.
func (m Mapping) Merge(other Mapping) Mapping {
	out := m
	for _, f := range Fields() {
		if src := strings.TrimSpace(other.Source(f)); src != "" {
			out.setSource(f, src)
		}
	}
	return out
}

// Unmapped lists canonical fields with no source column.
func (m Mapping) Unmapped() []Field {
	var out []Field
	for _, f := range Fields() {
		if strings.TrimSpace(m.Source(f)) == "" {
			out = append(out, f)
		}
	}
	return out
}
