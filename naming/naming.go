// Package naming is the single source of naming convention for generated
// symbols and output files. Plugins derive symbol names through it and
// record provenance for each generated name, which file assignment later
// uses to group derived artifacts under their base entity.
package naming

import (
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Provenance links a generated symbol name back to the entity it was
// derived from. Variant distinguishes derived artifacts of one entity,
// e.g. "insert" or "update" row shapes.
type Provenance struct {
	Entity  string
	Base    string
	Variant string
	Schema  string
}

// Service derives names and tracks provenance. It is not safe for
// concurrent use; pipeline execution is strictly sequential.
type Service struct {
	titler     cases.Caser
	provenance map[string]Provenance
}

// New returns a Service with an empty provenance registry.
func New() *Service {
	return &Service{
		titler:     cases.Title(language.English, cases.NoLower),
		provenance: make(map[string]Provenance),
	}
}

// EntityName derives the canonical entity name for a table: singularized
// and camelized, so "user_accounts" becomes "UserAccount".
func (s *Service) EntityName(table string) string {
	return inflect.Camelize(inflect.Singularize(table))
}

// FolderName derives the directory name for an entity's output files:
// dasherized lower case, so "UserAccount" becomes "user-account".
func (s *Service) FolderName(entity string) string {
	return inflect.Dasherize(inflect.Underscore(entity))
}

// Pascal converts a name to PascalCase.
func (s *Service) Pascal(name string) string {
	return inflect.Camelize(name)
}

// Camel converts a name to camelCase.
func (s *Service) Camel(name string) string {
	return inflect.CamelizeDownFirst(name)
}

// Snake converts a name to snake_case.
func (s *Service) Snake(name string) string {
	return inflect.Underscore(name)
}

// Kebab converts a name to kebab-case.
func (s *Service) Kebab(name string) string {
	return inflect.Dasherize(inflect.Underscore(name))
}

// Plural pluralizes the final word of a name.
func (s *Service) Plural(name string) string {
	return inflect.Pluralize(name)
}

// Singular singularizes the final word of a name.
func (s *Service) Singular(name string) string {
	return inflect.Singularize(name)
}

// Title upper-cases the first letter of each word without lowering the
// rest, preserving embedded initialisms.
func (s *Service) Title(name string) string {
	return s.titler.String(name)
}

// Record stores provenance for a generated name. A later Record for the
// same name wins; plugins that rename a symbol re-record it.
func (s *Service) Record(generated string, p Provenance) {
	s.provenance[generated] = p
}

// Lookup returns the provenance recorded for a generated name.
func (s *Service) Lookup(generated string) (Provenance, bool) {
	p, ok := s.provenance[generated]
	return p, ok
}

// SplitSchema splits a possibly schema-qualified entity token, so
// "public.User" yields ("public", "User") and "User" yields ("", "User").
func SplitSchema(token string) (schema, entity string) {
	if i := strings.IndexByte(token, '.'); i >= 0 {
		return token[:i], token[i+1:]
	}
	return "", token
}
