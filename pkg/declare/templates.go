// Package declare provides the Declare constraint template catalog, the
// model-line parser, and identifier reconciliation between the id forms
// used by model files, statistics CSVs, and dashboard display.
package declare

import (
	"sort"
	"strings"
)

// Template is one catalog entry of the Declare constraint language.
// Templates are registered once at process start and never mutated.
type Template struct {
	// Name is the normalized registry key, e.g. "AlternateSuccession".
	Name string

	// Display is the human-readable template name, e.g. "Alternate Succession".
	Display string

	// Arity is the number of activities the template binds (1 or 2).
	Arity int

	// Formula is the LTL-style formula over placeholder activities A, B.
	Formula string

	// Description explains the template with {A}/{B} placeholders.
	Description string
}

// HelpText substitutes the given activities into the template's
// description, producing the activity-specific explanation.
func (t Template) HelpText(activities []string) string {
	text := t.Description
	if len(activities) > 0 {
		text = strings.ReplaceAll(text, "{A}", activities[0])
	}
	if len(activities) > 1 {
		text = strings.ReplaceAll(text, "{B}", activities[1])
	}
	return text
}

// Describe resolves the description for display, keeping the placeholder
// letters when no activities are supplied.
func (t Template) Describe(activities []string) string {
	if len(activities) == 0 {
		return strings.ReplaceAll(strings.ReplaceAll(t.Description, "{A}", "A"), "{B}", "B")
	}
	return t.HelpText(activities)
}

var (
	registry     = make(map[string]Template)
	registryFold = make(map[string]string) // lowercase name -> registry key
)

// register adds a template to the catalog. Called from init only.
func register(t Template) {
	registry[t.Name] = t
	registryFold[strings.ToLower(t.Name)] = t.Name
}

// NormalizeName turns a raw template name into its registry key:
// spaces and hyphens removed, e.g. "Alternate Succession" ->
// "AlternateSuccession".
func NormalizeName(name string) string {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.TrimSpace(name))
	if _, ok := registry[key]; ok {
		return key
	}
	if canonical, ok := registryFold[strings.ToLower(key)]; ok {
		return canonical
	}
	return key
}

// Lookup returns the template for a raw or normalized name.
func Lookup(name string) (Template, bool) {
	t, ok := registry[NormalizeName(name)]
	return t, ok
}

// Templates returns the full catalog sorted by name, for listings.
func Templates() []Template {
	out := make([]Template, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func init() {
	// Unary templates
	register(Template{
		Name: "Existence", Display: "Existence", Arity: 1,
		Formula:     "F(A)",
		Description: "{A} must occur at least once in every case.",
	})
	register(Template{
		Name: "Existence2", Display: "Existence 2", Arity: 1,
		Formula:     "F(A & X(F(A)))",
		Description: "{A} must occur at least twice in every case.",
	})
	register(Template{
		Name: "Absence", Display: "Absence", Arity: 1,
		Formula:     "!F(A)",
		Description: "{A} must never occur in a case.",
	})
	register(Template{
		Name: "Absence2", Display: "Absence 2", Arity: 1,
		Formula:     "!F(A & X(F(A)))",
		Description: "{A} may occur at most once in a case.",
	})
	register(Template{
		Name: "Absence3", Display: "Absence 3", Arity: 1,
		Formula:     "!F(A & X(F(A & X(F(A)))))",
		Description: "{A} may occur at most twice in a case.",
	})
	register(Template{
		Name: "Exactly1", Display: "Exactly 1", Arity: 1,
		Formula:     "F(A) & !F(A & X(F(A)))",
		Description: "{A} must occur exactly once in every case.",
	})
	register(Template{
		Name: "Exactly2", Display: "Exactly 2", Arity: 1,
		Formula:     "F(A & X(F(A))) & !F(A & X(F(A & X(F(A)))))",
		Description: "{A} must occur exactly twice in every case.",
	})
	register(Template{
		Name: "Init", Display: "Init", Arity: 1,
		Formula:     "A",
		Description: "Every case must start with {A}.",
	})
	register(Template{
		Name: "End", Display: "End", Arity: 1,
		Formula:     "G(!A -> F(A))",
		Description: "Every case must end with {A}.",
	})

	// Binary relation templates
	register(Template{
		Name: "RespondedExistence", Display: "Responded Existence", Arity: 2,
		Formula:     "F(A) -> F(B)",
		Description: "If {A} occurs in a case, {B} must occur in the same case as well.",
	})
	register(Template{
		Name: "CoExistence", Display: "Co-Existence", Arity: 2,
		Formula:     "F(A) <-> F(B)",
		Description: "{A} and {B} must always occur together in a case, or not at all.",
	})
	register(Template{
		Name: "Response", Display: "Response", Arity: 2,
		Formula:     "G(A -> F(B))",
		Description: "After {A} occurs, {B} must eventually occur in the same case.",
	})
	register(Template{
		Name: "Precedence", Display: "Precedence", Arity: 2,
		Formula:     "!B W A",
		Description: "{B} may occur only if {A} has occurred before it.",
	})
	register(Template{
		Name: "Succession", Display: "Succession", Arity: 2,
		Formula:     "G(A -> F(B)) & (!B W A)",
		Description: "Every {A} must eventually be followed by {B}, and {B} may occur only after {A}.",
	})
	register(Template{
		Name: "AlternateResponse", Display: "Alternate Response", Arity: 2,
		Formula:     "G(A -> X(!A U B))",
		Description: "After {A} occurs, {B} must occur before {A} may occur again.",
	})
	register(Template{
		Name: "AlternatePrecedence", Display: "Alternate Precedence", Arity: 2,
		Formula:     "(!B W A) & G(B -> X(!B W A))",
		Description: "Each {B} must be preceded by {A}, with no other {B} in between.",
	})
	register(Template{
		Name: "AlternateSuccession", Display: "Alternate Succession", Arity: 2,
		Formula:     "G(A -> X(!A U B)) & (!B W A) & G(B -> X(!B W A))",
		Description: "{A} and {B} must alternate: after {A} the next occurrence of either is {B}, and vice versa.",
	})
	register(Template{
		Name: "ChainResponse", Display: "Chain Response", Arity: 2,
		Formula:     "G(A -> X(B))",
		Description: "{B} must occur immediately after every {A}.",
	})
	register(Template{
		Name: "ChainPrecedence", Display: "Chain Precedence", Arity: 2,
		Formula:     "G(X(B) -> A)",
		Description: "{B} may occur only immediately after {A}.",
	})
	register(Template{
		Name: "ChainSuccession", Display: "Chain Succession", Arity: 2,
		Formula:     "G(A <-> X(B))",
		Description: "{A} and {B} must occur immediately next to each other, {A} first.",
	})

	// Negative relation templates
	register(Template{
		Name: "NotCoExistence", Display: "Not Co-Existence", Arity: 2,
		Formula:     "!(F(A) & F(B))",
		Description: "{A} and {B} must never occur in the same case.",
	})
	register(Template{
		Name: "NotSuccession", Display: "Not Succession", Arity: 2,
		Formula:     "G(A -> !F(B))",
		Description: "{B} must never occur after {A} in a case.",
	})
	register(Template{
		Name: "NotChainSuccession", Display: "Not Chain Succession", Arity: 2,
		Formula:     "G(A -> !X(B))",
		Description: "{B} must never occur immediately after {A}.",
	})

	// Choice templates
	register(Template{
		Name: "Choice", Display: "Choice", Arity: 2,
		Formula:     "F(A) | F(B)",
		Description: "At least one of {A} or {B} must occur in every case.",
	})
	register(Template{
		Name: "ExclusiveChoice", Display: "Exclusive Choice", Arity: 2,
		Formula:     "(F(A) | F(B)) & !(F(A) & F(B))",
		Description: "Exactly one of {A} or {B} must occur in a case, never both.",
	})
}
