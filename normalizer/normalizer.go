package normalizer

import (
	"regexp"
	"strings"
)

// Substitution is a literal from→to replacement applied in table order.
type Substitution struct {
	From string
	To   string
}

// Normalizer canonicalizes free-text track fields (titles, artists,
// albums) into a comparable form. All rule tables are fixed at
// construction; Normalize is pure, deterministic and idempotent.
type Normalizer struct {
	substitutions  []Substitution
	noiseRules     []*regexp.Regexp
	albumOverrides []Substitution
}

// defaultSubstitutions maps typographic variants and known garbled
// sequences to their canonical form. Applied before case folding, so
// case-sensitive entries only ever fire on raw input.
var defaultSubstitutions = []Substitution{
	{"’", "'"},
	{"‘", "'"},
	{"“", "\""},
	{"”", "\""},
	{"×", "x"},
	{"·", ""},
	{"‐", "-"},
	{"–", "-"},
	{"…", "..."},
	{"E'", "è"},
	{"Sansiro", "San siro"},
	{"I RIO", "Rio"},
	{" / ", "/"},
	{" - ", "-"},
}

// defaultNoiseRules strip edition, remaster and live annotations.
// Applied in order to the lowercased text; later rules see the result
// of earlier ones, so specific patterns come before generic ones.
var defaultNoiseRules = []string{
	`\[remastered version\]`,
	`\[remastered\]`,
	`\[2011 - remaster\]`,
	`\(2009 remaster\)`,
	`\(remaster 2019\)`,
	`\(bonus version\)`,
	`\(full moon edition\)`,
	`\(deluxe edition remastered\)`,
	`\(deluxe remastered edition\)`,
	`\(special super deluxe box\)`,
	`\(2011 remastered version\)`,
	`\(deluxe edition\)`,
	`\(2015 stereo mix\)`,
	`\(deluxe version\)`,
	`\(deluxe album\)`,
	`\(super deluxe edition\)`,
	`\(deluxe\)`,
	`\(20th anniversary remaster\)`,
	`\(30th anniversary\s?/\s?deluxe edition\)`,
	`\(40th anniversary deluxe edition\)`,
	`\(remastered \d{4}\)`,
	`\(prospekt's march edition\)`,
	`\(expanded edition\)`,
	`\(remastered\)`,
	`\(live\)`,
	`-\s?remastered 2020 in 192 khz`,
	`-\s?2011 remastered version`,
	`-\s?20th anniversary remaster`,
	`-\s?mono\s?/\s?remastered`,
	`-\s?remastered \d{4}`,
	`-\s?remastered`,
	`-\s?live @ san siro 2015`,
	`-\s?live\b`,
	`-\s?edit vrs`,
	`-\s?ep\b`,
	`\be\.p\.`,
	`\bep\b`,
	`: deluxe edition`,
	`or death and all his friends`,
	`\s(?:feat\.?|ft\.?|featuring)\s.*$`,
}

// defaultAlbumOverrides fix album titles whose canonical form is too
// irregular for the pattern rules. Exact string replacements, applied
// before the general pipeline.
var defaultAlbumOverrides = []Substitution{
	{"Greatest Hits Volume One - The Singles", "Greatest Hits, Volume One: The Singles"},
}

// New builds a Normalizer from explicit rule tables. Noise patterns are
// compiled case-insensitively; a bad pattern returns an error.
func New(substitutions []Substitution, noisePatterns []string, albumOverrides []Substitution) (*Normalizer, error) {
	rules := make([]*regexp.Regexp, 0, len(noisePatterns))
	for _, pattern := range noisePatterns {
		rule, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return &Normalizer{
		substitutions:  substitutions,
		noiseRules:     rules,
		albumOverrides: albumOverrides,
	}, nil
}

// Default returns a Normalizer with the production rule tables.
func Default() *Normalizer {
	n, err := New(defaultSubstitutions, defaultNoiseRules, defaultAlbumOverrides)
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize canonicalizes a free-text field: typographic substitution,
// case folding, noise-phrase stripping, whitespace trimming.
func (n *Normalizer) Normalize(text string) string {
	for _, sub := range n.substitutions {
		text = strings.ReplaceAll(text, sub.From, sub.To)
	}

	text = strings.ToLower(strings.TrimSpace(text))

	for _, rule := range n.noiseRules {
		text = rule.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(text)
}

// CanonicalAlbum applies the manual override table for irregular album
// titles. It does not normalize; callers pass the result to Normalize.
func (n *Normalizer) CanonicalAlbum(album string) string {
	for _, sub := range n.albumOverrides {
		album = strings.ReplaceAll(album, sub.From, sub.To)
	}
	return album
}
