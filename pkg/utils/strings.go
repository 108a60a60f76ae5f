package utils

import (
	"fmt"
	"go/token"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"github.com/go-openapi/swag"
	"github.com/huandu/xstrings"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum   = regexp.MustCompile(`[^A-Za-z0-9]+`)
	camelSplit = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// RemoveAccents removes accents from a string, converting accented characters to their base forms
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SplitWords splits a string into words, handling camelCase, PascalCase, snake_case, dotted paths and kebab-case
func SplitWords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = RemoveAccents(s)
	s = camelSplit.ReplaceAllString(s, "$1 $2")

	parts := nonAlnum.Split(s, -1)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// ToSnakeCase converts a string to snake_case
func ToSnakeCase(s string) string {
	parts := SplitWords(s)
	if len(parts) == 0 {
		return ""
	}
	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}
	return strings.Join(parts, "_")
}

// GoName converts a wire name or component path into an exported Go
// identifier, honouring common initialisms ("id" -> "ID", "url" -> "URL").
func GoName(s string) string {
	words := SplitWords(s)
	if len(words) == 0 {
		return ""
	}
	return swag.ToGoName(strings.Join(words, "_"))
}

// PascalPath joins an owner and the JSON path segments below it into a
// single type name. Array markers contribute nothing.
//
//	PascalPath("createSubscriptionSchedule", "phases", "[*]", "items", "[*]", "price_data", "recurring")
//	  == "CreateSubscriptionSchedulePhasesItemsPriceDataRecurring"
func PascalPath(owner string, segments ...string) string {
	var b strings.Builder
	b.WriteString(GoName(owner))
	for _, seg := range segments {
		if seg == "[*]" || seg == "" {
			continue
		}
		b.WriteString(GoName(seg))
	}
	return b.String()
}

// Singular returns the singular form of an English noun. Words that already
// look singular ("status", "address", "analysis") are returned unchanged.
func Singular(word string) string {
	for _, suffix := range []string{"ss", "us", "is"} {
		if strings.HasSuffix(word, suffix) {
			return word
		}
	}
	return inflect.Singularize(word)
}

var symbolNames = map[rune]string{
	'-': "Minus",
	'.': "Dot",
	'+': "Plus",
	'/': "Slash",
	'*': "Star",
	'&': "And",
	'@': "At",
	':': "Colon",
	'%': "Percent",
	'#': "Hash",
	'=': "Eq",
	',': "Comma",
	'(': "LParen",
	')': "RParen",
}

// EnumVariantName maps an enum wire string onto a PascalCase variant name.
// ASCII letters and digits pass through; '_' and ' ' are word boundaries;
// other symbols are spelled out as their own word, so "en-GB" becomes
// "EnMinusGb". A leading digit is prefixed with "V" and the empty string maps
// to "Empty".
func EnumVariantName(wire string) string {
	if wire == "" {
		return "Empty"
	}
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range RemoveAccents(wire) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			cur.WriteRune(r)
		case r == '_' || r == ' ':
			flush()
		default:
			flush()
			if name, ok := symbolNames[r]; ok {
				words = append(words, name)
			} else {
				words = append(words, fmt.Sprintf("U%04X", r))
			}
		}
	}
	flush()

	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	name := b.String()
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "V" + name
	}
	return name
}

// UniqueNames disambiguates colliding names by appending 2, 3, ... in input order.
func UniqueNames(names []string) []string {
	seen := make(map[string]int, len(names))
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}
	out := make([]string, len(names))
	for i, n := range names {
		seen[n]++
		if seen[n] == 1 {
			out[i] = n
			continue
		}
		for k := seen[n]; ; k++ {
			candidate := fmt.Sprintf("%s%d", n, k)
			if !taken[candidate] {
				taken[candidate] = true
				out[i] = candidate
				seen[n] = k
				break
			}
		}
	}
	return out
}

// PackageName turns a family name into a Go package name: lower case
// letters and digits only, never a keyword.
func PackageName(family string) string {
	snake := xstrings.ToSnakeCase(RemoveAccents(family))
	var b strings.Builder
	for _, r := range snake {
		if r < unicode.MaxASCII && (unicode.IsLower(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	switch {
	case name == "":
		return "misc"
	case name[0] >= '0' && name[0] <= '9':
		name = "x" + name
	}
	if token.IsKeyword(name) {
		name += "pkg"
	}
	return name
}
