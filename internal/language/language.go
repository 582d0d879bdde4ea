package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Bibliographic ISO 639-2 codes that BCP 47 parsing does not accept.
var bibliographic = map[string]string{
	"chi": "zh",
	"dut": "nl",
	"fre": "fr",
	"ger": "de",
}

// Languages whose English names are accepted as input.
var named = []language.Tag{
	language.Arabic,
	language.Chinese,
	language.Danish,
	language.Dutch,
	language.English,
	language.Finnish,
	language.French,
	language.German,
	language.Hindi,
	language.Italian,
	language.Japanese,
	language.Korean,
	language.Norwegian,
	language.Polish,
	language.Portuguese,
	language.Russian,
	language.Spanish,
	language.Swedish,
	language.Ukrainian,
}

var byName map[string]string

func init() {
	names := display.English.Languages()
	byName = make(map[string]string, len(named))
	for _, tag := range named {
		base, _ := tag.Base()
		byName[strings.ToLower(names.Name(tag))] = base.String()
	}
}

// Normalize converts a language code, tag, or English name to ISO 639-1.
// Well-formed two-letter codes that x/text does not know pass through
// lowercased. Anything else returns "".
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if mapped, ok := bibliographic[code]; ok {
		return mapped
	}
	if mapped, ok := byName[code]; ok {
		return mapped
	}
	tag, err := language.Parse(code)
	if err == nil {
		base, confidence := tag.Base()
		if confidence != language.No && base.String() != "und" {
			return base.String()
		}
	}
	if len(code) == 2 && isLetters(code) {
		return code
	}
	return ""
}

// DisplayName returns the English name for a language code. Unknown input
// is returned uppercased, and empty input reads "Unknown".
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	normalized := Normalize(trimmed)
	if normalized == "" {
		return strings.ToUpper(trimmed)
	}
	tag, err := language.Parse(normalized)
	if err != nil {
		return strings.ToUpper(normalized)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(normalized)
	}
	return name
}

// Tag returns code as a subtitle track label. English names and
// three-letter codes with a two-letter equivalent map to that code; any
// other well-formed tag is returned trimmed with its primary subtag
// lowercased and the rest kept, so "pt-BR" and "iw" reach the provider
// unchanged. Malformed input returns "".
func Tag(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > maxTagLength || !isTagChars(code) {
		return ""
	}
	lower := strings.ToLower(code)
	if mapped, ok := byName[lower]; ok {
		return mapped
	}
	if !strings.Contains(code, "-") && len(code) == 3 {
		if mapped := Normalize(lower); len(mapped) == 2 {
			return mapped
		}
	}
	if i := strings.IndexByte(code, '-'); i > 0 {
		return lower[:i] + code[i:]
	}
	return lower
}

// Tags applies Tag to each entry and drops blanks and duplicates while
// keeping first-seen order. Duplicates compare case-insensitively.
func Tags(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		tag := Tag(code)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Same reports whether two tags name the same base language, so "pt-BR"
// matches a detected "pt" and "iw" matches "he".
func Same(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}

const maxTagLength = 35

// Letters, digits and hyphens, starting with a letter. Names such as
// "Russian" pass; spaces and path separators do not.
func isTagChars(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
