package slugs

import (
	"strings"
	"unicode"
)

// cyrillicToLatin maps lowercase Cyrillic runes to their Latin spelling.
// Letters with no phonetic counterpart (hard and soft signs) are dropped.
var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "e", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
	// Ukrainian and Belarusian additions seen in legacy content.
	'і': "i", 'ї': "yi", 'є': "ye", 'ґ': "g", 'ў': "u",
}

// Transliterate rewrites Cyrillic characters as Latin ones, preserving
// everything else. Runes from other non-ASCII scripts pass through untouched
// and are left for the normalizer to strip.
func Transliterate(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		lower := unicode.ToLower(r)
		mapped, ok := cyrillicToLatin[lower]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if mapped == "" {
			continue
		}
		if lower != r && mapped != "" {
			// Preserve case on the leading letter so "Москва" becomes "Moskva".
			b.WriteString(strings.ToUpper(mapped[:1]) + mapped[1:])
			continue
		}
		b.WriteString(mapped)
	}
	return b.String()
}
