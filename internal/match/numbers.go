package match

import (
	"strconv"
	"strings"
)

// Locale maps spelled-out cardinal numbers of one spoken language to their
// numeric value. Deployments targeting another language register their own
// table keyed by BCP 47 tag.
type Locale struct {
	Tag   string
	Words map[string]int
}

var englishUnits = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19,
}

var englishTens = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// EnglishLocale covers the cardinal numbers one through ninety-nine,
// including hyphenated compounds like "twenty-two".
func EnglishLocale() Locale {
	words := make(map[string]int, len(englishUnits)+len(englishTens)+len(englishTens)*9)
	for w, n := range englishUnits {
		words[w] = n
	}
	for w, n := range englishTens {
		words[w] = n
		for unit, u := range englishUnits {
			if u < 10 {
				words[w+"-"+unit] = n + u
			}
		}
	}
	// articles that imply a single item
	words["a"] = 1
	words["an"] = 1
	return Locale{Tag: "en", Words: words}
}

// ParseNumber interprets a single token as either a numeral or a spelled-out
// number word of the locale. Returns 0, false when the token is neither.
func (l Locale) ParseNumber(token string) (int, bool) {
	token = strings.ToLower(strings.Trim(token, ".,!?"))
	if token == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(token); err == nil {
		return n, true
	}
	if n, ok := l.Words[token]; ok {
		return n, true
	}
	return 0, false
}
