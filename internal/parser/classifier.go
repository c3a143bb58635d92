package parser

import (
	"regexp"
	"strconv"
)

var (
	// combinedPattern matches compact markers such as T3E07, t2-e5 or T1xE4.
	combinedPattern = regexp.MustCompile(`(?i)t(\d+)\D?e(\d+)`)

	seasonPattern  = regexp.MustCompile(`(?i)(?:temporada|season)\D?(\d+)`)
	episodePattern = regexp.MustCompile(`(?i)(?:episodio|ep)\D?(\d+)`)
)

// Classify infers season and episode numbers from a URL or link text.
//
// A combined T<n>E<n> marker wins outright. Otherwise "temporada"/"season" and
// "episodio"/"ep" tokens are searched independently. Anything not found, or not a
// positive number, defaults to 1.
func Classify(text string) (season, episode int) {
	if m := combinedPattern.FindStringSubmatch(text); m != nil {
		return parseNumber(m[1]), parseNumber(m[2])
	}

	season, episode = 1, 1
	if m := seasonPattern.FindStringSubmatch(text); m != nil {
		season = parseNumber(m[1])
	}
	if m := episodePattern.FindStringSubmatch(text); m != nil {
		episode = parseNumber(m[1])
	}
	return season, episode
}

func parseNumber(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
