package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoNumber = errors.New("no number in text")

	numberPattern     = regexp.MustCompile(`\d(?:[\d,.]*\d)?`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// FindNumber returns the first number in text. Commas are treated as
// thousands separators.
func FindNumber(text string) (float64, error) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("%w: %q", ErrNoNumber, text)
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrNoNumber, text, err)
	}
	return value, nil
}

// RemoveWhitespace drops every whitespace character.
func RemoveWhitespace(text string) string {
	return whitespacePattern.ReplaceAllString(text, "")
}

// cleanText collapses runs of whitespace into single spaces.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
