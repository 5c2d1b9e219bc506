package tts

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFragmentLen is the longest text fragment sent to a provider in one
// message.
const MaxFragmentLen = 100

// SplitText breaks text into fragments of at most maxLen bytes, preferring
// sentence punctuation, then clause punctuation, then whitespace. Text that
// already fits is returned as is. Empty text yields no fragments.
func SplitText(text string, maxLen int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var out []string
	for len(text) > maxLen {
		cut := lastBreak(text[:maxLen+1], ".!?")
		if cut < 0 {
			cut = lastBreak(text[:maxLen+1], ",;:")
		}
		if cut < 0 {
			cut = strings.LastIndexFunc(text[:maxLen+1], unicode.IsSpace)
		}
		if cut <= 0 {
			cut = hardCut(text, maxLen)
		}
		if frag := strings.TrimSpace(text[:cut]); frag != "" {
			out = append(out, frag)
		}
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// lastBreak returns the index just past the last punctuation mark in s that
// is followed by whitespace, or -1.
func lastBreak(s, marks string) int {
	for i := len(s) - 1; i > 0; i-- {
		if strings.IndexByte(marks, s[i-1]) >= 0 && unicode.IsSpace(rune(s[i])) {
			return i
		}
	}
	return -1
}

// hardCut returns the largest rune boundary at or below maxLen, or the end of
// the first rune when none fits.
func hardCut(text string, maxLen int) int {
	for cut := maxLen; cut > 0; cut-- {
		if utf8.RuneStart(text[cut]) {
			return cut
		}
	}
	_, n := utf8.DecodeRuneInString(text)
	return n
}
