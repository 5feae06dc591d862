package usecase

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Arabic code points used during normalization.
const (
	alef           = '\u0627' // ا
	alefHamzaAbove = '\u0623' // أ
	alefHamzaBelow = '\u0625' // إ
	alefMaksura    = '\u0649' // ى
	yaa            = '\u064A' // ي
	taaMarbuta     = '\u0629' // ة
	haa            = '\u0647' // ه

	tashkeelFirst     = '\u064B'
	tashkeelLast      = '\u065F'
	superscriptAlef   = '\u0670'
	quranicMarksFirst = '\u06D6'
	quranicMarksLast  = '\u06ED'
)

// isArabicMark matches tashkeel, the superscript alef and Quranic annotation
// marks. Users rarely type these when searching.
func isArabicMark(r rune) bool {
	return (r >= tashkeelFirst && r <= tashkeelLast) ||
		r == superscriptAlef ||
		(r >= quranicMarksFirst && r <= quranicMarksLast)
}

// canonicalArabicLetter folds common spelling variants onto one letter.
// Decomposed hamza forms lose their combining hamza in the mark-stripping
// step and end up as bare alef too.
func canonicalArabicLetter(r rune) rune {
	switch r {
	case alefHamzaAbove, alefHamzaBelow:
		return alef
	case alefMaksura:
		return yaa
	case taaMarbuta:
		return haa
	default:
		return r
	}
}

// NormalizeArabic prepares text for substring search so that "مدرسه" matches
// "مدرسة" and "احسان" matches "إحسان". Only the substitutions above apply;
// this is not a Unicode normalization form.
func NormalizeArabic(s string) string {
	s = strings.ToLower(s)

	t := transform.Chain(
		runes.Remove(runes.Predicate(isArabicMark)),
		runes.Map(canonicalArabicLetter),
	)
	normalized, _, err := transform.String(t, s)
	if err != nil {
		// rune-level Remove and Map never fail on valid or invalid UTF-8;
		// keep the lowercased input if that ever changes
		return strings.TrimSpace(s)
	}

	return strings.TrimSpace(normalized)
}
