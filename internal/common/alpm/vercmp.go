// Package alpm implements pacman's package version ordering and the
// outdated-package set built on top of it.
package alpm

import "strings"

// evr holds the epoch, version and release parts of a pacman version string
type evr struct {
	epoch   string
	version string
	release string
}

// parseEVR splits "[epoch:]version[-release]" into its components.
// A missing or empty epoch is "0". The release is everything after the last '-'.
func parseEVR(s string) evr {
	var e evr

	digits := 0
	for digits < len(s) && isDigit(s[digits]) {
		digits++
	}

	rest := s
	if digits < len(s) && s[digits] == ':' {
		e.epoch = s[:digits]
		rest = s[digits+1:]
	}
	if e.epoch == "" {
		e.epoch = "0"
	}

	if i := strings.LastIndexByte(rest, '-'); i >= 0 {
		e.version = rest[:i]
		e.release = rest[i+1:]
	} else {
		e.version = rest
	}

	return e
}

// Vercmp compares two pacman version strings.
// Returns: -1 if a < b, 0 if a == b, 1 if a > b
//
// Epochs are compared first, then versions, then releases (only when both
// sides carry a non-empty one), each with the segment rules of rpmvercmp.
func Vercmp(a, b string) int {
	if a == b {
		return 0
	}

	ea := parseEVR(a)
	eb := parseEVR(b)

	if cmp := rpmvercmp(ea.epoch, eb.epoch); cmp != 0 {
		return cmp
	}
	if cmp := rpmvercmp(ea.version, eb.version); cmp != 0 {
		return cmp
	}
	if ea.release != "" && eb.release != "" {
		return rpmvercmp(ea.release, eb.release)
	}
	return 0
}

// rpmvercmp compares a single version component by walking alternating runs of
// digits and letters. Separator runs of different length decide immediately,
// numeric runs beat alphabetic runs and a trailing alphabetic run sorts before
// the end of the string (1.0a < 1.0 < 1.0.1).
func rpmvercmp(a, b string) int {
	if a == b {
		return 0
	}

	// one/two walk the strings; p1/p2 mark the end of the previous segment
	one, two := 0, 0
	p1, p2 := 0, 0

	for one < len(a) && two < len(b) {
		for one < len(a) && !isAlnum(a[one]) {
			one++
		}
		for two < len(b) && !isAlnum(b[two]) {
			two++
		}

		if one >= len(a) || two >= len(b) {
			break
		}

		// Different separator lengths: the longer one is newer (1..0 > 1.0)
		if one-p1 != two-p2 {
			if one-p1 < two-p2 {
				return -1
			}
			return 1
		}

		p1, p2 = one, two

		isNum := isDigit(a[p1])
		if isNum {
			for p1 < len(a) && isDigit(a[p1]) {
				p1++
			}
			for p2 < len(b) && isDigit(b[p2]) {
				p2++
			}
		} else {
			for p1 < len(a) && isAlpha(a[p1]) {
				p1++
			}
			for p2 < len(b) && isAlpha(b[p2]) {
				p2++
			}
		}

		segA := a[one:p1]
		segB := b[two:p2]

		// Segment types differ: numeric is newer than alphabetic
		if segB == "" {
			if isNum {
				return 1
			}
			return -1
		}

		if isNum {
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")

			// More digits means a larger number
			if len(segA) > len(segB) {
				return 1
			}
			if len(segA) < len(segB) {
				return -1
			}
		}

		if cmp := strings.Compare(segA, segB); cmp != 0 {
			return cmp
		}

		one, two = p1, p2
	}

	if one >= len(a) && two >= len(b) {
		return 0
	}

	// Whichever side has remaining content wins, except that a remaining
	// alphabetic segment loses to the end of the other string.
	if (one >= len(a) && !isAlpha(b[two])) || (one < len(a) && isAlpha(a[one])) {
		return -1
	}
	return 1
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isDigit(c) || isAlpha(c)
}
