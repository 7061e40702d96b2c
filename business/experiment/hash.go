package experiment

import "unicode/utf16"

// HashToSeed folds visitorID followed by experimentName into a signed 32-bit
// seed with hash = hash*31 + code, over UTF-16 code units so ids hash the same
// way they do in the browser.
func HashToSeed(visitorID, experimentName string) int32 {
	var h int32
	for _, s := range [2]string{visitorID, experimentName} {
		for _, c := range utf16.Encode([]rune(s)) {
			h = h*31 + int32(c)
		}
	}
	return h
}
