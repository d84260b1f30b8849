package extract

import (
	"github.com/abadojack/whatlanggo"
)

// minDetectionRunes is the shortest sample worth handing to the detector;
// shorter texts produce noise.
const minDetectionRunes = 50

// DetectLanguage returns the ISO 639-1 code for the text's language, or an
// empty string when the sample is too short or the detection unreliable.
func DetectLanguage(text string) string {
	if len([]rune(text)) < minDetectionRunes {
		return ""
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
