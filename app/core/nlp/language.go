package nlp

import "regexp"

const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

var arabicScript = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)

// DetectLanguage returns "ar" when the text contains Arabic script, "en" otherwise.
func DetectLanguage(text string) string {
	if arabicScript.MatchString(text) {
		return LangArabic
	}
	return LangEnglish
}
