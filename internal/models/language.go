package models

import "strings"

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"ta": "Tamil",
	"te": "Telugu",
	"kn": "Kannada",
}

// NormalizeLanguage lower-cases code and falls back to DefaultLanguage.
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return DefaultLanguage
	}
	return code
}

// LanguageName returns the English name of a supported language code,
// or the code itself when it is not known.
func LanguageName(code string) string {
	code = NormalizeLanguage(code)
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// IsSupportedLanguage reports whether code has a display name.
func IsSupportedLanguage(code string) bool {
	_, ok := languageNames[NormalizeLanguage(code)]
	return ok
}
