package translation

// languageNames maps ISO language codes to the human-readable names the
// provider prompt uses. Loaded once; never mutated.
var languageNames = map[string]string{
	"en":   "English",
	"es":   "Spanish",
	"fr":   "French",
	"de":   "German",
	"it":   "Italian",
	"pt":   "Portuguese",
	"ru":   "Russian",
	"ja":   "Japanese",
	"ko":   "Korean",
	"zh":   "Chinese",
	"hi":   "Hindi",
	"ar":   "Arabic",
	"bn":   "Bengali",
	"ta":   "Tamil",
	"te":   "Telugu",
	"mr":   "Marathi",
	"gu":   "Gujarati",
	"kn":   "Kannada",
	"ml":   "Malayalam",
	"pa":   "Punjabi",
	"ur":   "Urdu",
	"auto": "auto-detect",
}

// LanguageName resolves a code to its display name. Unknown codes pass
// through verbatim so the provider can still attempt them.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// KnownLanguage reports whether code is in the static table.
func KnownLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}
