package domain

// LanguageAuto is the source selector value meaning "detect the language".
const LanguageAuto = "auto"

// Language is one selectable translation language.
type Language struct {
	Code string
	Name string
}

var languages = []Language{
	{Code: LanguageAuto, Name: "Auto-detect"},
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ru", Name: "Russian"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "zh", Name: "Chinese"},
	{Code: "ar", Name: "Arabic"},
	{Code: "hi", Name: "Hindi"},
	{Code: "th", Name: "Thai"},
	{Code: "vi", Name: "Vietnamese"},
	{Code: "nl", Name: "Dutch"},
}

// SourceLanguages lists every selectable source language, auto-detect first.
func SourceLanguages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// TargetLanguages lists every selectable target language. Auto-detect is
// never a valid target.
func TargetLanguages() []Language {
	out := make([]Language, 0, len(languages)-1)
	for _, l := range languages {
		if l.Code != LanguageAuto {
			out = append(out, l)
		}
	}
	return out
}

// LanguageName returns the display name for code, or "" if unknown.
func LanguageName(code string) string {
	for _, l := range languages {
		if l.Code == code {
			return l.Name
		}
	}
	return ""
}

// IsLanguage reports whether code is a known language code.
func IsLanguage(code string) bool {
	return LanguageName(code) != ""
}
