// Package lang holds the language tables shared by the pipeline: the
// equivalence groups behind the translation-skip rule, the code mapping
// between the transcription and translation services, and the target
// language catalog.
package lang

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// equivalenceGroups lists the code and name variants treated as the same
// language when deciding whether a transcript is already in the target
// language. The groups are hand-maintained; matching is case-insensitive
// and symmetric. Changing a group changes which utterances are suppressed.
var equivalenceGroups = [][]string{
	{"en", "english"},
	{"es", "spanish", "castilian"},
	{"fr", "french"},
	{"de", "german"},
	{"it", "italian"},
	{"pt", "portuguese"},
	{"ru", "russian"},
	{"zh", "zh-cn", "zh-tw", "chinese"},
	{"ja", "japanese"},
	{"ko", "korean"},
	{"ar", "arabic"},
	{"hi", "hindi"},
	{"nl", "dutch", "flemish"},
	{"ca", "catalan", "valencian"},
	{"no", "norwegian", "nynorsk"},
	{"sv", "swedish"},
	{"da", "danish"},
	{"fi", "finnish"},
	{"pl", "polish"},
	{"tr", "turkish"},
	{"he", "iw", "hebrew"},
	{"th", "thai"},
	{"vi", "vietnamese"},
	{"uk", "ukrainian"},
	{"cs", "czech"},
	{"hu", "hungarian"},
	{"ro", "romanian"},
	{"bg", "bulgarian"},
	{"hr", "croatian"},
	{"sk", "slovak"},
	{"sl", "slovenian"},
	{"et", "estonian"},
	{"lv", "latvian"},
	{"lt", "lithuanian"},
	{"mt", "maltese"},
	{"ga", "irish"},
	{"cy", "welsh"},
	{"eu", "basque"},
	{"gl", "galician"},
	{"is", "icelandic"},
	{"mk", "macedonian"},
	{"be", "belarusian"},
	{"sq", "albanian"},
	{"sr", "serbian"},
	{"bs", "bosnian"},
	{"el", "greek"},
	{"fa", "persian"},
	{"ur", "urdu"},
	{"bn", "bengali"},
	{"ta", "tamil"},
	{"te", "telugu"},
	{"kn", "kannada"},
	{"ml", "malayalam"},
	{"gu", "gujarati"},
	{"pa", "punjabi"},
	{"mr", "marathi"},
	{"ne", "nepali"},
	{"si", "sinhala"},
	{"my", "burmese", "myanmar"},
	{"km", "khmer"},
	{"lo", "lao"},
	{"ka", "georgian"},
	{"am", "amharic"},
	{"sw", "swahili"},
	{"zu", "zulu"},
	{"af", "afrikaans"},
	{"ms", "malay"},
	{"tl", "tagalog"},
	{"id", "indonesian"},
	{"jv", "jw", "javanese"},
	{"su", "sundanese"},
}

var groupIndex = buildGroupIndex()

func buildGroupIndex() map[string]int {
	idx := make(map[string]int, len(equivalenceGroups)*2)
	for i, group := range equivalenceGroups {
		for _, variant := range group {
			idx[variant] = i
		}
	}
	return idx
}

// Match reports whether a detected language and a target language refer to
// the same language. Empty values never match.
func Match(detected, target string) bool {
	if detected == "" || target == "" {
		return false
	}
	d := strings.ToLower(detected)
	t := strings.ToLower(target)
	if d == t {
		return true
	}
	di, ok := groupIndex[d]
	if !ok {
		return false
	}
	ti, ok := groupIndex[t]
	return ok && di == ti
}

// translatorCodes maps transcription-service language codes onto the codes
// the translation endpoint expects, where the two disagree.
var translatorCodes = map[string]string{
	"zh": "zh-cn", // Chinese simplified
	"he": "iw",    // Hebrew
	"jv": "jw",    // Javanese
	"nn": "no",    // Norwegian Nynorsk -> Norwegian
	"oc": "ca",    // Occitan -> Catalan (closest match)
	"ps": "ps",    // Pashto
	"sa": "hi",    // Sanskrit -> Hindi (closest match)
	"bo": "zh-cn", // Tibetan -> Chinese (closest match)
	"ca": "ca",    // Valencian -> Catalan
}

// TranslatorCode converts a transcription language code to the translation
// service's equivalent. Unknown codes pass through unchanged.
func TranslatorCode(code string) string {
	if code == "" {
		return ""
	}
	if mapped, ok := translatorCodes[strings.ToLower(code)]; ok {
		return mapped
	}
	return code
}

// Targets maps display names to translation target codes.
var Targets = map[string]string{
	"Afrikaans":             "af",
	"Albanian":              "sq",
	"Amharic":               "am",
	"Arabic":                "ar",
	"Armenian":              "hy",
	"Azerbaijani":           "az",
	"Basque":                "eu",
	"Belarusian":            "be",
	"Bengali":               "bn",
	"Bosnian":               "bs",
	"Bulgarian":             "bg",
	"Catalan":               "ca",
	"Cebuano":               "ceb",
	"Chinese (Simplified)":  "zh-cn",
	"Chinese (Traditional)": "zh-tw",
	"Corsican":              "co",
	"Croatian":              "hr",
	"Czech":                 "cs",
	"Danish":                "da",
	"Dutch":                 "nl",
	"English":               "en",
	"Esperanto":             "eo",
	"Estonian":              "et",
	"Finnish":               "fi",
	"French":                "fr",
	"Frisian":               "fy",
	"Galician":              "gl",
	"Georgian":              "ka",
	"German":                "de",
	"Greek":                 "el",
	"Gujarati":              "gu",
	"Haitian Creole":        "ht",
	"Hausa":                 "ha",
	"Hawaiian":              "haw",
	"Hebrew":                "iw",
	"Hindi":                 "hi",
	"Hmong":                 "hmn",
	"Hungarian":             "hu",
	"Icelandic":             "is",
	"Igbo":                  "ig",
	"Indonesian":            "id",
	"Irish":                 "ga",
	"Italian":               "it",
	"Japanese":              "ja",
	"Javanese":              "jw",
	"Kannada":               "kn",
	"Kazakh":                "kk",
	"Khmer":                 "km",
	"Korean":                "ko",
	"Kurdish":               "ku",
	"Kyrgyz":                "ky",
	"Lao":                   "lo",
	"Latin":                 "la",
	"Latvian":               "lv",
	"Lithuanian":            "lt",
	"Luxembourgish":         "lb",
	"Macedonian":            "mk",
	"Malagasy":              "mg",
	"Malay":                 "ms",
	"Malayalam":             "ml",
	"Maltese":               "mt",
	"Maori":                 "mi",
	"Marathi":               "mr",
	"Mongolian":             "mn",
	"Myanmar (Burmese)":     "my",
	"Nepali":                "ne",
	"Norwegian":             "no",
	"Odia (Oriya)":          "or",
	"Pashto":                "ps",
	"Persian":               "fa",
	"Polish":                "pl",
	"Portuguese":            "pt",
	"Punjabi":               "pa",
	"Romanian":              "ro",
	"Russian":               "ru",
	"Samoan":                "sm",
	"Scots Gaelic":          "gd",
	"Serbian":               "sr",
	"Sesotho":               "st",
	"Shona":                 "sn",
	"Sindhi":                "sd",
	"Sinhala":               "si",
	"Slovak":                "sk",
	"Slovenian":             "sl",
	"Somali":                "so",
	"Spanish":               "es",
	"Sundanese":             "su",
	"Swahili":               "sw",
	"Swedish":               "sv",
	"Tagalog":               "tl",
	"Tajik":                 "tg",
	"Tamil":                 "ta",
	"Tatar":                 "tt",
	"Telugu":                "te",
	"Thai":                  "th",
	"Turkish":               "tr",
	"Turkmen":               "tk",
	"Ukrainian":             "uk",
	"Urdu":                  "ur",
	"Uyghur":                "ug",
	"Uzbek":                 "uz",
	"Vietnamese":            "vi",
	"Welsh":                 "cy",
	"Xhosa":                 "xh",
	"Yiddish":               "yi",
	"Yoruba":                "yo",
	"Zulu":                  "zu",
}

// TargetCode resolves a target language given either a code or a catalog
// display name, case-insensitively.
func TargetCode(v string) (string, bool) {
	if v == "" {
		return "", false
	}
	lower := strings.ToLower(v)
	for name, code := range Targets {
		if code == lower || strings.ToLower(name) == lower {
			return code, true
		}
	}
	return "", false
}

// Names returns the catalog display names sorted alphabetically.
func Names() []string {
	names := make([]string, 0, len(Targets))
	for name := range Targets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Name returns the English display name for a language code, falling back
// to the code itself when the tag cannot be parsed.
func Name(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if n := display.English.Languages().Name(tag); n != "" {
		return n
	}
	return code
}
