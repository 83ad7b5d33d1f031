package translator

// Supported target languages. The display name is sent to providers verbatim
// and selects the failover order.
const (
	SimplifiedChinese = "Simplified Chinese"
	English           = "English"
	Japanese          = "Japanese"
	Vietnamese        = "Vietnamese"
	Thai              = "Thai"
	Indonesian        = "Indonesian"
)

// Languages returns the closed set of target languages in display order
func Languages() []string {
	return []string{SimplifiedChinese, English, Japanese, Vietnamese, Thai, Indonesian}
}

// IsSupportedLanguage reports whether name is one of Languages()
func IsSupportedLanguage(name string) bool {
	for _, l := range Languages() {
		if l == name {
			return true
		}
	}
	return false
}
