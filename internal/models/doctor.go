package models

import "strings"

// Supported content languages.
const (
	LangEnglish = "en"
	LangBengali = "bn"
)

// DoctorTranslation holds the localized fields of a doctor profile.
type DoctorTranslation struct {
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
	Department  string `json:"department,omitempty"`
}

// Doctor is the read-only doctor record used to populate filters and
// denormalize appointment rows.
type Doctor struct {
	ID           string                       `json:"id"`
	Name         string                       `json:"name,omitempty"`
	Translations map[string]DoctorTranslation `json:"translations,omitempty"`
}

// DisplayName resolves the doctor's name for lang, falling back to the
// English translation and then the top-level name.
func (d Doctor) DisplayName(lang string) string {
	if t, ok := d.Translations[lang]; ok && strings.TrimSpace(t.Name) != "" {
		return t.Name
	}
	if t, ok := d.Translations[LangEnglish]; ok && strings.TrimSpace(t.Name) != "" {
		return t.Name
	}
	return d.Name
}

// DoctorOption is one entry of the doctor filter dropdown.
type DoctorOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
