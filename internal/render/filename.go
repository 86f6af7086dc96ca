package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/photolog/internal/photolog"
)

// FilenameSuffix ends every exported file name.
const FilenameSuffix = "Photolog.pdf"

// unsafeFilenameChars are replaced with '-' in file names.
const unsafeFilenameChars = `<>:"/\|?*`

// Filename derives the export file name from the header:
// projectName_projectNumber_location_Photolog.pdf. Empty parts are skipped.
func Filename(h photolog.HeaderRecord) string {
	var parts []string
	for _, s := range []string{h.ProjectName, h.ProjectNumber, h.Location} {
		if p := sanitizeFilenamePart(s); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, FilenameSuffix)
	return strings.Join(parts, "_")
}

// removeDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func sanitizeFilenamePart(s string) string {
	s = removeDiacritics(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r), strings.ContainsRune(unsafeFilenameChars, r):
			return '-'
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), "_")
}
