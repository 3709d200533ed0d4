package runtime

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/windrose-ai/windrose/pkg/domain"
)

// SelectionType classifies how the user referred to an option.
type SelectionType string

const (
	SelectionNumber     SelectionType = "number"
	SelectionOrdinal    SelectionType = "ordinal"
	SelectionPreference SelectionType = "preference"
)

// Selection is a detected option choice ("2", "the first one", "cheapest").
type Selection struct {
	Type  SelectionType
	Value int
}

var selectionNumberRe = regexp.MustCompile(`\b([1-5])\b`)

// Ordinal words mapped to option numbers. Turkish entries are matched after
// diacritic normalization, so "üçüncü" hits "ucuncu".
var ordinalWords = []struct {
	word  string
	value int
}{
	{"first", 1}, {"second", 2}, {"third", 3}, {"fourth", 4}, {"fifth", 5},
	{"ilk", 1}, {"birinci", 1}, {"ikinci", 2}, {"ucuncu", 3}, {"dorduncu", 4},
	{"1.", 1}, {"2.", 2}, {"3.", 3},
}

var preferencePhrases = []string{"cheapest", "en ucuz", "ucuz olan", "first one", "ilk"}

var diacriticReplacer = strings.NewReplacer(
	"ü", "u", "ö", "o", "ç", "c", "ı", "i", "ş", "s", "ğ", "g",
)

// DetectSelection scans the most recent messages (up to 3) in reverse order
// and acts only on the first user message encountered. Returns nil when no
// selection is expressed.
func DetectSelection(messages []domain.Message) *Selection {
	recent := domain.Tail(messages, 3)
	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]
		if msg.Role != domain.RoleUser {
			continue
		}
		content := strings.ToLower(msg.Content)

		if m := selectionNumberRe.FindStringSubmatch(content); m != nil {
			n, _ := strconv.Atoi(m[1])
			return &Selection{Type: SelectionNumber, Value: n}
		}

		normalized := diacriticReplacer.Replace(content)
		for _, ord := range ordinalWords {
			if strings.Contains(content, ord.word) || strings.Contains(normalized, ord.word) {
				return &Selection{Type: SelectionOrdinal, Value: ord.value}
			}
		}

		for _, phrase := range preferencePhrases {
			if strings.Contains(content, phrase) {
				return &Selection{Type: SelectionPreference, Value: 1}
			}
		}

		// Only the newest user message counts.
		return nil
	}
	return nil
}

var confirmationPhrases = []string{
	// English
	"yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "book it",
	"go ahead", "proceed", "do it", "please book", "make the booking",
	"let's do it", "sounds good", "perfect", "great",
	// Turkish
	"evet", "tamam", "olur", "onayla", "rezerve et", "yer ayır",
	"devam", "kesinlikle", "tabi", "rezervasyon yap",
}

// DetectConfirmation scans the most recent messages (up to 2) in reverse,
// acting on the first user message found, and reports whether it matches a
// fixed bilingual affirmative phrase.
func DetectConfirmation(messages []domain.Message) bool {
	recent := domain.Tail(messages, 2)
	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]
		if msg.Role != domain.RoleUser {
			continue
		}
		content := strings.ToLower(msg.Content)
		for _, phrase := range confirmationPhrases {
			if strings.Contains(content, phrase) {
				return true
			}
		}
		return false
	}
	return false
}
