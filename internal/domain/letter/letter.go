// Package letter holds the apology letter's two answers and their replies.
package letter

import (
	"fmt"
	"strings"

	"github.com/okian/hearts/internal/domain/model"
)

// Choice is an answer to the letter.
type Choice string

// Letter answers.
const (
	Forgive Choice = "forgive"
	NotYet  Choice = "not_yet"
)

// Choices lists the valid answers in display order.
func Choices() []Choice { return []Choice{Forgive, NotYet} }

// Parse accepts a choice name, case-insensitively, with "-" or "_".
func Parse(s string) (Choice, bool) {
	c := Choice(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch c {
	case Forgive, NotYet:
		return c, true
	}
	return "", false
}

// Reply returns the text shown for c, addressed to recipient.
func Reply(c Choice, recipient string) (model.Reply, bool) {
	switch c {
	case Forgive:
		return model.Reply{
			Choice:  string(c),
			Title:   fmt.Sprintf("Makasi ya, %s… 😭💗", recipient),
			Body:    "Aku janji bakal dengerin kamu, jaga perasaan kamu, dan buktiin aku bisa lebih baik.",
			Closing: "Mau nggak kita mulai dari pelan-pelan, bareng-bareng?",
			Cue:     model.CueWin,
		}, true
	case NotYet:
		return model.Reply{
			Choice: string(c),
			Title:  "Oke… aku ngerti. 😔",
			Body: "Kamu berhak kesel. Aku nggak akan maksa. " +
				"Tapi aku tetap mau berusaha sampai kamu ngerasa aman dan dihargai lagi.",
			Closing: "Kalau kamu siap, aku ada di sini.",
			Cue:     model.CueLose,
		}, true
	}
	return model.Reply{}, false
}
