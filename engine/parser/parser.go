// Package parser converts typed duel commands into Intent structs.
// Intentionally dumb: no NLP, just pattern matching. Objects and targets are
// left as raw words; the client resolves them against its own view of the
// table.
package parser

import (
	"strings"

	"github.com/nathoo/moduel/types"
)

// Canonical verbs.
const (
	VerbPlay    = "play"
	VerbCharge  = "charge"
	VerbRevive  = "revive"
	VerbDiscard = "discard"
)

var verbAliases = map[string]string{
	// Play
	"p":      VerbPlay,
	"summon": VerbPlay,
	"cast":   VerbPlay,
	"put":    VerbPlay,
	"place":  VerbPlay,
	"deploy": VerbPlay,

	// Charge
	"c":    VerbCharge,
	"pass": VerbCharge,
	"wait": VerbCharge,
	"z":    VerbCharge,
	"skip": VerbCharge,

	// Revive
	"r":         VerbRevive,
	"raise":     VerbRevive,
	"resurrect": VerbRevive,
	"recall":    VerbRevive,

	// Discard
	"d":     VerbDiscard,
	"drop":  VerbDiscard,
	"toss":  VerbDiscard,
	"burn":  VerbDiscard,
	"trash": VerbDiscard,
}

var commandNames = map[string]string{
	VerbPlay:    types.CmdPlayCard,
	VerbCharge:  types.CmdCharge,
	VerbRevive:  types.CmdRevive,
	VerbDiscard: types.CmdDiscard,
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"in": true, "into": true, "onto": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
	"card": true, "slot": true, "lane": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	// "play 2 3": two bare words are object and target.
	if target == "" && len(rest) == 2 && !prepositions[rest[0]] {
		object, target = rest[0], rest[1]
	}

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// CommandName maps a canonical verb to the state machine's command name.
func CommandName(verb string) (string, bool) {
	name, ok := commandNames[verb]
	return name, ok
}

// Verbs returns the canonical verbs in display order.
func Verbs() []string {
	return []string{VerbPlay, VerbCharge, VerbRevive, VerbDiscard}
}

// expandMultiWordVerbs handles "end turn", "pass turn", "bring back" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "end", "pass":
		if words[1] == "turn" {
			return append([]string{VerbCharge}, words[2:]...)
		}
	case "bring":
		if words[1] == "back" {
			return append([]string{VerbRevive}, words[2:]...)
		}
	case "throw":
		if words[1] == "away" || words[1] == "out" {
			return append([]string{VerbDiscard}, words[2:]...)
		}
	case "put":
		if words[1] == "down" {
			return append([]string{VerbPlay}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes filler words ("the", "card", "slot") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
