// Package types defines the shared data structures for the duel core.
// This package contains only type definitions and constants. No logic.
package types

// EntityID identifies a simulation entity (player, card, creature, slot).
// Ids are assigned by a registry and are stable across the network.
type EntityID uint32

// Broadcast is the message target meaning "every observer".
// Registries never hand out id 0.
const Broadcast EntityID = 0

// Command names accepted by the duel state machine.
const (
	CmdPlayCard = "PlayCard"
	CmdCharge   = "Charge"
	CmdRevive   = "Revive"
	CmdDiscard  = "Discard"
)

// Message names emitted by the duel state machine.
const (
	MsgLinkSlot      = "LinkSlot"
	MsgAddHandCard   = "AddHandCard"
	MsgRemHandCard   = "RemHandCard"
	MsgSpawnCreature = "SpawnCreature"
	MsgKillCreature  = "KillCreature"
	MsgEndGame       = "EndGame"
	MsgTurnChanged   = "TurnChanged"
	MsgPlayerDamaged = "PlayerDamaged"
)

// Display keys the presentation layer uses to pick a visual template.
const (
	DisplayHandCard = "HandCardNew"
	DisplayCreature = "BattleFieldCreature"
)

// Command is a named action submitted by (or on behalf of) a player.
type Command struct {
	Name  string   `json:"name"`
	Actor EntityID `json:"actor"`
	Args  []int    `json:"args,omitempty"`
}

// Intent is the parsed representation of a typed player command, before
// its positional arguments are resolved to entity ids.
type Intent struct {
	Verb   string
	Object string // optional: hand position or card reference
	Target string // optional: lane or slot reference
}

// Message is a single state-change notification produced by the state machine.
// Args[0] is never the name; Name carries it.
type Message struct {
	Target EntityID `json:"target"` // Broadcast for all observers
	Name   string   `json:"name"`
	Args   []string `json:"args"`
}

// Result is the output of a single Step: every command that was applied
// (the submitted one plus automated continuations) and the ordered messages.
type Result struct {
	Applied  []Command
	Messages []Message
	GameOver bool
}

// CardDef is the immutable content definition of a card.
type CardDef struct {
	ID     string
	Name   string
	Attack int
	Health int
	Mana   string
}

// RulesDef holds duel-wide tunables from content.
type RulesDef struct {
	StartingHealth int
	ActionsPerTurn int
}

// Zone identifies where a card currently lives.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneHand
	ZoneField
	ZoneGrave
)
