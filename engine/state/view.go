package state

import "github.com/nathoo/moduel/types"

// PlayerView is a copy of one player's observable state.
type PlayerView struct {
	ID         types.EntityID
	UserID     string
	Health     int
	Hand       []types.EntityID
	GraveCount int
	EmptySlots []types.EntityID
}

// View is a detached snapshot of the duel, safe to hand to other goroutines.
type View struct {
	Version          uint64
	TurnOwner        types.EntityID
	ActionsRemaining int
	Turn             int
	Over             bool
	Winner           types.EntityID
	Players          []PlayerView
}

// Player returns the view for id.
func (v View) Player(id types.EntityID) (PlayerView, bool) {
	for _, p := range v.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerView{}, false
}

// Snapshot copies d into a View stamped with version.
func Snapshot(d *Duel, version uint64) View {
	v := View{
		Version:          version,
		TurnOwner:        d.TurnOwner.ID(),
		ActionsRemaining: d.ActionsRemaining,
		Turn:             d.Turn,
		Over:             d.Over(),
	}
	if d.Winner != nil {
		v.Winner = d.Winner.ID()
	}
	for _, p := range []*Player{d.Player1, d.Player2} {
		pv := PlayerView{
			ID:         p.ID(),
			UserID:     p.UserID,
			Health:     p.Health,
			GraveCount: len(p.Grave),
			Hand:       make([]types.EntityID, 0, len(p.Hand)),
		}
		for _, c := range p.Hand {
			pv.Hand = append(pv.Hand, c.ID())
		}
		for _, s := range d.EmptySlots(p) {
			pv.EmptySlots = append(pv.EmptySlots, s.ID())
		}
		v.Players = append(v.Players, pv)
	}
	return v
}
