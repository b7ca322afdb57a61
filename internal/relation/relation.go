// Package relation classifies where each kart sits relative to the ego kart.
//
// Image y grows downward, so a smaller y is visually in front of the ego.
// Boundary cases go to Right and Back.
package relation

import "github.com/banshee-data/kartqa/internal/perception"

// Horizontal is the left/right component of a relation.
type Horizontal string

// Vertical is the front/back component of a relation.
type Vertical string

const (
	Left  Horizontal = "left"
	Right Horizontal = "right"

	Front Vertical = "front"
	Back  Vertical = "back"
)

// Relation is the position of one kart relative to the ego.
type Relation struct {
	Horizontal Horizontal
	Vertical   Vertical
}

// Phrase renders the relation as "<front|back> and <left|right>".
func (r Relation) Phrase() string {
	return string(r.Vertical) + " and " + string(r.Horizontal)
}

// Classify returns the relation of other to ego.
func Classify(ego, other perception.KartObject) Relation {
	r := Relation{Horizontal: Right, Vertical: Back}
	if other.Center.X < ego.Center.X {
		r.Horizontal = Left
	}
	if other.Center.Y < ego.Center.Y {
		r.Vertical = Front
	}
	return r
}

// Counts tallies the relations of every non-ego kart in a view.
type Counts struct {
	Left, Right, Front, Back int
}

// Total is the number of classified karts.
func (c Counts) Total() int {
	return c.Left + c.Right
}

// Add records one relation.
func (c *Counts) Add(r Relation) {
	if r.Horizontal == Left {
		c.Left++
	} else {
		c.Right++
	}
	if r.Vertical == Front {
		c.Front++
	} else {
		c.Back++
	}
}

// Tally classifies every non-ego kart against the ego. ok is false when the
// view has no ego kart.
func Tally(karts []perception.KartObject) (counts Counts, ok bool) {
	ego, ok := perception.Ego(karts)
	if !ok {
		return Counts{}, false
	}
	for _, k := range karts {
		if k.IsEgo {
			continue
		}
		counts.Add(Classify(ego, k))
	}
	return counts, true
}
