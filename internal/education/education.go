// Package education holds the arithmetic of a learning session: deck
// shuffling, spreading duplicates of a hard card over the rest of the
// queue, and reconciling repeated ratings of the same card.
package education

import "math/rand"

// Placement is where one duplicate of a card lands in the learning queue.
// Append placements extend the queue tail; the rest insert and shift.
type Placement struct {
	Position int
	Append   bool
}

// Spread plans copies re-appearances of the card at source in a queue of
// length cards. Each copy lands roughly 1/(copies+1) further through what
// remains of the deck. The +1 on the step guarantees forward progress and
// lets a target run past the tail, in which case the copy is appended.
// The queue grows by one after every placement and later placements see the
// longer queue.
func Spread(source, length, copies int) []Placement {
	if copies <= 0 || source < 1 || source > length {
		return nil
	}
	out := make([]Placement, 0, copies)
	for i := 0; i < copies; i++ {
		remaining := length - source
		step := remaining/(copies+1) + 1
		target := source + step*(i+1)
		if target >= length {
			out = append(out, Placement{Position: length + 1, Append: true})
		} else {
			out = append(out, Placement{Position: target})
		}
		length++
	}
	return out
}

// Reconcile consumes one owed appearance of an already duplicated card and
// decides how many new copies a fresh rating asking for requested copies
// still needs. It returns the new pending count and the net copies to add.
func Reconcile(pending, requested int) (int, int) {
	pending = Decrement(pending)
	if requested >= pending {
		net := requested - pending
		return pending + net, net
	}
	return pending, 0
}

// Decrement drops one owed appearance, never going below zero.
func Decrement(pending int) int {
	if pending <= 0 {
		return 0
	}
	return pending - 1
}

// Shuffle permutes ids uniformly in place.
func Shuffle(ids []int64) {
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
