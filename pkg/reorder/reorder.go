// Package reorder moves one element of a sequence to a new position without
// disturbing the relative order of the others.
package reorder

import "github.com/m-kr/cms-nano/pkg/apierr"

// Move describes a drag interaction: take the element at RemovedIndex out of
// the sequence, then insert it at AddedIndex of the shortened sequence.
type Move struct {
	RemovedIndex int `json:"removedIndex"`
	AddedIndex   int `json:"addedIndex"`
}

// Items applies move to seq. A nil move is a no-op and returns seq itself.
// Otherwise the result is a fresh slice of the same length; seq is never
// modified. Both indices must address an element of seq.
func Items[T any](seq []T, move *Move) ([]T, error) {
	if move == nil {
		return seq, nil
	}
	if err := apierr.CheckIndex("removed", move.RemovedIndex, len(seq)); err != nil {
		return nil, err
	}
	if err := apierr.CheckIndex("added", move.AddedIndex, len(seq)); err != nil {
		return nil, err
	}

	moved := seq[move.RemovedIndex]
	out := make([]T, 0, len(seq))
	out = append(out, seq[:move.RemovedIndex]...)
	out = append(out, seq[move.RemovedIndex+1:]...)

	out = append(out, moved)
	copy(out[move.AddedIndex+1:], out[move.AddedIndex:len(out)-1])
	out[move.AddedIndex] = moved
	return out, nil
}
