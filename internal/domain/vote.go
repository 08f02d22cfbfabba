package domain

import "fmt"

// VoteDirection is the tri-state vote a user has cast on an answer.
// Absence of a vote row is equivalent to VoteNone.
type VoteDirection string

const (
	VoteNone VoteDirection = "none"
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// VoteTransition applies the vote state machine for a single (user, answer)
// pair and returns the new direction plus the delta to add to the answer's
// score. Repeating the current direction is a no-op (delta 0); switching
// direction swings the score by 2. There is no retraction back to VoteNone:
// requesting VoteNone is rejected, mirroring the toggle-less product
// behavior.
func VoteTransition(current, requested VoteDirection) (VoteDirection, int, error) {
	switch requested {
	case VoteUp, VoteDown:
	default:
		return current, 0, fmt.Errorf("invalid requested vote direction %q", requested)
	}

	if current == requested {
		return current, 0, nil
	}

	delta := 1
	if requested == VoteDown {
		delta = -1
	}
	if current != VoteNone {
		// Switching: undo the previous vote and apply the new one.
		delta *= 2
	}

	return requested, delta, nil
}

// VoteResult is the outcome of applying a vote.
type VoteResult struct {
	Direction VoteDirection
	Delta     int
	Answer    *Answer
}

// Message returns the client-facing description of the transition,
// matching the wire contract of the vote endpoints.
func (r *VoteResult) Message() string {
	if r.Delta == 0 {
		if r.Direction == VoteUp {
			return "Already upvoted"
		}
		return "Already downvoted"
	}

	switched := r.Delta == 2 || r.Delta == -2
	if r.Direction == VoteUp {
		if switched {
			return "Switched vote to upvote"
		}
		return "Upvote added"
	}
	if switched {
		return "Switched vote to downvote"
	}
	return "Downvote added"
}
