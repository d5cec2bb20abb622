package domain

import "errors"

// MinQuotesForSpin is the smallest collection a spin can run on.
const MinQuotesForSpin = 2

// ErrInsufficientQuotes is returned when a collection is too small to spin.
var ErrInsufficientQuotes = &ValidationError{
	Field:   "quotes",
	Message: "Not enough quotes in the quote configuration. Please add at least 2 quotes.",
}

// Rand is the randomness used by selection and shuffling.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// SelectNext picks the quote the next spin lands on.
//
// A pinned text matching a quote wins every time. Otherwise the choice is
// uniform over the quotes that differ from previous, falling back to the full
// collection when that leaves nothing.
func SelectNext(quotes []Quote, pinnedText string, previous *Quote, rng Rand) (Quote, error) {
	if len(quotes) < MinQuotesForSpin {
		return Quote{}, ErrInsufficientQuotes
	}

	if rng == nil {
		return Quote{}, errors.New("selection requires a random source")
	}

	if pinnedText != "" {
		if i := IndexOf(quotes, pinnedText); i >= 0 {
			return quotes[i], nil
		}
	}

	candidates := quotes
	if previous != nil {
		candidates = make([]Quote, 0, len(quotes))
		for _, q := range quotes {
			if !q.SameAs(*previous) {
				candidates = append(candidates, q)
			}
		}
	}

	if len(candidates) == 0 {
		candidates = quotes
	}

	return candidates[rng.IntN(len(candidates))], nil
}

// Shuffle returns a shuffled copy of quotes. The input is left untouched.
func Shuffle(quotes []Quote, rng Rand) []Quote {
	out := make([]Quote, len(quotes))
	copy(out, quotes)

	if rng != nil {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}

	return out
}
