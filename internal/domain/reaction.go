package domain

type ReactionID string

var knownReactions = map[ReactionID]struct{}{
	"smile":  {},
	"thumbs": {},
	"party":  {},
	"heart":  {},
	"coffee": {},
}

func ParseReaction(raw string) (ReactionID, error) {
	id := ReactionID(raw)
	if _, ok := knownReactions[id]; !ok {
		return "", ErrInvalidReaction
	}
	return id, nil
}
