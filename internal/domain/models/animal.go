package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Breed codes carried over from the farm's paper records.
const (
	BreedYork  = 1
	BreedHamp  = 2
	BreedDuroc = 3
)

// BreedName maps a breed code to its display name.
func BreedName(code int) string {
	switch code {
	case BreedYork:
		return "York"
	case BreedHamp:
		return "Hamp"
	case BreedDuroc:
		return "Duroc"
	default:
		return "unknown"
	}
}

// FeedingEvent is one historical feeding entry embedded in an animal.
//
// FeedTypeID may stop resolving if the feed type is later deleted; the
// snapshot fields captured at recording time are the durable record in that
// case and the event becomes read-only.
type FeedingEvent struct {
	ID                  primitive.ObjectID `bson:"_id" json:"id"`
	FeedTypeID          primitive.ObjectID `bson:"feedTypeId" json:"feedTypeId"`
	NameSnapshot        string             `bson:"nameSnapshot,omitempty" json:"nameSnapshot,omitempty"`
	DescriptionSnapshot string             `bson:"descriptionSnapshot,omitempty" json:"descriptionSnapshot,omitempty"`
	DosePounds          float64            `bson:"dosePounds" json:"dosePounds"`
	Timestamp           time.Time          `bson:"timestamp" json:"timestamp"`
}

// Animal is a registered animal, optionally owned by a client, carrying its
// append-mostly feeding history.
type Animal struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Tag            string              `bson:"tag" json:"tag"`
	Breed          int                 `bson:"breed" json:"breed"`
	AgeMonths      int                 `bson:"ageMonths" json:"ageMonths"`
	WeightKg       float64             `bson:"weightKg" json:"weightKg"`
	ClientID       *primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	FeedingHistory []FeedingEvent      `bson:"feedingHistory" json:"feedingHistory"`
}

// EventByID returns the index of the feeding event with the given id, or -1.
func (a Animal) EventByID(id primitive.ObjectID) int {
	for i, ev := range a.FeedingHistory {
		if ev.ID == id {
			return i
		}
	}
	return -1
}

// AnimalView is an animal with its references resolved for API responses.
// Client and the per-event feed types are nil when the reference dangles.
type AnimalView struct {
	Animal
	Client    *Client              `json:"client,omitempty"`
	FeedTypes map[string]*FeedType `json:"-"`
}
