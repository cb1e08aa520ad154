package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedType is a catalog entry carrying the live stock balance for one feed.
//
// StockPounds is the single source of truth for available feed and is only
// mutated by the ledger service or the explicit restock path. LedgerBaseline
// records the balance the ledger invariant is measured against: it starts at
// the creation stock and shifts with every manual adjustment, so
// LedgerBaseline - sum(active doses) must always equal StockPounds.
type FeedType struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalCode   string             `bson:"externalCode" json:"externalCode"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	StockPounds    float64            `bson:"stockPounds" json:"stockPounds"`
	LedgerBaseline float64            `bson:"ledgerBaseline" json:"-"`
}

// StockAdjustment is the audit row written whenever stock is edited outside
// the ledger (restocking, manual corrections).
type StockAdjustment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FeedTypeID  primitive.ObjectID `bson:"feedTypeId" json:"feedTypeId"`
	DeltaPounds float64            `bson:"deltaPounds" json:"deltaPounds"`
	Reason      string             `bson:"reason,omitempty" json:"reason,omitempty"`
	AppliedAt   time.Time          `bson:"appliedAt" json:"appliedAt"`
}
