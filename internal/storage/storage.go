// Package storage keeps the durable snapshot of the booking catalog. A
// snapshot is four independent collections, each one durable object holding
// the encoded mapping for that collection.
package storage

import (
	"context"
	"errors"
)

type Collection string

const (
	Users   Collection = "users"
	Admins  Collection = "admins"
	Tickets Collection = "tickets"
	Orders  Collection = "orders"
)

// Collections lists the collections in the order they are written.
var Collections = []Collection{Users, Admins, Tickets, Orders}

// Snapshot maps a collection to its encoded payload. A collection missing
// from a loaded snapshot has no durable representation yet.
type Snapshot map[Collection][]byte

var ErrUnknownBackend = errors.New("storage: unknown backend")

// Store persists snapshots. Save writes the collections in Collections order
// and stops at the first failure; Load returns whatever collections exist.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
	Close() error
}
