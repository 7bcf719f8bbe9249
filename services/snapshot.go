package services

import (
	"encoding/json"
	"fmt"
	"maps"

	"grandprix-booking/internal/storage"
	"grandprix-booking/models"
)

// catalog is the in-memory state the repository snapshots.
type catalog struct {
	users   map[string]*models.User
	admins  map[string]*models.Admin
	tickets map[string]models.Ticket
	orders  map[string]*models.Order
}

func newCatalog() *catalog {
	return &catalog{
		users:   make(map[string]*models.User),
		admins:  make(map[string]*models.Admin),
		tickets: make(map[string]models.Ticket),
		orders:  make(map[string]*models.Order),
	}
}

func (c *catalog) clone() *catalog {
	return &catalog{
		users:   maps.Clone(c.users),
		admins:  maps.Clone(c.admins),
		tickets: maps.Clone(c.tickets),
		orders:  maps.Clone(c.orders),
	}
}

func encodeCollection(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// encode serialises every collection. Admins appear in the users collection
// with the admin role so a users file alone can rebuild them.
func (c *catalog) encode() (storage.Snapshot, error) {
	users := make(map[string]models.UserRecord, len(c.users))
	for name, u := range c.users {
		if a, ok := c.admins[name]; ok && a.User == u {
			users[name] = models.AdminToRecord(a)
			continue
		}
		users[name] = models.UserToRecord(u)
	}

	admins := make(map[string]models.UserRecord, len(c.admins))
	for name, a := range c.admins {
		admins[name] = models.AdminToRecord(a)
	}

	tickets := make(map[string]models.TicketRecord, len(c.tickets))
	for id, t := range c.tickets {
		tickets[id] = models.TicketToRecord(t)
	}

	orders := make(map[string]models.OrderRecord, len(c.orders))
	for id, o := range c.orders {
		orders[id] = models.OrderToRecord(o)
	}

	snap := make(storage.Snapshot, len(storage.Collections))
	for _, item := range []struct {
		c storage.Collection
		v any
	}{
		{storage.Users, users},
		{storage.Admins, admins},
		{storage.Tickets, tickets},
		{storage.Orders, orders},
	} {
		data, err := encodeCollection(item.v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", item.c, err)
		}
		snap[item.c] = data
	}
	return snap, nil
}

// decode rebuilds the collections present in snap on top of c and returns the
// result; c itself is left untouched. Orders share the registered ticket
// entities, admins share their user entity, and user order histories are
// re-linked from the stored order ids.
func (c *catalog) decode(snap storage.Snapshot) (*catalog, error) {
	out := c.clone()

	if data, ok := snap[storage.Tickets]; ok {
		var recs map[string]models.TicketRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode tickets: %w", err)
		}
		out.tickets = make(map[string]models.Ticket, len(recs))
		for id, rec := range recs {
			t, err := models.TicketFromRecord(rec)
			if err != nil {
				return nil, fmt.Errorf("decode tickets: %w", err)
			}
			out.tickets[id] = t
		}
	}

	var adminRecs map[string]models.UserRecord
	if data, ok := snap[storage.Admins]; ok {
		if err := json.Unmarshal(data, &adminRecs); err != nil {
			return nil, fmt.Errorf("decode admins: %w", err)
		}
		out.admins = make(map[string]*models.Admin, len(adminRecs))
		for name, rec := range adminRecs {
			a, err := models.AdminFromRecord(rec)
			if err != nil {
				return nil, fmt.Errorf("decode admins: %w", err)
			}
			out.admins[name] = a
		}
	}

	var userRecs map[string]models.UserRecord
	if data, ok := snap[storage.Users]; ok {
		if err := json.Unmarshal(data, &userRecs); err != nil {
			return nil, fmt.Errorf("decode users: %w", err)
		}
		// Without an admins collection the admin-role user records are the
		// only source of admins.
		if _, ok := snap[storage.Admins]; !ok {
			out.admins = make(map[string]*models.Admin)
		}
		out.users = make(map[string]*models.User, len(userRecs))
		for name, rec := range userRecs {
			if a, ok := out.admins[name]; ok {
				out.users[name] = a.User
				continue
			}
			if rec.Role == models.RoleAdmin {
				a, err := models.AdminFromRecord(rec)
				if err != nil {
					return nil, fmt.Errorf("decode users: %w", err)
				}
				out.admins[name] = a
				out.users[name] = a.User
				continue
			}
			u, err := models.UserFromRecord(rec)
			if err != nil {
				return nil, fmt.Errorf("decode users: %w", err)
			}
			out.users[name] = u
		}
	}
	for name, a := range out.admins {
		if _, ok := out.users[name]; !ok {
			out.users[name] = a.User
		}
	}

	if data, ok := snap[storage.Orders]; ok {
		var recs map[string]models.OrderRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
		lookup := func(id string) (models.Ticket, bool) {
			t, ok := out.tickets[id]
			return t, ok
		}
		out.orders = make(map[string]*models.Order, len(recs))
		for id, rec := range recs {
			o, err := models.OrderFromRecord(rec, lookup)
			if err != nil {
				return nil, fmt.Errorf("decode orders: %w", err)
			}
			out.orders[id] = o
		}
	}

	// Admin records carry their order ids too, so histories survive a missing
	// users collection.
	historyRecs := userRecs
	if historyRecs == nil {
		historyRecs = adminRecs
	}
	for name, rec := range historyRecs {
		u, ok := out.users[name]
		if !ok {
			continue
		}
		for _, id := range rec.OrderIDs {
			if o, ok := out.orders[id]; ok {
				u.AddOrder(o)
			}
		}
	}

	return out, nil
}
