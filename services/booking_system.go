package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"grandprix-booking/internal/activitylog"
	"grandprix-booking/internal/clock"
	"grandprix-booking/internal/notify"
	"grandprix-booking/internal/status"
	"grandprix-booking/internal/storage"
	"grandprix-booking/models"
	"grandprix-booking/monitoring"
)

// Default admin seeded into an empty catalog.
const (
	DefaultAdminID         = "ADM-001"
	DefaultAdminUsername   = "admin"
	DefaultAdminPassword   = "admin123"
	DefaultAdminEmail      = "admin@grandprix.com"
	DefaultAdminLevel      = 3
	DefaultAdminDepartment = "System Administration"
)

type Options struct {
	Name    string
	Version string

	// Store is required.
	Store       storage.Store
	ActivityLog *activitylog.Logger
	Publisher   notify.Publisher
	Monitor     *monitoring.Monitor
	Clock       clock.Clock

	// PasswordScheme applies to accounts created through the repository.
	PasswordScheme models.PasswordScheme

	// DisableAutoSave turns off the snapshot after every mutation; callers
	// then persist with SaveData.
	DisableAutoSave bool
}

// Stats counts the entities in each collection.
type Stats struct {
	Users   int
	Admins  int
	Tickets int
	Orders  int
}

// BookingSystem owns every user, admin, ticket and order and keeps their
// durable snapshot current. All methods are safe for concurrent use.
type BookingSystem struct {
	mu sync.Mutex

	name    string
	version string

	store     storage.Store
	log       *activitylog.Logger
	publisher notify.Publisher
	monitor   *monitoring.Monitor
	clock     clock.Clock
	scheme    models.PasswordScheme

	autoSave bool
	batching int

	data *catalog
	// Last status persisted per order, used to detect transitions.
	statuses map[string]models.OrderStatus
}

// NewBookingSystem builds the repository and loads the stored snapshot. A
// failed load is logged and leaves the repository empty apart from the
// default admin, which is kept in memory only until the next save.
func NewBookingSystem(ctx context.Context, opts Options) (*BookingSystem, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("booking system: store is required: %w", status.ErrInvalidArgument)
	}
	scheme := opts.PasswordScheme
	if scheme == "" {
		scheme = models.PasswordPlain
	}
	if _, err := models.ParsePasswordScheme(string(scheme)); err != nil {
		return nil, fmt.Errorf("booking system: %w", err)
	}
	if opts.Publisher == nil {
		opts.Publisher = notify.Nop{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}

	b := &BookingSystem{
		name:      opts.Name,
		version:   opts.Version,
		store:     opts.Store,
		log:       opts.ActivityLog,
		publisher: opts.Publisher,
		monitor:   opts.Monitor,
		clock:     opts.Clock,
		scheme:    scheme,
		autoSave:  !opts.DisableAutoSave,
		data:      newCatalog(),
		statuses:  make(map[string]models.OrderStatus),
	}
	b.LoadData(ctx)
	return b, nil
}

func (b *BookingSystem) Name() string    { return b.name }
func (b *BookingSystem) Version() string { return b.version }

// ActivityLogPath is the activity log file, or "" when activity goes to slog
// only.
func (b *BookingSystem) ActivityLogPath() string { return b.log.Path() }

// Today is the repository's current calendar day.
func (b *BookingSystem) Today() time.Time {
	return clock.Date(b.clock.Now())
}

// CreateUser registers a regular account.
func (b *BookingSystem) CreateUser(ctx context.Context, id, username, password, email, phone string) (*models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	user, err := b.createUserLocked(id, username, password, email, phone)
	b.monitor.TrackOperation("create_user", err)
	if err != nil {
		return nil, err
	}
	b.log.Write("Created user: " + username)
	b.persistLocked(ctx)
	return user, nil
}

func (b *BookingSystem) createUserLocked(id, username, password, email, phone string) (*models.User, error) {
	if _, exists := b.data.users[username]; exists {
		return nil, fmt.Errorf("username %q: %w", username, status.ErrAlreadyExists)
	}
	user, err := models.NewUser(id, username, password, email, phone)
	if err != nil {
		return nil, err
	}
	if err := b.applyScheme(user, password); err != nil {
		return nil, err
	}
	b.data.users[username] = user
	return user, nil
}

// CreateAdmin registers an administrator. Admins also appear in the user
// mapping under the same username.
func (b *BookingSystem) CreateAdmin(ctx context.Context, id, username, password, email string, level int, department, phone string) (*models.Admin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	admin, err := b.createAdminLocked(id, username, password, email, level, department, phone)
	b.monitor.TrackOperation("create_admin", err)
	if err != nil {
		return nil, err
	}
	b.log.Write("Created admin: " + username)
	b.persistLocked(ctx)
	return admin, nil
}

func (b *BookingSystem) createAdminLocked(id, username, password, email string, level int, department, phone string) (*models.Admin, error) {
	if _, exists := b.data.users[username]; exists {
		return nil, fmt.Errorf("username %q: %w", username, status.ErrAlreadyExists)
	}
	admin, err := models.NewAdmin(id, username, password, email, level, department, phone)
	if err != nil {
		return nil, err
	}
	if err := b.applyScheme(admin.User, password); err != nil {
		return nil, err
	}
	b.data.users[username] = admin.User
	b.data.admins[username] = admin
	return admin, nil
}

func (b *BookingSystem) applyScheme(user *models.User, password string) error {
	if b.scheme == user.PasswordScheme() {
		return nil
	}
	return user.SetPasswordScheme(b.scheme, password)
}

func (b *BookingSystem) GetUser(username string) (*models.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.data.users[username]
	return u, ok
}

func (b *BookingSystem) GetAdmin(username string) (*models.Admin, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.data.admins[username]
	return a, ok
}

// Authenticate returns the account when password matches. Unknown usernames
// and wrong passwords both report NotFound.
func (b *BookingSystem) Authenticate(username, password string) (*models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.data.users[username]
	if !ok || !u.VerifyPassword(password) {
		b.monitor.TrackOperation("authenticate", status.ErrNotFound)
		return nil, fmt.Errorf("invalid credentials for %q: %w", username, status.ErrNotFound)
	}
	b.monitor.TrackOperation("authenticate", nil)
	return u, nil
}

// RegisterTicket adds a ticket to the catalog.
func (b *BookingSystem) RegisterTicket(ctx context.Context, ticket models.Ticket) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.registerTicketLocked(ticket)
	b.monitor.TrackOperation("register_ticket", err)
	if err != nil {
		return err
	}
	b.log.Write("Registered ticket: " + ticket.ID())
	b.persistLocked(ctx)
	return nil
}

func (b *BookingSystem) registerTicketLocked(ticket models.Ticket) error {
	if ticket == nil {
		return fmt.Errorf("ticket is required: %w", status.ErrInvalidArgument)
	}
	if _, exists := b.data.tickets[ticket.ID()]; exists {
		return fmt.Errorf("ticket %q: %w", ticket.ID(), status.ErrAlreadyExists)
	}
	b.data.tickets[ticket.ID()] = ticket
	return nil
}

func (b *BookingSystem) GetTicket(id string) (models.Ticket, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.data.tickets[id]
	return t, ok
}

// Creator resolves the admin that minted ticket, if it is still registered.
func (b *BookingSystem) Creator(ticket models.Ticket) (*models.Admin, bool) {
	if ticket == nil || ticket.CreatedBy() == "" {
		return nil, false
	}
	return b.GetAdmin(ticket.CreatedBy())
}

// CreateOrder opens a pending order dated today for user and appends it to
// the user's history. Ids are "ORD-<n>" where n is one more than the number
// of orders, moving forward past ids already taken.
func (b *BookingSystem) CreateOrder(ctx context.Context, user *models.User) (*models.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, err := b.createOrderLocked(user)
	b.monitor.TrackOperation("create_order", err)
	if err != nil {
		return nil, err
	}
	b.log.Writef("Created order: %s for user: %s", order.ID(), user.Username())
	b.publishLocked(ctx, notify.EventOrderCreated, order, "")
	b.persistLocked(ctx)
	return order, nil
}

func (b *BookingSystem) createOrderLocked(user *models.User) (*models.Order, error) {
	if user == nil {
		return nil, fmt.Errorf("user is required: %w", status.ErrInvalidArgument)
	}
	if _, ok := b.data.users[user.Username()]; !ok {
		return nil, fmt.Errorf("user %q: %w", user.Username(), status.ErrNotFound)
	}

	n := len(b.data.orders) + 1
	id := fmt.Sprintf("ORD-%d", n)
	for {
		if _, taken := b.data.orders[id]; !taken {
			break
		}
		n++
		id = fmt.Sprintf("ORD-%d", n)
	}

	order := models.NewOrder(id, b.clock.Now(), user.Username())
	b.data.orders[id] = order
	b.statuses[id] = order.Status()
	user.AddOrder(order)
	return order, nil
}

func (b *BookingSystem) GetOrder(id string) (*models.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.data.orders[id]
	return o, ok
}

// OrdersFor lists a user's orders, oldest first.
func (b *BookingSystem) OrdersFor(username string) ([]*models.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.data.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, status.ErrNotFound)
	}
	return u.Orders(), nil
}

// UpdateOrder stores the current state of an existing order. A status change
// since the last update is published as an order.updated event.
func (b *BookingSystem) UpdateOrder(ctx context.Context, order *models.Order) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if order == nil {
		err := fmt.Errorf("order is required: %w", status.ErrInvalidArgument)
		b.monitor.TrackOperation("update_order", err)
		return err
	}
	if _, exists := b.data.orders[order.ID()]; !exists {
		err := fmt.Errorf("order %q: %w", order.ID(), status.ErrNotFound)
		b.monitor.TrackOperation("update_order", err)
		return err
	}

	b.data.orders[order.ID()] = order
	b.monitor.TrackOperation("update_order", nil)
	b.log.Write("Updated order: " + order.ID())

	previous := b.statuses[order.ID()]
	if current := order.Status(); current != previous {
		b.statuses[order.ID()] = current
		b.monitor.TrackOrderTransition(string(previous), string(current))
		b.publishLocked(ctx, notify.EventOrderUpdated, order, previous)
	}

	b.persistLocked(ctx)
	return nil
}

func (b *BookingSystem) publishLocked(ctx context.Context, typ notify.EventType, order *models.Order, previous models.OrderStatus) {
	event := notify.NewOrderEvent(typ, order, previous, b.clock.Now())
	if err := b.publisher.Publish(ctx, event); err != nil {
		slog.Error("Failed to publish order event", "error", err, "event", typ, "order_id", order.ID())
	}
}

// Batch runs fn with write-through suspended and snapshots once when the
// outermost batch ends, even when fn fails or auto-save is disabled. fn may
// call any repository method and batches nest.
func (b *BookingSystem) Batch(ctx context.Context, fn func() error) error {
	b.mu.Lock()
	b.batching++
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.batching--
		if b.batching == 0 {
			b.saveLocked(ctx)
		}
	}()

	return fn()
}

// persistLocked snapshots after a mutation unless write-through is off or a
// batch is running.
func (b *BookingSystem) persistLocked(ctx context.Context) {
	if !b.autoSave || b.batching > 0 {
		return
	}
	b.saveLocked(ctx)
}

// SaveData writes the whole catalog to the store. Failures are logged and
// reported as false; the in-memory state stays authoritative.
func (b *BookingSystem) SaveData(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveLocked(ctx)
}

func (b *BookingSystem) saveLocked(ctx context.Context) bool {
	started := time.Now()
	err := b.writeSnapshot(ctx)
	b.monitor.TrackSnapshot("save", started, err)
	if err != nil {
		slog.Error("Failed to save data", "error", err)
		b.log.Writef("Error saving data: %v", err)
		return false
	}
	b.trackSizesLocked()
	b.log.Write("All data saved successfully")
	return true
}

func (b *BookingSystem) writeSnapshot(ctx context.Context) error {
	snap, err := b.data.encode()
	if err != nil {
		return err
	}
	return b.store.Save(ctx, snap)
}

// LoadData replaces every collection present in the store and seeds the
// default admin when no admin exists afterwards. A failed load keeps the
// current collections and returns false; an adminless repository still gets
// the default admin, in memory only.
func (b *BookingSystem) LoadData(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	started := time.Now()
	snap, err := b.store.Load(ctx)
	if err == nil {
		err = b.applySnapshotLocked(snap)
	}
	b.monitor.TrackSnapshot("load", started, err)
	if err != nil {
		slog.Error("Failed to load data", "error", err)
		b.log.Writef("Error loading data: %v", err)
		// The stored data may still be recoverable, so the seeded admin is not
		// written back.
		if len(b.data.admins) == 0 {
			b.seedDefaultAdminLocked(ctx, false)
		}
		b.trackSizesLocked()
		return false
	}

	if len(b.data.admins) == 0 {
		b.seedDefaultAdminLocked(ctx, true)
	}
	b.trackSizesLocked()
	return true
}

func (b *BookingSystem) applySnapshotLocked(snap storage.Snapshot) error {
	loaded, err := b.data.decode(snap)
	if err != nil {
		return err
	}
	b.data = loaded

	b.statuses = make(map[string]models.OrderStatus, len(loaded.orders))
	for id, o := range loaded.orders {
		b.statuses[id] = o.Status()
	}

	for _, item := range []struct {
		c     storage.Collection
		count int
	}{
		{storage.Users, len(loaded.users)},
		{storage.Admins, len(loaded.admins)},
		{storage.Tickets, len(loaded.tickets)},
		{storage.Orders, len(loaded.orders)},
	} {
		if _, ok := snap[item.c]; ok {
			b.log.Writef("Loaded %d %s", item.count, item.c)
		}
	}
	return nil
}

func (b *BookingSystem) seedDefaultAdminLocked(ctx context.Context, persist bool) {
	_, err := b.createAdminLocked(DefaultAdminID, DefaultAdminUsername, DefaultAdminPassword,
		DefaultAdminEmail, DefaultAdminLevel, DefaultAdminDepartment, "")
	if errors.Is(err, status.ErrAlreadyExists) {
		// A regular account already uses the name.
		slog.Warn("Default admin username is taken", "username", DefaultAdminUsername)
		return
	}
	if err != nil {
		slog.Error("Failed to seed default admin", "error", err)
		return
	}
	b.log.Write("Created admin: " + DefaultAdminUsername)
	b.log.Write("Created default admin account")
	if persist {
		b.persistLocked(ctx)
	}
}

func (b *BookingSystem) trackSizesLocked() {
	b.monitor.SetCollectionSize(string(storage.Users), len(b.data.users))
	b.monitor.SetCollectionSize(string(storage.Admins), len(b.data.admins))
	b.monitor.SetCollectionSize(string(storage.Tickets), len(b.data.tickets))
	b.monitor.SetCollectionSize(string(storage.Orders), len(b.data.orders))
}

func (b *BookingSystem) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Users:   len(b.data.users),
		Admins:  len(b.data.admins),
		Tickets: len(b.data.tickets),
		Orders:  len(b.data.orders),
	}
}

// Usernames lists every registered username in sorted order.
func (b *BookingSystem) Usernames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.data.users))
	for name := range b.data.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *BookingSystem) String() string {
	s := b.Stats()
	return fmt.Sprintf("BookingSystem: %s v%s, Users: %d, Orders: %d, Tickets: %d",
		b.name, b.version, s.Users, s.Orders, s.Tickets)
}

// Close releases the publisher and the store.
func (b *BookingSystem) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return errors.Join(b.publisher.Close(), b.store.Close())
}
