package models

import (
	"crypto/subtle"
	"fmt"
	"slices"
	"strings"

	"grandprix-booking/internal/status"
	"grandprix-booking/utils"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

// PasswordScheme selects how a user's credential is stored. Plain keeps the
// password as given; bcrypt stores only its hash.
type PasswordScheme string

const (
	PasswordPlain  PasswordScheme = "plain"
	PasswordBcrypt PasswordScheme = "bcrypt"
)

func ParsePasswordScheme(s string) (PasswordScheme, error) {
	switch PasswordScheme(s) {
	case PasswordPlain, PasswordBcrypt:
		return PasswordScheme(s), nil
	case "":
		return PasswordPlain, nil
	}
	return "", fmt.Errorf("unknown password scheme %q: %w", s, status.ErrInvalidArgument)
}

type User struct {
	id       string
	username string
	scheme   PasswordScheme
	secret   string
	email    string
	phone    string
	orders   []*Order
}

func NewUser(id, username, password, email, phone string) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("username is required: %w", status.ErrInvalidArgument)
	}
	u := &User{
		id:       id,
		username: username,
		scheme:   PasswordPlain,
		phone:    phone,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) ID() string                     { return u.id }
func (u *User) Username() string               { return u.username }
func (u *User) Email() string                  { return u.email }
func (u *User) Phone() string                  { return u.phone }
func (u *User) SetPhone(phone string)          { u.phone = phone }
func (u *User) PasswordScheme() PasswordScheme { return u.scheme }

func (u *User) SetEmail(email string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email format %q: %w", email, status.ErrInvalidArgument)
	}
	u.email = email
	return nil
}

// SetPassword validates the plaintext and stores it under the user's scheme.
func (u *User) SetPassword(password string) error {
	return u.SetPasswordScheme(u.scheme, password)
}

// SetPasswordScheme switches the credential scheme. The plaintext is needed
// because a bcrypt hash cannot be converted back.
func (u *User) SetPasswordScheme(scheme PasswordScheme, password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long: %w", MinPasswordLength, status.ErrInvalidArgument)
	}
	secret := password
	switch scheme {
	case PasswordPlain:
	case PasswordBcrypt:
		hash, err := utils.HashPassword(password, bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		secret = hash
	default:
		return fmt.Errorf("unknown password scheme %q: %w", scheme, status.ErrInvalidArgument)
	}
	u.scheme = scheme
	u.secret = secret
	return nil
}

func (u *User) VerifyPassword(candidate string) bool {
	if u.scheme == PasswordBcrypt {
		return utils.VerifyPassword(u.secret, candidate)
	}
	return subtle.ConstantTimeCompare([]byte(u.secret), []byte(candidate)) == 1
}

// Orders returns the user's order history, oldest first.
func (u *User) Orders() []*Order { return slices.Clone(u.orders) }

// AddOrder links an order to the user. Only the repository calls it, when it
// creates the order.
func (u *User) AddOrder(order *Order) {
	u.orders = append(u.orders, order)
}

func (u *User) String() string {
	return fmt.Sprintf("User: %s (%s)", u.username, u.email)
}

// Admin is a user that may mint tickets.
type Admin struct {
	*User
	level      int
	department string
}

func NewAdmin(id, username, password, email string, level int, department, phone string) (*Admin, error) {
	u, err := NewUser(id, username, password, email, phone)
	if err != nil {
		return nil, err
	}
	a := &Admin{User: u, department: department}
	if err := a.SetLevel(level); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Admin) Level() int                { return a.level }
func (a *Admin) Department() string        { return a.department }
func (a *Admin) SetDepartment(dept string) { a.department = dept }

func (a *Admin) SetLevel(level int) error {
	if level < 1 || level > 3 {
		return fmt.Errorf("admin level must be between 1 and 3, got %d: %w", level, status.ErrInvalidArgument)
	}
	a.level = level
	return nil
}

func (a *Admin) String() string {
	return fmt.Sprintf("Admin: %s, Level: %d, Department: %s", a.username, a.level, a.department)
}
