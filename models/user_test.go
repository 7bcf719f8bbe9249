package models

import (
	"testing"

	"grandprix-booking/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		email    string
		wantErr  bool
	}{
		{"valid", "john_doe", "password123", "john@example.com", false},
		{"six character password", "john_doe", "abcdef", "john@example.com", false},
		{"short password", "john_doe", "abc12", "john@example.com", true},
		{"email without at", "john_doe", "password123", "john.example.com", true},
		{"empty username", "", "password123", "john@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser("USR-1", tt.username, tt.password, tt.email, "555-1234")
			if tt.wantErr {
				assert.ErrorIs(t, err, status.ErrInvalidArgument)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, u.Username())
			assert.Equal(t, PasswordPlain, u.PasswordScheme())
		})
	}
}

func TestUser_SettersKeepPreviousValueOnError(t *testing.T) {
	u, err := NewUser("USR-1", "john_doe", "password123", "john@example.com", "")
	require.NoError(t, err)

	assert.ErrorIs(t, u.SetEmail("nope"), status.ErrInvalidArgument)
	assert.Equal(t, "john@example.com", u.Email())

	assert.ErrorIs(t, u.SetPassword("123"), status.ErrInvalidArgument)
	assert.True(t, u.VerifyPassword("password123"))
}

func TestUser_VerifyPassword(t *testing.T) {
	u, err := NewUser("USR-1", "john_doe", "password123", "john@example.com", "")
	require.NoError(t, err)

	assert.True(t, u.VerifyPassword("password123"))
	assert.False(t, u.VerifyPassword("password124"))
	assert.False(t, u.VerifyPassword(""))
}

func TestUser_BcryptScheme(t *testing.T) {
	u, err := NewUser("USR-1", "john_doe", "password123", "john@example.com", "")
	require.NoError(t, err)

	require.NoError(t, u.SetPasswordScheme(PasswordBcrypt, "password123"))
	assert.Equal(t, PasswordBcrypt, u.PasswordScheme())
	assert.NotEqual(t, "password123", UserToRecord(u).Password)
	assert.True(t, u.VerifyPassword("password123"))
	assert.False(t, u.VerifyPassword("wrong-password"))

	// SetPassword keeps the scheme
	require.NoError(t, u.SetPassword("another-secret"))
	assert.Equal(t, PasswordBcrypt, u.PasswordScheme())
	assert.True(t, u.VerifyPassword("another-secret"))

	assert.ErrorIs(t, u.SetPasswordScheme("rot13", "password123"), status.ErrInvalidArgument)
	assert.Equal(t, PasswordBcrypt, u.PasswordScheme())
}

func TestParsePasswordScheme(t *testing.T) {
	s, err := ParsePasswordScheme("")
	require.NoError(t, err)
	assert.Equal(t, PasswordPlain, s)

	s, err = ParsePasswordScheme("bcrypt")
	require.NoError(t, err)
	assert.Equal(t, PasswordBcrypt, s)

	_, err = ParsePasswordScheme("md5")
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}

func TestNewAdmin_Level(t *testing.T) {
	for _, level := range []int{1, 2, 3} {
		a, err := NewAdmin("ADM-1", "admin", "admin123", "admin@grandprix.com", level, "System Administration", "")
		require.NoError(t, err)
		assert.Equal(t, level, a.Level())
	}

	for _, level := range []int{0, 4, -1} {
		_, err := NewAdmin("ADM-1", "admin", "admin123", "admin@grandprix.com", level, "System Administration", "")
		assert.ErrorIs(t, err, status.ErrInvalidArgument)
	}

	a, err := NewAdmin("ADM-1", "admin", "admin123", "admin@grandprix.com", 2, "Ops", "")
	require.NoError(t, err)
	assert.ErrorIs(t, a.SetLevel(5), status.ErrInvalidArgument)
	assert.Equal(t, 2, a.Level())
	assert.Equal(t, "Admin: admin, Level: 2, Department: Ops", a.String())
}

func TestUser_OrdersHistory(t *testing.T) {
	u, err := NewUser("USR-1", "john_doe", "password123", "john@example.com", "")
	require.NoError(t, err)

	o1 := NewOrder("ORD-1", raceDay, u.Username())
	o2 := NewOrder("ORD-2", raceDay, u.Username())
	u.AddOrder(o1)
	u.AddOrder(o2)

	orders := u.Orders()
	require.Len(t, orders, 2)
	assert.Same(t, o1, orders[0])
	assert.Same(t, o2, orders[1])

	orders[0] = nil
	assert.Same(t, o1, u.Orders()[0])
}
