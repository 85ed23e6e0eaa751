package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(
		Grant{Role: "admin", Resource: "user", Action: ReadAny, Attributes: []string{"*", "!password"}},
		Grant{Role: "admin", Resource: "product", Action: UpdateAny},
		Grant{Role: "shop", Resource: "product", Action: UpdateOwn},
		Grant{Role: "user", Resource: "user", Action: ReadOwn, Attributes: []string{"id", "email", "name"}},
		Grant{Role: "user", Resource: "cart", Action: UpdateOwn},
	)
}

func TestCan(t *testing.T) {
	t.Parallel()
	e := testEngine()

	t.Run("exact grant is honored", func(t *testing.T) {
		require.True(t, e.Can("shop", UpdateOwn, "product").Granted)
		require.True(t, e.Can("user", UpdateOwn, "cart").Granted)
	})

	t.Run("any grant covers own actions", func(t *testing.T) {
		require.True(t, e.Can("admin", ReadOwn, "user").Granted)
		require.True(t, e.Can("admin", UpdateOwn, "product").Granted)
	})

	t.Run("own grant does not escalate to any", func(t *testing.T) {
		require.False(t, e.Can("shop", UpdateAny, "product").Granted)
		require.False(t, e.Can("user", ReadAny, "user").Granted)
	})

	t.Run("missing grant is denied", func(t *testing.T) {
		require.False(t, e.Can("user", DeleteOwn, "cart").Granted)
		require.False(t, e.Can("user", ReadOwn, "discount").Granted)
		require.False(t, e.Can("ghost", ReadOwn, "user").Granted)
	})
}

func TestFilter(t *testing.T) {
	t.Parallel()
	e := testEngine()

	record := map[string]any{
		"id":       "u-1",
		"email":    "casey@example.com",
		"name":     "Casey",
		"password": "argon2:secret",
		"role":     "user",
	}

	t.Run("wildcard with exclusion drops the excluded field", func(t *testing.T) {
		got := e.Can("admin", ReadAny, "user").Filter(record)
		require.NotContains(t, got, "password")
		require.Equal(t, "u-1", got["id"])
		require.Equal(t, "user", got["role"])
	})

	t.Run("explicit allow-list keeps only listed fields", func(t *testing.T) {
		got := e.Can("user", ReadOwn, "user").Filter(record)
		require.Equal(t, map[string]any{
			"id":    "u-1",
			"email": "casey@example.com",
			"name":  "Casey",
		}, got)
	})

	t.Run("empty attribute list means everything", func(t *testing.T) {
		got := e.Can("user", UpdateOwn, "cart").Filter(map[string]any{"items": 3})
		require.Equal(t, map[string]any{"items": 3}, got)
	})

	t.Run("denied permission filters to nil", func(t *testing.T) {
		require.Nil(t, e.Can("user", ReadAny, "user").Filter(record))
	})

	t.Run("filtering copies rather than mutates", func(t *testing.T) {
		_ = e.Can("admin", ReadAny, "user").Filter(record)
		require.Contains(t, record, "password")
	})
}
