package app

import "github.com/loomandthread/storefront/pkg/rbac"

// DefaultGrants is the static storefront permission table, loaded once at
// startup and immutable afterwards.
//
// Roles: "admin" runs the storefront, "shop" is a merchant managing its own
// catalogue, "user" is a customer. Password-bearing fields are excluded on
// every user grant regardless of role; the signing keys behind a session are
// likewise never exposed, not even to admins.
func DefaultGrants() []rbac.Grant {
	return []rbac.Grant{
		// admin: full control over the catalogue and orders
		{Role: "admin", Resource: "product", Action: rbac.CreateAny},
		{Role: "admin", Resource: "product", Action: rbac.ReadAny},
		{Role: "admin", Resource: "product", Action: rbac.UpdateAny},
		{Role: "admin", Resource: "product", Action: rbac.DeleteAny},
		{Role: "admin", Resource: "category", Action: rbac.CreateAny},
		{Role: "admin", Resource: "category", Action: rbac.ReadAny},
		{Role: "admin", Resource: "category", Action: rbac.UpdateAny},
		{Role: "admin", Resource: "category", Action: rbac.DeleteAny},
		{Role: "admin", Resource: "discount", Action: rbac.CreateAny},
		{Role: "admin", Resource: "discount", Action: rbac.ReadAny},
		{Role: "admin", Resource: "discount", Action: rbac.UpdateAny},
		{Role: "admin", Resource: "discount", Action: rbac.DeleteAny},
		{Role: "admin", Resource: "order", Action: rbac.ReadAny},
		{Role: "admin", Resource: "order", Action: rbac.UpdateAny},
		{Role: "admin", Resource: "user", Action: rbac.ReadAny, Attributes: []string{"*", "!password"}},
		{Role: "admin", Resource: "user", Action: rbac.UpdateAny, Attributes: []string{"*", "!password"}},
		{Role: "admin", Resource: "user", Action: rbac.DeleteAny},
		{Role: "admin", Resource: "session", Action: rbac.ReadAny, Attributes: []string{"*", "!access_key", "!refresh_key"}},
		{Role: "admin", Resource: "session", Action: rbac.DeleteAny},

		// shop: manages its own catalogue, sees orders against it
		{Role: "shop", Resource: "product", Action: rbac.CreateOwn},
		{Role: "shop", Resource: "product", Action: rbac.ReadAny},
		{Role: "shop", Resource: "product", Action: rbac.UpdateOwn},
		{Role: "shop", Resource: "product", Action: rbac.DeleteOwn},
		{Role: "shop", Resource: "discount", Action: rbac.CreateOwn},
		{Role: "shop", Resource: "discount", Action: rbac.ReadAny},
		{Role: "shop", Resource: "discount", Action: rbac.UpdateOwn},
		{Role: "shop", Resource: "discount", Action: rbac.DeleteOwn},
		{Role: "shop", Resource: "order", Action: rbac.ReadOwn},
		{Role: "shop", Resource: "order", Action: rbac.UpdateOwn},
		{Role: "shop", Resource: "user", Action: rbac.ReadOwn, Attributes: []string{"*", "!password"}},
		{Role: "shop", Resource: "user", Action: rbac.UpdateOwn, Attributes: []string{"*", "!password"}},

		// user: a customer owning a cart, orders, and a profile
		{Role: "user", Resource: "product", Action: rbac.ReadAny, Attributes: []string{"*", "!cost_price"}},
		{Role: "user", Resource: "category", Action: rbac.ReadAny},
		{Role: "user", Resource: "discount", Action: rbac.ReadAny},
		{Role: "user", Resource: "cart", Action: rbac.CreateOwn},
		{Role: "user", Resource: "cart", Action: rbac.ReadOwn},
		{Role: "user", Resource: "cart", Action: rbac.UpdateOwn},
		{Role: "user", Resource: "cart", Action: rbac.DeleteOwn},
		{Role: "user", Resource: "order", Action: rbac.CreateOwn},
		{Role: "user", Resource: "order", Action: rbac.ReadOwn},
		{Role: "user", Resource: "user", Action: rbac.ReadOwn, Attributes: []string{"*", "!password"}},
		{Role: "user", Resource: "user", Action: rbac.UpdateOwn, Attributes: []string{"*", "!password"}},
	}
}
