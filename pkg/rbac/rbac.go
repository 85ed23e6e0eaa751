// Package rbac implements a declarative role-based access control engine.
//
// Permissions are expressed as a static table of grants loaded once at
// startup: (role, resource, action, attribute allow-list). Evaluation is a
// pure in-memory lookup, so an Engine is safe for concurrent use by any
// number of request goroutines.
package rbac

import "strings"

// Action is a CRUD verb combined with a possession qualifier. "own" means
// the caller operates on a resource it owns; "any" covers resources owned
// by others. Possession is resolved by the caller, not the engine: handlers
// pass an Own action when the resource owner equals the authenticated
// subject, and the Any action otherwise.
type Action string

const (
	CreateOwn Action = "create:own"
	CreateAny Action = "create:any"
	ReadOwn   Action = "read:own"
	ReadAny   Action = "read:any"
	UpdateOwn Action = "update:own"
	UpdateAny Action = "update:any"
	DeleteOwn Action = "delete:own"
	DeleteAny Action = "delete:any"
)

// any returns the "any"-possession form of the action. A grant on the any
// form covers the own form as well: being allowed to update anyone's record
// implies being allowed to update your own.
func (a Action) any() Action {
	verb, _, ok := strings.Cut(string(a), ":")
	if !ok {
		return a
	}
	return Action(verb + ":any")
}

// Grant allows one role to perform one action on one resource, optionally
// restricted to a set of response attributes. Attributes form an allow-list:
// "*" admits every field, a bare name admits that field, and a "!name" entry
// removes a field even when "*" is present. An empty list means "*".
type Grant struct {
	Role       string
	Resource   string
	Action     Action
	Attributes []string
}

type grantKey struct {
	role     string
	resource string
	action   Action
}

// Engine evaluates grants. Construct it once with NewEngine and share it
// read-only; it is immutable afterwards.
type Engine struct {
	grants map[grantKey]Grant
}

// NewEngine builds an engine from the given grant table.
func NewEngine(grants ...Grant) *Engine {
	table := make(map[grantKey]Grant, len(grants))
	for _, g := range grants {
		table[grantKey{role: g.Role, resource: g.Resource, action: g.Action}] = g
	}
	return &Engine{grants: table}
}

// Can reports whether role may perform action on resource. An "own" action
// is satisfied by either an own grant or the broader any grant. The returned
// Permission carries the attribute allow-list for response filtering.
func (e *Engine) Can(role string, action Action, resource string) Permission {
	g, ok := e.grants[grantKey{role: role, resource: resource, action: action}]
	if !ok && action != action.any() {
		g, ok = e.grants[grantKey{role: role, resource: resource, action: action.any()}]
	}
	if !ok {
		return Permission{}
	}

	attrs := g.Attributes
	if len(attrs) == 0 {
		attrs = []string{"*"}
	}

	return Permission{Granted: true, attributes: attrs}
}

// Permission is the outcome of a grant lookup.
type Permission struct {
	Granted bool

	attributes []string
}

// Attributes returns the attribute allow-list attached to the grant.
func (p Permission) Attributes() []string { return p.attributes }

// Filter returns a copy of record containing only the attributes this
// permission allows. A denied permission yields nil. Exclusions win over
// inclusions, so {"*", "!password"} never lets password through.
func (p Permission) Filter(record map[string]any) map[string]any {
	if !p.Granted {
		return nil
	}

	wildcard := false
	allowed := make(map[string]struct{}, len(p.attributes))
	excluded := make(map[string]struct{})
	for _, attr := range p.attributes {
		switch {
		case attr == "*":
			wildcard = true
		case strings.HasPrefix(attr, "!"):
			excluded[strings.TrimPrefix(attr, "!")] = struct{}{}
		default:
			allowed[attr] = struct{}{}
		}
	}

	out := make(map[string]any, len(record))
	for field, value := range record {
		if _, drop := excluded[field]; drop {
			continue
		}
		if wildcard {
			out[field] = value
			continue
		}
		if _, ok := allowed[field]; ok {
			out[field] = value
		}
	}
	return out
}
