// Package dbrouter selects the primary or a replica database for each
// data-access call.
//
// Routing intent travels in the context. Because every scope derives its
// own context and the parent's value is untouched, a nested call that
// routes differently cannot clobber the caller's decision — the outer
// routing is restored simply by unwinding.
package dbrouter

import (
	"context"
	"database/sql"
	"strings"
)

// Target identifies a physical datasource.
type Target int

const (
	// Primary is the write-capable store. Safe default.
	Primary Target = iota
	// Replica is a read-only store.
	Replica
)

func (t Target) String() string {
	if t == Replica {
		return "replica"
	}

	return "primary"
}

// marks is the routing intent attached to a context scope.
type marks struct {
	rowLock    bool // call acquires a pessimistic row lock
	inTx       bool // call runs inside an explicit transaction
	txReadOnly bool // ...and that transaction is read-only
	readOnly   bool // call is explicitly marked read-only
}

type ctxKey struct{}

func scopeMarks(ctx context.Context) marks {
	m, _ := ctx.Value(ctxKey{}).(marks)
	return m
}

// WithRowLock marks the scope as acquiring a pessimistic row lock.
func WithRowLock(ctx context.Context) context.Context {
	m := scopeMarks(ctx)
	m.rowLock = true

	return context.WithValue(ctx, ctxKey{}, m)
}

// WithTx marks the scope as part of an explicit transaction.
// readOnly distinguishes read-only transactions.
func WithTx(ctx context.Context, readOnly bool) context.Context {
	m := scopeMarks(ctx)
	m.inTx = true
	m.txReadOnly = readOnly

	return context.WithValue(ctx, ctxKey{}, m)
}

// WithReadOnly marks the scope as explicitly read-only.
func WithReadOnly(ctx context.Context) context.Context {
	m := scopeMarks(ctx)
	m.readOnly = true

	return context.WithValue(ctx, ctxKey{}, m)
}

// readVerbs is the prefix heuristic for calls that are reads by naming
// convention.
var readVerbs = []string{"find", "get", "query", "select", "count", "exists", "list"}

// Route decides the target for a call. Rules in strict priority order,
// first match wins:
//
//  1. row-lock scope               -> primary
//  2. call name contains "Lock"    -> primary
//  3. non-read-only transaction    -> primary
//  4. read-only transaction        -> replica
//  5. explicit read-only scope     -> replica
//  6. read-verb name prefix        -> replica
//  7. default                      -> primary
func Route(ctx context.Context, call string) Target {
	m := scopeMarks(ctx)

	if m.rowLock {
		return Primary
	}

	if strings.Contains(call, "Lock") {
		return Primary
	}

	if m.inTx {
		if m.txReadOnly {
			return Replica
		}

		return Primary
	}

	if m.readOnly {
		return Replica
	}

	lower := strings.ToLower(call)
	for _, verb := range readVerbs {
		if strings.HasPrefix(lower, verb) {
			return Replica
		}
	}

	return Primary
}

// Router owns the physical handles and resolves Route decisions to one
// of them. A nil replica degrades to primary-only routing.
type Router struct {
	primary *sql.DB
	replica *sql.DB
}

func New(primary, replica *sql.DB) *Router {
	return &Router{primary: primary, replica: replica}
}

// DB returns the database for a call according to Route.
func (r *Router) DB(ctx context.Context, call string) *sql.DB {
	if Route(ctx, call) == Replica && r.replica != nil {
		return r.replica
	}

	return r.primary
}

// Primary returns the write-capable store. Transactions that mutate
// balances always begin here.
func (r *Router) Primary() *sql.DB {
	return r.primary
}
