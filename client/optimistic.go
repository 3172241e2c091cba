package client

import "context"

// Store holds a snapshot that optimistic mutations update atomically.
type Store[S any] interface {
	// Update applies fn under the store's lock and publishes the result when
	// fn reports a change. It returns the resulting snapshot.
	Update(fn func(S) (S, bool)) S
}

// Mutation describes one optimistic change.
//
// Apply derives the optimistic state from the current one and reports whether
// it differs. Commit performs the server call and returns the authoritative
// state. Revert is handed the state current at failure time, which may already
// include unrelated changes, and must undo only this mutation's effect.
type Mutation[S any] struct {
	Apply  func(S) (S, bool)
	Commit func(context.Context) (S, error)
	Revert func(current S) S
}

// RunOptimistic publishes the optimistic state before the commit returns. On
// success the server's state replaces the snapshot wholesale; on failure the
// revert is applied and the commit error is returned unchanged.
func RunOptimistic[S any](ctx context.Context, store Store[S], m Mutation[S]) (S, error) {
	store.Update(m.Apply)

	committed, err := m.Commit(ctx)
	if err != nil {
		reverted := store.Update(func(current S) (S, bool) {
			return m.Revert(current), true
		})
		return reverted, err
	}
	return store.Update(func(S) (S, bool) { return committed, true }), nil
}
