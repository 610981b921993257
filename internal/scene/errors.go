package scene

import "errors"

var (
	// ErrNotFound reports a reference to an entity that is not in the
	// arena, or not a member of the group it was expected in.
	ErrNotFound = errors.New("entity not found")

	// ErrNotTopLevel reports an operation that requires a top-level
	// entity but was given an owned one.
	ErrNotTopLevel = errors.New("entity is not top-level")

	// ErrCycle reports an attempt to make a group a member of itself,
	// directly or transitively.
	ErrCycle = errors.New("grouping would create a cycle")

	// ErrInsufficientSelection reports a group action over fewer than
	// two entities.
	ErrInsufficientSelection = errors.New("grouping requires at least two entities")

	// ErrDuplicateID reports registration of an ID already present in
	// the arena.
	ErrDuplicateID = errors.New("duplicate entity id")
)
