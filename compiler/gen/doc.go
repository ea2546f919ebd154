// Package gen turns marker-annotated declarations into SQL statement
// accessors.
//
// A generation pass reads a load.Snapshot and never modifies it:
//
//	load.Snapshot (declarations in discovery order)
//	        ↓
//	   Collect (recognized markers → Requests)
//	        ↓
//	   Render (entity fields → Statements → Go source)
//	        ↓
//	   Writer (goimports formatting → <target>_entitysql.go, stale files pruned)
//
// # Markers
//
// A marker is a directive comment on a type declaration naming the entity
// type and the table:
//
//	//entitysql:generate models.User "Users"
//	type UserQueries struct{}
//
// The generated file adds five methods to UserQueries, one per statement:
// SelectAll, SelectById, Insert, UpdateById and DeleteById. Columns are
// the exported, non-embedded fields of the entity in declaration order.
// The file is written next to UserQueries. A generic target gets blank type
// parameters in its receiver, e.g. func (Page[_]) SelectAll() string.
//
// # Error Handling
//
// Failures are scoped to a single request. Generate keeps going and
// reports them as diagnostics in the Result:
//
//   - MarkerError: wrong arguments or placement, or a field or method of the
//     target named like a statement (matches ErrInvalidMarker)
//   - EntityError: unknown, non-struct or field-less entity (matches
//     ErrUnresolvedEntity or ErrEmptyEntity)
//   - GenerationError: render, format, write or merge failures (matches
//     ErrGenerationFailed), including a second output for the same target
//     or file (matches ErrDuplicateOutput)
//
// Use errors.Is with the sentinel errors, or the IsXxxError helpers.
package gen
