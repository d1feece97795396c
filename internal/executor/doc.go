// Package executor validates GraphQL documents against a schema and resolves
// them depth-first.
//
// # Resolution
//
// For each field of a selection set the executor binds arguments, runs the
// interceptor chain (authorization is always first) and the field resolver,
// then completes the value:
//   - Non-Null: complete the inner type; a null result is an error and nulls
//     the nearest nullable ancestor.
//   - Connection: the resolved collection is paginated with the field's
//     first/after arguments and completed as the synthesized connection type.
//   - List: items complete independently, object items concurrently.
//   - Scalar: serialized by the schema's codec. Enum: checked for membership.
//   - Object: sub-selections resolve with the value as the new parent.
//
// Sibling fields resolve concurrently. Values and errors are assembled in
// document order, so the response does not depend on scheduling.
//
// # Errors
//
// Documents that fail parsing or validation are rejected before any
// resolver runs. Argument, scalar, pagination and data fetch errors are
// scoped to one field: it becomes null, an error carrying its path and
// extensions.code is recorded, and its siblings continue. Cancelling the
// context aborts the whole execution and discards partial data.
//
// Authorization denials are not errors. A denied field is null and leaves no
// trace in the response.
package executor
