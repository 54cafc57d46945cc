// Package domain defines the core types of the agency site.
//
// Types in this package are plain value objects shared by the catalog, the
// storage layer, the services and the HTTP handlers. JSON tags follow the
// wire format the frontend expects (camelCase).
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - Validation methods are allowed (they're pure functions on the type)
package domain
