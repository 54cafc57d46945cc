// Package storage is the single access point to the site's data.
//
// Storage combines two very different sources behind one contract: the
// read-only reference tables from package catalog, and the mutable user and
// contact-submission collections kept by a RecordStore. RecordStore
// implementations live here (memory) and in repository/postgres and
// repository/redisstore.
//
// A Store is constructed explicitly and injected into its consumers; there is
// no package-level instance.
package storage
