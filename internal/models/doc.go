// Package models defines domain entities and persistence interfaces for the mbx manga client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs mirroring the catalogue service's JSON
//   - [Manga] : Catalogue entry with rating and tags
//   - [MangaPage] : One page of search results with the total match count
//   - [User] : Account identity resolved from a bearer token
//   - [LibraryEntry] : A catalogue entry in the user's library with a reading [Status]
//   - [Review] : A user review attached to a catalogue entry
//
// 2. Persistent Entities: Cache-backed models with full lifecycle management
//   - [CachedManga] : Locally cached catalogue entries
//   - [CachedLibraryEntry] : Last synced snapshot of the user's library
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for cache access.
package models
