// Package model defines the value types shared by songdex and its internal packages.
//
// # Catalog Types
//
//   - Song: one decoded record (artist, album, title, path, disc, track, gain)
//   - Album: a titled, (disc, track)-ordered run of songs
//
// # Query Types
//
//   - Item: a search hit, tagged by ItemKind (artist, album or song)
//
// # Scan Types
//
//   - ScanStatus: outcome of a rescan
//   - ScanResult: status plus the per-file failure messages
package model
