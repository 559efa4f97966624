// Package songdex indexes a folder of audio files for browsing and fuzzy search.
//
// A library lives in its own directory. It holds a flat store of fixed-size
// song records, memory-mapped for reading, and a settings file with the saved
// play queue. Rescanning a music folder reads every file's tags, writes a new
// store next to the old one and swaps it in atomically; readers keep the
// previous library until the new one is published.
//
// # Quick Start
//
//	lib, err := songdex.Open("~/.songdex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lib.Close()
//
//	res, err := lib.Rescan(ctx, "~/Music", songdex.ScanOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range res.Errors {
//	    log.Println("skipped", msg)
//	}
//
// # Browsing
//
// Artists and albums are ordered case-insensitively, songs by disc and track:
//
//	for _, artist := range lib.Artists() {
//	    for _, album := range lib.Albums(artist) {
//	        fmt.Println(artist, "/", album.Title, len(album.Songs))
//	    }
//	}
//
// # Search
//
// Search scores every artist, album and song title against the query with
// Jaro-Winkler similarity and keeps matches above 0.70:
//
//	for _, r := range lib.Search(ctx, "radiohed", 10) {
//	    fmt.Printf("%.2f %s %s\n", r.Score, r.Item.Kind, r.Item.Name())
//	}
//
// An empty query lists the catalog in browse order.
//
// # Concurrency
//
// A Library is safe for concurrent use. Only one rescan or import writes the
// store at a time, across processes; a second one returns ScanFileInUse
// without changing anything.
//
// # Corruption
//
// If the store fails validation on Open, it is recreated empty together with
// the settings file. This is logged as a warning and reported to the metrics
// collector, and Open succeeds.
package songdex
