package benchmark_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/hupe1980/songdex"
	"github.com/hupe1980/songdex/testutil"
)

const (
	sizeSmall  = 1_000
	sizeMedium = 10_000
	sizeLarge  = 50_000
)

// openBenchLibrary opens a library whose store holds n synthetic songs.
func openBenchLibrary(b *testing.B, n int) *songdex.Library {
	b.Helper()
	dir := b.TempDir()

	artists := max(n/100, 1)
	songs := testutil.NewRNG(42).Catalog(artists, 10, n/(artists*10))
	if err := testutil.WriteStore(songdex.StorePath(dir), songs); err != nil {
		b.Fatal(err)
	}

	lib, err := songdex.Open(dir)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = lib.Close() })
	return lib
}

// ============================================================================
// Open Benchmarks
// ============================================================================

// BenchmarkOpen measures mapping, validating and indexing an existing store.
func BenchmarkOpen(b *testing.B) {
	for _, n := range []int{sizeSmall, sizeMedium, sizeLarge} {
		b.Run("songs="+strconv.Itoa(n), func(b *testing.B) {
			dir := b.TempDir()
			artists := max(n/100, 1)
			songs := testutil.NewRNG(1).Catalog(artists, 10, n/(artists*10))
			if err := testutil.WriteStore(songdex.StorePath(dir), songs); err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				lib, err := songdex.Open(dir)
				if err != nil {
					b.Fatal(err)
				}
				_ = lib.Close()
			}
			b.ReportMetric(float64(n)*float64(b.N)/b.Elapsed().Seconds(), "songs/s")
		})
	}
}

// ============================================================================
// Search Benchmarks
// ============================================================================

// BenchmarkSearch measures fuzzy search latency as the library grows.
func BenchmarkSearch(b *testing.B) {
	for _, n := range []int{sizeSmall, sizeMedium, sizeLarge} {
		b.Run("songs="+strconv.Itoa(n), func(b *testing.B) {
			lib := openBenchLibrary(b, n)
			rng := testutil.NewRNG(7)
			queries := make([]string, 64)
			for i := range queries {
				queries[i] = rng.Word()
			}
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = lib.Search(ctx, queries[i%len(queries)], 0)
			}
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "qps")
		})
	}
}

// BenchmarkSearchEmpty measures listing the catalog head.
func BenchmarkSearchEmpty(b *testing.B) {
	lib := openBenchLibrary(b, sizeMedium)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = lib.Search(ctx, "", 0)
	}
}

// BenchmarkSearchParallel measures search throughput with concurrent readers.
func BenchmarkSearchParallel(b *testing.B) {
	lib := openBenchLibrary(b, sizeMedium)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = lib.Search(ctx, fmt.Sprintf("artist %d", i%50), 10)
			i++
		}
	})
}

// ============================================================================
// Lookup Benchmarks
// ============================================================================

// BenchmarkSong measures point lookups straight from the mapped store.
func BenchmarkSong(b *testing.B) {
	lib := openBenchLibrary(b, sizeMedium)
	n := lib.Len()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := lib.Song(i % n); err != nil {
			b.Fatal(err)
		}
	}
}
