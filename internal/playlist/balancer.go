// Package playlist builds smart playlists: it gathers recommendation
// candidates from several catalog sources, balances them for diversity and
// optionally persists the result as a catalog playlist.
package playlist

import (
	"sort"
	"strings"

	"github.com/melodia/melodia/internal/music"
)

// BalanceKey selects the grouping dimension for Balance.
type BalanceKey string

const (
	BalanceByGenre  BalanceKey = "genre"
	BalanceByArtist BalanceKey = "artist"
)

// unknownBucket groups songs whose balance attribute is missing.
const unknownBucket = "未知"

// Balance deduplicates the candidates and interleaves them across genre (or
// artist) buckets so no single group dominates the playlist. Within a bucket
// more popular songs come first; buckets are visited round-robin in first-
// appearance order. When the rotation cannot fill targetSize the most
// popular leftovers pad the tail.
//
// Balance is idempotent: feeding its output back in returns the same list.
func Balance(songs []music.Song, targetSize int, balanceBy BalanceKey) []music.Song {
	if len(songs) == 0 || targetSize <= 0 {
		return nil
	}

	deduped := dedupe(songs)

	groupKey := func(s music.Song) string {
		attr := s.Genre
		if balanceBy == BalanceByArtist {
			attr = s.Artist
		}
		if attr == "" {
			return unknownBucket
		}
		return strings.ToLower(attr)
	}

	buckets := make(map[string][]music.Song)
	var keys []string
	for _, song := range deduped {
		key := groupKey(song)
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], song)
	}

	for _, bucket := range buckets {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Popularity > bucket[j].Popularity
		})
	}

	// Round-robin across buckets. Removing an exhausted bucket restarts the
	// rotation from the first remaining one.
	var balanced []music.Song
	pointer := 0
	for len(keys) > 0 && len(balanced) < targetSize {
		key := keys[pointer%len(keys)]
		bucket := buckets[key]
		balanced = append(balanced, bucket[0])
		bucket = bucket[1:]
		buckets[key] = bucket
		if len(bucket) == 0 {
			keys = removeKey(keys, key)
			pointer = 0
		} else {
			pointer++
		}
	}

	// The rotation drains every bucket before stopping short, so this pad
	// only matters when targetSize exceeds the candidate count; kept for
	// symmetry with the truncation below.
	if len(balanced) < targetSize {
		var remaining []music.Song
		for _, key := range keys {
			remaining = append(remaining, buckets[key]...)
		}
		sort.SliceStable(remaining, func(i, j int) bool {
			return remaining[i].Popularity > remaining[j].Popularity
		})
		for _, song := range remaining {
			if len(balanced) >= targetSize {
				break
			}
			balanced = append(balanced, song)
		}
	}

	if len(balanced) > targetSize {
		balanced = balanced[:targetSize]
	}
	return balanced
}

// dedupe keeps the first occurrence per song identity.
func dedupe(songs []music.Song) []music.Song {
	var out []music.Song
	seen := make(map[string]bool)
	for _, song := range songs {
		key := song.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, song)
	}
	return out
}

func removeKey(keys []string, key string) []string {
	for i, k := range keys {
		if k == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}
