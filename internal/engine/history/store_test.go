package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/restfinder/internal/model"
)

func criteria(city, district string, rating float64) model.SearchCriteria {
	return model.SearchCriteria{City: city, District: district, MinRating: rating}
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	return Open(path, zerolog.Nop()), path
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Empty(t, s.Entries())
}

func TestOpen_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := Open(path, zerolog.Nop())
	assert.Empty(t, s.Entries())

	s.RecordSearch(criteria("Ankara", "Çankaya", 4.5), 3)
	assert.Len(t, Open(path, zerolog.Nop()).Entries(), 1)
}

func TestRecord_MostRecentFirst(t *testing.T) {
	s, _ := newTestStore(t)
	s.RecordSearch(criteria("İstanbul", "Kadıköy", 4.5), 1)
	s.RecordSearch(criteria("İstanbul", "Beşiktaş", 4.5), 2)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Beşiktaş", entries[0].Criteria.District)
	assert.Equal(t, "Kadıköy", entries[1].Criteria.District)
}

func TestRecord_DeduplicatesByKey(t *testing.T) {
	s, _ := newTestStore(t)
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }

	s.RecordSearch(criteria("İstanbul", "Kadıköy", 4.5), 10)
	s.RecordSearch(criteria("İstanbul", "Beşiktaş", 4.5), 5)

	s.now = func() time.Time { return t0.Add(time.Hour) }
	s.RecordSearch(criteria("İstanbul", "Kadıköy", 4.5), 12)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Kadıköy", entries[0].Criteria.District)
	assert.Equal(t, 12, entries[0].ResultCount)
	assert.Equal(t, t0.Add(time.Hour), entries[0].Timestamp)
	assert.Equal(t, "Beşiktaş", entries[1].Criteria.District)
}

func TestRecord_DifferentRatingIsDifferentKey(t *testing.T) {
	s, _ := newTestStore(t)
	s.RecordSearch(criteria("Ankara", "Çankaya", 4.5), 1)
	s.RecordSearch(criteria("Ankara", "Çankaya", 4.0), 1)
	assert.Equal(t, 2, s.Len())
}

func TestRecord_PersistFlagIsNotPartOfKey(t *testing.T) {
	s, _ := newTestStore(t)
	c := criteria("Ankara", "Çankaya", 4.5)
	s.RecordSearch(c, 1)
	c.PersistResult = true
	s.RecordSearch(c, 1)
	assert.Equal(t, 1, s.Len())
}

func TestRecord_BoundedToMaxEntries(t *testing.T) {
	s, _ := newTestStore(t)
	for i := range MaxEntries + 5 {
		s.RecordSearch(criteria("İzmir", "", float64(i)), i)
	}

	entries := s.Entries()
	require.Len(t, entries, MaxEntries)
	// Oldest are evicted first.
	assert.Equal(t, float64(MaxEntries+4), entries[0].Criteria.MinRating)
	assert.Equal(t, float64(5), entries[MaxEntries-1].Criteria.MinRating)
}

func TestRecord_NoDuplicateKeysEver(t *testing.T) {
	s, _ := newTestStore(t)
	cities := []string{"İstanbul", "Ankara", "İzmir"}
	for i := range 40 {
		s.RecordSearch(criteria(cities[i%3], "", float64(i%4)), i)
	}

	seen := map[model.CriteriaKey]bool{}
	for _, e := range s.Entries() {
		k := e.Criteria.Key()
		assert.False(t, seen[k], "duplicate key %+v", k)
		seen[k] = true
	}
	assert.LessOrEqual(t, s.Len(), MaxEntries)
}

func TestPersistence_RoundTrip(t *testing.T) {
	s, path := newTestStore(t)
	s.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	s.RecordSearch(model.SearchCriteria{
		City:         "İstanbul",
		District:     "Kadıköy",
		FoodCategory: "Kebap",
		FreeTextName: "Çiya",
		MinRating:    4.0,
	}, 42)
	s.RecordSearch(criteria("Ankara", "Çankaya", 4.5), 7)

	reopened := Open(path, zerolog.Nop())
	assert.Equal(t, s.Entries(), reopened.Entries())
}

func TestPersistence_NoTempFilesLeft(t *testing.T) {
	s, path := newTestStore(t)
	s.RecordSearch(criteria("Ankara", "Çankaya", 4.5), 7)
	s.RecordSearch(criteria("Ankara", "Keçiören", 4.5), 7)

	files, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "history.json", files[0].Name())
}

func TestPersistence_UnwritablePathIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	s := Open(filepath.Join(blocker, "history.json"), zerolog.Nop())
	s.RecordSearch(criteria("Ankara", "Çankaya", 4.5), 1)
	assert.Equal(t, 1, s.Len())
}

func TestClear(t *testing.T) {
	s, path := newTestStore(t)
	s.RecordSearch(criteria("Ankara", "Çankaya", 4.5), 1)
	require.NoError(t, s.Clear())

	assert.Empty(t, s.Entries())
	assert.Empty(t, Open(path, zerolog.Nop()).Entries())
}

func TestMemoryOnlyStore(t *testing.T) {
	s := Open("", zerolog.Nop())
	s.RecordSearch(criteria("Ankara", "Çankaya", 4.5), 1)
	assert.Equal(t, 1, s.Len())
	assert.NoError(t, s.Clear())
}

func TestReplay(t *testing.T) {
	entry := model.HistoryEntry{
		Criteria: model.SearchCriteria{City: "İzmir", District: "Konak", FreeTextName: "Balık", MinRating: 3.5},
	}
	assert.Equal(t, entry.Criteria, Replay(entry))

	entry.Criteria.MinRating = 0
	assert.Equal(t, model.DefaultMinRating, Replay(entry).MinRating)
}

func TestEntries_ReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	s.RecordSearch(criteria("Ankara", "Çankaya", 4.5), 1)

	entries := s.Entries()
	entries[0].Criteria.City = "changed"
	assert.Equal(t, "Ankara", s.Entries()[0].Criteria.City)
}
