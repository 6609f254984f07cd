package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespro-go/internal/dataset"
	"salespro-go/internal/types"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*Store, *clock) {
	c := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := New(ttl)
	s.now = c.now
	return s, c
}

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Records: []types.SalesRecord{
			{Branch: "Филиал Юг", Channel: "Город", Sales: 1},
			{Branch: "Филиал Север", Channel: "Город", Sales: 2},
		},
		Skipped: 3,
	}
}

func TestPutGet(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	u := s.Put("sales.xlsx", testDataset())
	require.NotEmpty(t, u.ID)
	assert.Equal(t, []string{"Филиал Север", "Филиал Юг"}, u.Branches)
	assert.Equal(t, 3, u.Skipped)

	got, err := s.Get(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "sales.xlsx", got.Filename)
	assert.NotNil(t, got.Dataset)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpiry(t *testing.T) {
	s, c := newTestStore(10 * time.Minute)
	u := s.Put("a.xlsx", testDataset())

	c.advance(9 * time.Minute)
	_, err := s.Get(u.ID) // refreshes the idle timer
	require.NoError(t, err)

	c.advance(9 * time.Minute)
	_, err = s.Get(u.ID)
	require.NoError(t, err)

	c.advance(11 * time.Minute)
	_, err = s.Get(u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, s.Sweep())
	assert.Zero(t, s.Len())
}

func TestSweepKeepsFresh(t *testing.T) {
	s, c := newTestStore(time.Minute)
	old := s.Put("old.xlsx", testDataset())
	c.advance(2 * time.Minute)
	fresh := s.Put("fresh.xlsx", testDataset())

	assert.Equal(t, 1, s.Sweep())

	_, err := s.Get(old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	s, c := newTestStore(0)
	u := s.Put("a.xlsx", testDataset())
	c.advance(1000 * time.Hour)

	_, err := s.Get(u.ID)
	assert.NoError(t, err)
	assert.Zero(t, s.Sweep())
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	u := s.Put("a.xlsx", testDataset())
	s.Delete(u.ID)

	_, err := s.Get(u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
