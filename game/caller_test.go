package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterFor(t *testing.T) {
	cases := map[int]string{1: "B", 15: "B", 16: "I", 30: "I", 31: "N", 45: "N", 46: "G", 60: "G", 61: "O", 75: "O"}
	for n, want := range cases {
		got, err := LetterFor(n)
		require.NoError(t, err)
		assert.Equal(t, want, got, "number %d", n)
	}
	for _, n := range []int{0, -3, 76} {
		_, err := LetterFor(n)
		assert.ErrorIs(t, err, ErrNumberOutOfRange)
	}
	s, err := Format(7)
	require.NoError(t, err)
	assert.Equal(t, "B7", s)
}

func TestIngestDiff(t *testing.T) {
	h := NewHistory(5, 12)
	fresh, err := h.Ingest([]int{5, 12, 5, 33, 12})
	require.NoError(t, err)
	assert.Equal(t, []int{33}, fresh)
	assert.Equal(t, []int{5, 12, 33}, h.Numbers())

	fresh, err = h.Ingest([]int{5, 12, 5, 33, 12})
	require.NoError(t, err)
	assert.Empty(t, fresh, "replayed snapshot is absorbed")
}

func TestIngestKeepsAuthoritativeOrder(t *testing.T) {
	h := NewHistory()
	fresh, err := h.Ingest([]int{40, 2, 40, 75, 9})
	require.NoError(t, err)
	assert.Equal(t, []int{40, 2, 75, 9}, fresh)
	assert.Equal(t, []int{75, 9}, h.Last(2))
}

func TestIngestRejectsInvalidSnapshot(t *testing.T) {
	h := NewHistory(5)
	_, err := h.Ingest([]int{8, 80})
	assert.ErrorIs(t, err, ErrNumberOutOfRange)
	assert.Equal(t, []int{5}, h.Numbers(), "nothing applied from a bad snapshot")
}

func TestNormalizeCalled(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []int
	}{
		{"ints", `[3, 18, 50]`, []int{3, 18, 50}},
		{"records", `[{"number": 3}, {"number": 18, "timestamp": 1}]`, []int{3, 18}},
		{"mixed", `[3, {"number": 18}]`, []int{3, 18}},
		{"keyed", `{"-Nb": {"number": 18}, "-Na": {"number": 3}}`, []int{3, 18}},
		{"null", `null`, []int{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeCalled([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeCalledInvalid(t *testing.T) {
	for _, raw := range []string{`"3"`, `[{"n": 3}]`, `["x"]`} {
		_, err := NormalizeCalled([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidSnapshot, raw)
	}
	_, err := NormalizeCalled([]byte(`[3, 0]`))
	assert.ErrorIs(t, err, ErrNumberOutOfRange)
}
