package keys

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func inRange(r Range, key string) bool {
	k := []byte(key)
	if bytes.Compare(k, r.Lower) < 0 {
		return false
	}
	return r.Upper == nil || bytes.Compare(k, r.Upper) < 0
}

func TestThreadChildRangeCoversOwnChildren(t *testing.T) {
	r, err := ThreadChildRange("100")
	require.NoError(t, err)
	require.True(t, inRange(r, GenThreadKey("100", "1")))
	require.True(t, inRange(r, GenThreadKey("100", "zzzz")))
	require.False(t, inRange(r, GenThreadKey("101", "1")))
	require.False(t, inRange(r, GenStatusKey("100")))
}

// A range built for parent P must never match a child of parent Q, even
// when Q is a lexicographic extension or neighbor of P.
func TestRangeIsolationAdjacentParents(t *testing.T) {
	cases := [][2]string{
		{"a", "a1"},
		{"a", "ab"},
		{"1", "10"},
		{"abc", "abcd"},
		{"zz", "zza"},
	}
	for _, c := range cases {
		p, q := c[0], c[1]
		pr, err := PinnedStatusRange(p)
		require.NoError(t, err)
		qr, err := PinnedStatusRange(q)
		require.NoError(t, err)
		for _, child := range []string{"0", "5", "x", "zzz"} {
			require.False(t, inRange(pr, GenPinnedStatusKey(q, child)),
				"range for %q matched child of %q", p, q)
			require.False(t, inRange(qr, GenPinnedStatusKey(p, child)),
				"range for %q matched child of %q", q, p)
		}
	}
}

func TestRangeIsolationRandomPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := "abcdefghijklmnopqrstuvwxyz0123456789-_"
	randID := func() string {
		n := 1 + rng.Intn(12)
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(b)
	}
	for i := 0; i < 1000; i++ {
		p, q := randID(), randID()
		if p == q {
			continue
		}
		pr, err := ThreadChildRange(p)
		require.NoError(t, err)
		child := randID()
		require.False(t, inRange(pr, GenThreadKey(q, child)),
			"range for parent %q matched %q's child %q", p, q, child)
		require.True(t, inRange(pr, GenThreadKey(p, child)))
	}
}

func TestExpiredRangeBounds(t *testing.T) {
	cutoff := int64(5000)
	r, err := ExpiredRange(KindStatus, cutoff)
	require.NoError(t, err)

	require.True(t, inRange(r, GenTimestampIndexKey(KindStatus, 0, "x")))
	require.True(t, inRange(r, GenTimestampIndexKey(KindStatus, 4999, "x")))
	// cutoff itself is eligible
	require.True(t, inRange(r, GenTimestampIndexKey(KindStatus, 5000, "x")))
	require.False(t, inRange(r, GenTimestampIndexKey(KindStatus, 5001, "x")))
	// other kinds never match
	require.False(t, inRange(r, GenTimestampIndexKey(KindNotification, 1, "x")))
}

func TestExpiredRangeRejectsNegativeCutoff(t *testing.T) {
	_, err := ExpiredRange(KindAccount, -1)
	require.Error(t, err)
}

func TestRangeBuildersRejectInvalidIDs(t *testing.T) {
	for _, id := range []string{"", "a:b"} {
		_, err := ThreadChildRange(id)
		require.Error(t, err, "id %q", id)
		_, err = PinnedStatusRange(id)
		require.Error(t, err, "id %q", id)
		_, err = StatusTimelineIndexRange(id)
		require.Error(t, err, "id %q", id)
	}
}

func TestParseTimestampIndexKey(t *testing.T) {
	key := GenTimestampIndexKey(KindNotification, 12345, "n9")
	e, err := ParseTimestampIndexKey(key)
	require.NoError(t, err)
	require.Equal(t, KindNotification, e.Kind)
	require.Equal(t, int64(12345), e.TS)
	require.Equal(t, "n9", e.ID)

	_, err = ParseTimestampIndexKey("st:not-an-index")
	require.Error(t, err)
}

func TestPadTSOrdersNumerically(t *testing.T) {
	prev := ""
	for _, ts := range []int64{0, 9, 10, 99, 1000, 1<<40 + 7} {
		cur := PadTS(ts)
		require.Equal(t, TSPadWidth, len(cur))
		require.True(t, prev < cur, "padding broke ordering at %d", ts)
		prev = cur
	}
}

func ExampleGenThreadKey() {
	fmt.Println(GenThreadKey("root1", "reply7"))
	// Output: th:root1:reply7
}
