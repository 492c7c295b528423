package translate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBatch(t *testing.T) {
	assert.Equal(t, "@0 Hi [there] 0@", EncodeBatch([]string{"Hi [there]"}))
	assert.Equal(t, "@0 a 0@\n@1 b 1@", EncodeBatch([]string{"a", "b"}))
	assert.Equal(t, "", EncodeBatch(nil))
}

func TestDecodeBatch_Accepted(t *testing.T) {
	got := DecodeBatch("@0 Bonjour [là]  0@")
	require.Len(t, got, 1)
	assert.Equal(t, Marked{Index: 0, Text: "Bonjour [là]"}, got[0])
	assert.True(t, IsValidTranslation("Hi [there]", got[0].Text))
}

func TestDecodeBatch_Rejected(t *testing.T) {
	got := DecodeBatch("@0 Bonjour [là 0@")
	require.Len(t, got, 1)
	assert.Equal(t, "Bonjour [là", got[0].Text)
	assert.False(t, IsValidTranslation("Hi [there]", got[0].Text))

	// Dropping both brackets keeps the balance, so it is accepted.
	assert.True(t, IsValidTranslation("Hi [there]", "Bonjour là"))
}

func TestMarkerRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 50} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			texts := make([]string, n)
			for i := range texts {
				texts[i] = fmt.Sprintf("text-%d with [brackets] and, commas", i)
			}

			got := DecodeBatch(EncodeBatch(texts))
			require.Len(t, got, n)
			for i, m := range got {
				assert.Equal(t, i, m.Index)
				assert.Equal(t, texts[i], m.Text)
			}
		})
	}
}

func TestDecodeBatch_MultiLineBody(t *testing.T) {
	got := DecodeBatch("Sure! Here it is:\n@0 first\nsecond 0@\n@1 third 1@\nDone.")
	require.Len(t, got, 2)
	assert.Equal(t, "first\nsecond", got[0].Text)
	assert.Equal(t, "third", got[1].Text)
}

func TestDecodeBatch_MismatchedClosersSkipped(t *testing.T) {
	got := DecodeBatch("@0 lost 1@\n@1 kept 1@")
	require.Len(t, got, 1)
	assert.Equal(t, Marked{Index: 1, Text: "kept"}, got[0])
}

func TestDecodeBatch_OutOfOrder(t *testing.T) {
	got := DecodeBatch("@1 b 1@\n@0 a 0@")
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 0, got[1].Index)
}

func TestDecodeBatch_NoMarkers(t *testing.T) {
	assert.Empty(t, DecodeBatch("I cannot help with that."))
	assert.Empty(t, DecodeBatch(""))
	assert.Empty(t, DecodeBatch("@0 unterminated"))
}

func TestBracketBalance(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"plain", 0},
		{"[a]", 0},
		{"[[a]", 1},
		{"a]", -1},
		{"[\n\"a\",\n\"b\"\n]", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BracketBalance(tt.in), "input %q", tt.in)
	}
}

func TestIsValidTranslation(t *testing.T) {
	assert.True(t, IsValidTranslation("Press [Shift]", "Нажмите [Shift]"))
	assert.False(t, IsValidTranslation("Press [Shift]", "Нажмите [Shift"))
	assert.False(t, IsValidTranslation("Press [Shift]", "Нажмите Shift]"))
	assert.False(t, IsValidTranslation("[\n\"a\"\n]", "[\n\"а\""))

	// Symmetric for any pair that keeps bracket counts.
	pairs := [][2]string{{"[x]", "y"}, {"[[", "[["}, {"a", "]"}}
	for _, p := range pairs {
		assert.Equal(t, IsValidTranslation(p[0], p[1]), IsValidTranslation(p[1], p[0]))
	}
}
