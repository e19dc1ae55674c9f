package section

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatParseStatSumRoundTrip(t *testing.T) {
	require := require.New(t)

	c := FormatStatSumComment("hello", 5.0)
	require.Equal(len("stat:sum:hello:")+StatSumValueWidth, len(c))

	key, value, ok, err := ParseStatSumComment(c)
	require.True(ok)
	require.NoError(err)
	require.Equal("hello", key)
	require.Equal(5.0, value)
}

func TestParseStatSumIgnoresOrdinaryComments(t *testing.T) {
	require := require.New(t)
	_, _, ok, err := ParseStatSumComment([]byte("generator: mygen v1.2"))
	require.False(ok)
	require.NoError(err)
}

func TestIsValidStatSumKey(t *testing.T) {
	require := require.New(t)

	require.True(IsValidStatSumKey(strings.Repeat("a", 63)))
	require.True(IsValidStatSumKey(strings.Repeat("a", 64)))
	require.False(IsValidStatSumKey(strings.Repeat("a", 65)))
	require.False(IsValidStatSumKey(""))
	require.False(IsValidStatSumKey(" "))
	require.False(IsValidStatSumKey("1hello"))
}

func TestStatSumKeyGrammarAllowsLeadingUnderscore(t *testing.T) {
	require := require.New(t)
	require.True(IsValidStatSumKey("_hello"))
	require.True(IsValidStatSumKey("hel_lo"))
	require.False(IsValidStatSumKey("hel lo"))
	require.False(IsValidStatSumKey("hel.lo"))
}

func TestParseStatSumRejectsWrongFieldWidth(t *testing.T) {
	require := require.New(t)
	_, _, ok, err := ParseStatSumComment([]byte("stat:sum:bla:1.2432245"))
	require.True(ok)
	require.Error(err)
}

func TestParseStatSumRejectsTabPadding(t *testing.T) {
	require := require.New(t)
	value := "1.123456780123456789123" + "\t"
	_, _, ok, err := ParseStatSumComment([]byte("stat:sum:bla:" + value))
	require.True(ok)
	require.Error(err)
}

func TestParseStatSumAcceptsSpacePadding(t *testing.T) {
	require := require.New(t)
	value := "1.123456780123456789123 "
	_, _, ok, err := ParseStatSumComment([]byte("stat:sum:bla:" + value))
	require.True(ok)
	require.NoError(err)
}

func TestParseStatSumRejectsInfAndNaN(t *testing.T) {
	require := require.New(t)

	for _, v := range []string{"inf", "-inf", "nan"} {
		padded := v + strings.Repeat(" ", StatSumValueWidth-len(v))
		_, _, ok, err := ParseStatSumComment([]byte("stat:sum:hello:" + padded))
		require.True(ok)
		require.Error(err, "value %q should be rejected", v)
	}
}

func TestParseStatSumRejectsBadKeyGrammar(t *testing.T) {
	require := require.New(t)
	padded := "5.0" + strings.Repeat(" ", StatSumValueWidth-3)

	for _, key := range []string{" hello", "hello ", "hel lo", "hel.lo", ""} {
		_, _, ok, err := ParseStatSumComment([]byte("stat:sum:" + key + ":" + padded))
		require.True(ok)
		require.Error(err, "key %q should be rejected", key)
	}
}

func TestStatSumMergeSumsSharedKeys(t *testing.T) {
	require := require.New(t)

	a := StatSum{"hello": 1.0, "onlyA": 2.0}
	b := StatSum{"hello": 2.0, "onlyB": 3.0}

	merged := a.Merge(b)
	require.Equal(3.0, merged["hello"])
	require.Equal(2.0, merged["onlyA"])
	require.Equal(3.0, merged["onlyB"])
}

func TestCollectStatSumWarnsOnDuplicateKey(t *testing.T) {
	require := require.New(t)

	comments := [][]byte{
		FormatStatSumComment("hello", 1.0),
		FormatStatSumComment("hello", 2.0),
	}
	sums, warnings := CollectStatSum(comments)
	require.Equal(1.0, sums["hello"])
	require.Len(warnings, 1)
}

func TestCollectStatSumWarnsOnMalformedAndKeepsGoing(t *testing.T) {
	require := require.New(t)

	comments := [][]byte{
		[]byte("stat:sum:bla:1.2432245"), // too short
		FormatStatSumComment("hello", 5.0),
	}
	sums, warnings := CollectStatSum(comments)
	require.Equal(5.0, sums["hello"])
	require.Len(warnings, 1)
}
