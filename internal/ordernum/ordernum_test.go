package ordernum

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var format = regexp.MustCompile(`^CR-\d{6}-[0-9A-Z]{6}$`)

func TestGenerateFormat(t *testing.T) {
	n := Generate("CR")
	require.Regexp(t, format, n)
	require.True(t, strings.HasPrefix(n, "CR-"+time.Now().Format("060102")+"-"))
}

func TestAtUsesGivenDate(t *testing.T) {
	date := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	n := At("SHOP", date)
	require.True(t, strings.HasPrefix(n, "SHOP-260307-"))
	require.Len(t, n, len("SHOP-260307-")+SuffixLength)
}

func TestGenerateSuffixesVary(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[Generate("CR")] = true
	}
	// Collisions over 36^6 values in 200 draws would point at a broken
	// random source.
	require.Greater(t, len(seen), 195)
}
