// Package ordernum builds human-readable order numbers of the form
// PREFIX-YYMMDD-RANDOM6. Uniqueness is probabilistic; the database
// unique index is the authority and callers retry with a fresh suffix
// on conflict.
package ordernum

import (
	"crypto/rand"
	"fmt"
	"time"
)

const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const SuffixLength = 6

func Generate(prefix string) string {
	return At(prefix, time.Now())
}

func At(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, t.Format("060102"), randomSuffix())
}

func randomSuffix() string {
	buf := make([]byte, SuffixLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand on supported platforms does not fail; if it ever
		// does there is nothing sensible to fall back to.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}
