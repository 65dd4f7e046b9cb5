package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"bolts":  "bolts",
		"100%":   `100\%`,
		"a_b":    `a\_b`,
		`c:\tmp`: `c:\\tmp`,
		`%_\`:    `\%\_\\`,
		"":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, EscapeLike(in), in)
	}
	assert.Equal(t, `%50\% off%`, Contains("50% off"))
}
