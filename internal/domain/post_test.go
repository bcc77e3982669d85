package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	driftline_errors "driftline/pkg/errors"
)

func TestCommentTokenRoundTrip(t *testing.T) {
	c := Comment{UserID: "u1", Text: "nice post", CreatedAt: "2026-09-01T10:00:00Z"}

	parsed, err := ParseComment(c.Token())
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}

func TestParseCommentMalformed(t *testing.T) {
	for _, token := range []string{"", "u1", "u1@@@text", "u1@@@a@@@b@@@c"} {
		_, err := ParseComment(token)
		assert.ErrorIs(t, err, driftline_errors.ErrMalformedToken, "token %q", token)
	}
}
