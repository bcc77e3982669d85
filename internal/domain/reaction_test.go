package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	driftline_errors "driftline/pkg/errors"
)

func TestReactionTokenRoundTrip(t *testing.T) {
	r := Reaction{MessageID: "m1", UserID: "u1", Kind: "heart"}

	parsed, err := ParseReaction(r.Token())
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
}

func TestParseReactionMalformed(t *testing.T) {
	cases := []string{
		"",
		"m1",
		"m1-u1",
		"m1-u1-heart-extra",
		"-u1-heart",
		"m1--heart",
		"m1-u1-",
	}
	for _, token := range cases {
		_, err := ParseReaction(token)
		assert.ErrorIs(t, err, driftline_errors.ErrMalformedToken, "token %q", token)
	}
}

func TestReplaceReactionKeepsAtMostOnePerUser(t *testing.T) {
	tokens := []string{
		"m1-u1-heart",
		"m1-u2-laugh",
	}

	tokens = ReplaceReaction(tokens, "m1", "u1", "sad")
	assert.Equal(t, []string{"m1-u2-laugh", "m1-u1-sad"}, tokens)

	// Replacing again still leaves a single token for u1.
	tokens = ReplaceReaction(tokens, "m1", "u1", "thumbsup")
	assert.Equal(t, []string{"m1-u2-laugh", "m1-u1-thumbsup"}, tokens)
}

func TestRemoveUserReactions(t *testing.T) {
	tokens := []string{
		"m1-u1-heart",
		"m1-u2-laugh",
		"m1-u1-sad",
	}

	out := RemoveUserReactions(tokens, "m1", "u1")
	assert.Equal(t, []string{"m1-u2-laugh"}, out)

	// Unknown user is a no-op.
	assert.Equal(t, out, RemoveUserReactions(out, "m1", "u9"))
}

func TestNewIDSurvivesTokenEncoding(t *testing.T) {
	// Document ids must not contain the token delimiter, or every parse
	// downstream falls apart.
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.NotContains(t, id, "-")
		assert.Len(t, id, 32)
	}
}
