//go:build !codewatch_debug

package session

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spiffcs/codewatch/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteWithoutAttemptIsIgnored(t *testing.T) {
	var buf bytes.Buffer
	log.Initialize(log.LevelQuiet, &buf)

	s := NewLoginState()
	s.Complete("ghost", "tok")

	_, ok := s.Current()
	assert.False(t, ok, "credentials must not be set")
	assert.True(t, strings.Contains(buf.String(), "invariant violated"))
}

func TestCompleteWithMismatchedUsernameIsIgnored(t *testing.T) {
	var buf bytes.Buffer
	log.Initialize(log.LevelQuiet, &buf)

	s := NewLoginState()
	require.NoError(t, s.Begin("alice"))
	s.Complete("mallory", "tok")
	s.Fail("mallory")

	_, ok := s.Current()
	assert.False(t, ok)

	name, inProgress := s.InProgress()
	assert.True(t, inProgress, "the real attempt is still outstanding")
	assert.Equal(t, "alice", name)
}
