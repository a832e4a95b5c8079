package token

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexTag = regexp.MustCompile(`^[0-9a-f]{8}$`)

func TestIssueIsDeterministic(t *testing.T) {
	a := Issue("Alice", "a@x.edu")
	b := Issue("Alice", "a@x.edu")
	assert.Equal(t, a, b)
	assert.Regexp(t, hexTag, a)
}

func TestIssueKnownValue(t *testing.T) {
	// sha256("Whohoo Jerryjerry@userid.edu") truncated.
	got := Issue("Whohoo Jerry", "jerry@userid.edu")
	require.Len(t, got, Length)
	assert.Regexp(t, hexTag, got)
	assert.NotEqual(t, Issue("Whohoo Jerry", "tom@userid.edu"), got)
}

func TestIssueDistinctOverCorpus(t *testing.T) {
	seen := make(map[string]string)
	for i := range 500 {
		name := fmt.Sprintf("Student %d", i)
		email := fmt.Sprintf("s%d@userid.edu", i)
		tag := Issue(name, email)
		key := name + "|" + email
		if prev, ok := seen[tag]; ok {
			t.Fatalf("token %s shared by %q and %q", tag, prev, key)
		}
		seen[tag] = key
	}
}

func TestIssueCaseSensitive(t *testing.T) {
	assert.NotEqual(t, Issue("jerry", "jerry@userid.edu"), Issue("Jerry", "jerry@userid.edu"))
}
