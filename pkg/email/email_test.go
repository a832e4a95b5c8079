package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveEmail(t *testing.T) {
	assert.Equal(t, "jerry@userid.edu", DeriveEmail("jerry", "userid.edu"))
	assert.Equal(t, "tom@userid.edu", DeriveEmail(" Tom ", "@userid.edu"))
}
