package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelease(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version, Commit = "", ""
	assert.Equal(t, "dev", Release())

	Commit = "abc123"
	assert.Equal(t, "abc123", Release())

	Version = "v1.2.0"
	assert.Equal(t, "v1.2.0", Release())
}
