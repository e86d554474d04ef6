package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalArchive_RoundTrip(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	assert.NoError(t, err)

	err = archive.Save("receipts/PAY-202603-0001.txt", strings.NewReader("recibo"))
	assert.NoError(t, err)

	exists, size, err := archive.Exists("receipts/PAY-202603-0001.txt")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(6), size)

	rc, err := archive.Read("receipts/PAY-202603-0001.txt")
	assert.NoError(t, err)
	content, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.NoError(t, rc.Close())
	assert.Equal(t, "recibo", string(content))

	assert.NoError(t, archive.Delete("receipts/PAY-202603-0001.txt"))
	exists, _, err = archive.Exists("receipts/PAY-202603-0001.txt")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalArchive_MissingKey(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	assert.NoError(t, err)

	exists, _, err := archive.Exists("nope.txt")
	assert.NoError(t, err)
	assert.False(t, exists)

	_, err = archive.Read("nope.txt")
	assert.Error(t, err)

	// Deleting something absent is not an error.
	assert.NoError(t, archive.Delete("nope.txt"))
}
