package appfs

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFS(t *testing.T) {
	for _, name := range []string{
		"migrations/00001_init.sql",
		"templates/email/_base.txt",
		"templates/email/_base.gohtml",
		"templates/email/submission_graded.txt",
	} {
		_, err := fs.Stat(FS, name)
		assert.NoError(t, err, name)
	}
}
