package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheMichaelB/reposeed/internal/models"
)

func TestIsBinaryFile(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content []byte
		want    bool
	}{
		{
			name:    "markdown by extension",
			path:    "docs/README.md",
			content: []byte("# Hello World"),
			want:    false,
		},
		{
			name:    "image by extension",
			path:    "assets/logo.png",
			content: []byte{0x89, 0x50, 0x4E, 0x47},
			want:    true,
		},
		{
			name:    "svg is text",
			path:    "assets/logo.svg",
			content: []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`),
			want:    false,
		},
		{
			name:    "bytecode by extension",
			path:    "pkg/__init__.pyc",
			content: []byte("abc"),
			want:    true,
		},
		{
			name:    "text with unknown extension",
			path:    "Makefile.inc",
			content: []byte("all:\n\techo hi\n"),
			want:    false,
		},
		{
			name:    "null bytes",
			path:    "blob.xyz",
			content: []byte{0x00, 0x01, 0x02, 0x03},
			want:    true,
		},
		{
			name:    "high control character ratio",
			path:    "blob.xyz",
			content: []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
			want:    true,
		},
		{
			name:    "empty file",
			path:    "empty.txt",
			content: []byte{},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.IsBinaryFile(tt.path, tt.content))
		})
	}
}
