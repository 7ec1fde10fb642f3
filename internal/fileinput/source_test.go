package fileinput_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helvlang/helv/internal/fileinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	src := fileinput.Source{Name: "hello.helv", Text: []byte("dup\n  swap\r\n;;d\n")}
	for _, tc := range []struct {
		offset int
		loc    string
		line   string
	}{
		{0, "hello.helv:1:1", "dup"},
		{2, "hello.helv:1:3", "dup"},
		{3, "hello.helv:1:4", "dup"},
		{4, "hello.helv:2:1", "  swap"},
		{6, "hello.helv:2:3", "  swap"},
		{14, "hello.helv:3:3", ";;d"},
		{99, "hello.helv:4:1", ""},
	} {
		assert.Equal(t, tc.loc, src.Locate(tc.offset).String(), "expected location of offset %v", tc.offset)
		assert.Equal(t, tc.line, src.LineAt(tc.offset), "expected line at offset %v", tc.offset)
	}
}

func TestLoad(t *testing.T) {
	assert.Equal(t, "<inline>", fileinput.Inline("dup").Name)

	src, err := fileinput.Read(strings.NewReader("kil"))
	require.NoError(t, err)
	assert.Equal(t, "<unnamed *strings.Reader>", src.Name)
	assert.Equal(t, "kil", string(src.Text))

	name := filepath.Join(t.TempDir(), "prog.helv")
	require.NoError(t, os.WriteFile(name, []byte("'A' pri"), 0o644))
	src, err = fileinput.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, name, src.Locate(0).Name)
	assert.Equal(t, "'A' pri", string(src.Text))

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	src, err = fileinput.Read(f)
	require.NoError(t, err)
	assert.Equal(t, name, src.Name)

	_, err = fileinput.ReadFile(filepath.Join(t.TempDir(), "missing.helv"))
	assert.True(t, os.IsNotExist(err))
}
