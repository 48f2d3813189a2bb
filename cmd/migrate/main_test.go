package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCreateThenList(t *testing.T) {
	dir := t.TempDir()

	_, err := execute("--path", dir, "create", "add honor category", "Group honors")
	require.NoError(t, err)
	_, err = execute("--path", dir, "create", "add page banner")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "000002_add_page_banner.down.sql"))
	require.NoError(t, err)

	out, err := execute("--path", dir, "list")
	require.NoError(t, err)
	assert.Equal(t, "000001_add_honor_category\n000002_add_page_banner\n", out)
}

func TestFileCommandsNeedPath(t *testing.T) {
	_, err := execute("list")
	assert.ErrorContains(t, err, "--path")

	_, err = execute("create", "init")
	assert.ErrorContains(t, err, "--path")
}

func TestDropNeedsConfirm(t *testing.T) {
	_, err := execute("drop")
	assert.ErrorContains(t, err, "--confirm")
}

func TestArgumentValidation(t *testing.T) {
	_, err := execute("step")
	assert.Error(t, err)

	_, err = execute("create")
	assert.Error(t, err)
}
