package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	solanainfra "github.com/ALEX-SHR-SUDO/check/internal/infra/solana"
)

func TestGenerateWritesLoadableKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	var buf bytes.Buffer

	require.NoError(t, generate(&buf, path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	acc, err := solanainfra.LoadSigner(context.Background(), solanainfra.EnvKeySource{Value: string(data)})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), acc.PublicKey.ToBase58())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestGenerateRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o600))

	err := generate(&bytes.Buffer{}, path, false)
	assert.Error(t, err)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "keep", string(data))

	require.NoError(t, generate(&bytes.Buffer{}, path, true))
}

func TestGenerateStdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, generate(&buf, "-", false))

	line := strings.SplitN(buf.String(), "\n", 2)[0]
	require.True(t, strings.HasPrefix(line, "PRIVATE_KEY=["))

	_, err := solanainfra.DecodeKeypairJSON([]byte(strings.TrimPrefix(line, "PRIVATE_KEY=")))
	assert.NoError(t, err)
}
