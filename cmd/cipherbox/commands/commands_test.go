package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherbox/internal/sealed"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, root.Execute(), "cipherbox %v: %s", args, out.String())
	return out.String()
}

func TestConversation(t *testing.T) {
	alice, bob := t.TempDir(), t.TempDir()

	assert.Contains(t, run(t, "init", "--home", alice), "Fingerprint:")
	bobFP := strings.TrimPrefix(strings.TrimSpace(run(t, "fingerprint", "--home", bob)), "Fingerprint: ")

	lines := strings.Fields(run(t, "prekeys", "--home", bob, "--start", "65534", "--count", "2"))
	require.Len(t, lines, 4)
	assert.Equal(t, "65534", lines[0])
	assert.Equal(t, "0", lines[2])

	out := run(t, "session", "init-prekey", "bob", lines[1], "--home", alice)
	assert.Contains(t, out, bobFP)

	ct := strings.TrimSpace(run(t, "session", "encrypt", "bob", "hello bob", "--home", alice))
	assert.Equal(t, "hello bob\n", run(t, "session", "init-message", "alice", ct, "--home", bob))

	reply := strings.TrimSpace(run(t, "session", "encrypt", "alice", "hi alice", "--home", bob))
	assert.Equal(t, "hi alice\n", run(t, "session", "decrypt", "bob", reply, "--home", alice))

	run(t, "session", "delete", "bob", "--home", alice)
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"session", "fingerprint", "bob", "--home", alice, "--log-level", "error"})
	assert.Error(t, root.Execute())
}

func TestExportSealedAndOpenWith(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	fp := run(t, "fingerprint", "--home", src)

	kp, err := sealed.GenerateKeypair()
	require.NoError(t, err)
	keyFile := filepath.Join(t.TempDir(), "age.key")
	require.NoError(t, os.WriteFile(keyFile, []byte(kp.Identity+"\n"), 0o600))

	exportFile := filepath.Join(t.TempDir(), "identity.age")
	run(t, "export", "--home", src, "--recipient", kp.Recipient, "-o", exportFile)

	out := run(t, "open-with", "--home", dst, "--identity", exportFile, "--age-identity", keyFile)
	assert.Contains(t, out, strings.TrimPrefix(strings.TrimSpace(fp), "Fingerprint: "))
	assert.Equal(t, fp, run(t, "fingerprint", "--home", dst))
}
