package main

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/vendors"
	vendorrepo "github.com/ovaphlow/pitchfork/service-ledger-go/internal/vendors/repo"
)

// The go tool treats any path element named vendor as a vendored tree, which
// makes packages under it unimportable from the rest of the module.
func TestModuleHasNoVendorDirectory(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(root, "go.mod"))

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata" {
			return filepath.SkipDir
		}
		if name == "vendor" {
			found = append(found, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestVendorsPackageIsWired(t *testing.T) {
	var _ tableEnsurer = (*vendorrepo.VendorRepo)(nil)
	assert.NotNil(t, vendors.NewHandler)
}
