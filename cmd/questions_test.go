package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/mifid-advisor/internal/scorer"
)

func TestWriteCatalog(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeCatalog(&out))

	var blocks []scorer.Block
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &blocks))
	assert.Equal(t, scorer.Catalog(), blocks)
	assert.Contains(t, out.String(), "key: p1_1")
}
