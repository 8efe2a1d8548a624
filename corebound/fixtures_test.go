package corebound

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
transactions:
  - functionality: CryptoTransfer
    payer: alice
    submittingNode: node0
    validStartSecs: 1700000000
    validStartNanos: 5
    bodyHex: "deadbeef"
---
transactions:
  - functionality: ConsensusSubmitMessage
    payer: bob
    submittingNode: node1
    validStartSecs: 1700000001
    validStartNanos: 0
    bodyHex: ""
`

func writeFixtureFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEventFixturesDecodesMultiDocument(t *testing.T) {
	path := writeFixtureFile(t, fixtureYAML)

	events, err := LoadEventFixtures(path)
	require.NoError(t, err)
	require.Len(t, events, 2)

	require.Len(t, events[0].Transactions, 1)
	tx := events[0].Transactions[0]
	require.Equal(t, "CryptoTransfer", string(tx.Functionality))
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, tx.Body)
	require.Equal(t, int64(1700000000), tx.ValidStart.Seconds)

	require.Len(t, events[1].Transactions, 1)
	require.Nil(t, events[1].Transactions[0].Body)
}

func TestLoadEventFixturesRejectsBadHex(t *testing.T) {
	path := writeFixtureFile(t, `
transactions:
  - functionality: CryptoTransfer
    payer: alice
    submittingNode: node0
    bodyHex: "zz"
`)
	_, err := LoadEventFixtures(path)
	require.Error(t, err)
}

func TestLoadEventFixturesSamePayerNameIsStable(t *testing.T) {
	path := writeFixtureFile(t, fixtureYAML)
	events, err := LoadEventFixtures(path)
	require.NoError(t, err)

	events2, err := LoadEventFixtures(path)
	require.NoError(t, err)
	require.Equal(t, events[0].Transactions[0].Payer, events2[0].Transactions[0].Payer)
}
