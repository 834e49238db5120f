package main

import (
	"testing"

	"ecomm-product-bot/internal/constant"
	"ecomm-product-bot/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newAppWith(cmd *cli.Command) *cli.App {
	return &cli.App{Name: "ecommbot", Commands: []*cli.Command{cmd}}
}

func TestCommandsRegistered(t *testing.T) {
	app := newApp()

	for _, name := range []string{"ingest", "search", "ask", "trigger"} {
		assert.NotNil(t, app.Command(name), name)
	}
}

func TestSearchDefaults(t *testing.T) {
	cmd := newApp().Command("search")
	require.NotNil(t, cmd)

	var query string
	var k int
	cmd.Action = func(c *cli.Context) error {
		query = c.String("query")
		k = c.Int("k")
		return nil
	}

	require.NoError(t, newAppWith(cmd).Run([]string{"ecommbot", "search"}))
	assert.Equal(t, constant.DemoSearchQuery, query)
	assert.Equal(t, vectorstore.DefaultTopK, k)
}

func TestAskSessionDefault(t *testing.T) {
	cmd := newApp().Command("ask")
	require.NotNil(t, cmd)

	var sessionID string
	var args []string
	var reset bool
	cmd.Action = func(c *cli.Context) error {
		sessionID = c.String("session")
		args = c.Args().Slice()
		reset = c.Bool("reset")
		return nil
	}

	require.NoError(t, newAppWith(cmd).Run([]string{"ecommbot", "ask", "best", "earbuds?"}))
	assert.Equal(t, constant.DemoSessionID, sessionID)
	assert.Equal(t, []string{"best", "earbuds?"}, args)
	assert.False(t, reset)

	require.NoError(t, newAppWith(cmd).Run([]string{"ecommbot", "ask", "--reset", "-s", "alice"}))
	assert.Equal(t, "alice", sessionID)
	assert.True(t, reset)
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	err := newApp().Run([]string{"ecommbot", "search", "--query", "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query must not be empty")
}
