// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestRootCommand_Tree checks that every operator command is reachable.
*/
func TestRootCommand_Tree(t *testing.T) {
	root := newRootCommand()

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "version"},
		{"generation", "enqueue"},
		{"generation", "process-once"},
	} {
		command, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], command.Name())
	}
}

/*
TestEnqueueCommand_RequiredFlags ensures a request always names its book and requester.
*/
func TestEnqueueCommand_RequiredFlags(t *testing.T) {
	command, _, err := newRootCommand().Find([]string{"generation", "enqueue"})
	require.NoError(t, err)

	for _, name := range []string{"book", "requested-by"} {
		flag := command.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag], name)
	}

	readingTime := command.Flags().Lookup("reading-time")
	require.NotNil(t, readingTime)
	assert.Empty(t, readingTime.Annotations[cobra.BashCompOneRequiredFlag])
}
