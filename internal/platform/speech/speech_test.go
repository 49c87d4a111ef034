// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package speech_test

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/briefly/internal/platform/speech"
)

/*
TestSplitChunks keeps every chunk under the byte limit and prefers sentence ends.
*/
func TestSplitChunks(t *testing.T) {
	sentence := "Deep work is rare and valuable. "
	text := strings.Repeat(sentence, 400)

	chunks := speech.SplitChunks(text, speech.MaxChunkBytes)

	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), speech.MaxChunkBytes)
		assert.True(t, strings.HasSuffix(chunk, "."))
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(strings.Fields(strings.Join(chunks, " ")), " "))
}

/*
TestSplitChunks_NoPunctuation never cuts inside a multi-byte rune.
*/
func TestSplitChunks_NoPunctuation(t *testing.T) {
	text := strings.Repeat("é", 100)

	chunks := speech.SplitChunks(text, 15)

	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk))
		assert.LessOrEqual(t, len(chunk), 15)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

/*
TestSplitChunks_Short returns short text unchanged.
*/
func TestSplitChunks_Short(t *testing.T) {
	assert.Equal(t, []string{"Hello."}, speech.SplitChunks("  Hello.  ", 100))
	assert.Empty(t, speech.SplitChunks("   ", 100))
}

/*
TestDuration_Empty reports zero for an empty stream.
*/
func TestDuration_Empty(t *testing.T) {
	duration, err := speech.Duration(bytes.NewReader(nil))
	assert.NoError(t, err)
	assert.Zero(t, duration)
}
