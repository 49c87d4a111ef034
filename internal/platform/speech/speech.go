// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package speech narrates summaries with Google Cloud Text-to-Speech and measures
the resulting MP3.

The provider limits one request to 5000 bytes of input, so text is split at
sentence boundaries into chunks below [MaxChunkBytes] and the MP3 frames of
each chunk are concatenated.
*/
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/tcolgate/mp3"
	"google.golang.org/api/option"
)

// MaxChunkBytes is the largest input sent in one synthesis request.
const MaxChunkBytes = 4500

// ErrEmptyText is returned when there is nothing to narrate.
var ErrEmptyText = errors.New("speech: text is empty")

// Synthesizer turns text into MP3 audio.
type Synthesizer interface {
	Synthesize(context context.Context, text string) ([]byte, error)
}

// Voice selects the narration voice.
type Voice struct {
	LanguageCode string
	Name         string
	SpeakingRate float64
}

// GoogleSynthesizer implements [Synthesizer] with Cloud Text-to-Speech.
type GoogleSynthesizer struct {
	client *texttospeech.Client
	voice  Voice
}

// NewGoogleSynthesizer opens a client from a service account credentials file.
func NewGoogleSynthesizer(context context.Context, credentialsFile string, voice Voice) (*GoogleSynthesizer, error) {
	client, err := texttospeech.NewClient(context, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("speech: failed to create tts client: %w", err)
	}
	if voice.SpeakingRate <= 0 {
		voice.SpeakingRate = 1.0
	}
	return &GoogleSynthesizer{client: client, voice: voice}, nil
}

// Synthesize implements [Synthesizer].
func (synthesizer *GoogleSynthesizer) Synthesize(context context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var audio bytes.Buffer
	for _, chunk := range SplitChunks(text, MaxChunkBytes) {
		response, err := synthesizer.client.SynthesizeSpeech(context, &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: synthesizer.voice.LanguageCode,
				Name:         synthesizer.voice.Name,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
				SpeakingRate:  synthesizer.voice.SpeakingRate,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("speech: synthesize: %w", err)
		}
		audio.Write(response.AudioContent)
	}

	return audio.Bytes(), nil
}

// Close releases the underlying client.
func (synthesizer *GoogleSynthesizer) Close() error {
	return synthesizer.client.Close()
}

// SplitChunks cuts text into pieces of at most maxBytes, preferring to cut
// after sentence punctuation or a newline and never inside a UTF-8 sequence.
func SplitChunks(text string, maxBytes int) []string {
	var chunks []string
	remaining := strings.TrimSpace(text)

	for len(remaining) > 0 {
		if len(remaining) <= maxBytes {
			chunks = append(chunks, remaining)
			break
		}

		cut := 0
		for i := maxBytes; i > 0; i-- {
			switch remaining[i-1] {
			case '.', '!', '?', '\n':
				cut = i
			}
			if cut > 0 {
				break
			}
		}

		// No punctuation in range: hard cut on a rune boundary
		if cut == 0 {
			cut = maxBytes
			for cut > 0 && (remaining[cut]&0xC0) == 0x80 {
				cut--
			}
		}

		chunks = append(chunks, strings.TrimSpace(remaining[:cut]))
		remaining = strings.TrimSpace(remaining[cut:])
	}

	return chunks
}

// Duration decodes MP3 frames and returns the total playing time.
func Duration(audio io.Reader) (time.Duration, error) {
	var (
		total   time.Duration
		decoder = mp3.NewDecoder(audio)
		frame   mp3.Frame
		skipped int
	)

	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, fmt.Errorf("speech: decode mp3: %w", err)
		}
		total += frame.Duration()
	}

	return total, nil
}
