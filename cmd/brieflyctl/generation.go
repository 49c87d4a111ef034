// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/taibuivan/briefly/internal/core/book"
	"github.com/taibuivan/briefly/internal/generation"
	"github.com/taibuivan/briefly/internal/platform/ai"
	"github.com/taibuivan/briefly/internal/platform/constants"
	pgstore "github.com/taibuivan/briefly/internal/platform/postgres"
	redisstore "github.com/taibuivan/briefly/internal/platform/redis"
	"github.com/taibuivan/briefly/pkg/pointer"
)

const ctlName = "brieflyctl"

var ctlPool = []pgstore.Option{pgstore.WithApplicationName(ctlName), pgstore.WithMaxConns(2)}

func newGenerationCommand(state *app) *cobra.Command {
	command := &cobra.Command{
		Use:   "generation",
		Short: "Inspect and drive AI summary generation",
	}

	command.AddCommand(newEnqueueCommand(state), newProcessOnceCommand(state))
	return command
}

// # Enqueue

func newEnqueueCommand(state *app) *cobra.Command {
	var (
		bookID      string
		requestedBy string
		readingTime int
		tone        string
		sourceURL   string
	)

	command := &cobra.Command{
		Use:   "enqueue",
		Short: "Create a pending generation request and wake the workers",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, args []string) error {
			context := command.Context()

			pool, err := pgstore.NewPool(context, state.cfg.DatabaseURL, state.logger, ctlPool...)
			if err != nil {
				return err
			}
			defer pool.Close()

			rdb, err := redisstore.NewClient(context, state.cfg.RedisURL, state.logger, redisstore.WithClientName(ctlName))
			if err != nil {
				return err
			}
			defer rdb.Close()

			service := generation.NewService(
				generation.NewPostgresRepository(pool),
				book.NewPostgresRepository(pool),
				generation.NewQueue(rdb, state.cfg.GenerationStream, state.cfg.GenerationGroup, state.logger),
				nil,
				state.logger,
			)

			input := generation.CreateInput{
				BookID:   bookID,
				Settings: generation.Settings{Tone: tone},
			}
			if command.Flags().Changed("reading-time") {
				input.Settings.ReadingTime = pointer.To(readingTime)
			}
			if sourceURL != "" {
				input.SourceURL = pointer.To(sourceURL)
			}

			result, err := service.CreateRequest(context, requestedBy, input)
			if err != nil {
				return err
			}
			return printJSON(command.OutOrStdout(), result)
		},
	}

	flags := command.Flags()
	flags.StringVar(&bookID, "book", "", "book id to summarize")
	flags.StringVar(&requestedBy, "requested-by", "", "user id recorded as the requester")
	flags.IntVar(&readingTime, "reading-time", 0, "target reading time in minutes")
	flags.StringVar(&tone, "tone", "", "writing tone hint")
	flags.StringVar(&sourceURL, "source-url", "", "document to summarize instead of the book description")
	_ = command.MarkFlagRequired("book")
	_ = command.MarkFlagRequired("requested-by")

	return command
}

// # Process Once

func newProcessOnceCommand(state *app) *cobra.Command {
	var bookID string

	command := &cobra.Command{
		Use:   "process-once",
		Short: "Claim and process the oldest pending request in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, args []string) error {
			context := command.Context()

			pool, err := pgstore.NewPool(context, state.cfg.DatabaseURL, state.logger, ctlPool...)
			if err != nil {
				return err
			}
			defer pool.Close()

			processor, closeGenerator, err := newProcessor(command, state, pool)
			if err != nil {
				return err
			}
			defer closeGenerator()

			request, err := processor.ProcessBook(context, bookID)
			if err != nil {
				return err
			}
			if request == nil {
				fmt.Fprintln(command.OutOrStdout(), "no pending request")
				return nil
			}
			return printJSON(command.OutOrStdout(), request)
		},
	}

	command.Flags().StringVar(&bookID, "book", "", "only claim requests for this book")
	return command
}

// newProcessor builds the same processor the worker runs. The returned close
// function releases the generator client.
func newProcessor(command *cobra.Command, state *app, pool *pgxpool.Pool) (*generation.Processor, func(), error) {
	closeGenerator := func() {}

	var generator ai.TextGenerator
	if state.cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiGenerator(command.Context(), state.cfg.GeminiAPIKey, ai.Options{Model: state.cfg.GeminiModel})
		if err != nil {
			return nil, nil, err
		}
		generator = gemini
		closeGenerator = func() { _ = gemini.Close() }
	}

	processor := generation.NewProcessor(
		generation.NewPostgresRepository(pool),
		book.NewPostgresRepository(pool),
		generator,
		generation.NewHTTPSource(constants.SourceFetchTimeout, constants.MaxSourceBytes),
		nil,
		state.logger,
	)
	return processor, closeGenerator, nil
}

func printJSON(writer io.Writer, value any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
