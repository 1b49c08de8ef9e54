// Command callo is a terminal front end for the Callo client: one-shot
// questions, a chat REPL over a data-aware conversation, and an agenda dump
// of the store. Configuration comes from CALLO_-prefixed environment
// variables; see the callo package docs.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	callo "github.com/rishikanchi/Callo"
)

var debug bool

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "callo",
		Short: "Callo productivity assistant",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				_ = os.Setenv("CALLO_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAgendaCmd())

	return rootCmd
}

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a one-shot question with no conversation state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := callo.NewFromEnv()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			start := time.Now()
			reply, err := c.Ask(ctx, args[0])
			if err != nil {
				log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("ask failed")
				return err
			}
			log.Debug().Dur("elapsed", time.Since(start)).Msg("ask completed")
			fmt.Println(reply)
			return nil
		},
	}
	return cmd
}

func newChatCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant over your current agenda",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := callo.NewFromEnv()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }() // Drain queues before exiting

			ctx := cmd.Context()
			if _, err := c.Store().RequireUser(); err != nil {
				// Demo sessions sign in a throwaway local user so the
				// assistant has an agenda to talk about.
				if err := c.Store().SignUp(ctx, name, email, "demo-session"); err != nil {
					return err
				}
			}

			convID, err := c.NewAssistantConversation()
			if err != nil {
				return err
			}
			log.Debug().Str("conversation_id", convID).Msg("conversation started")
			fmt.Println("Chatting with Callo. /history shows the transcript, /clear starts over, /quit exits.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "":
					continue
				case line == "/quit" || line == "/exit":
					return nil
				case line == "/clear":
					if err := c.Assistant().Clear(convID); err != nil {
						return err
					}
					fmt.Println("Conversation cleared.")
					continue
				case line == "/history":
					history, err := c.Assistant().History(convID)
					if err != nil {
						return err
					}
					for _, msg := range history {
						fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
					}
					continue
				}

				turnCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
				reply, err := c.Chat(turnCtx, convID, line)
				cancel()
				if err != nil {
					log.Error().Err(err).Msg("chat turn failed")
					continue
				}
				fmt.Println(reply)
			}
		},
	}

	cmd.Flags().StringVar(&name, "name", "Demo User", "Display name for the demo session")
	cmd.Flags().StringVar(&email, "email", "demo@callo.local", "Email for the demo session")

	return cmd
}

func newAgendaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print the store's current events, tasks and habits",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := callo.NewFromEnv()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			st := c.Store()
			fmt.Println("Events:")
			for _, e := range st.Events().Value() {
				fmt.Printf("  %s (%s to %s)\n", e.Title, e.StartTime, e.EndTime)
			}
			fmt.Println("Tasks:")
			for _, t := range st.Tasks().Value() {
				mark := " "
				if t.IsCompleted {
					mark = "x"
				}
				fmt.Printf("  [%s] %s (due %s)\n", mark, t.Title, t.DueDate)
			}
			fmt.Println("Habits:")
			for _, h := range st.Habits().Value() {
				fmt.Printf("  %s (%d completions)\n", h.Title, len(h.DatesCompleted))
			}
			return nil
		},
	}
	return cmd
}
