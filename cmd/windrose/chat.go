package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/windrose-ai/windrose"
	"github.com/windrose-ai/windrose/internal/config"
	"github.com/windrose-ai/windrose/internal/presentation/tui"
	"github.com/windrose-ai/windrose/pkg/adapters/mcptool"
	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive travel support chat in the terminal",
	Long: `Starts a local REPL against the conversation engine. Without an MCP tool
server configured, a built-in demo model and canned tool results are used so
the full flow can be explored offline.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("customer", "demo-customer", "Customer id to attach to the conversation")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logLevel, _ := cmd.Flags().GetString("log-level")
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger := newLogger(logLevel)

	var dispatcher ports.ToolDispatcher = demoDispatcher{}
	if cfg.MCP.Command != "" {
		mcpDispatcher, err := mcptool.New(ctx, cfg.MCP.Command, cfg.MCP.Args, mcptool.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("connecting to tool server: %w", err)
		}
		defer mcpDispatcher.Close()
		dispatcher = mcpDispatcher
	}

	orc, err := windrose.New(demoModel{}, dispatcher,
		windrose.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	render := tui.NewRenderer()
	if interactive {
		tui.PrintBanner()
		fmt.Println("Type your message and press enter. Ctrl+D or /quit to leave.")
		fmt.Println()
	}

	customerID, _ := cmd.Flags().GetString("customer")
	conversationID := uuid.NewString()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("you> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		resp, err := orc.ProcessTurn(ctx, windrose.TurnRequest{
			ConversationID: conversationID,
			CustomerID:     customerID,
			Message:        line,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "turn failed: %v\n", err)
			continue
		}

		if interactive {
			fmt.Print(render(resp.AssistantText))
		} else {
			fmt.Println(resp.AssistantText)
		}
		if len(resp.Suggestions) > 0 {
			fmt.Printf("  (ideas: %s)\n", strings.Join(resp.Suggestions, ", "))
		}
		if resp.State.CurrentPhase == domain.PhaseEscalation {
			fmt.Println("This conversation has been handed off to a human agent.")
			break
		}
	}

	return orc.EndConversation(context.WithoutCancel(ctx), conversationID)
}
