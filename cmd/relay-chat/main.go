// Command relay-chat streams a single prompt through the agent CLI and
// prints the response as it arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"github.com/relaykit/relay"
	"github.com/relaykit/relay/agentcli"
)

func main() {
	godotenv.Load()

	binary := flag.String("binary", agentcli.DefaultBinary, "agent CLI binary")
	model := flag.String("model", "", "model override")
	showTools := flag.Bool("tools", false, "print tool activity")
	flag.Parse()

	promptText := strings.Join(flag.Args(), " ")
	if promptText == "" {
		fmt.Fprintln(os.Stderr, "usage: relay-chat [flags] <prompt>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := agentcli.New(
		agentcli.WithBinary(*binary),
		agentcli.WithModel(*model),
	)

	messages := []relay.Message{
		{Role: relay.RoleUser, Content: promptText},
	}

	stream, err := client.Stream(ctx, messages, relay.WithPartialEvents())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for ev := range stream {
		switch ev.Type {
		case relay.EventTextDelta:
			fmt.Print(ev.Delta)
		case relay.EventToolCall:
			if *showTools {
				fmt.Fprintf(os.Stderr, "\n[tool %s: %s]\n", ev.ToolCall.Name, ev.ToolCall.Arguments)
			}
		case relay.EventToolResult:
			if *showTools {
				fmt.Fprintf(os.Stderr, "[tool %s done]\n", ev.ToolCall.Name)
			}
		case relay.EventFinish:
			fmt.Printf("\n[%s; tokens: %d in, %d out; cost: $%.4f]\n",
				ev.FinishReason,
				ev.Usage.InputTokens,
				ev.Usage.OutputTokens,
				ev.Metadata.CostUSD)
		case relay.EventError:
			fmt.Fprintf(os.Stderr, "\nStream error: %v\n", ev.Err)
			os.Exit(1)
		}
	}
}
