// Package relay exposes a session-oriented agent CLI as a standard
// generative-model interface.
//
// The upstream agent process emits a heterogeneous stream of tagged JSON
// messages: session initialization, cumulative assistant turns, user-role
// echoes of tool results, fine-grained partial-token events, and a
// terminal result. The relay translates that feed into the uniform
// surface callers expect from any provider: either a single accumulated
// [Response], or an ordered push-stream of typed lifecycle [Event]s
// ending in exactly one terminal event.
//
// # Basic Usage
//
//	p := agentcli.New()
//
//	messages := []relay.Message{
//		{Role: relay.RoleUser, Content: "Summarize the repo layout."},
//	}
//
//	resp, err := p.Generate(ctx, messages)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(resp.Content)
//
// # Streaming
//
//	stream, err := p.Stream(ctx, messages, relay.WithPartialEvents())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for ev := range stream {
//		switch ev.Type {
//		case relay.EventTextDelta:
//			fmt.Print(ev.Delta)
//		case relay.EventError:
//			log.Fatal(ev.Err)
//		}
//	}
//
// The heavy lifting lives in the
// [github.com/relaykit/relay/translate] package, which reconciles the
// agent's overlapping coarse and fine-grained content sources, manages
// concurrent tool-call lifecycles, and recovers from the agent process
// terminating mid-emission. Process management lives in
// [github.com/relaykit/relay/agentcli].
package relay
