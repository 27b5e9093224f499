package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/viant/afs"
	"github.com/viant/mcpinspect"
	"github.com/viant/mcpinspect/auth/store"
	"github.com/viant/mcpinspect/session"
	"github.com/viant/mcpinspect/transcript"
)

// Run parses args and inspects the resource until calls complete, the wait
// elapses, the connection gives up, or the process is interrupted.
func Run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	inspectOptions := &options.Options
	if options.ConfigURL != "" {
		loaded, err := mcpinspect.LoadOptions(ctx, options.ConfigURL)
		if err != nil {
			return err
		}
		loaded.Merge(&options.Options)
		inspectOptions = loaded
	}
	inspectOptions.Init()
	logger := mcpinspect.NewLogger(stderr, inspectOptions.LogLevel)

	var calls []*call
	for _, value := range options.Calls {
		aCall, err := parseCall(value)
		if err != nil {
			return err
		}
		calls = append(calls, aCall)
	}

	inspectorOptions := []mcpinspect.InspectorOption{mcpinspect.WithLogger(logger), mcpinspect.WithLookupEnv(os.LookupEnv)}
	if inspectOptions.TokenStoreURL != "" {
		tokens, err := store.NewFileStore(ctx, inspectOptions.TokenStoreURL)
		if err != nil {
			return err
		}
		inspectorOptions = append(inspectorOptions, mcpinspect.WithStore(tokens))
	}

	printer := &printer{w: stdout, quiet: options.Quiet}
	inspectorOptions = append(inspectorOptions, mcpinspect.WithListener(printer.onChange))
	inspector := mcpinspect.New(inspectOptions, inspectorOptions...)
	defer inspector.Close()

	conn, err := inspector.Inspect(ctx, options.Resource)
	if err != nil {
		return err
	}
	logger.Info().Str("url", conn.URL).Msg("inspecting")

	waitCtx := ctx
	if options.Wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, options.Wait)
		defer cancel()
	}

	if len(calls) > 0 {
		if err := invokeAll(waitCtx, conn, calls, stdout); err != nil {
			logger.Warn().Err(err).Msg("calls did not complete")
		}
		if options.Wait == 0 {
			return export(ctx, options.TranscriptURL, conn)
		}
	}
	select {
	case <-waitCtx.Done():
	case <-conn.Done():
	}
	return export(ctx, options.TranscriptURL, conn)
}

// invokeAll waits for discovery, sends every call and waits for their responses.
func invokeAll(ctx context.Context, conn *mcpinspect.Connection, calls []*call, stdout io.Writer) error {
	select {
	case <-conn.ToolsReady():
	case <-conn.Done():
		return fmt.Errorf("connection closed before discovery")
	case <-ctx.Done():
		return ctx.Err()
	}
	var ids []string
	for _, aCall := range calls {
		var id string
		var ok bool
		if aCall.arguments != nil {
			id, ok = conn.InvokeWith(ctx, aCall.tool, aCall.arguments)
		} else if hasTool(conn, aCall.tool) {
			id, ok = conn.Invoke(ctx, aCall.tool)
		} else {
			id, ok = conn.InvokeWith(ctx, aCall.tool, nil)
		}
		if !ok {
			return fmt.Errorf("failed to invoke %v: connection not open", aCall.tool)
		}
		ids = append(ids, id)
	}
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		pending := 0
		for _, id := range ids {
			if invocation, ok := conn.Invocation(id); ok && invocation.Status == session.Pending {
				pending++
			}
		}
		if pending == 0 {
			return nil
		}
		select {
		case <-ticker.C:
		case <-conn.Done():
			return fmt.Errorf("connection closed with %d pending calls", pending)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// hasTool reports whether name was discovered; unknown tools are still sent so
// that the server error shows up in the transcript.
func hasTool(conn *mcpinspect.Connection, name string) bool {
	for _, tool := range conn.Tools() {
		if tool.Name == name {
			return true
		}
	}
	return false
}

func export(ctx context.Context, URL string, conn *mcpinspect.Connection) error {
	if URL == "" {
		return nil
	}
	buffer := &bytes.Buffer{}
	if err := transcript.WriteJSONLines(buffer, conn.Transcript()); err != nil {
		return err
	}
	if err := afs.New().Upload(ctx, URL, 0o644, buffer); err != nil {
		return fmt.Errorf("failed to export transcript to %v: %w", URL, err)
	}
	return nil
}

type printer struct {
	mux   sync.Mutex
	w     io.Writer
	quiet bool
}

func (p *printer) onChange(conn *mcpinspect.Connection, change *session.Change) {
	p.mux.Lock()
	defer p.mux.Unlock()
	switch change.Kind {
	case session.EntryAppended:
		if !p.quiet {
			fmt.Fprintln(p.w, change.Entry.Render())
		}
	case session.StateChanged:
		fmt.Fprintf(p.w, "[%v] %v\n", conn.ResourceID, change.State.Label())
	case session.ToolsReplaced:
		fmt.Fprintf(p.w, "Available Tools (%d)\n", len(change.Tools))
		for _, tool := range change.Tools {
			fmt.Fprintf(p.w, "  %v: %v\n", tool.Name, tool.DescriptionOrDefault())
			for _, param := range tool.Parameters() {
				required := ""
				if param.Required {
					required = " (required)"
				}
				fmt.Fprintf(p.w, "    - %v: %v%v\n", param.Name, param.Type, required)
			}
		}
	case session.InvocationCompleted:
		invocation := change.Invocation
		if invocation.Status == session.Failed && invocation.Error != nil {
			fmt.Fprintf(p.w, "%v #%v failed: %v\n", invocation.Tool, invocation.ID, invocation.Error.Message)
			return
		}
		fmt.Fprintf(p.w, "%v #%v %v\n", invocation.Tool, invocation.ID, invocation.Status)
	}
}
