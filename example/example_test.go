package example

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/viant/mcpinspect"
	"github.com/viant/mcpinspect/session"
)

func Usage_Example() {
	logger := mcpinspect.NewLogger(os.Stderr, "info")
	inspector := mcpinspect.New(&mcpinspect.Options{
		APIBase: "https://api.example.com",
		Token:   os.Getenv("MCPINSPECT_TOKEN"),
	}, mcpinspect.WithLogger(logger), mcpinspect.WithListener(func(conn *mcpinspect.Connection, change *session.Change) {
		if change.Kind == session.EntryAppended {
			fmt.Println(change.Entry.Render())
		}
	}))
	defer inspector.Close()

	ctx := context.Background()
	conn, err := inspector.Inspect(ctx, "srv-1")
	if err != nil {
		log.Fatalf("failed to inspect: %v", err)
	}
	select {
	case <-conn.ToolsReady():
	case <-time.After(10 * time.Second):
		log.Fatal("no tools discovered")
	}
	for _, tool := range conn.Tools() {
		fmt.Printf("%v: %v\n", tool.Name, tool.DescriptionOrDefault())
	}
	if id, ok := conn.InvokeWith(ctx, "add", map[string]interface{}{"a": 1, "b": 2}); ok {
		time.Sleep(time.Second)
		invocation, _ := conn.Invocation(id)
		fmt.Printf("add: %v %s\n", invocation.Status, invocation.Result)
	}
}
