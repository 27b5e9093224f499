package cli

import (
	"time"

	"github.com/viant/mcpinspect"
)

// Options defines command line options
type Options struct {
	mcpinspect.Options
	ConfigURL     string        `short:"c" long:"config" description:"options file (yaml, toml or json)"`
	Resource      string        `short:"r" long:"resource" description:"resource id to inspect" required:"true"`
	Calls         []string      `long:"call" description:"tool to invoke once discovered, optionally name=<json arguments>; repeatable"`
	Wait          time.Duration `short:"w" long:"wait" description:"how long to stay connected, 0 waits for calls to complete or for an interrupt"`
	TranscriptURL string        `long:"transcript" description:"location to export the transcript as JSON lines"`
	Quiet         bool          `short:"q" long:"quiet" description:"do not print transcript entries"`
}
