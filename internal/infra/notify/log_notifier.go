package notify

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// ConsoleNotifier prints user-facing notices to out and mirrors them to the
// logger. Used by the non-interactive subcommands.
type ConsoleNotifier struct {
	Out    io.Writer
	Logger *zap.Logger
}

func NewConsoleNotifier(out io.Writer, logger *zap.Logger) *ConsoleNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleNotifier{Out: out, Logger: logger}
}

func (n *ConsoleNotifier) Success(message string) {
	fmt.Fprintf(n.Out, "✅ %s\n", message)
	n.Logger.Info(message)
}

func (n *ConsoleNotifier) Failure(message string, err error) {
	fmt.Fprintf(n.Out, "❌ %s: %v\n", message, err)
	n.Logger.Warn(message, zap.Error(err))
}
