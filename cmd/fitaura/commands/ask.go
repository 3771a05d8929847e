package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/moolen/fitaura/internal/orchestrator"
)

var (
	askUserID string
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [flags] MESSAGE",
	Short: "Ask the wellness assistant a single question",
	Long: `Run one orchestration for MESSAGE and print the reply. The reply is rendered
as markdown when stdout is a terminal.`,
	Example: `  fitaura ask "I feel tired after lunch every day"
  fitaura ask --user alice "How should I train for a 5k?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askUserID, "user", "u", "", "User id whose stored profile and history are used")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the full result as JSON")
}

var (
	agentsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLog(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.orchestrator.Run(ctx, askUserID, strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printResult(out, res, isTerminal(out))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printResult writes the reply and the agents line. Styling is only applied
// for terminals.
func printResult(w io.Writer, res *orchestrator.Result, styled bool) error {
	text := res.FinalText
	if styled {
		if rendered, err := renderMarkdown(text); err == nil {
			text = rendered
		}
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(text, "\n")); err != nil {
		return err
	}

	agents := "none"
	if len(res.AgentsUsed) > 0 {
		agents = strings.Join(res.AgentNames(), ", ")
	}
	line := fmt.Sprintf("agents: %s", agents)
	footer := fmt.Sprintf("termination: %s, run %s", res.Termination, res.RunID)
	if styled {
		line = agentsStyle.Render(line)
		footer = noteStyle.Render(footer)
	}
	_, err := fmt.Fprintf(w, "\n%s\n%s\n", line, footer)
	return err
}

func renderMarkdown(text string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(text)
}

// signalContext is used by long-running commands that have no cobra context.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
