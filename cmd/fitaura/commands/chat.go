package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/tui"
)

var (
	chatUserID  string
	chatLogFile string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive wellness chat in the terminal",
	Long: `Open a full-screen chat. Each message is answered by one orchestration run;
specialist progress is shown while the run is in flight. Logs are discarded
unless --log-file is set.`,
	Example: `  fitaura chat --user alice
  fitaura chat -u alice --log-file /tmp/fitaura.log`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatUserID, "user", "u", "local", "User id whose stored profile and history are used")
	chatCmd.Flags().StringVar(&chatLogFile, "log-file", "", "Write logs to this file instead of discarding them")
}

func runChat(cmd *cobra.Command, _ []string) error {
	if !isTerminal(os.Stdout) {
		return errors.New("chat requires an interactive terminal; use 'fitaura ask' instead")
	}

	// the alt screen owns stdout and stderr
	var logOut io.Writer = io.Discard
	if chatLogFile != "" {
		f, err := os.OpenFile(chatLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logging.SetOutput(logOut, logOut)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLog(cfg); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	rt, err := newRuntime(ctx, cfg, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	return tui.Run(ctx, tui.Config{Runner: rt.orchestrator, UserID: chatUserID})
}
