package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nayru/internal/cliclient"
	"nayru/internal/cliutil"
	"nayru/internal/config"
	"nayru/internal/engine"
	"nayru/internal/httpapi"
	"nayru/internal/logging"
)

func main() {
	config.Load()

	var httpAddr string

	rootCmd := &cobra.Command{
		Use:   "nayru",
		Short: "Local voice server",
		Long: `
Nayru is a local TTS server and CLI: "serve" runs the engine and HTTP
API, the other subcommands are thin clients that talk to a running
server.
		`,
	}
	rootCmd.PersistentFlags().StringVar(&httpAddr, "addr", "", "nayru server address (default: from config)")

	rootCmd.AddCommand(
		serveCmd(),
		speakCmd(&httpAddr),
		stopCmd(&httpAddr),
		pauseCmd(&httpAddr),
		resumeCmd(&httpAddr),
		skipCmd(&httpAddr),
		statusCmd(&httpAddr),
	)

	if err := rootCmd.Execute(); err != nil {
		cliutil.Error.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func resolveAddr(flag string) string {
	if flag != "" {
		return flag
	}
	return config.EngineConfig().HTTPAddr
}

func exitCodeFor(err error) int {
	switch err.(type) {
	case *cliclient.ErrUnreachable:
		return 1
	case *cliclient.ErrAPI:
		return 2
	default:
		return 1
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the synthesis/playback engine and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.EngineConfig()
			logger := logging.New(cfg.LogLevel)

			eng, err := engine.New(cfg, logger)
			if err != nil {
				return err
			}
			defer eng.Close()

			handler := httpapi.NewHandler(eng, logger.WithField("component", "httpapi"))
			router := httpapi.NewRouter(handler)

			srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-sigChan
				eng.Stop()
				fmt.Println("\n" + cliutil.Warning.Sprint("shutting down"))
				srv.Close()
			}()

			logger.WithField("addr", cfg.HTTPAddr).Info("nayru listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("port", "", "HTTP bind port (overrides the configured address's port)")
	cmd.Flags().String("voice", "", "default voice")
	cmd.Flags().String("kokoro-url", "", "upstream TTS server URL")
	cmd.Flags().Float64("speed", 0, "default playback speed")
	if err := config.BindServeFlags(cmd.Flags()); err != nil {
		panic("bind serve flags: " + err.Error())
	}
	return cmd
}

func speakCmd(addr *string) *cobra.Command {
	var voice string
	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Queue text for synthesis and playback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cliclient.New(resolveAddr(*addr))
			res, err := c.Speak(args[0], voice)
			if err != nil {
				return err
			}
			cliutil.Success.Printf("queued %d chunks [%s]\n", res.QueuedChunks, res.UtteranceID)
			return nil
		},
	}
	cmd.Flags().StringVar(&voice, "voice", "", "override the configured voice for this utterance only")
	return cmd
}

func stopCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Cancel the current utterance",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cliclient.New(resolveAddr(*addr))
			if err := c.Stop(); err != nil {
				return err
			}
			cliutil.Info.Println("stopped")
			return nil
		},
	}
}

func pauseCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause playback",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cliclient.New(resolveAddr(*addr))
			if err := c.Pause(); err != nil {
				return err
			}
			cliutil.Info.Println("paused")
			return nil
		},
	}
}

func resumeCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume playback",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cliclient.New(resolveAddr(*addr))
			if err := c.Resume(); err != nil {
				return err
			}
			cliutil.Info.Println("resumed")
			return nil
		},
	}
}

func skipCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "Skip the currently playing clip",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cliclient.New(resolveAddr(*addr))
			if err := c.Skip(); err != nil {
				return err
			}
			cliutil.Info.Println("skipped")
			return nil
		},
	}
}

func statusCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current playback status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cliclient.New(resolveAddr(*addr))
			s, err := c.Status()
			if err != nil {
				return err
			}
			idx := "-"
			if s.CurrentSentenceIndex != nil {
				idx = fmt.Sprintf("%d", *s.CurrentSentenceIndex)
			}
			cliutil.Title.Printf("state=%s index=%s/%d queue=%d voice=%s speed=%.2f\n",
				s.State, idx, s.TotalSentences, s.QueueLength, s.Voice, s.Speed)
			if s.LastError != "" {
				cliutil.Error.Printf("last_error: %s\n", s.LastError)
			}
			return nil
		},
	}
}
