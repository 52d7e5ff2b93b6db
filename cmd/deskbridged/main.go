package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/deskbridge/server/internal/config"
	"github.com/deskbridge/server/internal/desktop"
	"github.com/deskbridge/server/internal/frontdoor"
	"github.com/deskbridge/server/internal/logging"
)

var (
	version = "0.1.0"
	cfgFile string
)

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "deskbridged",
	Short: "deskbridged remote desktop server",
	Long:  `deskbridged captures a display and its default audio monitor, encodes both, and streams them to a browser over one WebSocket connection.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the server",
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("deskbridged v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./deskbridge.yaml)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogging sets up structured logging from config. Call after config.Load().
func initLogging(cfg *config.Config) {
	var output io.Writer = os.Stdout

	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, 50, 3)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v (logging to stdout)\n", cfg.LogFile, err)
		} else {
			output = logging.TeeWriter(os.Stdout, rw)
		}
	}

	logging.Init(cfg.LogFormat, cfg.LogLevel, output)
	log = logging.L("main")
}

func runServer() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	initLogging(cfg)

	sessCfg := desktop.SessionConfig{
		CaptureRect: desktop.Rect{
			X: cfg.CaptureRect.X,
			Y: cfg.CaptureRect.Y,
			W: cfg.CaptureRect.W,
			H: cfg.CaptureRect.H,
		},
		FPS:              cfg.FPS,
		VideoBitrateBps:  cfg.VideoBitrate,
		GOPSize:          cfg.GOPSize,
		ConverterThreads: cfg.ConverterThreads,
		Audio: desktop.AudioConfig{
			SampleRate:   cfg.AudioSampleRate,
			Channels:     cfg.AudioChannels,
			FrameSamples: cfg.AudioFrameSamples,
			OpusBitrate:  cfg.OpusBitrate,
		},
	}

	handler := frontdoor.NewHandler(cfg.WebRoot, frontdoor.NewSessionFactory(sessCfg))

	listener, err := frontdoor.Listen(cfg.ListenAddr)
	if err != nil {
		log.Error("failed to listen", "addr", cfg.ListenAddr, "error", err)
		os.Exit(1)
	}

	log.Info("deskbridged listening", "addr", cfg.ListenAddr, "webRoot", cfg.WebRoot, "captureRect", sessCfg.CaptureRect, "fps", sessCfg.FPS)
	if err := http.Serve(listener, handler); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
