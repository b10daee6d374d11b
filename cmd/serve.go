package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aaelony/dx-fintools-fs/pkg/web"
	"github.com/aaelony/dx-fintools-fs/pkg/web/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calculator web server",
	Long: `Starts the development/production web server for the future value
calculator. Configuration is read from fintools.toml and FINTOOLS_*
environment variables. The server runs until it is interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, loader := config.Loader()
		if err := loader.Load(); err != nil {
			return eris.Wrap(err, "failed to load configuration")
		}

		if dev, err := cmd.Flags().GetBool("dev"); err == nil && dev {
			cfg.Dev = true
		}

		if cfg.Log.JSON {
			zerolog.ErrorStackMarshaler = func(err error) interface{} {
				return eris.ToJSON(err, true)
			}
		} else {
			log.Logger = log.Output(serverConsoleWriter(os.Stderr))
			zerolog.ErrorStackMarshaler = func(err error) interface{} {
				return eris.ToString(err, true)
			}
		}

		if err := cfg.Validate(); err != nil {
			return eris.Wrap(err, "failed to parse config")
		}

		zerolog.SetGlobalLevel(cfg.LogLevel())
		if cfg.Log.File != "" {
			var logFile io.Writer
			logFile, err := os.Create(cfg.Log.File)
			if err != nil {
				return eris.Wrapf(err, "failed to open log file %s", cfg.Log.File)
			}

			if !cfg.Log.JSON {
				writer := serverConsoleWriter(logFile)
				writer.NoColor = true
				logFile = writer
			}

			log.Logger = log.Output(logFile)
		}

		log.Logger = log.Logger.With().Stack().Logger()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info().Msg("Finished parsing configuration; starting server")
		return web.Serve(ctx, cfg)
	},
}

// serverConsoleWriter returns zerolog's pretty writer tuned for the web
// server: request IDs colored, embedded stack traces unquoted.
func serverConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{Out: out}
	writer.TimeFormat = "02.01.2006 15:04:05 MST"
	writer.PartsOrder = []string{
		zerolog.TimestampFieldName,
		"req",
		zerolog.LevelFieldName,
		zerolog.MessageFieldName,
	}

	writer.FormatFieldValue = func(value interface{}) string {
		str, ok := value.(string)
		if ok {
			if len(str) == 16 {
				// request IDs are always 16 characters; we can't see the
				// field name here so we guess based on the content
				return fmt.Sprintf("\x1b[%dm%s\x1b[0m", 36, value)
			} else if strings.Contains(str, "\\n") && strings.Contains(str, "\\t") {
				unquoted, err := strconv.Unquote(str)
				if err == nil {
					return unquoted
				}
			}
		}

		return fmt.Sprintf("%s", value)
	}
	return writer
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("dev", false, "serve assets from disk and reload templates on change")
}
