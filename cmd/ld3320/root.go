package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tarm/serial"
	"ld3320.dev/internal/config"
)

var (
	configPath  string
	simulate    bool
	consolePort string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "ld3320",
	Short:         "Speech recognition and MP3 playback on an LD3320 module",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&simulate, "sim", false, "use a simulated chip instead of the board")
	rootCmd.PersistentFlags().StringVar(&consolePort, "console", "", "serial port to mirror the log to")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overriding the configuration")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(pinsCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(runCmd)
}

// env is the state shared by the commands.
type env struct {
	cfg *config.Config
	log *logrus.Entry

	console io.Closer
}

// setup loads the configuration and the logger for cmd.
func setup(cmd *cobra.Command) (*env, error) {
	cfg := config.Default()
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if consolePort != "" {
		cfg.Console.Port = consolePort
		if cfg.Console.Baud == 0 {
			cfg.Console.Baud = config.DefaultConsoleBaud
		}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	e := &env{cfg: cfg}
	out := cmd.ErrOrStderr()
	if p := cfg.Console.Port; p != "" {
		port, err := serial.OpenPort(&serial.Config{Name: p, Baud: cfg.Console.Baud})
		if err != nil {
			return nil, err
		}
		e.console = port
		out = io.MultiWriter(out, port)
	}
	logger, err := newLogger(cfg.Log.Level, out)
	if err != nil {
		e.close()
		return nil, err
	}
	e.log = logrus.NewEntry(logger)
	return e, nil
}

func (e *env) close() {
	if e.console != nil {
		e.console.Close()
	}
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return logger, nil
}
