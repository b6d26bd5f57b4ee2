package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/mapstructure"
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdcore "github.com/projecteru2/vasup/cmd/core"
	cmdinstall "github.com/projecteru2/vasup/cmd/install"
	cmdothers "github.com/projecteru2/vasup/cmd/others"
	"github.com/projecteru2/vasup/config"
)

var (
	cfgFile string
	conf    *config.Config
)

var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "vasup",
		Short:        "vasup - resumable OpenVAS provisioning",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(commandContext(cmd))
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.PersistentFlags().String("root-dir", "", "state directory")
	cmd.PersistentFlags().String("log-dir", "", "transcript directory")
	cmd.PersistentFlags().Bool("assume-yes", false, "answer yes to every confirmation prompt")

	_ = viper.BindPFlag("root_dir", cmd.PersistentFlags().Lookup("root-dir"))
	_ = viper.BindPFlag("log_dir", cmd.PersistentFlags().Lookup("log-dir"))
	_ = viper.BindPFlag("assume_yes", cmd.PersistentFlags().Lookup("assume-yes"))

	viper.SetEnvPrefix("VASUP")
	viper.AutomaticEnv()

	confProvider := func() *config.Config { return conf }

	base := cmdcore.BaseHandler{ConfProvider: confProvider}
	for _, c := range cmdinstall.Commands(cmdinstall.Handler{BaseHandler: base}) {
		cmd.AddCommand(c)
	}
	for _, c := range cmdothers.Commands(cmdothers.Handler{BaseHandler: base}) {
		cmd.AddCommand(c)
	}

	return cmd
}()

func initConfig(ctx context.Context) error {
	conf = config.DefaultConfig()

	// Registering the bound keys' defaults keeps an untouched flag (empty
	// default) from clobbering the struct defaults, and lets env-only
	// overrides surface through Unmarshal.
	viper.SetDefault("root_dir", conf.RootDir)
	viper.SetDefault("log_dir", conf.LogDir)
	viper.SetDefault("assume_yes", conf.AssumeYes)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	_ = viper.ReadInConfig() // optional; missing file is OK

	// Config structs carry json tags; viper decodes by mapstructure tag
	// unless told otherwise.
	if err := viper.Unmarshal(conf, func(dc *mapstructure.DecoderConfig) { dc.TagName = "json" }); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	return log.SetupLog(ctx, &conf.Log, "")
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func newCommandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Execute is the main entry point called from main.go.
func Execute() error {
	ctx, cancel := newCommandContext()
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}
