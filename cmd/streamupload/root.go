package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/streamupload/logger"
)

// cli carries state shared by the subcommands.
type cli struct {
	configFile string
	cfg        *AppConfig
	log        *logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Stream uploads into local or object storage",
		Long:          "Validate streamed uploads against an extension, type and size policy and store them on the local filesystem or in an S3-compatible bucket.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(c.configFile)
			if err != nil {
				return err
			}
			c.cfg, c.log = cfg, log
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", "",
		"Path to the config file (default: searched under ./cmd/streamupload, ./config and .)")

	root.AddCommand(newPutCmd(c))
	root.AddCommand(newServeCmd(c))
	return root
}
