package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/streamupload/policy"
	"github.com/kbukum/streamupload/upload"
)

func newPutCmd(c *cli) *cobra.Command {
	var declaredType, filename string

	cmd := &cobra.Command{
		Use:   "put [file]",
		Short: "Upload a file, or stdin when no file is given",
		Example: `  streamupload put report.txt
  streamupload put --filename uploads/report.txt report.txt
  cat photo.png | streamupload put --type image/png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
				if declaredType == "" {
					declaredType = policy.TypeByFilename(args[0])
				}
			}
			if declaredType == "" {
				declaredType = policy.TypeByFilename(filename)
			}
			if declaredType == "" {
				return fmt.Errorf("cannot derive a type for the upload; pass --type")
			}
			return c.put(cmd, src, upload.Request{Type: declaredType, Filename: filename})
		},
	}
	cmd.Flags().StringVarP(&declaredType, "type", "t", "", "Declared MIME type (default: derived from the file name)")
	cmd.Flags().StringVarP(&filename, "filename", "f", "", "Destination key (default: a unique name under the base folder)")
	return cmd
}

func (c *cli) put(cmd *cobra.Command, src io.Reader, req upload.Request) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uc := upload.NewComponent(c.cfg.Upload, c.cfg.Storage, c.log)
	if err := uc.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = uc.Stop(ctx) }()

	res, err := uc.Upload(ctx, src, req)
	if err != nil {
		return err
	}
	if res.Backend == "local" {
		if abs, err := filepath.Abs(res.Location); err == nil {
			res.Location = abs
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
