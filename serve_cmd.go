package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/narrate/internal/audio"
	"github.com/dgnsrekt/narrate/internal/engine"
	"github.com/dgnsrekt/narrate/internal/pipeline"
	"github.com/dgnsrekt/narrate/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Serve PDF-to-MP3 conversion over HTTP",
	Long:    paragraph(fmt.Sprintf("\nStart an %s that accepts PDF uploads on POST /convert and responds with the finished MP3.", keyword("HTTP server"))),
	Example: paragraph("narrate serve\nnarrate serve --addr :9090"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := audio.CheckFFmpeg(engine.FFmpegInstallHint()); err != nil {
			return err
		}

		eng, err := engine.NewSelector(language).Select(cmd.Context(), engineName)
		if err != nil {
			return err
		}

		converter := pipeline.NewConverter(eng, audio.NewAssembler(audio.FFmpeg{}))
		converter.MaxChunkChars = maxChunkChars

		return server.New(converter).Run(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "address to listen on")
}
