package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/sir_venger/chunkload/pkg/chunkproto"
	"github.com/sir_venger/chunkload/pkg/uploadclient"
)

func main() {
	app := &cli.App{
		Name:      "upload",
		Usage:     "Send files to a chunkload server in Content-Range chunks",
		ArgsUsage: "FILE [FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:3000",
				Usage:   "Base URL of the server",
				EnvVars: []string{"CHUNKLOAD_URL"},
			},
			&cli.Int64Flag{
				Name:  "chunk-size",
				Value: chunkproto.DefaultChunkSize,
				Usage: "Chunk size in bytes",
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "Upload id (single file only); random UUID when empty",
			},
			&cli.StringFlag{
				Name:  "field",
				Value: chunkproto.DefaultFileField,
				Usage: "Multipart field name",
			},
			&cli.IntFlag{
				Name:  "parallel",
				Value: 2,
				Usage: "How many files to upload at once",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Disable progress output",
			},
		},
		Action: upload,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func upload(ctx *cli.Context) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	paths := ctx.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("at least one FILE is required", 2)
	}
	if ctx.String("id") != "" && len(paths) > 1 {
		return cli.Exit("--id can only be used with a single FILE", 2)
	}

	reqs := make([]uploadclient.UploadRequest, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		fi, err := f.Stat()
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return fmt.Errorf("%s is a directory", p)
		}

		reqs = append(reqs, uploadclient.UploadRequest{
			UploadID:  ctx.String("id"),
			Filename:  filepath.Base(p),
			Reader:    f,
			Size:      fi.Size(),
			ChunkSize: ctx.Int64("chunk-size"),
			Field:     ctx.String("field"),
		})
	}

	var opts []uploadclient.Option
	if !ctx.Bool("quiet") {
		opts = append(opts, uploadclient.WithProgress(os.Stderr))
	}
	client := uploadclient.New(opts...)

	results, err := client.UploadAll(ctx.Context, ctx.String("url"), reqs, ctx.Int("parallel"))
	if err != nil {
		return err
	}

	for i, res := range results {
		if len(res) == 0 {
			continue
		}
		last := res[len(res)-1]
		logger.Info("uploaded",
			zap.String("file", reqs[i].Filename),
			zap.String("upload_id", last.UploadID),
			zap.Int("parts", len(res)),
			zap.Bool("complete", last.IsLastPart),
		)
	}

	return nil
}
