package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/minutes/bootstrap"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the attribution and analysis API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(false)
			if err != nil {
				return err
			}
			srv, err := newHTTPServer(cmd, a)
			if err != nil {
				return err
			}
			a.Register(bootstrap.NewComponent("http-server", srv.Start, srv.Stop))
			return a.Run(cmd.Context())
		},
	}
}

// newHTTPServer wires the API. A disabled model leaves the analysis routes
// answering 503 instead of failing startup.
func newHTTPServer(cmd *cobra.Command, a *app) (*server.Server, error) {
	ctx := cmd.Context()
	pipeline := newPipeline(a)
	records, err := newRecords(ctx, a)
	if err != nil {
		return nil, err
	}
	checkers := []observability.HealthChecker{records}

	api := &server.API{Attribution: pipeline, Records: records}
	model, err := newModel(a)
	if err != nil {
		return nil, err
	}
	if model != nil {
		checkers = append(checkers, model)
		if api.Analyzer, err = newAnalyzer(model, pipeline, a); err != nil {
			return nil, err
		}
	} else {
		a.Logger.Warn("language model disabled, analysis routes unavailable")
	}

	speech, err := newSpeech(a)
	if err != nil {
		return nil, err
	}
	if speech != nil {
		api.Transcriber = speech
		checkers = append(checkers, speech.Checkers()...)
	}

	srv := server.New(a.Cfg.Server, a.Logger.WithComponent("server"))
	srv.RegisterSystemEndpoints(a.Name, checkers...)
	srv.RegisterAPI(api)
	return srv, nil
}
