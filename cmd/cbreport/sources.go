package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HaPhanBaoMinh/cbreport/internal/discovery"
	"github.com/HaPhanBaoMinh/cbreport/internal/dispatch"
	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
	"github.com/HaPhanBaoMinh/cbreport/internal/infrastructure/k8s"
	"github.com/HaPhanBaoMinh/cbreport/internal/infrastructure/mock"
)

func dispatchOptions() (dispatch.Options, error) {
	format, err := domain.ParseFormat(cfg.Format)
	if err != nil {
		return dispatch.Options{}, err
	}
	opts := dispatch.Options{
		Format:             format,
		Indent:             cfg.Indent,
		ReportWidth:        cfg.ReportWidth,
		SynchronizedClocks: cfg.SynchronizedClocks,
		Parallelism:        cfg.Parallelism,
		Namespace:          cfg.Namespace,
		Logger:             log,
	}
	if cfg.LivePods {
		repo, err := k8s.New(cfg.Kubeconfig, cfg.Context)
		if err != nil {
			return dispatch.Options{}, fmt.Errorf("connect to cluster: %w", err)
		}
		opts.Live = repo
	}
	return opts, nil
}

// collectSources turns arguments into report sources: the mock generator when
// --mock is set, stdin when no argument is given, otherwise every report file
// found under the arguments.
func collectSources(cmd *cobra.Command, args []string) ([]dispatch.Source, error) {
	if mockWorkers > 0 {
		gen := mock.New(1)
		return []dispatch.Source{{
			Name: "mock",
			Load: func() (*domain.Payload, error) { return gen.Payload(mockWorkers) },
		}}, nil
	}
	if len(args) == 0 {
		return []dispatch.Source{dispatch.ReaderSource("stdin", cmd.InOrStdin())}, nil
	}
	var sources []dispatch.Source
	for _, arg := range args {
		files, err := discovery.ResolveSources(arg)
		if err != nil {
			if os.IsNotExist(err) {
				log.Warn("skipping missing report source", "source", arg)
				continue
			}
			return nil, err
		}
		if len(files) == 0 {
			log.Warn("no reports found", "source", arg)
		}
		for _, f := range files {
			sources = append(sources, dispatch.FileSource(f))
		}
	}
	return sources, nil
}
