package cmd

import (
	"context"
	"errors"
	"time"

	"grimm.is/netgen/internal/config"
	"grimm.is/netgen/internal/generate"
	"grimm.is/netgen/internal/i18n"
	"grimm.is/netgen/internal/logging"
	"grimm.is/netgen/internal/metrics"
)

// RunGenerate renders the network definitions and writes the result below
// the root directory. Nothing is written unless every definition is valid.
func RunGenerate(ctx context.Context, opts Options) (err error) {
	start := time.Now()

	s, err := setup(opts)
	if err != nil {
		return err
	}
	log := logging.WithComponent("generate")

	m := metrics.New()
	if s.MetricsFile != "" {
		defer func() {
			m.ObserveRun(start)
			if werr := m.WriteTextfile(s.MetricsFile); werr != nil {
				log.Warn("failed to write metrics", "path", s.MetricsFile, "error", werr)
			}
		}()
	}

	net, err := loadNetwork(s)
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			m.ValidationErrors.Add(float64(len(verrs)))
		}
		return err
	}
	m.Interfaces.WithLabelValues(config.RendererNetworkd.String()).Set(float64(len(net.Interfaces(config.RendererNetworkd))))
	m.Interfaces.WithLabelValues(config.RendererNetworkManager.String()).Set(float64(len(net.Interfaces(config.RendererNetworkManager))))

	plan, err := generate.Build(net)
	if err != nil {
		return err
	}
	plan.Record(m)

	unlock, err := lockRoot(ctx, s.RootDir)
	if err != nil {
		return err
	}
	defer unlock()

	w := generate.NewWriter(s.RootDir)
	w.Metrics = m
	res, err := w.Apply(ctx, plan)
	if err != nil {
		return err
	}

	log.Debug("generation finished", "written", res.Written, "unchanged", res.Unchanged,
		"linked", res.Linked, "removed", res.Removed, "duration", time.Since(start))
	Printer.Fprintf(Stdout, i18n.MsgGenerated, res.Written, res.Linked, s.RootDir)
	if res.Removed > 0 {
		Printer.Fprintf(Stdout, i18n.MsgRemovedStale, res.Removed)
	}
	return nil
}
