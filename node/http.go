package node

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/NethermindEth/starknet-validator/component"
	"github.com/NethermindEth/starknet-validator/service"
	"github.com/NethermindEth/starknet-validator/utils"
	"github.com/NethermindEth/starknet-validator/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcegraph/conc"
)

type httpService struct {
	srv      *http.Server
	listener net.Listener
}

var _ service.Service = (*httpService)(nil)

func (h *httpService) Run(ctx context.Context) error {
	errCh := make(chan error)
	defer close(errCh)

	var wg conc.WaitGroup
	defer wg.Wait()
	wg.Go(func() {
		if err := h.srv.Serve(h.listener); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	})

	select {
	case <-ctx.Done():
		return h.srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// HeightReader reports the height a validator is set up for, if any
type HeightReader interface {
	Height() (uint64, bool)
}

type ReadinessHandlers struct {
	heights HeightReader
}

func NewReadinessHandlers(heights HeightReader) *ReadinessHandlers {
	return &ReadinessHandlers{heights: heights}
}

func (h *ReadinessHandlers) HandleLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleReady answers 200 only while a height is set up and transactions can be validated
func (h *ReadinessHandlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if _, live := h.heights.Height(); !live {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func makeValidatorOverHTTP(listener net.Listener, handler component.Handler[validator.Request, validator.Response],
	heights HeightReader, log utils.SimpleLogger,
) *httpService {
	readiness := NewReadinessHandlers(heights)
	mux := http.NewServeMux()
	mux.Handle("/", component.NewRemoteServer[validator.Request, validator.Response](handler, log))
	mux.HandleFunc("/live", readiness.HandleLive)
	mux.HandleFunc("/ready", readiness.HandleReady)
	return &httpService{
		srv: &http.Server{
			Addr:    listener.Addr().String(),
			Handler: mux,
			// ReadTimeout also sets ReadHeaderTimeout and IdleTimeout.
			ReadTimeout: 30 * time.Second,
		},
		listener: listener,
	}
}

func makeMetrics(listener net.Listener) *httpService {
	return &httpService{
		srv: &http.Server{
			Addr:    listener.Addr().String(),
			Handler: promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{Registry: prometheus.DefaultRegisterer}),
			// ReadTimeout also sets ReadHeaderTimeout and IdleTimeout.
			ReadTimeout: 30 * time.Second,
		},
		listener: listener,
	}
}
