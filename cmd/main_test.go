package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oplozada/estadistica/internal/config"
	"github.com/oplozada/estadistica/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the server mux built from default configuration", t, func() {
		cfg := config.New()
		cfg.WorkerCount = 1
		svc := newService(cfg)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(context.Background(), svc)

		convey.Convey("Then every documented route answers", func() {
			for _, path := range []string{"/healthz", "/stats", "/metrics", "/openapi.yaml", "/api-docs", "/analyses"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then the configured rank order reaches the service", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))
			var stats map[string]any
			convey.So(json.Unmarshal(w.Body.Bytes(), &stats), convey.ShouldBeNil)
			convey.So(stats["rankOrder"], convey.ShouldEqual, "descending")
			convey.So(stats["alpha"], convey.ShouldEqual, 0.05)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a server started on a free port", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)

		cfg := config.New()
		cfg.WorkerCount = 2
		ctx, cancel := context.WithCancel(context.Background())
		var runErr error
		finished := make(chan struct{})
		go func() {
			runErr = run(ctx, cfg, ln)
			close(finished)
		}()

		base := fmt.Sprintf("http://%s", ln.Addr())

		convey.Convey("When a matrix is evaluated over HTTP", func() {
			resp, err := http.Post(base+"/evaluate", "application/json",
				strings.NewReader(`{"scores": [[1,2,3],[1,2,3]], "alpha": 0.05}`))
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then the result is returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				var res map[string]any
				convey.So(json.NewDecoder(resp.Body).Decode(&res), convey.ShouldBeNil)
				convey.So(res["w"], convey.ShouldAlmostEqual, 1.0, 1e-12)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cancel()

			convey.Convey("Then run returns without error", func() {
				select {
				case <-finished:
					convey.So(runErr, convey.ShouldBeNil)
				case <-time.After(10 * time.Second):
					t.Fatal("server did not stop")
				}
			})
		})

		convey.Reset(func() {
			cancel()
			select {
			case <-finished:
			case <-time.After(10 * time.Second):
			}
		})
	})
}
