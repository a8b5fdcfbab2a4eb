package steam_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"pwsi/core/enrich"
	"pwsi/core/enrich/steam"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newCDN(t *testing.T, serve func(path string) int) (*httptest.Server, *int32) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(serve(r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestProbe(t *testing.T) {
	srv, _ := newCDN(t, func(path string) int {
		if strings.HasSuffix(path, "header.jpg") {
			return 200
		}
		return 404
	})

	p := steam.New(steam.Config{
		Enabled:  true,
		StoreURL: "https://store.example/app/",
		Pictures: srv.URL + "/%d/capsule.jpg, " + srv.URL + "/%d/header.jpg",
	}, zap.NewNop())

	info := p.Probe(context.Background(), 570)
	assert.Equal(t, "https://store.example/app/570", info.Link)
	assert.Equal(t, srv.URL+"/570/header.jpg", info.Picture)
}

func TestProbeChunkedPictures(t *testing.T) {
	var methods sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods.Store(r.Method, true)
		if strings.HasSuffix(r.URL.Path, "header.jpg") {
			w.WriteHeader(200)
		} else {
			w.WriteHeader(404)
		}
		chunk := make([]byte, 4096)
		for range 16 {
			_, _ = w.Write(chunk)
			w.(http.Flusher).Flush()
		}
	}))
	t.Cleanup(srv.Close)

	p := steam.New(steam.Config{
		Enabled:  true,
		StoreURL: "https://store.example/app",
		Pictures: srv.URL + "/%d/capsule.jpg," + srv.URL + "/%d/header.jpg",
	}, zap.NewNop())

	for id := int64(1); id <= 5; id++ {
		info := p.Probe(context.Background(), id)
		assert.Equal(t, fmt.Sprintf("%s/%d/header.jpg", srv.URL, id), info.Picture)
	}
	_, sawGet := methods.Load(http.MethodGet)
	assert.False(t, sawGet)
}

func TestProbeLocalID(t *testing.T) {
	srv, hits := newCDN(t, func(string) int { return 200 })
	p := steam.New(steam.Config{Enabled: true, Pictures: srv.URL + "/%d.jpg"}, zap.NewNop())

	assert.Equal(t, steam.Info{}, p.Probe(context.Background(), enrich.Border+5))
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestProbeUnreachable(t *testing.T) {
	srv, _ := newCDN(t, func(string) int { return 200 })
	url := srv.URL
	srv.Close()

	p := steam.New(steam.Config{Enabled: true, StoreURL: "https://s/app", Pictures: url + "/%d.jpg", TimeoutSeconds: 1}, zap.NewNop())
	info := p.Probe(context.Background(), 10)
	assert.Equal(t, "https://s/app/10", info.Link)
	assert.Empty(t, info.Picture)
}

func TestProbeRemembersResults(t *testing.T) {
	srv, hits := newCDN(t, func(string) int { return 200 })
	p := steam.New(steam.Config{Enabled: true, Pictures: srv.URL + "/%d.jpg", CacheSeconds: 60}, zap.NewNop())

	p.Probe(context.Background(), 1)
	p.Probe(context.Background(), 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestProbeDisabled(t *testing.T) {
	p := steam.New(steam.Config{Enabled: false}, zap.NewNop())
	assert.Equal(t, steam.Info{}, p.Probe(context.Background(), 1))
}
