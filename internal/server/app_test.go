package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/lead-harvester/internal/config"
	"github.com/JakeFAU/lead-harvester/internal/lead"
	"github.com/JakeFAU/lead-harvester/internal/pipeline"
)

func memoryConfig() config.Config {
	return config.Config{
		Storage:    config.StorageConfig{Driver: config.DriverMemory},
		HTTP:       config.HTTPConfig{Timeout: time.Second, MaxRetries: 1},
		Scraper:    config.ScraperConfig{MaxPages: 1, PhoneRegion: "US"},
		Validation: config.ValidationConfig{BatchSize: 10, SMTPTimeout: time.Second, DNSTimeout: time.Second, HeloDomain: "test.com"},
		Quality:    config.QualityConfig{HighMin: 0.7, SpamMin: 0.5},
	}
}

func TestBuildMemory(t *testing.T) {
	t.Parallel()

	app, err := Build(context.Background(), memoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	assert.NotNil(t, app.Repository())
	assert.Nil(t, app.Stats())
	require.ErrorIs(t, app.Migrate(), ErrNoDatabase)
	assert.NotNil(t, app.Fetcher())
}

func TestBuildUnknownDriver(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.Storage.Driver = "sqlite"
	_, err := Build(context.Background(), cfg, nil)
	require.ErrorContains(t, err, "unknown storage driver")
}

func TestPipelineUsesRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	app, err := Build(ctx, memoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	p := app.Pipeline(pipeline.Config{SkipEnhance: true, SkipEmails: true, SkipEnrichment: true, SkipScoring: true})
	stats, err := p.Run(ctx, []lead.RawRecord{{CompanyName: "Acme"}, {CompanyName: "Globex"}})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.CompaniesSaved)
	assert.NotEmpty(t, stats.RunID)

	companies, err := app.Repository().ListCompanies(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, companies, 2)
}

func TestServeUntilCanceled(t *testing.T) {
	t.Parallel()

	app, err := Build(context.Background(), memoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/healthz", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test probe
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
