package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true}, "dev")
	assert.ErrorContains(t, err, "endpoint not configured")

	p, err := NewProvider(Config{}, "dev")
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.Equal(t, "tracing", p.Name())
}

func TestProvider_DisabledInstallsPropagator(t *testing.T) {
	p, err := NewProvider(Config{}, "dev")
	require.NoError(t, err)

	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { _ = p.Stop(context.Background()) })

	carrier := propagation.MapCarrier{"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), carrier)

	out := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, out)
	assert.Equal(t, carrier["traceparent"], out["traceparent"])
}

func TestExporterOptions(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{name: "plaintext", cfg: Config{Enabled: true, Endpoint: "localhost:4317"}},
		{name: "tls without verification", cfg: Config{Enabled: true, Endpoint: "localhost:4317", TLSInsecure: true}},
		{name: "missing CA file", cfg: Config{Enabled: true, Endpoint: "localhost:4317", TLSCAPath: "/nonexistent/ca.crt"}, expectError: true},
		{name: "invalid CA file", cfg: Config{Enabled: true, Endpoint: "localhost:4317", TLSCAPath: writeFile(t, "not a pem")}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := exporterOptions(tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, opts)
		})
	}
}

func TestProvider_EnabledStartStop(t *testing.T) {
	// The gRPC exporter connects lazily, so no collector is needed.
	p, err := NewProvider(Config{Enabled: true, Endpoint: "127.0.0.1:4317"}, "test")
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	_, span := p.Tracer("test").Start(context.Background(), "span")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Stop(ctx)
	otel.SetTracerProvider(otel.GetTracerProvider())
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ca.crt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
