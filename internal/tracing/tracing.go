// Package tracing exports OpenTelemetry spans over OTLP/gRPC.
package tracing

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/moolen/fitaura/internal/logging"
)

// ServiceName is reported as the service.name resource attribute.
const ServiceName = "fitaura"

// Config holds tracing configuration
type Config struct {
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address, e.g. "otel-collector:4317".
	Endpoint string `yaml:"endpoint"`

	// TLSCAPath enables TLS with the given CA bundle.
	TLSCAPath string `yaml:"tls_ca"`

	// TLSInsecure enables TLS without certificate verification.
	TLSInsecure bool `yaml:"tls_insecure"`
}

// Provider owns the global tracer provider. It implements
// lifecycle.Component; the exporter is created on Start and flushed on Stop.
type Provider struct {
	cfg            Config
	version        string
	tracerProvider *sdktrace.TracerProvider
	logger         *logging.Logger
}

// NewProvider validates cfg. Nothing is exported until Start.
func NewProvider(cfg Config, version string) (*Provider, error) {
	if cfg.Enabled && cfg.Endpoint == "" {
		return nil, errors.New("tracing enabled but endpoint not configured")
	}
	return &Provider{
		cfg:     cfg,
		version: version,
		logger:  logging.GetLogger("tracing"),
	}, nil
}

// Start installs the W3C propagator and, when enabled, the OTLP exporter.
func (p *Provider) Start(ctx context.Context) error {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !p.cfg.Enabled {
		p.logger.Info("Tracing disabled")
		return nil
	}

	opts, err := exporterOptions(p.cfg)
	if err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(dialCtx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(dialCtx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(p.version),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(p.tracerProvider)

	p.logger.Info("Tracing initialized with endpoint: %s", p.cfg.Endpoint)
	return nil
}

// Stop flushes pending spans.
func (p *Provider) Stop(ctx context.Context) error {
	if p.tracerProvider == nil {
		return nil
	}
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		p.logger.Error("Error shutting down tracer provider: %v", err)
		return err
	}
	p.tracerProvider = nil
	p.logger.Info("Tracing provider stopped")
	return nil
}

// Name implements lifecycle.Component.
func (p *Provider) Name() string {
	return "tracing"
}

// Tracer returns a tracer from the global provider.
func (p *Provider) Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p.cfg.Enabled
}

func exporterOptions(cfg Config) ([]otlptracegrpc.Option, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}

	if cfg.TLSCAPath == "" && !cfg.TLSInsecure {
		return append(opts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		), nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.TLSInsecure {
		tlsConfig.InsecureSkipVerify = true // #nosec G402 -- explicit operator choice
	} else {
		caCert, err := os.ReadFile(cfg.TLSCAPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to append CA certificate to pool")
		}
		tlsConfig.RootCAs = pool
	}

	return append(opts,
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig))),
	), nil
}
