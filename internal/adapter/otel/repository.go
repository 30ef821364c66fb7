package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Arooshimran/doma-backend/internal/domain"
)

const tracerName = "github.com/Arooshimran/doma-backend/internal/adapter/otel"

// TracingRepository wraps a domain.VendorRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingRepository struct {
	next   domain.VendorRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.VendorRepository.
var _ domain.VendorRepository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.VendorRepository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository) Create(ctx context.Context, vendor domain.Vendor) error {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.Create",
		trace.WithAttributes(
			attribute.String("vendor.id", vendor.ID),
			attribute.String("vendor.slug", vendor.Slug),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, vendor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) GetByID(ctx context.Context, id string) (domain.Vendor, error) {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.GetByID",
		trace.WithAttributes(attribute.String("vendor.id", id)),
	)
	defer span.End()

	vendor, err := r.next.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return vendor, err
}

func (r *TracingRepository) GetByEmail(ctx context.Context, email string) (domain.Vendor, error) {
	// The address itself stays off the span; it is PII.
	ctx, span := r.tracer.Start(ctx, "VendorRepository.GetByEmail")
	defer span.End()

	vendor, err := r.next.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return vendor, err
}

func (r *TracingRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Vendor, error) {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	vendors, err := r.next.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(vendors)))
	}
	return vendors, err
}

func (r *TracingRepository) Update(ctx context.Context, vendor domain.Vendor) error {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.Update",
		trace.WithAttributes(
			attribute.String("vendor.id", vendor.ID),
			attribute.String("vendor.status", string(vendor.Status)),
		),
	)
	defer span.End()

	err := r.next.Update(ctx, vendor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) UpdateDecision(ctx context.Context, vendor domain.Vendor, expected domain.Status) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.UpdateDecision",
		trace.WithAttributes(
			attribute.String("vendor.id", vendor.ID),
			attribute.String("vendor.status", string(vendor.Status)),
			attribute.String("expected.status", string(expected)),
		),
	)
	defer span.End()

	swapped, err := r.next.UpdateDecision(ctx, vendor, expected)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Bool("result.swapped", swapped))
	}
	return swapped, err
}
