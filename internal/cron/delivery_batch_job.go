package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/boutique-backend/pkg/logger"
	"github.com/angelmondragon/boutique-backend/pkg/metrics"
)

const deliveryBatchJobName = "delivery-batch-validation"

type batchValidator interface {
	ValidateExpired(ctx context.Context) (int64, error)
}

// DeliveryBatchJobParams configure the delivery batch validation job.
type DeliveryBatchJobParams struct {
	Logger  *logger.Logger
	Batches batchValidator
	// Metrics is optional.
	Metrics *metrics.CronJobMetrics
}

type deliveryBatchJob struct {
	logg    *logger.Logger
	batches batchValidator
	metrics *metrics.CronJobMetrics
}

// NewDeliveryBatchValidationJob closes pending delivery batches whose
// validation window has elapsed so their orders can ship.
func NewDeliveryBatchValidationJob(params DeliveryBatchJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Batches == nil {
		return nil, fmt.Errorf("delivery batch service required")
	}
	return &deliveryBatchJob{logg: params.Logger, batches: params.Batches, metrics: params.Metrics}, nil
}

func (j *deliveryBatchJob) Name() string { return deliveryBatchJobName }

func (j *deliveryBatchJob) Run(ctx context.Context) error {
	closed, err := j.batches.ValidateExpired(ctx)
	if err != nil {
		return err
	}
	j.metrics.AddBatchesValidated(closed)
	if closed > 0 {
		j.logg.Info(j.logg.WithField(ctx, "closed", closed), "expired delivery batches validated")
	}
	return nil
}
