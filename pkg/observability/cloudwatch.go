package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the part of the CloudWatch client used here
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics pushes command and layout metrics to CloudWatch. It is
// used under Lambda, where nothing scrapes the Prometheus endpoint.
type CloudWatchMetrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
	now       func() time.Time
}

// NewCloudWatchMetrics creates a new metrics instance
func NewCloudWatchMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{namespace: namespace, client: client, logger: logger, now: time.Now}
}

// RecordCommand records latency and count for one command execution
func (m *CloudWatchMetrics) RecordCommand(name string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	dims := []types.Dimension{
		{Name: aws.String("CommandName"), Value: aws.String(name)},
		{Name: aws.String("Status"), Value: aws.String(status)},
	}
	m.put(context.Background(), []types.MetricDatum{
		m.datum("CommandExecution", dims, float64(d.Milliseconds()), types.StandardUnitMilliseconds),
		m.datum("CommandCount", dims, 1, types.StandardUnitCount),
	})
}

// LayoutFinished records the duration of a layout run
func (m *CloudWatchMetrics) LayoutFinished(mode, outcome string, d time.Duration) {
	dims := []types.Dimension{
		{Name: aws.String("Mode"), Value: aws.String(mode)},
		{Name: aws.String("Outcome"), Value: aws.String(outcome)},
	}
	m.put(context.Background(), []types.MetricDatum{
		m.datum("LayoutLatency", dims, float64(d.Milliseconds()), types.StandardUnitMilliseconds),
	})
}

func (m *CloudWatchMetrics) datum(name string, dims []types.Dimension, v float64, unit types.StandardUnit) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dims,
		Value:      aws.Float64(v),
		Unit:       unit,
		Timestamp:  aws.Time(m.now()),
	}
}

func (m *CloudWatchMetrics) put(ctx context.Context, data []types.MetricDatum) {
	if m.client == nil {
		return
	}
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		// metrics never fail the operation they describe
		m.logger.Warn("Failed to send metrics", zap.Error(err))
	}
}
