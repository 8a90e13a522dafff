package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "Orchestra/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// putMetricDataAPI is the part of the CloudWatch client we use
type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      putMetricDataAPI
	enabled     bool
	environment string
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false}, nil
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)
	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
	}, nil
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if m == nil || !m.enabled {
		return
	}

	go func() {
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}
		dimensions := m.dimensions("Endpoint", endpoint)

		m.putOrLog(metricName, 1, types.StandardUnitCount, dimensions)
		m.putOrLog("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
	}()
}

// RecordComposition records one finished pipeline run
func (m *Client) RecordComposition(form string, parts, measures int, duration time.Duration, success bool) {
	if m == nil || !m.enabled {
		return
	}

	go func() {
		dimensions := append(m.dimensions("Form", form), types.Dimension{
			Name:  aws.String("Success"),
			Value: aws.String(boolToString(success)),
		})

		m.putOrLog("Compositions", 1, types.StandardUnitCount, dimensions)
		m.putOrLog("CompositionDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
		if success {
			m.putOrLog("CompositionParts", float64(parts), types.StandardUnitCount, dimensions)
			m.putOrLog("CompositionMeasures", float64(measures), types.StandardUnitCount, dimensions)
		}
	}()
}

// RecordContinuationFallback counts sections generated locally after the
// continuation backend failed
func (m *Client) RecordContinuationFallback(backend string) {
	if m == nil || !m.enabled {
		return
	}

	go m.putOrLog("ContinuationFallbacks", 1, types.StandardUnitCount, m.dimensions("Backend", backend))
}

// RecordTokenUsage records LLM token usage
func (m *Client) RecordTokenUsage(model string, inputTokens, outputTokens int64) {
	if m == nil || !m.enabled {
		return
	}

	go func() {
		dimensions := m.dimensions("Model", model)
		m.putOrLog("LLMTokens/Input", float64(inputTokens), types.StandardUnitCount, dimensions)
		m.putOrLog("LLMTokens/Output", float64(outputTokens), types.StandardUnitCount, dimensions)
		m.putOrLog("LLMTokens/Total", float64(inputTokens+outputTokens), types.StandardUnitCount, dimensions)
	}()
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}
}

func (m *Client) putOrLog(metricName string, value float64, unit types.StandardUnit, dimensions []types.Dimension) {
	if err := m.putMetric(metricName, value, unit, dimensions); err != nil {
		log.Printf("Failed to record %s metric: %v", metricName, err)
	}
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
