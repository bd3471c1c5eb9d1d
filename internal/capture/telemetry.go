package capture

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
)

// FixTelemetry is one row of GPS diagnostics: every offered fix, accepted
// or not, with the accuracy the receiver claimed. Used to profile how
// noisy a device class is in the field.
type FixTelemetry struct {
	ParcelID   string    `dynamodbav:"parcel_id"`
	RecordedAt time.Time `dynamodbav:"recorded_at"`
	Lat        float64   `dynamodbav:"lat"`
	Lng        float64   `dynamodbav:"lng"`
	Accuracy   float64   `dynamodbav:"accuracy"`
	Accepted   bool      `dynamodbav:"accepted"`
}

// TelemetryRecorder persists fix telemetry. Implementations must be safe
// for concurrent use; recording is best-effort and never blocks the fix
// path.
type TelemetryRecorder interface {
	Record(ctx context.Context, rec FixTelemetry) error
}

type dynamoTelemetry struct {
	client *dynamodb.Client
	table  string
}

// NewDynamoTelemetry records fix telemetry into a DynamoDB table keyed by
// parcel id and timestamp.
func NewDynamoTelemetry(client *dynamodb.Client, table string) TelemetryRecorder {
	return &dynamoTelemetry{client: client, table: table}
}

func (t *dynamoTelemetry) Record(ctx context.Context, rec FixTelemetry) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return err
	}
	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &t.table,
		Item:      item,
	})
	return err
}

type nopTelemetry struct{}

// NewNopTelemetry discards telemetry; used when no table is configured.
func NewNopTelemetry() TelemetryRecorder { return nopTelemetry{} }

func (nopTelemetry) Record(context.Context, FixTelemetry) error { return nil }

func telemetryFor(parcelID uuid.UUID, fix Fix, accepted bool) FixTelemetry {
	return FixTelemetry{
		ParcelID:   parcelID.String(),
		RecordedAt: fix.Time,
		Lat:        fix.Point.Lat,
		Lng:        fix.Point.Lng,
		Accuracy:   fix.Accuracy,
		Accepted:   accepted,
	}
}
