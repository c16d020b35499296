package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cttypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"
)

// CloudTrailClient runs templated lookups against AWS CloudTrail, used to
// reconstruct who touched a resource during an incident window.
type CloudTrailClient struct {
	client *cloudtrail.Client
}

// NewCloudTrailClient creates a new CloudTrail client.
func NewCloudTrailClient(cfg aws.Config) *CloudTrailClient {
	return &CloudTrailClient{client: cloudtrail.NewFromConfig(cfg)}
}

// TrailEvent represents a single AWS API call from the trail.
type TrailEvent struct {
	EventID      string    `json:"event_id"`
	EventName    string    `json:"event_name"`
	EventTime    time.Time `json:"event_time"`
	Username     string    `json:"username"`
	ResourceName string    `json:"resource_name,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
}

// QueryResourceEvents looks up events touching a resource over a trailing
// time window.
func (c *CloudTrailClient) QueryResourceEvents(ctx context.Context, resourceID string, window time.Duration) ([]TrailEvent, error) {
	endTime := time.Now()
	startTime := endTime.Add(-window)
	return c.lookupEvents(ctx, resourceID, "", startTime, endTime)
}

// QueryEventName looks up events by API call name over a trailing window.
func (c *CloudTrailClient) QueryEventName(ctx context.Context, eventName string, window time.Duration) ([]TrailEvent, error) {
	endTime := time.Now()
	startTime := endTime.Add(-window)
	return c.lookupEvents(ctx, "", eventName, startTime, endTime)
}

// lookupEvents performs the LookupEvents call, paginating up to the API
// maximum per page.
func (c *CloudTrailClient) lookupEvents(ctx context.Context, resourceID, eventName string, startTime, endTime time.Time) ([]TrailEvent, error) {
	var attrs []cttypes.LookupAttribute
	if resourceID != "" {
		attrs = append(attrs, cttypes.LookupAttribute{
			AttributeKey:   cttypes.LookupAttributeKeyResourceName,
			AttributeValue: aws.String(resourceID),
		})
	}
	if eventName != "" {
		attrs = append(attrs, cttypes.LookupAttribute{
			AttributeKey:   cttypes.LookupAttributeKeyEventName,
			AttributeValue: aws.String(eventName),
		})
	}

	input := &cloudtrail.LookupEventsInput{
		LookupAttributes: attrs,
		StartTime:        &startTime,
		EndTime:          &endTime,
		MaxResults:       aws.Int32(50),
	}

	var events []TrailEvent
	paginator := cloudtrail.NewLookupEventsPaginator(c.client, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to lookup CloudTrail events: %w", err)
		}
		events = append(events, convertTrailEvents(output.Events)...)
	}

	return events, nil
}

// convertTrailEvents converts SDK events into TrailEvents.
func convertTrailEvents(sdkEvents []cttypes.Event) []TrailEvent {
	var events []TrailEvent
	for _, ev := range sdkEvents {
		event := TrailEvent{
			EventID:   aws.ToString(ev.EventId),
			EventName: aws.ToString(ev.EventName),
			Username:  aws.ToString(ev.Username),
		}
		if ev.EventTime != nil {
			event.EventTime = *ev.EventTime
		}
		if len(ev.Resources) > 0 {
			event.ResourceName = aws.ToString(ev.Resources[0].ResourceName)
			event.ResourceType = aws.ToString(ev.Resources[0].ResourceType)
		}
		events = append(events, event)
	}
	return events
}
