package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// RealtimeClient publishes analysis lifecycle events. Clients that do not
// want to poll can subscribe to the document/project channels instead.
type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Supabase Go client has no direct Realtime publish; row updates
	// made by the pipeline trigger Realtime automatically. This hook exists
	// for explicit publishing once the client supports it.
	return nil
}

func (r *RealtimeClient) PublishDocumentEvent(documentID int, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("document:%d", documentID)
	return r.PublishEvent(channel, event, payload)
}

func (r *RealtimeClient) PublishProjectEvent(projectID int, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("project:%d", projectID)
	return r.PublishEvent(channel, event, payload)
}
