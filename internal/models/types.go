package models

import "time"

// RemoteObject is the listing-time snapshot of one blob.
type RemoteObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

type ContainerInfo struct {
	Provider       string    `json:"provider"`
	ContainerName  string    `json:"container_name"`
	Prefix         string    `json:"prefix,omitempty"`
	ObjectCount    int64     `json:"object_count"`
	EmptyObjects   int64     `json:"empty_objects"`
	TotalSizeBytes int64     `json:"total_size_bytes"`
	TotalSizeHuman string    `json:"total_size_human"`
	LastModified   time.Time `json:"last_modified"`
	APIEndpoint    string    `json:"api_endpoint,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}
