package main

import (
	"encoding/json"
	"testing"
)

func TestResolveAction(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    string
		wantErr bool
	}{
		{name: "clap default", req: Request{Event: "clap"}, want: "media-play-pause"},
		{name: "double clap default", req: Request{Event: "double_clap"}, want: "volume-mute"},
		{
			name: "config override",
			req:  Request{Event: "snap", Config: json.RawMessage(`{"snap":"volume-up"}`)},
			want: "volume-up",
		},
		{name: "unbound event", req: Request{Event: "wave"}, wantErr: true},
		{name: "bad config", req: Request{Event: "clap", Config: json.RawMessage(`[1]`)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveAction(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveAction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveAction() = %q, want %q", got, tt.want)
			}
		})
	}
}
