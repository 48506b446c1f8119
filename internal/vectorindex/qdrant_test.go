package vectorindex

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestNewQdrantIndex_URLParsing(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "standard url", url: "http://localhost:6333", wantErr: false},
		{name: "remote host", url: "http://qdrant.internal:6333", wantErr: false},
		{name: "no port falls back to default grpc port", url: "http://localhost", wantErr: false},
		{name: "https url", url: "https://qdrant.example.com:6333", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := NewQdrantIndex(tt.url, "test-collection", 3, nil, nil, 100)

			if tt.wantErr {
				if err == nil {
					t.Error("NewQdrantIndex() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("NewQdrantIndex() unexpected error: %v", err)
				return
			}
			if idx == nil {
				t.Fatal("NewQdrantIndex() returned nil index")
			}
			if idx.collection != "test-collection" || idx.dim != 3 {
				t.Errorf("index = collection %q dim %d", idx.collection, idx.dim)
			}
		})
	}
}

func TestPointID_Deterministic(t *testing.T) {
	a := pointID("doc1_chunk_0")
	b := pointID("doc1_chunk_0")
	c := pointID("doc1_chunk_1")

	if a != b {
		t.Errorf("pointID not deterministic: %q vs %q", a, b)
	}
	if a == c {
		t.Error("distinct chunk IDs mapped to the same point ID")
	}
	if len(a) != 36 {
		t.Errorf("pointID %q is not a UUID", a)
	}
}

func TestPayloadHelpers(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"document_name": {Kind: &qdrant.Value_StringValue{StringValue: "Pricing Guide"}},
		"page_number":   {Kind: &qdrant.Value_IntegerValue{IntegerValue: 2}},
	}

	if got := payloadString(payload, "document_name"); got != "Pricing Guide" {
		t.Errorf("payloadString() = %q", got)
	}
	if got := payloadString(payload, "missing"); got != "" {
		t.Errorf("payloadString(missing) = %q, want empty", got)
	}
	if got := payloadInt(payload, "page_number"); got != 2 {
		t.Errorf("payloadInt() = %d", got)
	}
	if got := payloadInt(payload, "missing"); got != 0 {
		t.Errorf("payloadInt(missing) = %d, want 0", got)
	}
	// Wrong-kind lookups degrade to zero values
	if got := payloadInt(payload, "document_name"); got != 0 {
		t.Errorf("payloadInt(string value) = %d, want 0", got)
	}
}
