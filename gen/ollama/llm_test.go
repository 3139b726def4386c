package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"curachef/prompt"
)

type mockHTTPClient struct {
	resp     *http.Response
	err      error
	lastBody []byte
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		m.lastBody, _ = io.ReadAll(req.Body)
	}
	return m.resp, m.err
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func testRequest() prompt.Request {
	return prompt.Request{
		Text: "Generate something tasty.",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"recipes": {Type: "array"},
			},
		},
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    ClientOpts
		wantErr bool
	}{
		{
			name: "valid options",
			opts: ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.2", HTTPClient: &mockHTTPClient{}},
		},
		{
			name:    "missing model id",
			opts:    ClientOpts{BaseEndpoint: "http://localhost:11434", HTTPClient: &mockHTTPClient{}},
			wantErr: true,
		},
		{
			name:    "missing http client",
			opts:    ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.2"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.opts)
			if tt.wantErr {
				must.Error(t, err)
				return
			}
			must.NoError(t, err)
			should.Equal(t, "http://localhost:11434/api/chat", client.endpoint)
		})
	}
}

func TestClientGenerate(t *testing.T) {
	mock := &mockHTTPClient{
		resp: jsonResponse(http.StatusOK, `{"message": {"role": "assistant", "content": "{\"recipes\": []}"}, "done": true}`),
	}
	client, err := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.2", HTTPClient: mock})
	must.NoError(t, err)

	out, err := client.Generate(context.Background(), testRequest(), nil)
	must.NoError(t, err)
	should.Equal(t, `{"recipes": []}`, out)

	// The schema rides the native format field, not the prompt text.
	var wire map[string]json.RawMessage
	must.NoError(t, json.Unmarshal(mock.lastBody, &wire))
	should.Contains(t, string(wire["format"]), `"recipes"`)
	should.Equal(t, "false", string(wire["stream"]))
}

func TestClientGenerateImageAsBase64(t *testing.T) {
	mock := &mockHTTPClient{
		resp: jsonResponse(http.StatusOK, `{"message": {"content": "{\"ingredients\": \"tomato\"}"}, "done": true}`),
	}
	client, err := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llava", HTTPClient: mock})
	must.NoError(t, err)

	_, err = client.Generate(context.Background(), testRequest(), []byte{0xFF, 0xD8})
	must.NoError(t, err)

	var wire struct {
		Messages []wireMessage `json:"messages"`
	}
	must.NoError(t, json.Unmarshal(mock.lastBody, &wire))
	must.Len(t, wire.Messages, 1)
	must.Len(t, wire.Messages[0].Images, 1)
	should.Equal(t, "/9g=", wire.Messages[0].Images[0])
}

func TestClientGenerateHTTPError(t *testing.T) {
	mock := &mockHTTPClient{resp: jsonResponse(http.StatusInternalServerError, "model not loaded")}
	client, err := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.2", HTTPClient: mock})
	must.NoError(t, err)

	_, err = client.Generate(context.Background(), testRequest(), nil)
	must.Error(t, err)
	should.Contains(t, err.Error(), "model not loaded")
}

func TestClientGenerateStream(t *testing.T) {
	ndjson := `{"message": {"content": "{\"recipes\": "}, "done": false}
{"message": {"content": "[]"}, "done": false}
{"message": {"content": "}"}, "done": true}
`
	mock := &mockHTTPClient{resp: jsonResponse(http.StatusOK, ndjson)}
	client, err := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.2", HTTPClient: mock})
	must.NoError(t, err)

	out, err := client.GenerateStream(context.Background(), testRequest())
	must.NoError(t, err)
	should.Equal(t, `{"recipes": []}`, out)

	var wire map[string]json.RawMessage
	must.NoError(t, json.Unmarshal(mock.lastBody, &wire))
	should.Equal(t, "true", string(wire["stream"]))
}

func TestClientGenerateStreamWithoutDoneMarker(t *testing.T) {
	ndjson := `{"message": {"content": "partial"}, "done": false}
`
	mock := &mockHTTPClient{resp: jsonResponse(http.StatusOK, ndjson)}
	client, err := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.2", HTTPClient: mock})
	must.NoError(t, err)

	_, err = client.GenerateStream(context.Background(), testRequest())
	must.Error(t, err)
	should.Contains(t, err.Error(), "without done marker")
}
