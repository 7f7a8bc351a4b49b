package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"devgateway/internal/gwerr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func decodeLines(t *testing.T, out *bytes.Buffer) []Response {
	t.Helper()
	var responses []Response
	for _, line := range strings.Split(strings.TrimRight(out.String(), "\n"), "\n") {
		if line == "" {
			continue
		}
		var r Response
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("bad output line %q: %v", line, err)
		}
		responses = append(responses, r)
	}
	return responses
}

func TestInitializeReturnsServerInfo(t *testing.T) {
	var out bytes.Buffer
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		return nil, nil
	}, &out, nil)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}` + "\n")
	require.NoError(t, s.Serve(context.Background(), in))

	responses := decodeLines(t, &out)
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	result, ok := responses[0].Result.(map[string]any)
	if !ok {
		t.Fatalf("expected object result, got %T", responses[0].Result)
	}
	if result["protocolVersion"] != protocolVersion {
		t.Fatalf("unexpected protocol version: %v", result["protocolVersion"])
	}
}

func TestInitializeInvokesOnInitializeWithWorkingDirectory(t *testing.T) {
	var out bytes.Buffer
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		return nil, nil
	}, &out, nil)

	var captured string
	s.OnInitialize(func(workingDirectory string) { captured = workingDirectory })

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"workingDirectory":"/home/dev/project"}}` + "\n")
	require.NoError(t, s.Serve(context.Background(), in))
	require.Equal(t, "/home/dev/project", captured)
}

func TestToolsListReturnsCatalog(t *testing.T) {
	var out bytes.Buffer
	tools := []ToolDescriptor{{Name: "smart_read", Description: "reads a file"}}
	s := New(tools, func(ctx context.Context, name string, args map[string]any) (any, error) {
		return nil, nil
	}, &out, nil)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":"a","method":"tools/list"}` + "\n")
	if err := s.Serve(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	responses := decodeLines(t, &out)
	data, _ := json.Marshal(responses[0].Result)
	if !strings.Contains(string(data), "smart_read") {
		t.Fatalf("expected catalog to contain smart_read, got %s", data)
	}
}

func TestToolsCallSuccessWrapsContent(t *testing.T) {
	var out bytes.Buffer
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		return "ok", nil
	}, &out, nil)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"smart_read","arguments":{}}}` + "\n")
	if err := s.Serve(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	responses := decodeLines(t, &out)
	data, _ := json.Marshal(responses[0].Result)
	var body ToolCallResult
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatal(err)
	}
	if body.IsError {
		t.Fatalf("expected success, got isError:true")
	}
	if len(body.Content) != 1 || body.Content[0].Text != "ok" {
		t.Fatalf("unexpected content: %+v", body.Content)
	}
}

func TestToolsCallHandlerErrorIsErrorTrueNotRPCError(t *testing.T) {
	var out bytes.Buffer
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		return nil, gwerr.New(gwerr.NotFound, "no such file")
	}, &out, nil)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"smart_read","arguments":{}}}` + "\n")
	if err := s.Serve(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	responses := decodeLines(t, &out)
	if responses[0].Error != nil {
		t.Fatalf("expected no protocol-level error, got %+v", responses[0].Error)
	}
	data, _ := json.Marshal(responses[0].Result)
	var body ToolCallResult
	json.Unmarshal(data, &body)
	if !body.IsError {
		t.Fatalf("expected isError:true")
	}
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	var out bytes.Buffer
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		return nil, nil
	}, &out, nil)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":4,"method":"bogus"}` + "\n")
	if err := s.Serve(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	responses := decodeLines(t, &out)
	if responses[0].Error == nil || responses[0].Error.Code != -32601 {
		t.Fatalf("expected method-not-found error, got %+v", responses[0].Error)
	}
}

func TestNotificationProducesNoResponse(t *testing.T) {
	var out bytes.Buffer
	called := make(chan struct{}, 1)
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		called <- struct{}{}
		return "ok", nil
	}, &out, nil)

	in := strings.NewReader(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"smart_read","arguments":{}}}` + "\n")
	if err := s.Serve(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked for notification")
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output for a notification, got %q", out.String())
	}
}

func TestInitializedNotificationIsSilent(t *testing.T) {
	var out bytes.Buffer
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		return nil, nil
	}, &out, nil)

	in := strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	if err := s.Serve(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected silence, got %q", out.String())
	}
}

func TestParseErrorWithRecoverableIDEmitsParseError(t *testing.T) {
	var out bytes.Buffer
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		return nil, nil
	}, &out, nil)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{` + "\n")
	if err := s.Serve(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	responses := decodeLines(t, &out)
	if len(responses) != 1 || responses[0].Error == nil || responses[0].Error.Code != -32700 {
		t.Fatalf("expected a parse error response, got %+v", responses)
	}
	if string(responses[0].ID) != "5" {
		t.Fatalf("expected id 5 to be recovered, got %s", responses[0].ID)
	}
}

func TestParseErrorWithoutIDStaysSilent(t *testing.T) {
	var out bytes.Buffer
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		return nil, nil
	}, &out, nil)

	in := strings.NewReader(`not json at all` + "\n")
	if err := s.Serve(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected silence for an unrecoverable parse error, got %q", out.String())
	}
}

func TestPanicInHandlerBecomesOperationalError(t *testing.T) {
	var out bytes.Buffer
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		panic("boom")
	}, &out, nil)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"smart_exec","arguments":{}}}` + "\n")
	if err := s.Serve(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	responses := decodeLines(t, &out)
	data, _ := json.Marshal(responses[0].Result)
	var body ToolCallResult
	json.Unmarshal(data, &body)
	if !body.IsError {
		t.Fatalf("expected a recovered panic to surface as isError:true")
	}
}

func TestServeUnblocksOnContextCancelWhileIdle(t *testing.T) {
	var out bytes.Buffer
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		return nil, nil
	}, &out, nil)

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, pr) }()

	// Give Serve a moment to reach the blocking read before cancelling,
	// so this test actually exercises the idle-unblock path rather than
	// a cancellation that happens to race ahead of it.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after context cancellation while idle")
	}
}

func TestShutdownHookRunsAfterAllHandlersFinish(t *testing.T) {
	var out bytes.Buffer
	var shutdownCalled bool
	s := New(nil, func(ctx context.Context, name string, args map[string]any) (any, error) {
		time.Sleep(10 * time.Millisecond)
		return "ok", nil
	}, &out, func() { shutdownCalled = true })

	in := strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"smart_read","arguments":{}}}` + "\n")
	if err := s.Serve(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if !shutdownCalled {
		t.Fatalf("expected onShutdown to run after Serve returns")
	}
}
