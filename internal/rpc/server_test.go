package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramigb/semantic-skeletonizer/internal/index"
	"github.com/ramigb/semantic-skeletonizer/internal/skeleton"
)

func runLines(t *testing.T, idx *index.Index, changes <-chan struct{}, input string) []map[string]interface{} {
	t.Helper()
	var out bytes.Buffer
	s := New("/project", idx, changes, strings.NewReader(input), &out)
	err := s.Run(context.Background())
	require.NoError(t, err)

	var results []map[string]interface{}
	for _, line := range strings.Split(strings.TrimRight(out.String(), "\n"), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		results = append(results, m)
	}
	return results
}

func TestServer_Initialize(t *testing.T) {
	idx := index.New()
	out := runLines(t, idx, nil, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`+"\n")
	require.Len(t, out, 1)
	result := out[0]["result"].(map[string]interface{})
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
}

func TestServer_Scenario1_ReadFileResource(t *testing.T) {
	idx := index.New()
	fs, err := skeleton.Build("./a.ts", []byte(`import "./x.css"; export function f(x:number){return x+1;}`))
	require.NoError(t, err)
	idx.Set("./a.ts", fs)

	out := runLines(t, idx, nil, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"skeleton://project/file/./a.ts"}}`+"\n")
	require.Len(t, out, 1)
	result := out[0]["result"].(map[string]interface{})
	contents := result["contents"].([]interface{})[0].(map[string]interface{})

	var got skeleton.FileSkeleton
	require.NoError(t, json.Unmarshal([]byte(contents["text"].(string)), &got))
	assert.Empty(t, got.Imports)
	require.Len(t, got.Exports, 1)
	assert.Contains(t, got.Exports[0], "f(x: number)")
}

func TestServer_Scenario2_EmptyGraph(t *testing.T) {
	idx := index.New()
	out := runLines(t, idx, nil, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"skeleton://project/global"}}`+"\n")
	require.Len(t, out, 1)
	errObj := out[0]["error"].(map[string]interface{})
	assert.Equal(t, float64(-32603), errObj["code"])
	assert.Equal(t, "Graph is empty. No files scanned or found.", errObj["message"])
}

func TestServer_Scenario3_UnknownURI(t *testing.T) {
	idx := index.New()
	out := runLines(t, idx, nil, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"file:///etc/passwd"}}`+"\n")
	require.Len(t, out, 1)
	errObj := out[0]["error"].(map[string]interface{})
	assert.Equal(t, float64(-32602), errObj["code"])
	assert.Equal(t, "Invalid URI scheme for resource.", errObj["message"])
}

func TestServer_Scenario5_ToolCallMiss(t *testing.T) {
	idx := index.New()
	out := runLines(t, idx, nil, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_functions","arguments":{"file_path":"nope.ts"}}}`+"\n")
	require.Len(t, out, 1)
	errObj := out[0]["error"].(map[string]interface{})
	assert.Equal(t, float64(-32602), errObj["code"])
	assert.Equal(t, "File not found in graph.", errObj["message"])
}

func TestServer_Scenario6_MalformedInput(t *testing.T) {
	idx := index.New()
	out := runLines(t, idx, nil, "not json\n")
	require.Len(t, out, 1)
	assert.Nil(t, out[0]["id"])
	errObj := out[0]["error"].(map[string]interface{})
	assert.Equal(t, float64(-32700), errObj["code"])
	assert.Equal(t, "Parse error", errObj["message"])
}

func TestServer_EmptyLinesIgnored(t *testing.T) {
	idx := index.New()
	out := runLines(t, idx, nil, "\n   \n")
	assert.Len(t, out, 0)
}

func TestServer_NotificationGetsNoResponse(t *testing.T) {
	idx := index.New()
	out := runLines(t, idx, nil, `{"jsonrpc":"2.0","method":"initialize","params":{}}`+"\n")
	assert.Len(t, out, 0)
}

func TestServer_UnknownMethod(t *testing.T) {
	idx := index.New()
	out := runLines(t, idx, nil, `{"jsonrpc":"2.0","id":1,"method":"bogus"}`+"\n")
	require.Len(t, out, 1)
	errObj := out[0]["error"].(map[string]interface{})
	assert.Equal(t, float64(-32601), errObj["code"])
}

func TestServer_ResourcesList(t *testing.T) {
	idx := index.New()
	fs, err := skeleton.Build("./a.ts", []byte("export const x = 1;"))
	require.NoError(t, err)
	idx.Set("./a.ts", fs)

	out := runLines(t, idx, nil, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`+"\n")
	require.Len(t, out, 1)
	result := out[0]["result"].(map[string]interface{})
	resources := result["resources"].([]interface{})
	require.Len(t, resources, 2)
	first := resources[0].(map[string]interface{})
	assert.Equal(t, "skeleton://project/global", first["uri"])
}

func TestServer_ChangeNotification(t *testing.T) {
	idx := index.New()
	changes := make(chan struct{}, 1)
	changes <- struct{}{}

	// stdin stays open (no EOF) so the loop runs until cancel.
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	s := New("/project", idx, changes, pr, &out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.Contains(t, out.String(), "notifications/resources/updated")
	assert.Contains(t, out.String(), "skeleton://project/global")
}
