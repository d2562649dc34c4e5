package rpc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ramigb/semantic-skeletonizer/internal/rpcerrors"
	"github.com/ramigb/semantic-skeletonizer/internal/tsparse"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "semantic-skeletonizer"
	serverVersion   = "0.1.0"

	globalResourceURI = "skeleton://project/global"
	fileResourcePfx   = "skeleton://project/file/"
)

// toolDescriptor is returned verbatim by tools/list.
type toolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema inputSchema `json:"inputSchema"`
}

type inputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]property `json:"properties"`
	Required   []string            `json:"required"`
}

type property struct {
	Type string `json:"type"`
}

var toolDescriptors = []toolDescriptor{
	{
		Name:        "get_implementation",
		Description: "Return the full parsed AST of a file for a given target node.",
		InputSchema: inputSchema{
			Type: "object",
			Properties: map[string]property{
				"file_path":   {Type: "string"},
				"target_node": {Type: "string"},
			},
			Required: []string{"file_path", "target_node"},
		},
	},
	{
		Name:        "list_functions",
		Description: "List the top-level function signatures of a file's skeleton.",
		InputSchema: inputSchema{
			Type: "object",
			Properties: map[string]property{
				"file_path": {Type: "string"},
			},
			Required: []string{"file_path"},
		},
	},
}

// resourceDescriptor describes one entry of resources/list.
type resourceDescriptor struct {
	URI      string `json:"uri"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// resourceContent is one element of a resources/read result's "contents".
type resourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// dispatch routes a decoded request to its handler.
func (s *Server) dispatch(method string, params json.RawMessage) (interface{}, *rpcerrors.Error) {
	switch method {
	case "initialize":
		return s.handleInitialize(), nil
	case "resources/list":
		return s.handleResourcesList(), nil
	case "resources/read":
		return s.handleResourcesRead(params)
	case "tools/list":
		return map[string]interface{}{"tools": toolDescriptors}, nil
	case "tools/call":
		return s.handleToolsCall(params)
	default:
		return nil, rpcerrors.MethodNotFoundf()
	}
}

func (s *Server) handleInitialize() interface{} {
	return map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"resources": map[string]interface{}{
				"subscribe":   true,
				"listChanged": true,
			},
			"tools": map[string]interface{}{
				"listChanged": false,
			},
		},
		"serverInfo": map[string]interface{}{
			"name":    serverName,
			"version": serverVersion,
		},
	}
}

func (s *Server) handleResourcesList() interface{} {
	resources := make([]resourceDescriptor, 0, s.idx.Len()+1)
	resources = append(resources, resourceDescriptor{
		URI:      globalResourceURI,
		Name:     "Project Skeleton Graph",
		MimeType: "application/json",
	})
	for _, path := range s.idx.Paths() {
		resources = append(resources, resourceDescriptor{
			URI:      fileResourcePfx + path,
			Name:     fmt.Sprintf("Semantic Skeleton for %s", path),
			MimeType: "application/json",
		})
	}
	return map[string]interface{}{"resources": resources}
}

type readParams struct {
	URI string `json:"uri"`
}

func (s *Server) handleResourcesRead(raw json.RawMessage) (interface{}, *rpcerrors.Error) {
	var p readParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, rpcerrors.InvalidParamsf("Invalid URI scheme for resource.")
	}

	switch {
	case p.URI == globalResourceURI:
		if s.idx.Empty() {
			return nil, rpcerrors.Internalf("Graph is empty. No files scanned or found.")
		}
		text, err := json.Marshal(s.idx.Snapshot())
		if err != nil {
			return nil, rpcerrors.Internalf("Graph is empty. No files scanned or found.")
		}
		return map[string]interface{}{
			"contents": []resourceContent{{URI: p.URI, MimeType: "application/json", Text: string(text)}},
		}, nil

	case strings.HasPrefix(p.URI, fileResourcePfx):
		path := strings.TrimPrefix(p.URI, fileResourcePfx)
		fs, ok := s.idx.Get(path)
		if !ok {
			return nil, rpcerrors.InvalidParamsf("File not found in graph.")
		}
		text, _ := json.Marshal(fs)
		return map[string]interface{}{
			"contents": []resourceContent{{URI: p.URI, MimeType: "application/json", Text: string(text)}},
		}, nil

	default:
		return nil, rpcerrors.InvalidParamsf("Invalid URI scheme for resource.")
	}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) handleToolsCall(raw json.RawMessage) (interface{}, *rpcerrors.Error) {
	var p toolCallParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, rpcerrors.MethodNotFoundf()
	}

	switch p.Name {
	case "get_implementation":
		return s.handleGetImplementation(p.Arguments)
	case "list_functions":
		return s.handleListFunctions(p.Arguments)
	default:
		return nil, rpcerrors.MethodNotFoundf()
	}
}

type getImplementationArgs struct {
	FilePath   string `json:"file_path"`
	TargetNode string `json:"target_node"`
}

// handleGetImplementation reparses the file fresh from disk — not via the
// Index — and dumps its full AST as an S-expression. target_node is
// accepted but currently unused, a forward-compatible stub for narrowing
// the dump to a single node in the future.
func (s *Server) handleGetImplementation(raw json.RawMessage) (interface{}, *rpcerrors.Error) {
	var args getImplementationArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, rpcerrors.Internalf("Failed to extract implementation")
	}

	content, err := os.ReadFile(filepath.Join(s.root, strings.TrimPrefix(args.FilePath, "./")))
	if err != nil {
		return nil, rpcerrors.Internalf("Failed to extract implementation")
	}

	tree, err := tsparse.Parse(args.FilePath, content)
	if err != nil {
		return nil, rpcerrors.Internalf("Failed to extract implementation")
	}
	defer tree.Close()

	dump := tree.RootNode().String()
	return map[string]interface{}{
		"content": []map[string]string{{"type": "text", "text": dump}},
	}, nil
}

type listFunctionsArgs struct {
	FilePath string `json:"file_path"`
}

func (s *Server) handleListFunctions(raw json.RawMessage) (interface{}, *rpcerrors.Error) {
	var args listFunctionsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, rpcerrors.InvalidParamsf("File not found in graph.")
	}

	fs, ok := s.idx.Get(args.FilePath)
	if !ok {
		return nil, rpcerrors.InvalidParamsf("File not found in graph.")
	}

	return map[string]interface{}{
		"content": []map[string]string{{"type": "text", "text": strings.Join(fs.Functions, "\n")}},
	}, nil
}
