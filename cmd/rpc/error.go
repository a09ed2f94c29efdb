package rpc

import (
	"fmt"

	"github.com/aleph-im/aleph-go/lib"
)

func ErrServerTimeout() lib.ErrorI {
	return lib.NewError(lib.CodeRPCTimeout, lib.RPCModule, "server timeout")
}

func ErrInvalidParams(err error) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidParams, lib.RPCModule, fmt.Sprintf("invalid params: %s", err.Error()))
}

func ErrUnsupportedContentType(contentType string) lib.ErrorI {
	return lib.NewError(lib.CodeUnsupportedContent, lib.RPCModule, fmt.Sprintf("unsupported content type %q, expected application/json", contentType))
}

func ErrNewRequest(err error) lib.ErrorI {
	return lib.NewError(lib.CodeNewRequest, lib.RPCModule, fmt.Sprintf("http.NewRequest() failed with err: %s", err.Error()))
}

func ErrPostRequest(err error) lib.ErrorI {
	return lib.NewError(lib.CodePostRequest, lib.RPCModule, fmt.Sprintf("http.Post() failed with err: %s", err.Error()))
}

func ErrGetRequest(err error) lib.ErrorI {
	return lib.NewError(lib.CodeGetRequest, lib.RPCModule, fmt.Sprintf("http.Get() failed with err: %s", err.Error()))
}

func ErrHttpStatus(status string, statusCode int, body []byte) lib.ErrorI {
	return lib.NewError(lib.CodeHttpStatus, lib.RPCModule, fmt.Sprintf("http response bad status %s with code %d and body %s", status, statusCode, body))
}

func ErrReadBody(err error) lib.ErrorI {
	return lib.NewError(lib.CodeReadBody, lib.RPCModule, fmt.Sprintf("io.ReadAll(http.ResponseBody) failed with err: %s", err.Error()))
}

func ErrMissingFile() lib.ErrorI {
	return lib.NewError(lib.CodeMissingFile, lib.RPCModule, "a file hash or a file is required")
}

func ErrUnsupportedEngine(engine lib.ItemType) lib.ErrorI {
	return lib.NewError(lib.CodeUnsupportedStore, lib.RPCModule, fmt.Sprintf("unsupported storage engine %q", engine))
}

func ErrUploadFailed() lib.ErrorI {
	return lib.NewError(lib.CodeUploadFailed, lib.RPCModule, "upload returned no hash")
}
