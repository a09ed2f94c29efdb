package rpc

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// aleph API paths
const (
	StorageAddJSONRoutePath = "/api/v0/storage/add_json"
	IPFSAddJSONRoutePath    = "/api/v0/ipfs/add_json"
	StorageAddFileRoutePath = "/api/v0/storage/add_file"
	IPFSAddFileRoutePath    = "/api/v0/ipfs/add_file"
	PubSubRoutePath         = "/api/v0/ipfs/pubsub/pub"
	AggregatesRoutePath     = "/api/v0/aggregates/"
	PostsRoutePath          = "/api/v0/posts.json"
	MessagesRoutePath       = "/api/v0/messages.json"
	StorageRawRoutePath     = "/api/v0/storage/raw/"
)

// local signing service paths
const (
	VersionRoutePath = "/v1/"
	AccountRoutePath = "/v1/account"
	SignRoutePath    = "/v1/sign"
	VerifyRoutePath  = "/v1/verify"
	EncryptRoutePath = "/v1/encrypt"
	DecryptRoutePath = "/v1/decrypt"
)

const (
	StorageAddJSONRouteName = "storage-add-json"
	IPFSAddJSONRouteName    = "ipfs-add-json"
	StorageAddFileRouteName = "storage-add-file"
	IPFSAddFileRouteName    = "ipfs-add-file"
	PubSubRouteName         = "pubsub-pub"
	AggregatesRouteName     = "aggregates"
	PostsRouteName          = "posts"
	MessagesRouteName       = "messages"
	StorageRawRouteName     = "storage-raw"

	VersionRouteName = "version"
	AccountRouteName = "account"
	SignRouteName    = "sign"
	VerifyRouteName  = "verify"
	EncryptRouteName = "encrypt"
	DecryptRouteName = "decrypt"
)

// routes contains the method and path for a route name
type routes map[string]struct {
	Method string
	Path   string
}

// routePaths is a mapping from route names to their corresponding HTTP methods and paths
var routePaths = routes{
	StorageAddJSONRouteName: {Method: http.MethodPost, Path: StorageAddJSONRoutePath},
	IPFSAddJSONRouteName:    {Method: http.MethodPost, Path: IPFSAddJSONRoutePath},
	StorageAddFileRouteName: {Method: http.MethodPost, Path: StorageAddFileRoutePath},
	IPFSAddFileRouteName:    {Method: http.MethodPost, Path: IPFSAddFileRoutePath},
	PubSubRouteName:         {Method: http.MethodPost, Path: PubSubRoutePath},
	AggregatesRouteName:     {Method: http.MethodGet, Path: AggregatesRoutePath},
	PostsRouteName:          {Method: http.MethodGet, Path: PostsRoutePath},
	MessagesRouteName:       {Method: http.MethodGet, Path: MessagesRoutePath},
	StorageRawRouteName:     {Method: http.MethodGet, Path: StorageRawRoutePath},
	// local signing service
	VersionRouteName: {Method: http.MethodGet, Path: VersionRoutePath},
	AccountRouteName: {Method: http.MethodGet, Path: AccountRoutePath},
	SignRouteName:    {Method: http.MethodPost, Path: SignRoutePath},
	VerifyRouteName:  {Method: http.MethodPost, Path: VerifyRoutePath},
	EncryptRouteName: {Method: http.MethodPost, Path: EncryptRoutePath},
	DecryptRouteName: {Method: http.MethodPost, Path: DecryptRoutePath},
}

// httpRouteHandlers is a custom type that maps strings to httprouter handle functions
type httpRouteHandlers map[string]httprouter.Handle

// createRouter() initializes the router of the local signing service
func createRouter(s *Server) *httprouter.Router {
	var r = httpRouteHandlers{
		VersionRouteName: s.Version,
		AccountRouteName: s.Account,
		SignRouteName:    s.Sign,
		VerifyRouteName:  s.Verify,
		EncryptRouteName: s.Encrypt,
		DecryptRouteName: s.Decrypt,
	}
	// create a new router
	router := httprouter.New()
	// map each handler to its route, timing every request
	for name, handler := range r {
		router.Handle(routePaths[name].Method, routePaths[name].Path, s.observe(name, handler))
	}
	return router
}
