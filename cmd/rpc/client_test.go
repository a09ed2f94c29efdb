package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/aleph-im/aleph-go/lib/signer"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory aleph api node
type fakeAPI struct {
	mux        sync.Mutex
	pushed     [][]byte      // bodies posted to the add_json routes
	files      []string      // name:contents of uploaded files
	broadcasts []lib.Message // messages published on pubsub
	queries    map[string]url.Values
	failures   int // how many 5xx answers before succeeding
	calls      int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	f := &fakeAPI{queries: make(map[string]url.Values)}
	router := httprouter.New()
	pushJSON := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		bz, _ := io.ReadAll(r.Body)
		f.mux.Lock()
		f.pushed = append(f.pushed, bz)
		f.mux.Unlock()
		write(w, map[string]string{"hash": crypto.HashString(bz)}, http.StatusOK)
	}
	pushFile := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		file, header, err := r.FormFile("file")
		if err != nil {
			write(w, err.Error(), http.StatusBadRequest)
			return
		}
		bz, _ := io.ReadAll(file)
		f.mux.Lock()
		f.files = append(f.files, header.Filename+":"+string(bz))
		f.mux.Unlock()
		write(w, map[string]string{"hash": crypto.HashString(bz)}, http.StatusOK)
	}
	router.POST(StorageAddJSONRoutePath, pushJSON)
	router.POST(IPFSAddJSONRoutePath, pushJSON)
	router.POST(StorageAddFileRoutePath, pushFile)
	router.POST(IPFSAddFileRoutePath, pushFile)
	router.POST(PubSubRoutePath, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		req := new(broadcastRequest)
		require.NoError(t, json.NewDecoder(r.Body).Decode(req))
		require.Equal(t, BroadcastTopic, req.Topic)
		msg := lib.Message{}
		require.NoError(t, json.Unmarshal([]byte(req.Data), &msg))
		f.mux.Lock()
		f.broadcasts = append(f.broadcasts, msg)
		f.mux.Unlock()
		write(w, map[string]any{"value": map[string]string{"status": "ok"}}, http.StatusOK)
	})
	router.GET(AggregatesRoutePath+":address", func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		address := strings.TrimSuffix(p.ByName("address"), ".json")
		f.mux.Lock()
		f.queries[address] = r.URL.Query()
		f.mux.Unlock()
		if address == "unknown" {
			write(w, "not found", http.StatusNotFound)
			return
		}
		write(w, map[string]any{"address": address, "data": map[string]any{"profile": map[string]string{"name": address}}}, http.StatusOK)
	})
	router.GET(PostsRoutePath, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		f.mux.Lock()
		f.queries[PostsRouteName] = r.URL.Query()
		f.mux.Unlock()
		write(w, map[string]any{"posts": []any{map[string]string{"type": "note"}}, "pagination_page": 1, "pagination_total": 1}, http.StatusOK)
	})
	router.GET(MessagesRoutePath, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		f.mux.Lock()
		f.queries[MessagesRouteName] = r.URL.Query()
		f.calls++
		fail := f.calls <= f.failures
		f.mux.Unlock()
		if fail {
			write(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		write(w, map[string]any{"messages": []any{map[string]string{"sender": "0xabc", "type": "POST"}}, "pagination_page": 2}, http.StatusOK)
	})
	router.GET(StorageRawRoutePath+":hash", func(w http.ResponseWriter, _ *http.Request, p httprouter.Params) {
		if p.ByName("hash") != "known" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("file contents"))
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return f, server
}

func newTestClient(t *testing.T, server *httptest.Server, metrics *lib.Metrics) *Client {
	config := lib.DefaultAPIConfig()
	config.APIServer = server.URL + "/"
	config.MaxRetries = 2
	return NewClient(config, nil, lib.NewNullLogger(), metrics)
}

func TestPushAndRetrieve(t *testing.T) {
	api, server := newFakeAPI(t)
	c := newTestClient(t, server, nil)
	ctx := context.Background()
	// push json to both engines
	hash, err := c.StoragePush(ctx, map[string]string{"a": "<b>"})
	require.NoError(t, err)
	require.Equal(t, crypto.HashString([]byte(`{"a":"<b>"}`)), hash)
	_, err = c.IPFSPush(ctx, []int{1, 2})
	require.NoError(t, err)
	require.Equal(t, []byte("[1,2]"), api.pushed[1])
	// upload a file, the form name defaults
	hash, err = c.StoragePushFile(ctx, "", strings.NewReader("hello"))
	require.NoError(t, err)
	require.Equal(t, crypto.HashString([]byte("hello")), hash)
	require.Equal(t, []string{"random.txt:hello"}, api.files)
	// retrieve a known and an unknown file
	bz, err := c.RetrieveFile(ctx, "known")
	require.NoError(t, err)
	require.Equal(t, "file contents", string(bz))
	bz, err = c.RetrieveFile(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, bz)
}

func TestFetchAggregates(t *testing.T) {
	api, server := newFakeAPI(t)
	c := newTestClient(t, server, nil)
	ctx := context.Background()
	// a single key
	profile, err := c.FetchProfile(ctx, "0xabc")
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"0xabc"}`, string(profile))
	require.Equal(t, "profile", api.queries["0xabc"].Get("keys"))
	// no key filter
	_, err = c.FetchAggregate(ctx, "0xdef")
	require.NoError(t, err)
	require.Empty(t, api.queries["0xdef"].Get("keys"))
	// many addresses at once
	all, err := c.FetchAggregates(ctx, []string{"a", "b", "c"}, "profile", "settings")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.JSONEq(t, `{"name":"b"}`, string(all["b"]["profile"]))
	require.Equal(t, "profile,settings", api.queries["c"].Get("keys"))
	// one failure fails the batch
	_, err = c.FetchAggregates(ctx, []string{"a", "unknown"})
	require.Error(t, err)
}

func TestQueryParams(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		route    string
		call     func(c *Client) error
		expected url.Values
	}{
		{
			name:   "posts defaults",
			detail: "pagination and page are always sent, empty filters never",
			route:  PostsRouteName,
			call: func(c *Client) error {
				_, err := c.GetPosts(context.Background(), PostsParams{})
				return err
			},
			expected: url.Values{"pagination": {"200"}, "page": {"1"}},
		},
		{
			name:   "posts filters",
			detail: "lists are comma joined",
			route:  PostsRouteName,
			call: func(c *Client) error {
				_, err := c.GetPosts(context.Background(), PostsParams{Types: []string{"note", "blog"}, Refs: []string{"r"}, Tags: []string{"x", "y"}, Page: 3})
				return err
			},
			expected: url.Values{"pagination": {"200"}, "page": {"3"}, "types": {"note,blog"}, "refs": {"r"}, "tags": {"x,y"}},
		},
		{
			name:   "messages filters",
			detail: "the message type is sent as msgType",
			route:  MessagesRouteName,
			call: func(c *Client) error {
				_, err := c.GetMessages(context.Background(), MessagesParams{MessageType: lib.MessageStore, ContentTypes: []string{"a"}, Addresses: []string{"0x1", "0x2"}, Hashes: []string{"h"}, Pagination: 5})
				return err
			},
			expected: url.Values{"pagination": {"5"}, "page": {"1"}, "msgType": {"STORE"}, "contentTypes": {"a"}, "addresses": {"0x1,0x2"}, "hashes": {"h"}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			api, server := newFakeAPI(t)
			c := newTestClient(t, server, nil)
			// execute the function call
			require.NoError(t, test.call(c))
			require.Equal(t, test.expected, api.queries[test.route])
		})
	}
}

func TestRetryOnServerError(t *testing.T) {
	api, server := newFakeAPI(t)
	metrics := lib.NewMetricsServer(lib.DefaultMetricsConfig(), nil)
	c := newTestClient(t, server, metrics)
	// two 5xx answers are retried
	api.mux.Lock()
	api.failures = 2
	api.mux.Unlock()
	page, err := c.GetMessages(context.Background(), MessagesParams{})
	require.NoError(t, err)
	require.Equal(t, 3, api.calls)
	require.Len(t, page.Messages, 1)
	require.Equal(t, lib.MessagePost, page.Messages[0].Type)
	require.Equal(t, 1, testutil.CollectAndCount(metrics.RequestDuration, "aleph_api_request_duration_seconds"))
	// more failures than retries surface the status
	api.mux.Lock()
	api.calls, api.failures = 0, 10
	api.mux.Unlock()
	_, err = c.GetMessages(context.Background(), MessagesParams{})
	require.Error(t, err)
	require.True(t, lib.IsError(err, lib.RPCModule, lib.CodeHttpStatus))
	require.Equal(t, 3, api.calls)
}

func TestPutContent(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		content  any
		inline   bool
		limit    int
		engine   lib.ItemType
		expected lib.ItemType
	}{
		{
			name:     "inline",
			detail:   "small content is embedded and hashed locally",
			content:  map[string]string{"body": "hello"},
			inline:   true,
			expected: lib.ItemInline,
		},
		{
			name:     "not inline",
			detail:   "inline disabled pushes to storage",
			content:  map[string]string{"body": "hello"},
			expected: lib.ItemStorage,
		},
		{
			name:     "too large",
			detail:   "content above the limit is pushed to ipfs",
			content:  strings.Repeat("é", 20),
			inline:   true,
			limit:    21,
			engine:   lib.ItemIPFS,
			expected: lib.ItemIPFS,
		},
		{
			name:     "limit in utf-16 units",
			detail:   "20 two-byte runes plus quotes fit a limit of 22",
			content:  strings.Repeat("é", 20),
			inline:   true,
			limit:    22,
			expected: lib.ItemInline,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			api, server := newFakeAPI(t)
			c := newTestClient(t, server, nil)
			if test.limit != 0 {
				c.config.InlineLimit = test.limit
			}
			msg := lib.NewMessage(lib.ChainETH, "TEST", "0xabc", lib.MessagePost)
			// execute the function call
			require.NoError(t, c.PutContent(context.Background(), msg, test.content, test.inline, test.engine))
			require.Equal(t, test.expected, msg.ItemType)
			serialized, _ := lib.MarshalCanonicalJSON(test.content)
			require.Equal(t, crypto.HashString(serialized), msg.ItemHash)
			if test.expected == lib.ItemInline {
				require.Equal(t, string(serialized), msg.ItemContent)
				require.Empty(t, api.pushed)
			} else {
				require.Empty(t, msg.ItemContent)
				require.Equal(t, serialized, api.pushed[0])
			}
		})
	}
}

func TestSubmitPost(t *testing.T) {
	api, server := newFakeAPI(t)
	c := newTestClient(t, server, nil)
	account, err := signer.NewAccount(lib.ChainETH)
	require.NoError(t, err)
	// execute the function call
	msg, e := c.SubmitPost(context.Background(), account.Address, "note", "ref1", map[string]int{"n": 1}, SubmitOptions{Account: account})
	require.NoError(t, e)
	require.Equal(t, lib.ChainETH, msg.Chain)
	require.Equal(t, "TEST", msg.Channel)
	require.Equal(t, lib.ItemInline, msg.ItemType)
	// the content keeps its field order
	post := PostContent{}
	require.NoError(t, json.Unmarshal([]byte(msg.ItemContent), &post))
	require.Equal(t, "ref1", post.Ref)
	require.True(t, strings.HasPrefix(msg.ItemContent, `{"type":"note","address":"`+account.Address))
	// the broadcast message carries a valid signature
	require.Len(t, api.broadcasts, 1)
	ok, e := c.Dispatcher().Verify(&api.broadcasts[0])
	require.NoError(t, e)
	require.True(t, ok)
}

func TestSubmitAggregateWithoutAccount(t *testing.T) {
	api, server := newFakeAPI(t)
	c := newTestClient(t, server, nil)
	// execute the function call
	msg, err := c.SubmitAggregate(context.Background(), "0xabc", "profile", map[string]string{"name": "a"}, SubmitOptions{Channel: "MINE"})
	require.NoError(t, err)
	require.Equal(t, lib.MessageAggregate, msg.Type)
	require.Equal(t, "MINE", msg.Channel)
	require.Empty(t, msg.Signature)
	require.True(t, strings.HasPrefix(msg.ItemContent, `{"address":"0xabc","key":"profile","content":{"name":"a"}`))
	// nothing is broadcast
	require.Empty(t, api.broadcasts)
}

func TestSignAndBroadcastSkipped(t *testing.T) {
	api, server := newFakeAPI(t)
	c := newTestClient(t, server, nil)
	account := lib.NewAccount("XRP", "rAddress", nil, lib.LocalKey{PrivateKey: []byte{1}})
	msg := lib.NewMessage("", "TEST", account.Address, lib.MessagePost)
	// execute the function call
	status, err := c.SignAndBroadcast(context.Background(), msg, account)
	require.NoError(t, err)
	require.Equal(t, signer.SignSkipped, status)
	require.Empty(t, api.broadcasts)
}

func TestSubmitStore(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		file   StoreFile
		engine lib.ItemType
		error  bool
		upload bool
	}{
		{
			name:   "missing file",
			detail: "neither a hash nor a reader",
			error:  true,
		},
		{
			name:   "existing hash",
			detail: "no upload happens",
			file:   StoreFile{Hash: "QmHash"},
			engine: lib.ItemIPFS,
		},
		{
			name:   "upload",
			detail: "the reader is uploaded first and its hash referenced",
			file:   StoreFile{Name: "notes.txt", Reader: strings.NewReader("data")},
			upload: true,
		},
		{
			name:   "unsupported engine",
			detail: "only storage and ipfs accept files",
			file:   StoreFile{Reader: strings.NewReader("data")},
			engine: "swarm",
			error:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			api, server := newFakeAPI(t)
			c := newTestClient(t, server, nil)
			account, err := signer.NewAccount(lib.ChainSOL)
			require.NoError(t, err)
			extra := map[string]any{"ref": "abc", "address": "ignored"}
			// execute the function call
			msg, e := c.SubmitStore(context.Background(), account.Address, test.file, extra, SubmitOptions{Account: account, StorageEngine: test.engine})
			require.Equal(t, test.error, e != nil, e)
			if test.error {
				return
			}
			content := map[string]any{}
			require.NoError(t, json.Unmarshal(msg.Content, &content))
			require.Equal(t, account.Address, content["address"])
			require.Equal(t, "abc", content["ref"])
			if test.upload {
				require.Equal(t, []string{"notes.txt:data"}, api.files)
				require.Equal(t, crypto.HashString([]byte("data")), content["item_hash"])
				require.Equal(t, string(lib.ItemStorage), content["item_type"])
			} else {
				require.Equal(t, test.file.Hash, content["item_hash"])
				require.Equal(t, string(test.engine), content["item_type"])
			}
			require.Equal(t, lib.ItemInline, msg.ItemType)
			require.Len(t, api.broadcasts, 1)
			require.Empty(t, api.broadcasts[0].Content)
		})
	}
}

func TestRetryResetsStatus(t *testing.T) {
	var (
		mux   sync.Mutex
		calls int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.Lock()
		calls++
		first := calls == 1
		mux.Unlock()
		if first {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		// drop the connection without an answer
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))
	t.Cleanup(server.Close)
	config := lib.DefaultAPIConfig()
	config.APIServer = server.URL
	config.MaxRetries = 1
	c := NewClient(config, nil, lib.NewNullLogger(), nil)
	// a 5xx followed by a transport failure surfaces the transport failure
	bz, err := c.RetrieveFile(context.Background(), "known")
	require.Error(t, err)
	require.True(t, lib.IsError(err, lib.RPCModule, lib.CodeGetRequest))
	require.Nil(t, bz)
}
