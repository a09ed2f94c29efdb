package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/signer"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
)

/* This file implements the aleph api client: content pushes, broadcast and read queries */

const (
	BroadcastTopic  = "ALEPH-TEST"
	ProfileKey      = "profile"
	uploadFileField = "file"
	defaultFileName = "random.txt" // the name is required by the form but ignored by the api
)

// Client talks to an aleph api node
type Client struct {
	apiServer string
	client    http.Client
	config    lib.APIConfig
	signer    *signer.Dispatcher
	log       lib.LoggerI
	metrics   *lib.Metrics
}

// NewClient() creates a client; a nil dispatcher uses the default schemes and metrics may be nil
func NewClient(config lib.APIConfig, dispatcher *signer.Dispatcher, log lib.LoggerI, metrics *lib.Metrics) *Client {
	if log == nil {
		log = lib.NewNullLogger()
	}
	if dispatcher == nil {
		dispatcher = signer.NewDispatcher(log, metrics)
	}
	if config.APIServer == "" {
		config.APIServer = lib.DefaultAPIServer
	}
	if config.InlineLimit == 0 {
		config.InlineLimit = lib.DefaultInlineLimit
	}
	return &Client{
		apiServer: strings.TrimSuffix(config.APIServer, "/"),
		client:    http.Client{Timeout: time.Duration(config.TimeoutS) * time.Second},
		config:    config,
		signer:    dispatcher,
		log:       log,
		metrics:   metrics,
	}
}

// Dispatcher() exposes the signing dispatcher
func (c *Client) Dispatcher() *signer.Dispatcher { return c.signer }

// StoragePush() stores a json value on the aleph storage engine and returns its hash
func (c *Client) StoragePush(ctx context.Context, value any) (string, lib.ErrorI) {
	return c.pushJSON(ctx, StorageAddJSONRouteName, value)
}

// IPFSPush() stores a json value on ipfs and returns its hash
func (c *Client) IPFSPush(ctx context.Context, value any) (string, lib.ErrorI) {
	return c.pushJSON(ctx, IPFSAddJSONRouteName, value)
}

// StoragePushFile() uploads a file to the aleph storage engine and returns its hash
func (c *Client) StoragePushFile(ctx context.Context, name string, file io.Reader) (string, lib.ErrorI) {
	return c.pushFile(ctx, StorageAddFileRouteName, name, file)
}

// IPFSPushFile() uploads a file to ipfs and returns its hash
func (c *Client) IPFSPushFile(ctx context.Context, name string, file io.Reader) (string, lib.ErrorI) {
	return c.pushFile(ctx, IPFSAddFileRouteName, name, file)
}

// Broadcast() publishes a signed message on the aleph pubsub topic
func (c *Client) Broadcast(ctx context.Context, msg *lib.Message) (json.RawMessage, lib.ErrorI) {
	data, err := lib.MarshalCanonicalJSON(msg)
	if err != nil {
		return nil, err
	}
	bz, err := lib.MarshalJSON(broadcastRequest{Topic: BroadcastTopic, Data: string(data)})
	if err != nil {
		return nil, err
	}
	resp := new(broadcastResponse)
	if err = c.post(ctx, PubSubRouteName, bz, ApplicationJSON, resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// FetchAggregate() returns the aggregate of address, limited to keys when given; nil if the api has no data
func (c *Client) FetchAggregate(ctx context.Context, address string, keys ...string) (map[string]json.RawMessage, lib.ErrorI) {
	var query url.Values
	if len(keys) != 0 {
		query = url.Values{"keys": {strings.Join(keys, ",")}}
	}
	resp := new(aggregateResponse)
	if err := c.get(ctx, AggregatesRouteName, address+".json", query, resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// FetchOne() returns a single aggregate key of address, nil if absent
func (c *Client) FetchOne(ctx context.Context, address, key string) (json.RawMessage, lib.ErrorI) {
	data, err := c.FetchAggregate(ctx, address, key)
	if err != nil {
		return nil, err
	}
	return data[key], nil
}

// FetchProfile() returns the 'profile' aggregate key of address
func (c *Client) FetchProfile(ctx context.Context, address string) (json.RawMessage, lib.ErrorI) {
	return c.FetchOne(ctx, address, ProfileKey)
}

// FetchAggregates() fetches the aggregates of many addresses concurrently, the first failure cancels the rest
func (c *Client) FetchAggregates(ctx context.Context, addresses []string, keys ...string) (map[string]map[string]json.RawMessage, lib.ErrorI) {
	var (
		mux    sync.Mutex
		result = make(map[string]map[string]json.RawMessage, len(addresses))
	)
	g, gCtx := errgroup.WithContext(ctx)
	for _, address := range addresses {
		address := address
		g.Go(func() error {
			data, err := c.FetchAggregate(gCtx, address, keys...)
			if err != nil {
				return err
			}
			mux.Lock()
			result[address] = data
			mux.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if e, ok := err.(lib.ErrorI); ok {
			return nil, e
		}
		return nil, ErrGetRequest(err)
	}
	return result, nil
}

// GetPosts() returns a page of posts
func (c *Client) GetPosts(ctx context.Context, params PostsParams) (*PostsPage, lib.ErrorI) {
	page := new(PostsPage)
	if err := c.get(ctx, PostsRouteName, "", params.query(), page); err != nil {
		return nil, err
	}
	return page, nil
}

// GetMessages() returns a page of messages
func (c *Client) GetMessages(ctx context.Context, params MessagesParams) (*MessagesPage, lib.ErrorI) {
	page := new(MessagesPage)
	if err := c.get(ctx, MessagesRouteName, "", params.query(), page); err != nil {
		return nil, err
	}
	return page, nil
}

// RetrieveFile() downloads a stored file; a non 200 answer returns nil without error
func (c *Client) RetrieveFile(ctx context.Context, hash string) ([]byte, lib.ErrorI) {
	bz, status, err := c.do(ctx, StorageRawRouteName, hash+"?find", nil, nil, "")
	if err != nil && status == 0 {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, nil
	}
	return bz, nil
}

// pushJSON() posts value as json and returns the hash the api answers with
func (c *Client) pushJSON(ctx context.Context, routeName string, value any) (string, lib.ErrorI) {
	bz, err := lib.MarshalCanonicalJSON(value)
	if err != nil {
		return "", err
	}
	return c.push(ctx, routeName, bz, ApplicationJSON)
}

// pushFile() posts file as the 'file' field of a multipart form
func (c *Client) pushFile(ctx context.Context, routeName, name string, file io.Reader) (string, lib.ErrorI) {
	if name == "" {
		name = defaultFileName
	}
	body := new(bytes.Buffer)
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile(uploadFileField, name)
	if err != nil {
		return "", ErrNewRequest(err)
	}
	if _, err = io.Copy(part, file); err != nil {
		return "", ErrNewRequest(err)
	}
	if err = form.Close(); err != nil {
		return "", ErrNewRequest(err)
	}
	return c.push(ctx, routeName, body.Bytes(), form.FormDataContentType())
}

// push() returns the hash of a push response, empty when the api has none
func (c *Client) push(ctx context.Context, routeName string, body []byte, contentType string) (string, lib.ErrorI) {
	resp := new(pushResponse)
	if err := c.post(ctx, routeName, body, contentType, resp); err != nil {
		return "", err
	}
	if resp.Hash == nil {
		return "", nil
	}
	return *resp.Hash, nil
}

func (c *Client) url(routeName, param string, query url.Values) string {
	u := c.apiServer + routePaths[routeName].Path + param
	if len(query) != 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) post(ctx context.Context, routeName string, body []byte, contentType string, ptr any) lib.ErrorI {
	bz, _, err := c.do(ctx, routeName, "", nil, body, contentType)
	if err != nil {
		return err
	}
	return lib.UnmarshalJSON(bz, ptr)
}

func (c *Client) get(ctx context.Context, routeName, param string, query url.Values, ptr any) lib.ErrorI {
	bz, _, err := c.do(ctx, routeName, param, query, nil, "")
	if err != nil {
		return err
	}
	return lib.UnmarshalJSON(bz, ptr)
}

// do() executes a request, retrying transport failures and 5xx answers with exponential backoff
// the status is 0 when no answer was received
func (c *Client) do(ctx context.Context, routeName, param string, query url.Values, body []byte, contentType string) (bz []byte, status int, err lib.ErrorI) {
	method, u := routePaths[routeName].Method, c.url(routeName, param, query)
	start := time.Now()
	defer func() { c.metrics.ObserveRequest(routeName, time.Since(start)) }()
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.config.MaxRetries), ctx)
	operation := func() error {
		// every attempt starts without an answer
		status, bz = 0, nil
		req, e := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
		if e != nil {
			return backoff.Permanent(ErrNewRequest(e))
		}
		if contentType != "" {
			req.Header.Set(ContentType, contentType)
		}
		resp, e := c.client.Do(req)
		if e != nil {
			if method == http.MethodPost {
				return ErrPostRequest(e)
			}
			return ErrGetRequest(e)
		}
		defer func() { _ = resp.Body.Close() }()
		status = resp.StatusCode
		bz, e = io.ReadAll(resp.Body)
		if e != nil {
			return ErrReadBody(e)
		}
		switch {
		case status >= http.StatusInternalServerError:
			return ErrHttpStatus(resp.Status, status, bz)
		case status != http.StatusOK:
			return backoff.Permanent(ErrHttpStatus(resp.Status, status, bz))
		}
		return nil
	}
	notify := func(e error, wait time.Duration) {
		c.log.Warnf("%s %s failed, retrying in %s: %s", method, u, wait, e.Error())
	}
	if e := backoff.RetryNotify(operation, policy, notify); e != nil {
		if le, ok := e.(lib.ErrorI); ok {
			return bz, status, le
		}
		// the context ended
		return bz, status, ErrGetRequest(e)
	}
	c.log.Debugf("%s %s -> %d", method, u, status)
	return bz, status, nil
}
