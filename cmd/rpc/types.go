package rpc

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/aleph-im/aleph-go/lib"
)

// AGGREGATE / POST / STORE CONTENT BELOW

// AggregateContent is the content of an AGGREGATE message
type AggregateContent struct {
	Address string  `json:"address"`
	Key     string  `json:"key"`
	Content any     `json:"content"`
	Time    float64 `json:"time"`
}

// PostContent is the content of a POST message
type PostContent struct {
	Type    string  `json:"type"`
	Address string  `json:"address"`
	Content any     `json:"content"`
	Time    float64 `json:"time"`
	Ref     string  `json:"ref,omitempty"`
}

// StoreContent is the content of a STORE message, Extra fields are merged at the top level
type StoreContent struct {
	Address  string         `json:"address"`
	ItemType lib.ItemType   `json:"item_type"`
	ItemHash string         `json:"item_hash"`
	Time     float64        `json:"time"`
	Extra    map[string]any `json:"-"`
}

// MarshalJSON() flattens Extra next to the fixed fields, the fixed fields win
func (s StoreContent) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+4)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["address"], out["item_type"], out["item_hash"], out["time"] = s.Address, s.ItemType, s.ItemHash, s.Time
	return json.Marshal(out)
}

// API PARAMS BELOW

// PostsParams filters GetPosts
type PostsParams struct {
	Types      []string
	Pagination int
	Page       int
	Refs       []string
	Addresses  []string
	Tags       []string
	Hashes     []string
}

// query() converts the filters into url parameters, empty lists are omitted
func (p PostsParams) query() url.Values {
	q := pageQuery(p.Pagination, p.Page)
	if len(p.Types) != 0 {
		q.Set("types", strings.Join(p.Types, ","))
	}
	addList(q, "refs", p.Refs)
	addList(q, "addresses", p.Addresses)
	addList(q, "tags", p.Tags)
	addList(q, "hashes", p.Hashes)
	return q
}

// MessagesParams filters GetMessages
type MessagesParams struct {
	Pagination   int
	Page         int
	MessageType  lib.MessageType
	ContentTypes []string
	Refs         []string
	Addresses    []string
	Tags         []string
	Hashes       []string
}

// query() converts the filters into url parameters, empty lists are omitted
func (p MessagesParams) query() url.Values {
	q := pageQuery(p.Pagination, p.Page)
	if p.MessageType != "" {
		q.Set("msgType", string(p.MessageType))
	}
	addList(q, "contentTypes", p.ContentTypes)
	addList(q, "refs", p.Refs)
	addList(q, "addresses", p.Addresses)
	addList(q, "tags", p.Tags)
	addList(q, "hashes", p.Hashes)
	return q
}

const (
	defaultPagination = 200
	defaultPage       = 1
)

func pageQuery(pagination, page int) url.Values {
	if pagination == 0 {
		pagination = defaultPagination
	}
	if page == 0 {
		page = defaultPage
	}
	return url.Values{"pagination": {strconv.Itoa(pagination)}, "page": {strconv.Itoa(page)}}
}

func addList(q url.Values, key string, values []string) {
	if len(values) != 0 {
		q.Set(key, strings.Join(values, ","))
	}
}

// PostsPage is a page of posts
type PostsPage struct {
	Posts          []json.RawMessage `json:"posts"`
	PaginationPage int               `json:"pagination_page"`
	PaginationPer  int               `json:"pagination_per_page"`
	PaginationItem string            `json:"pagination_item"`
	PaginationTot  int               `json:"pagination_total"`
}

// MessagesPage is a page of messages
type MessagesPage struct {
	Messages       []lib.Message `json:"messages"`
	PaginationPage int           `json:"pagination_page"`
	PaginationPer  int           `json:"pagination_per_page"`
	PaginationItem string        `json:"pagination_item"`
	PaginationTot  int           `json:"pagination_total"`
}

// aleph api wire types
type pushResponse struct {
	Hash *string `json:"hash"`
}

type broadcastRequest struct {
	Topic string `json:"topic"`
	Data  string `json:"data"`
}

type broadcastResponse struct {
	Value json.RawMessage `json:"value"`
}

type aggregateResponse struct {
	Address string                     `json:"address"`
	Data    map[string]json.RawMessage `json:"data"`
}

// SIGNING SERVICE REQUESTS BELOW

type signRequest struct {
	Message *lib.Message `json:"message"`
}

type signResponse struct {
	Message *lib.Message `json:"message"`
	Status  string       `json:"status"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

type encryptRequest struct {
	Content   string       `json:"content"`             // utf-8 plaintext
	TargetKey lib.HexBytes `json:"targetKey,omitempty"` // empty encrypts for the service account
	Curve     string       `json:"curve,omitempty"`
}

type encryptResponse struct {
	Content string `json:"content"` // hex envelope
}

type decryptRequest struct {
	Content string `json:"content"` // hex envelope
	Curve   string `json:"curve,omitempty"`
}

type decryptResponse struct {
	Content string `json:"content"`
}
