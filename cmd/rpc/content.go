package rpc

import (
	"context"
	"encoding/json"
	"io"
	"time"
	"unicode/utf16"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/aleph-im/aleph-go/lib/signer"
)

/* This file implements the composite operations: attach content, sign, broadcast and the AGGREGATE / POST / STORE submissions */

// SubmitOptions are shared by every submission
type SubmitOptions struct {
	Chain         lib.ChainType // left empty the signing account's chain is used
	Channel       string        // defaults to the configured channel
	NoInline      bool          // always push the content to the storage engine
	StorageEngine lib.ItemType  // defaults to the configured engine
	Account       *lib.Account  // without an account the message is built but neither signed nor broadcast
}

// StoreFile is the file of a STORE message: an already pushed hash, or a reader to upload
type StoreFile struct {
	Hash   string
	Name   string
	Reader io.Reader
}

// PutContent() attaches content to msg: inline when requested and small enough, otherwise pushed to the engine
func (c *Client) PutContent(ctx context.Context, msg *lib.Message, content any, inline bool, engine lib.ItemType) lib.ErrorI {
	serialized, err := lib.MarshalCanonicalJSON(content)
	if err != nil {
		return err
	}
	if inline && jsLength(serialized) <= c.config.InlineLimit {
		msg.ItemType = lib.ItemInline
		msg.ItemContent = string(serialized)
		msg.ItemHash = crypto.HashString(serialized)
		return nil
	}
	var hash string
	if engine == lib.ItemIPFS {
		msg.ItemType = lib.ItemIPFS
		hash, err = c.IPFSPush(ctx, json.RawMessage(serialized))
	} else {
		msg.ItemType = lib.ItemStorage
		hash, err = c.StoragePush(ctx, json.RawMessage(serialized))
	}
	if err != nil {
		return err
	}
	msg.ItemHash = hash
	return nil
}

// SignAndBroadcast() signs msg with account and broadcasts it; a message that cannot be signed is not broadcast
func (c *Client) SignAndBroadcast(ctx context.Context, msg *lib.Message, account *lib.Account) (signer.SignStatus, error) {
	if account == nil {
		return signer.SignSkipped, nil
	}
	status, err := c.signer.Sign(ctx, account, msg)
	if err != nil || status != signer.SignSigned {
		return status, err
	}
	if _, e := c.Broadcast(ctx, msg); e != nil {
		return status, e
	}
	c.log.Infof("Broadcast %s message %s from %s", msg.Type, msg.ItemHash, msg.Sender)
	return status, nil
}

// SubmitAggregate() publishes key=content in the aggregate of address
func (c *Client) SubmitAggregate(ctx context.Context, address, key string, content any, o SubmitOptions) (*lib.Message, error) {
	now := lib.UnixSeconds(time.Now())
	msg := c.newMessage(address, lib.MessageAggregate, now, o)
	aggregate := AggregateContent{Address: address, Key: key, Content: content, Time: now}
	if err := c.PutContent(ctx, msg, aggregate, !o.NoInline, c.engine(o)); err != nil {
		return nil, err
	}
	if _, err := c.SignAndBroadcast(ctx, msg, o.Account); err != nil {
		return nil, err
	}
	return msg, nil
}

// SubmitPost() publishes a post of postType, ref is optional
func (c *Client) SubmitPost(ctx context.Context, address, postType, ref string, content any, o SubmitOptions) (*lib.Message, error) {
	now := lib.UnixSeconds(time.Now())
	msg := c.newMessage(address, lib.MessagePost, now, o)
	post := PostContent{Type: postType, Address: address, Content: content, Time: now, Ref: ref}
	if err := c.PutContent(ctx, msg, post, !o.NoInline, c.engine(o)); err != nil {
		return nil, err
	}
	if _, err := c.SignAndBroadcast(ctx, msg, o.Account); err != nil {
		return nil, err
	}
	return msg, nil
}

// SubmitStore() references a file, uploading it first when only a reader is given
// extra fields are merged into the store content, the store content is attached to the returned message
func (c *Client) SubmitStore(ctx context.Context, address string, file StoreFile, extra map[string]any, o SubmitOptions) (*lib.Message, error) {
	if file.Hash == "" && file.Reader == nil {
		return nil, ErrMissingFile()
	}
	engine := c.engine(o)
	if file.Reader != nil {
		var err lib.ErrorI
		switch engine {
		case lib.ItemStorage:
			file.Hash, err = c.StoragePushFile(ctx, file.Name, file.Reader)
		case lib.ItemIPFS:
			file.Hash, err = c.IPFSPushFile(ctx, file.Name, file.Reader)
		default:
			return nil, ErrUnsupportedEngine(engine)
		}
		if err != nil {
			return nil, err
		}
		if file.Hash == "" {
			return nil, ErrUploadFailed()
		}
	}
	now := lib.UnixSeconds(time.Now())
	msg := c.newMessage(address, lib.MessageStore, now, o)
	store := StoreContent{Address: address, ItemType: engine, ItemHash: file.Hash, Time: now, Extra: extra}
	if err := c.PutContent(ctx, msg, store, true, engine); err != nil {
		return nil, err
	}
	if _, err := c.SignAndBroadcast(ctx, msg, o.Account); err != nil {
		return nil, err
	}
	bz, err := lib.MarshalJSON(store)
	if err != nil {
		return nil, err
	}
	msg.Content = bz
	return msg, nil
}

func (c *Client) newMessage(address string, t lib.MessageType, now float64, o SubmitOptions) *lib.Message {
	channel := o.Channel
	if channel == "" {
		channel = c.config.Channel
	}
	msg := lib.NewMessage(o.Chain, channel, address, t)
	msg.Time = now
	return msg
}

func (c *Client) engine(o SubmitOptions) lib.ItemType {
	if o.StorageEngine != "" {
		return o.StorageEngine
	}
	if c.config.StorageEngine != "" {
		return c.config.StorageEngine
	}
	return lib.ItemStorage
}

// jsLength() counts utf-16 code units, the way the inline limit is measured on the network
func jsLength(b []byte) int { return len(utf16.Encode([]rune(string(b)))) }
