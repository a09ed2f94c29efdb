package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"slices"
	"time"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/encryption"
	"github.com/aleph-im/aleph-go/lib/signer"
	"github.com/alecthomas/units"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

/* This file implements the local signing service: one account exposed over http for signing, verification and encryption */

const (
	SoftwareVersion = "0.1.0"
	ContentType     = "Content-Type"
	ApplicationJSON = "application/json; charset=utf-8"
	jsonMediaType   = "application/json"
)

// Server is the local signing service
type Server struct {
	account   *lib.Account
	signer    *signer.Dispatcher
	encryptor *encryption.Encryptor
	config    lib.ServerConfig
	server    *http.Server
	log       lib.LoggerI
	metrics   *lib.Metrics
}

// NewServer() creates the signing service for account; a nil dispatcher uses the default schemes
func NewServer(account *lib.Account, config lib.ServerConfig, dispatcher *signer.Dispatcher, log lib.LoggerI, metrics *lib.Metrics) *Server {
	if log == nil {
		log = lib.NewNullLogger()
	}
	if dispatcher == nil {
		dispatcher = signer.NewDispatcher(log, metrics)
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = int64(units.MB)
	}
	s := &Server{
		account:   account,
		signer:    dispatcher,
		encryptor: encryption.NewEncryptor(log, metrics),
		config:    config,
		log:       log,
		metrics:   metrics,
	}
	s.server = &http.Server{Addr: config.ListenAddress, Handler: s.Handler()}
	return s
}

// Handler() returns the router wrapped in the cors policy and the request timeout
// only origins listed in the config may call the service from a browser
func (s *Server) Handler() http.Handler {
	allowed := s.config.AllowedOrigins
	// Create CORS policy; an origin func is always set so an empty list never means every origin
	cor := cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool { return slices.Contains(allowed, origin) },
		AllowedMethods:  []string{"GET", "OPTIONS", "POST"},
		AllowedHeaders:  []string{ContentType},
	})
	// Create a default timeout for HTTP requests
	timeout := time.Duration(s.config.TimeoutMS) * time.Millisecond
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return cor.Handler(http.TimeoutHandler(createRouter(s), timeout, ErrServerTimeout().Error()))
}

// Start() serves in the background
func (s *Server) Start() {
	go func() {
		defer lib.CatchPanic(s.log)
		s.log.Infof("Starting signing service at %s for %s account %s", s.config.ListenAddress, s.account.Chain, s.account.Address)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("Signing service failed with err: %s", err.Error())
		}
	}()
}

// Stop() gracefully shuts the service down
func (s *Server) Stop(ctx context.Context) error { return s.server.Shutdown(ctx) }

// Version() returns the software version
func (s *Server) Version(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, SoftwareVersion, http.StatusOK)
}

// Account() returns the public description of the service account, the mnemonics never leave the process
func (s *Server) Account(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	public := *s.account
	public.Mnemonics = ""
	write(w, public, http.StatusOK)
}

// Sign() signs the posted message with the service account
func (s *Server) Sign(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(signRequest)
	if ok := s.unmarshal(w, r, req); !ok {
		return
	}
	if req.Message == nil {
		write(w, ErrInvalidParams(errors.New("message is required")), http.StatusBadRequest)
		return
	}
	msg := req.Message
	if msg.Sender == "" {
		msg.Sender = s.account.Address
	}
	if msg.Sender != s.account.Address {
		write(w, ErrInvalidParams(errors.New("sender is not the service account")), http.StatusBadRequest)
		return
	}
	status, err := s.signer.Sign(r.Context(), s.account, msg)
	if err != nil {
		write(w, err, http.StatusInternalServerError)
		return
	}
	write(w, signResponse{Message: msg, Status: status.String()}, http.StatusOK)
}

// Verify() checks the signature of the posted message against its sender
func (s *Server) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	msg := new(lib.Message)
	if ok := s.unmarshal(w, r, msg); !ok {
		return
	}
	valid, err := s.signer.Verify(msg)
	if err != nil {
		write(w, err, http.StatusBadRequest)
		return
	}
	write(w, verifyResponse{Valid: valid}, http.StatusOK)
}

// Encrypt() seals content for the target key, or for the service account when no target is given
func (s *Server) Encrypt(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(encryptRequest)
	if ok := s.unmarshal(w, r, req); !ok {
		return
	}
	opts, ok := curveOption(w, req.Curve)
	if !ok {
		return
	}
	var (
		out []byte
		err error
	)
	if len(req.TargetKey) == 0 {
		out, err = s.encryptor.EncryptForSelf(s.account, []byte(req.Content), opts...)
	} else {
		out, err = s.encryptor.Encrypt(req.TargetKey, []byte(req.Content), opts...)
	}
	if err != nil {
		write(w, err, http.StatusBadRequest)
		return
	}
	write(w, encryptResponse{Content: string(out)}, http.StatusOK)
}

// Decrypt() opens a hex envelope with the service account's key
func (s *Server) Decrypt(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(decryptRequest)
	if ok := s.unmarshal(w, r, req); !ok {
		return
	}
	opts, ok := curveOption(w, req.Curve)
	if !ok {
		return
	}
	out, err := s.encryptor.Decrypt(s.account, []byte(req.Content), opts...)
	if err != nil {
		write(w, err, http.StatusBadRequest)
		return
	}
	write(w, decryptResponse{Content: string(out)}, http.StatusOK)
}

// observe() records the duration of every request of a route
func (s *Server) observe(name string, h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		start := time.Now()
		h(w, r, p)
		s.metrics.ObserveRequest(name, time.Since(start))
	}
}

// curveOption() converts an optional curve name into an encryption option
func curveOption(w http.ResponseWriter, curve string) ([]encryption.Option, bool) {
	if curve == "" {
		return nil, true
	}
	c, err := encryption.ParseCurve(curve)
	if err != nil {
		write(w, err, http.StatusBadRequest)
		return nil, false
	}
	return []encryption.Option{encryption.WithCurve(c)}, true
}

// unmarshal() reads request body and unmarshals it into ptr
func (s *Server) unmarshal(w http.ResponseWriter, r *http.Request, ptr any) bool {
	defer func() { _ = r.Body.Close() }()
	// json only, form and text bodies are what a browser sends cross origin without a preflight
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get(ContentType)); err != nil || mediaType != jsonMediaType {
		write(w, ErrUnsupportedContentType(r.Header.Get(ContentType)), http.StatusUnsupportedMediaType)
		return false
	}
	bz, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodyBytes))
	if err != nil {
		write(w, ErrInvalidParams(err), http.StatusBadRequest)
		return false
	}
	if err = json.Unmarshal(bz, ptr); err != nil {
		write(w, ErrInvalidParams(err), http.StatusBadRequest)
		return false
	}
	return true
}

// write() writes the marshaled payload to w
func write(w http.ResponseWriter, payload any, code int) {
	w.Header().Set(ContentType, ApplicationJSON)
	w.WriteHeader(code)
	// Marshal and indent the payload
	bz, _ := json.MarshalIndent(payload, "", "  ")
	_, _ = w.Write(bz)
}
