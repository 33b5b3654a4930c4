// Package mock provides an in-memory SimpleDB query API server for tests.
//
// The server checks credentials and signatures the way the service does,
// keeps domains in memory and answers with the service's XML documents:
//
//	srv := httptest.NewServer(mock.New("AKID", "secret"))
//	defer srv.Close()
//
// It supports every domain and attribute action plus a subset of the select
// language (see [Server.ServeHTTP]).
package mock

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jacentio/simpledb/internal/sigv2"
)

const (
	// DefaultNamespace is the XML namespace of every response document.
	DefaultNamespace = "http://sdb.amazonaws.com/doc/2007-11-07/"

	// DefaultPageSize caps Select and ListDomains pages.
	DefaultPageSize = 100

	// MaxClockSkew is how far a request Timestamp may be from the server clock.
	MaxClockSkew = 15 * time.Minute

	boxUsage = "0.0000219907"
)

// Server is an http.Handler emulating the SimpleDB query API.
type Server struct {
	accessKeyID string
	secret      string
	namespace   string
	pageSize    int
	now         func() time.Time
	logger      *slog.Logger

	mu      sync.Mutex
	domains map[string]*domain
}

// Option configures a Server.
type Option func(*Server)

// WithNamespace sets the XML namespace of responses.
func WithNamespace(ns string) Option {
	return func(s *Server) { s.namespace = ns }
}

// WithPageSize sets the largest page Select and ListDomains return.
func WithPageSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithClock sets the clock used for Timestamp checks and domain metadata.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the logger that receives one debug record per request.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a Server accepting requests signed with the given credential.
func New(accessKeyID, secret string, opts ...Option) *Server {
	s := &Server{
		accessKeyID: accessKeyID,
		secret:      secret,
		namespace:   DefaultNamespace,
		pageSize:    DefaultPageSize,
		now:         time.Now,
		logger:      slog.Default(),
		domains:     make(map[string]*domain),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP authenticates the request and dispatches on its Action.
//
// Select understands:
//
//	select <*|itemName()|count(*)|attr, ...> from <domain>
//	    [where <attr|itemName()> = 'value' [and ...]] [limit n]
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, errInvalidParameter("malformed query string"))
		return
	}
	params := r.Form
	action := params.Get("Action")

	if apiErr := s.authenticate(r); apiErr != nil {
		s.logger.Debug("mock request rejected", "action", action, "code", apiErr.Code)
		s.writeError(w, apiErr)
		return
	}

	handler, ok := s.handlers()[action]
	if !ok {
		s.writeError(w, &apiError{Status: http.StatusBadRequest, Code: "InvalidAction",
			Message: "The action " + action + " is not valid for this web service."})
		return
	}

	s.mu.Lock()
	result, apiErr := handler(params)
	s.mu.Unlock()
	if apiErr != nil {
		s.logger.Debug("mock request failed", "action", action, "code", apiErr.Code)
		s.writeError(w, apiErr)
		return
	}
	s.logger.Debug("mock request", "action", action)
	s.writeResult(w, action, result)
}

type handlerFunc func(params url.Values) (any, *apiError)

func (s *Server) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"CreateDomain":       s.createDomain,
		"DeleteDomain":       s.deleteDomain,
		"ListDomains":        s.listDomains,
		"DomainMetadata":     s.domainMetadata,
		"PutAttributes":      s.putAttributes,
		"BatchPutAttributes": s.batchPutAttributes,
		"DeleteAttributes":   s.deleteAttributes,
		"GetAttributes":      s.getAttributes,
		"Select":             s.selectItems,
	}
}

func (s *Server) authenticate(r *http.Request) *apiError {
	params := r.Form
	for _, name := range []string{"AWSAccessKeyId", "Signature", "SignatureMethod", "SignatureVersion", "Timestamp", "Version"} {
		if params.Get(name) == "" {
			return errMissing(name)
		}
	}
	if params.Get("AWSAccessKeyId") != s.accessKeyID {
		return &apiError{Status: http.StatusForbidden, Code: "InvalidClientTokenId",
			Message: "The AWS Access Key Id you provided does not exist in our records."}
	}
	if params.Get("SignatureVersion") != sigv2.Version {
		return errInvalidParameter("SignatureVersion " + params.Get("SignatureVersion") + " is not supported")
	}
	if _, ok := sigv2.HashFor(params.Get("SignatureMethod")); !ok {
		return errInvalidParameter("SignatureMethod " + params.Get("SignatureMethod") + " is not supported")
	}

	ts, err := time.Parse("2006-01-02T15:04:05Z", params.Get("Timestamp"))
	if err != nil {
		return errInvalidParameter("Timestamp " + params.Get("Timestamp") + " is not valid")
	}
	if skew := s.now().Sub(ts); skew > MaxClockSkew || skew < -MaxClockSkew {
		return &apiError{Status: http.StatusForbidden, Code: "RequestExpired",
			Message: "Request has expired. Timestamp date is " + params.Get("Timestamp")}
	}

	if !sigv2.Verify(params, s.secret, r.Method, r.Host, r.URL.Path) {
		return &apiError{Status: http.StatusForbidden, Code: "SignatureDoesNotMatch",
			Message: "The request signature we calculated does not match the signature you provided."}
	}
	return nil
}

// --- Response documents ---

type envelope struct {
	XMLName  xml.Name
	Xmlns    string `xml:"xmlns,attr"`
	Result   any    `xml:",omitempty"`
	Metadata struct {
		RequestID string `xml:"RequestId"`
		BoxUsage  string `xml:"BoxUsage"`
	} `xml:"ResponseMetadata"`
}

type errorDocument struct {
	XMLName   xml.Name     `xml:"Response"`
	Errors    []errorEntry `xml:"Errors>Error"`
	RequestID string       `xml:"RequestID"`
}

type errorEntry struct {
	Code     string `xml:"Code"`
	Message  string `xml:"Message"`
	BoxUsage string `xml:"BoxUsage"`
}

func (s *Server) writeResult(w http.ResponseWriter, action string, result any) {
	doc := envelope{
		XMLName: xml.Name{Local: action + "Response"},
		Xmlns:   s.namespace,
		Result:  result,
	}
	doc.Metadata.RequestID = uuid.NewString()
	doc.Metadata.BoxUsage = boxUsage
	writeXML(w, http.StatusOK, doc)
}

func (s *Server) writeError(w http.ResponseWriter, e *apiError) {
	doc := errorDocument{
		Errors:    []errorEntry{{Code: e.Code, Message: e.Message, BoxUsage: boxUsage}},
		RequestID: uuid.NewString(),
	}
	writeXML(w, e.Status, doc)
}

func writeXML(w http.ResponseWriter, status int, doc any) {
	body, err := xml.Marshal(doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
}

// --- Errors ---

type apiError struct {
	Status  int
	Code    string
	Message string
}

func errMissing(name string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "MissingParameter",
		Message: "The request must contain the parameter " + name}
}

func errInvalidParameter(msg string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "InvalidParameterValue", Message: msg}
}

func errNoSuchDomain() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "NoSuchDomain",
		Message: "The specified domain does not exist."}
}
